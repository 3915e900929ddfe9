package usecase

import (
	"strings"

	"rag-streamprobe/internal/domain"
)

// Outcome is the three-way verdict over a finalized aggregation.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePartial Outcome = "partial"
	OutcomeFailure Outcome = "failure"
)

// Markers the server embeds in otherwise well-formed streams when generation
// failed upstream. Any hit forces a failure verdict regardless of length.
var failureMarkers = []string{
	"Error from rag-server",
	"Response ended prematurely",
}

// minSuccessLength is the bar for a real answer: ten trimmed characters or
// fewer is too short to count as generated content.
const minSuccessLength = 10

// OutcomeClassifier reduces a finalized aggregation to a verdict.
type OutcomeClassifier struct{}

// NewOutcomeClassifier creates a classifier instance (currently stateless).
func NewOutcomeClassifier() OutcomeClassifier {
	return OutcomeClassifier{}
}

// Classify applies the failure conditions first, then the success bar.
// Keywords are matched case-insensitively; an empty keyword set leaves only
// the length bar between partial and success.
func (OutcomeClassifier) Classify(result *domain.AggregationResult, expectedKeywords []string) Outcome {
	trimmed := strings.TrimSpace(result.Text)
	if trimmed == "" || result.ErrorDetected {
		return OutcomeFailure
	}
	for _, marker := range failureMarkers {
		if strings.Contains(result.Text, marker) {
			return OutcomeFailure
		}
	}

	if len(trimmed) > minSuccessLength && containsAnyKeyword(result.Text, expectedKeywords) {
		return OutcomeSuccess
	}
	return OutcomePartial
}

func containsAnyKeyword(text string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	lower := strings.ToLower(text)
	for _, keyword := range keywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}
