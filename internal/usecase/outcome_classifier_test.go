package usecase_test

import (
	"testing"

	"rag-streamprobe/internal/domain"
	"rag-streamprobe/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func TestOutcomeClassifier_Classify(t *testing.T) {
	classifier := usecase.NewOutcomeClassifier()

	tests := []struct {
		name     string
		result   domain.AggregationResult
		keywords []string
		expected usecase.Outcome
	}{
		{
			name:     "keyword match succeeds",
			result:   domain.AggregationResult{Text: "Paris is the capital of France."},
			keywords: []string{"Paris", "France"},
			expected: usecase.OutcomeSuccess,
		},
		{
			name:     "empty text fails regardless of keywords",
			result:   domain.AggregationResult{Text: ""},
			keywords: []string{"Paris"},
			expected: usecase.OutcomeFailure,
		},
		{
			name:     "whitespace only fails",
			result:   domain.AggregationResult{Text: "   \n\t  "},
			expected: usecase.OutcomeFailure,
		},
		{
			name:     "server error marker fails even with keyword hits",
			result:   domain.AggregationResult{Text: "Error from rag-server: timeout while answering about Paris, France"},
			keywords: []string{"Paris", "France"},
			expected: usecase.OutcomeFailure,
		},
		{
			name:     "premature end marker fails",
			result:   domain.AggregationResult{Text: "Response ended prematurely during generation"},
			expected: usecase.OutcomeFailure,
		},
		{
			name:     "error flag forces failure",
			result:   domain.AggregationResult{Text: "A perfectly long and sensible answer.", ErrorDetected: true},
			expected: usecase.OutcomeFailure,
		},
		{
			name:     "eight chars is below the length bar",
			result:   domain.AggregationResult{Text: "Hi there"},
			expected: usecase.OutcomePartial,
		},
		{
			name:     "exactly ten chars is still partial",
			result:   domain.AggregationResult{Text: "abcdefghij"},
			expected: usecase.OutcomePartial,
		},
		{
			name:     "eleven chars clears the bar with no keywords",
			result:   domain.AggregationResult{Text: "abcdefghijk"},
			expected: usecase.OutcomeSuccess,
		},
		{
			name:     "no keyword hit stays partial",
			result:   domain.AggregationResult{Text: "This answer talks about something else entirely."},
			keywords: []string{"Paris"},
			expected: usecase.OutcomePartial,
		},
		{
			name:     "keyword match is case-insensitive",
			result:   domain.AggregationResult{Text: "PARIS is the capital of france."},
			keywords: []string{"paris", "FRANCE"},
			expected: usecase.OutcomeSuccess,
		},
		{
			name:     "one keyword hit out of many is enough",
			result:   domain.AggregationResult{Text: "Docker packages applications neatly."},
			keywords: []string{"Docker", "containers", "isolated"},
			expected: usecase.OutcomeSuccess,
		},
		{
			name:     "trimming applies to the length bar",
			result:   domain.AggregationResult{Text: "   Hi there   "},
			expected: usecase.OutcomePartial,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.result
			assert.Equal(t, tt.expected, classifier.Classify(&result, tt.keywords))
		})
	}
}
