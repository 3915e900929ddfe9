package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"rag-streamprobe/internal/domain"
)

// ProbeInput describes one streaming generate call to verify.
type ProbeInput struct {
	Query            string
	ExpectedKeywords []string
	UseKnowledgeBase bool
	Collections      []string
	Temperature      float64
	MaxTokens        int
	Timeout          time.Duration
}

// ProbeResult is the finalized view of one probe.
type ProbeResult struct {
	ProbeID        string
	Query          string
	Outcome        Outcome
	Text           string
	Elapsed        time.Duration
	LineCount      int
	EventCount     int
	MalformedCount int
	ErrorDetected  bool
	Terminated     bool
	TimedOut       bool
}

// ProbeUsecase runs a single generate call end to end: request, stream
// consumption, and outcome classification.
type ProbeUsecase interface {
	Execute(ctx context.Context, input ProbeInput) (*ProbeResult, error)
}

type probeUsecase struct {
	streamer           domain.AnswerStreamer
	consumer           *StreamConsumer
	classifier         OutcomeClassifier
	defaultTemperature float64
	defaultMaxTokens   int
	logger             *slog.Logger
}

// NewProbeUsecase wires the streamer, consumer, and classifier into a probe.
func NewProbeUsecase(
	streamer domain.AnswerStreamer,
	consumer *StreamConsumer,
	classifier OutcomeClassifier,
	defaultTemperature float64,
	defaultMaxTokens int,
	logger *slog.Logger,
) ProbeUsecase {
	return &probeUsecase{
		streamer:           streamer,
		consumer:           consumer,
		classifier:         classifier,
		defaultTemperature: defaultTemperature,
		defaultMaxTokens:   defaultMaxTokens,
		logger:             logger,
	}
}

func (u *probeUsecase) Execute(ctx context.Context, input ProbeInput) (*ProbeResult, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, errors.New("query is required")
	}

	probeID := uuid.NewString()

	temperature := input.Temperature
	if temperature == 0 {
		temperature = u.defaultTemperature
	}
	maxTokens := input.MaxTokens
	if maxTokens == 0 {
		maxTokens = u.defaultMaxTokens
	}

	if input.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, input.Timeout)
		defer cancel()
	}

	req := domain.GenerateRequest{
		Messages:         []domain.ChatMessage{{Role: "user", Content: input.Query}},
		UseKnowledgeBase: input.UseKnowledgeBase,
		CollectionNames:  input.Collections,
		Stream:           false,
		Temperature:      temperature,
		MaxTokens:        maxTokens,
	}

	u.logger.Info("probe_started",
		slog.String("probe_id", probeID),
		slog.String("query", truncateString(input.Query, 100)),
		slog.Bool("use_knowledge_base", input.UseKnowledgeBase))

	start := time.Now()

	lines, err := u.streamer.Generate(ctx, req)
	if err != nil {
		u.logger.Warn("probe_request_failed",
			slog.String("probe_id", probeID),
			slog.String("error", err.Error()),
			slog.Int64("elapsed_ms", time.Since(start).Milliseconds()))
		return nil, fmt.Errorf("call generate endpoint: %w", err)
	}
	defer func() { _ = lines.Close() }()

	result, err := u.consumer.Consume(ctx, lines)
	elapsed := time.Since(start)

	var timeoutErr *domain.TimeoutError
	switch {
	case err == nil:
	case errors.As(err, &timeoutErr):
		// The partial result stays inspectable; the verdict is a failure.
		u.logger.Warn("probe_timed_out",
			slog.String("probe_id", probeID),
			slog.Int("partial_events", timeoutErr.Partial.EventCount),
			slog.Int64("elapsed_ms", elapsed.Milliseconds()))
		return u.buildResult(probeID, input, timeoutErr.Partial, elapsed, true, OutcomeFailure), nil
	default:
		return nil, err
	}

	outcome := u.classifier.Classify(result, input.ExpectedKeywords)

	u.logger.Info("probe_completed",
		slog.String("probe_id", probeID),
		slog.String("outcome", string(outcome)),
		slog.Int("events", result.EventCount),
		slog.Int("response_chars", len(result.Text)),
		slog.Int64("elapsed_ms", elapsed.Milliseconds()))

	return u.buildResult(probeID, input, result, elapsed, false, outcome), nil
}

func (u *probeUsecase) buildResult(
	probeID string,
	input ProbeInput,
	agg *domain.AggregationResult,
	elapsed time.Duration,
	timedOut bool,
	outcome Outcome,
) *ProbeResult {
	return &ProbeResult{
		ProbeID:        probeID,
		Query:          input.Query,
		Outcome:        outcome,
		Text:           agg.Text,
		Elapsed:        elapsed,
		LineCount:      agg.LineCount,
		EventCount:     agg.EventCount,
		MalformedCount: agg.MalformedCount,
		ErrorDetected:  agg.ErrorDetected,
		Terminated:     agg.Terminated,
		TimedOut:       timedOut,
	}
}

func truncateString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
