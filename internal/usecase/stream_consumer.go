package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"rag-streamprobe/internal/domain"
)

// StreamConsumer drains a line stream through the parser and aggregator,
// checking the context deadline at every line boundary.
type StreamConsumer struct {
	logger *slog.Logger
}

// NewStreamConsumer constructs a consumer that logs stream summaries.
func NewStreamConsumer(logger *slog.Logger) *StreamConsumer {
	return &StreamConsumer{logger: logger}
}

// Consume reads lines until a done event is aggregated, the stream is
// exhausted, or the context deadline elapses. End of stream without a done
// marker is a soft completion and finalizes the result as terminated. On
// timeout the returned error is a *domain.TimeoutError carrying the partial
// result; a stream delivered past termination fails with
// domain.ErrEventAfterTermination.
func (c *StreamConsumer) Consume(ctx context.Context, lines domain.LineStream) (*domain.AggregationResult, error) {
	start := time.Now()
	parser := &domain.LineParser{}
	result := &domain.AggregationResult{}

	for {
		select {
		case <-ctx.Done():
			result.MalformedCount = parser.MalformedCount
			return result, &domain.TimeoutError{Partial: result, Elapsed: time.Since(start), Err: ctx.Err()}
		default:
		}

		line, ok := lines.Next()
		if !ok {
			break
		}
		if strings.TrimSpace(line) != "" {
			result.LineCount++
		}

		event, ok := parser.ParseLine(line)
		if !ok {
			continue
		}
		if err := result.Apply(event); err != nil {
			result.MalformedCount = parser.MalformedCount
			return result, err
		}
		if result.Terminated {
			break
		}
	}

	result.MalformedCount = parser.MalformedCount

	if err := lines.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return result, &domain.TimeoutError{Partial: result, Elapsed: time.Since(start), Err: err}
		}
		return result, fmt.Errorf("read response stream: %w", err)
	}

	// Missing done marker is tolerated: end of stream implies termination.
	result.Terminated = true

	c.logger.Debug("stream_consumed",
		slog.Int("lines", result.LineCount),
		slog.Int("events", result.EventCount),
		slog.Int("malformed", result.MalformedCount),
		slog.Int64("elapsed_ms", time.Since(start).Milliseconds()))

	return result, nil
}
