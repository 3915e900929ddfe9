package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrEventAfterTermination reports a misbehaving collaborator that kept
// delivering events past the done marker or end of stream.
var ErrEventAfterTermination = errors.New("stream protocol violation: event after termination")

// AggregationResult accumulates the generated text of one stream. Text is
// append-only and ErrorDetected is sticky for the lifetime of the result.
type AggregationResult struct {
	Text           string
	EventCount     int
	LineCount      int
	MalformedCount int
	ErrorDetected  bool
	Terminated     bool
}

// Apply folds one event into the result. Once the result is terminated any
// further event fails with ErrEventAfterTermination.
func (r *AggregationResult) Apply(event SSEEvent) error {
	if r.Terminated {
		return ErrEventAfterTermination
	}

	switch event.Kind {
	case EventKindDone:
		r.Terminated = true
	case EventKindData:
		if event.Payload == nil {
			return nil
		}
		if len(event.Payload.Choices) > 0 {
			// First choice wins regardless of the index field.
			content := event.Payload.Choices[0].Delta.Content
			if content != "" {
				r.Text += content
				r.EventCount++
			}
		}
		if event.Payload.HasError() {
			r.ErrorDetected = true
		}
	case EventKindOther:
		// Tolerated, nothing to fold in.
	}

	return nil
}

// TimeoutError reports the deadline elapsing before the stream terminated.
// The partial result is preserved so callers can inspect whatever text had
// accumulated up to that point.
type TimeoutError struct {
	Partial *AggregationResult
	Elapsed time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("stream deadline exceeded after %s with %d events aggregated", e.Elapsed, e.Partial.EventCount)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}
