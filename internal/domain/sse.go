package domain

import (
	"encoding/json"
	"strings"
)

// EventKind classifies a parsed SSE frame.
type EventKind string

const (
	EventKindData  EventKind = "data"
	EventKindDone  EventKind = "done"
	EventKindOther EventKind = "other"
)

const (
	dataPrefix = "data: "
	doneMarker = "[DONE]"
)

// ChatDelta is the incremental text fragment carried by one data event.
type ChatDelta struct {
	Content string `json:"content"`
}

// ChatChoice is a single entry in the choices array of a streamed chunk.
type ChatChoice struct {
	Index int       `json:"index"`
	Delta ChatDelta `json:"delta"`
}

// ChatChunk is the payload shape the generate endpoint streams. Error stays
// a raw message: only its presence matters for outcome classification, so a
// JSON null error still counts as present.
type ChatChunk struct {
	Choices []ChatChoice    `json:"choices"`
	Error   json.RawMessage `json:"error,omitempty"`
}

// HasError reports whether the payload carried an error field at all.
func (c *ChatChunk) HasError() bool {
	return len(c.Error) > 0
}

// SSEEvent is one parsed unit of the response stream.
type SSEEvent struct {
	Kind    EventKind
	Payload *ChatChunk
}

// LineParser turns raw response lines into events. A data line whose payload
// fails to decode is tolerated and counted, never fatal.
type LineParser struct {
	MalformedCount int
}

// ParseLine produces at most one event for a raw line. The second return is
// false when the line contributes nothing: SSE framing blanks, fields other
// than data, empty payloads, and malformed payloads.
func (p *LineParser) ParseLine(line string) (SSEEvent, bool) {
	if strings.TrimSpace(line) == "" {
		return SSEEvent{}, false
	}
	if !strings.HasPrefix(line, dataPrefix) {
		return SSEEvent{}, false
	}

	payload := line[len(dataPrefix):]
	if payload == doneMarker {
		return SSEEvent{Kind: EventKindDone}, true
	}
	if strings.TrimSpace(payload) == "" {
		return SSEEvent{}, false
	}

	var chunk ChatChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		p.MalformedCount++
		return SSEEvent{}, false
	}

	return SSEEvent{Kind: EventKindData, Payload: &chunk}, true
}
