package domain_test

import (
	"testing"

	"rag-streamprobe/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineParser_IgnoresFraming(t *testing.T) {
	parser := &domain.LineParser{}

	tests := []struct {
		name string
		line string
	}{
		{name: "empty line", line: ""},
		{name: "whitespace only", line: "   \t"},
		{name: "comment field", line: ": keep-alive"},
		{name: "event field", line: "event: message"},
		{name: "id field", line: "id: 42"},
		{name: "data prefix with empty payload", line: "data:  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := parser.ParseLine(tt.line)
			assert.False(t, ok, "line should produce no event")
		})
	}
	assert.Equal(t, 0, parser.MalformedCount, "framing lines are not malformed")
}

func TestLineParser_DoneMarker(t *testing.T) {
	parser := &domain.LineParser{}

	event, ok := parser.ParseLine("data: [DONE]")
	require.True(t, ok)
	assert.Equal(t, domain.EventKindDone, event.Kind)
	assert.Nil(t, event.Payload)
}

func TestLineParser_DataPayload(t *testing.T) {
	parser := &domain.LineParser{}

	event, ok := parser.ParseLine(`data: {"choices":[{"index":0,"delta":{"content":"Hello"}}]}`)
	require.True(t, ok)
	assert.Equal(t, domain.EventKindData, event.Kind)
	require.NotNil(t, event.Payload)
	require.Len(t, event.Payload.Choices, 1)
	assert.Equal(t, "Hello", event.Payload.Choices[0].Delta.Content)
	assert.False(t, event.Payload.HasError())
}

func TestLineParser_MalformedPayloadIsCountedNotFatal(t *testing.T) {
	parser := &domain.LineParser{}

	_, ok := parser.ParseLine("data: not-json")
	assert.False(t, ok)
	assert.Equal(t, 1, parser.MalformedCount)

	// Still parses valid lines afterwards.
	event, ok := parser.ParseLine(`data: {"choices":[{"delta":{"content":"ok"}}]}`)
	require.True(t, ok)
	assert.Equal(t, domain.EventKindData, event.Kind)
	assert.Equal(t, 1, parser.MalformedCount)

	_, ok = parser.ParseLine("data: {truncated")
	assert.False(t, ok)
	assert.Equal(t, 2, parser.MalformedCount)
}

func TestLineParser_ErrorFieldPresence(t *testing.T) {
	parser := &domain.LineParser{}

	event, ok := parser.ParseLine(`data: {"choices":[],"error":{"message":"boom"}}`)
	require.True(t, ok)
	assert.True(t, event.Payload.HasError())

	// A null error still counts as present.
	event, ok = parser.ParseLine(`data: {"choices":[],"error":null}`)
	require.True(t, ok)
	assert.True(t, event.Payload.HasError())

	event, ok = parser.ParseLine(`data: {"choices":[]}`)
	require.True(t, ok)
	assert.False(t, event.Payload.HasError())
}

func TestLineParser_DoneRequiresExactMarker(t *testing.T) {
	parser := &domain.LineParser{}

	// Anything other than the exact marker is treated as a payload.
	_, ok := parser.ParseLine("data: [DONE] ")
	assert.False(t, ok, "trailing space makes it an undecodable payload")
	assert.Equal(t, 1, parser.MalformedCount)
}
