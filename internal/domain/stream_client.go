package domain

import "context"

// LineStream is a finite, consume-once sequence of raw response lines, as
// produced by a streamed HTTP body. Next blocks on the underlying reader;
// the caller owns Close.
type LineStream interface {
	// Next returns the next line, or false when the stream is exhausted or
	// broken. Err distinguishes the two after Next returns false.
	Next() (string, bool)
	Err() error
	Close() error
}

// ChatMessage is one turn of the conversation sent to the generate endpoint.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateRequest is the JSON body posted to the generate endpoint.
type GenerateRequest struct {
	Messages         []ChatMessage `json:"messages"`
	UseKnowledgeBase bool          `json:"use_knowledge_base"`
	CollectionNames  []string      `json:"collection_names,omitempty"`
	Stream           bool          `json:"stream"`
	Temperature      float64       `json:"temperature"`
	MaxTokens        int           `json:"max_tokens"`
}

// AnswerStreamer opens a streaming generate call and hands back its response
// body as lines. Connection setup, headers, and transport timeouts belong to
// the implementation.
type AnswerStreamer interface {
	Generate(ctx context.Context, req GenerateRequest) (LineStream, error)
}
