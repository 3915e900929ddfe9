package ragclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"rag-streamprobe/internal/domain"
)

const maxLineSize = 1024 * 1024

// GenerateClient implements domain.AnswerStreamer via HTTP calls to the
// generate endpoint.
type GenerateClient struct {
	BaseURL string
	Client  *http.Client
	logger  *slog.Logger
}

// NewGenerateClient constructs a new GenerateClient. baseURL should be the
// server root (e.g. http://localhost:8081). If client is nil, a default
// http.Client is created with the given timeout.
func NewGenerateClient(baseURL string, timeout time.Duration, logger *slog.Logger, client ...*http.Client) *GenerateClient {
	var c *http.Client
	if len(client) > 0 && client[0] != nil {
		c = client[0]
	} else {
		c = &http.Client{Timeout: timeout}
	}
	return &GenerateClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  c,
		logger:  logger,
	}
}

// Generate posts the request and returns the streamed response body as
// lines. The caller owns closing the returned stream.
func (c *GenerateClient) Generate(ctx context.Context, req domain.GenerateRequest) (domain.LineStream, error) {
	jsonPayload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generate request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/generate", c.BaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonPayload))
	if err != nil {
		return nil, fmt.Errorf("failed to create generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call generate endpoint: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, fmt.Errorf("generate endpoint returned %d: %s", resp.StatusCode, truncateString(string(body), 500))
	}

	c.logger.Debug("generate_stream_opened",
		slog.String("url", url),
		slog.Bool("use_knowledge_base", req.UseKnowledgeBase))

	return newBodyLineStream(resp.Body), nil
}

var _ domain.AnswerStreamer = (*GenerateClient)(nil)

// bodyLineStream adapts a streamed response body into a line sequence.
type bodyLineStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

func newBodyLineStream(body io.ReadCloser) *bodyLineStream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &bodyLineStream{body: body, scanner: scanner}
}

func (s *bodyLineStream) Next() (string, bool) {
	if s.scanner.Scan() {
		return s.scanner.Text(), true
	}
	return "", false
}

func (s *bodyLineStream) Err() error {
	return s.scanner.Err()
}

func (s *bodyLineStream) Close() error {
	return s.body.Close()
}

func truncateString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
