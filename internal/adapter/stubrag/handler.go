package stubrag

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"rag-streamprobe/internal/domain"
)

// FaultHeader selects a failure mode for one request so the probe tool can
// be exercised against known-bad streams.
const FaultHeader = "X-Stub-Fault"

const (
	// FaultError embeds an error payload mid-stream.
	FaultError = "error"
	// FaultMalformed emits one undecodable data line before the answer.
	FaultMalformed = "malformed"
	// FaultNoDone drops the terminating done marker.
	FaultNoDone = "no-done"
	// FaultStall stops emitting after the first chunk until the client
	// gives up.
	FaultStall = "stall"
)

// Handler serves a local stand-in for the generate endpoint. Answers are
// canned and word-chunked into SSE frames.
type Handler struct {
	chunkDelay time.Duration
	logger     *slog.Logger
}

// NewHandler constructs a handler that pauses chunkDelay between frames.
func NewHandler(chunkDelay time.Duration, logger *slog.Logger) *Handler {
	return &Handler{chunkDelay: chunkDelay, logger: logger}
}

// RegisterRoutes attaches the stub endpoints to the echo instance.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.POST("/v1/generate", h.Generate)
	e.GET("/healthz", h.Healthz)
}

// Healthz reports liveness.
func (h *Handler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Generate streams a canned answer for the last user message as SSE frames.
func (h *Handler) Generate(c echo.Context) error {
	var req domain.GenerateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if len(req.Messages) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing messages"})
	}

	query := req.Messages[len(req.Messages)-1].Content
	fault := c.Request().Header.Get(FaultHeader)

	h.logger.Info("stub_generate",
		slog.String("query", query),
		slog.Bool("use_knowledge_base", req.UseKnowledgeBase),
		slog.String("fault", fault))

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.WriteHeader(http.StatusOK)

	ctx := c.Request().Context()

	if fault == FaultMalformed {
		if err := h.writeFrame(c, "data: {not json"); err != nil {
			return err
		}
	}

	words := strings.Fields(answerFor(query))
	for i, word := range words {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		content := word
		if i < len(words)-1 {
			content += " "
		}
		chunk := domain.ChatChunk{
			Choices: []domain.ChatChoice{{Index: 0, Delta: domain.ChatDelta{Content: content}}},
		}
		if fault == FaultError && i == len(words)/2 {
			chunk.Error = json.RawMessage(`{"message":"Error from rag-server: injected fault"}`)
		}

		payload, err := json.Marshal(chunk)
		if err != nil {
			return err
		}
		if err := h.writeFrame(c, fmt.Sprintf("data: %s", payload)); err != nil {
			return err
		}

		if fault == FaultStall && i == 0 {
			<-ctx.Done()
			return nil
		}

		if h.chunkDelay > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(h.chunkDelay):
			}
		}
	}

	if fault == FaultNoDone {
		return nil
	}
	return h.writeFrame(c, "data: [DONE]")
}

func (h *Handler) writeFrame(c echo.Context, frame string) error {
	if _, err := fmt.Fprintf(c.Response(), "%s\n\n", frame); err != nil {
		return err
	}
	c.Response().Flush()
	return nil
}

// answerFor picks a canned answer by keyword so the default suite cases get
// responses their expected keywords match.
func answerFor(query string) string {
	lower := strings.ToLower(query)
	switch {
	case strings.Contains(lower, "python"):
		return "Python is a programming language created by Guido van Rossum and first released in 1991."
	case strings.Contains(lower, "rag"):
		return "RAG stands for Retrieval Augmented Generation, which grounds model output in retrieved documents."
	case strings.Contains(lower, "france") || strings.Contains(lower, "capital"):
		return "Paris is the capital of France."
	case strings.Contains(lower, "docker"):
		return "Docker containers are isolated environments for packaging and running applications."
	default:
		return "I do not have a canned answer for that question, but the stream itself is healthy."
	}
}
