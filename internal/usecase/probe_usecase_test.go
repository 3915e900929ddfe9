package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"rag-streamprobe/internal/domain"
	"rag-streamprobe/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStreamer hands out a prepared line stream and records the request
// it was called with.
type fakeStreamer struct {
	stream  *fakeLineStream
	err     error
	lastReq domain.GenerateRequest
	calls   int
}

func (s *fakeStreamer) Generate(_ context.Context, req domain.GenerateRequest) (domain.LineStream, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.stream, nil
}

func newProbe(streamer domain.AnswerStreamer) usecase.ProbeUsecase {
	return usecase.NewProbeUsecase(
		streamer,
		usecase.NewStreamConsumer(testLogger()),
		usecase.NewOutcomeClassifier(),
		0.2,
		200,
		testLogger(),
	)
}

func TestProbeUsecase_SuccessfulProbe(t *testing.T) {
	streamer := &fakeStreamer{stream: &fakeLineStream{lines: []string{
		`data: {"choices":[{"delta":{"content":"Paris is the capital"}}]}`,
		`data: {"choices":[{"delta":{"content":" of France."}}]}`,
		`data: [DONE]`,
	}}}
	probe := newProbe(streamer)

	result, err := probe.Execute(context.Background(), usecase.ProbeInput{
		Query:            "What is the capital of France?",
		ExpectedKeywords: []string{"Paris", "France"},
		UseKnowledgeBase: true,
		Collections:      []string{"multimodal_data"},
	})
	require.NoError(t, err)

	assert.Equal(t, usecase.OutcomeSuccess, result.Outcome)
	assert.Equal(t, "Paris is the capital of France.", result.Text)
	assert.Equal(t, 2, result.EventCount)
	assert.True(t, result.Terminated)
	assert.False(t, result.TimedOut)
	assert.NotEmpty(t, result.ProbeID)
	assert.True(t, streamer.stream.closed, "the body stream is always closed")
}

func TestProbeUsecase_BuildsRequestWithDefaults(t *testing.T) {
	streamer := &fakeStreamer{stream: &fakeLineStream{lines: []string{`data: [DONE]`}}}
	probe := newProbe(streamer)

	_, err := probe.Execute(context.Background(), usecase.ProbeInput{
		Query:            "What does RAG stand for?",
		UseKnowledgeBase: true,
		Collections:      []string{"multimodal_data"},
	})
	require.NoError(t, err)

	req := streamer.lastReq
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
	assert.Equal(t, "What does RAG stand for?", req.Messages[0].Content)
	assert.True(t, req.UseKnowledgeBase)
	assert.Equal(t, []string{"multimodal_data"}, req.CollectionNames)
	assert.False(t, req.Stream)
	assert.Equal(t, 0.2, req.Temperature, "default temperature applies")
	assert.Equal(t, 200, req.MaxTokens, "default max tokens applies")
}

func TestProbeUsecase_OverridesDefaults(t *testing.T) {
	streamer := &fakeStreamer{stream: &fakeLineStream{lines: []string{`data: [DONE]`}}}
	probe := newProbe(streamer)

	_, err := probe.Execute(context.Background(), usecase.ProbeInput{
		Query:       "anything",
		Temperature: 0.7,
		MaxTokens:   64,
	})
	require.NoError(t, err)

	assert.Equal(t, 0.7, streamer.lastReq.Temperature)
	assert.Equal(t, 64, streamer.lastReq.MaxTokens)
}

func TestProbeUsecase_EmptyQueryIsRejected(t *testing.T) {
	streamer := &fakeStreamer{}
	probe := newProbe(streamer)

	_, err := probe.Execute(context.Background(), usecase.ProbeInput{Query: "   "})
	require.Error(t, err)
	assert.Equal(t, 0, streamer.calls, "no request is sent")
}

func TestProbeUsecase_TransportErrorPropagates(t *testing.T) {
	streamer := &fakeStreamer{err: errors.New("connection refused")}
	probe := newProbe(streamer)

	result, err := probe.Execute(context.Background(), usecase.ProbeInput{Query: "anything"})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "call generate endpoint")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestProbeUsecase_TimeoutYieldsFailureResult(t *testing.T) {
	streamer := &fakeStreamer{stream: &fakeLineStream{
		lines: []string{
			`data: {"choices":[{"delta":{"content":"partial"}}]}`,
			`data: {"choices":[{"delta":{"content":" never seen"}}]}`,
		},
		delay: 30 * time.Millisecond,
	}}
	probe := newProbe(streamer)

	result, err := probe.Execute(context.Background(), usecase.ProbeInput{
		Query:   "anything",
		Timeout: 15 * time.Millisecond,
	})
	require.NoError(t, err, "a timeout is a verdict, not a transport failure")

	assert.True(t, result.TimedOut)
	assert.Equal(t, usecase.OutcomeFailure, result.Outcome)
	assert.Equal(t, "partial", result.Text, "partial text survives the timeout")
	assert.False(t, result.Terminated)
}
