package di

import (
	"fmt"
	"log/slog"
	"time"

	"rag-streamprobe/internal/adapter/ragclient"
	"rag-streamprobe/internal/domain"
	"rag-streamprobe/internal/infra/config"
	"rag-streamprobe/internal/infra/httpclient"
	"rag-streamprobe/internal/usecase"
)

// ApplicationComponents holds all wired dependencies for the probe tool.
type ApplicationComponents struct {
	Streamer domain.AnswerStreamer

	ProbeUsecase   usecase.ProbeUsecase
	SuiteUsecase   usecase.SuiteUsecase
	CompareUsecase usecase.CompareUsecase
}

// NewApplicationComponents wires all dependencies from config.
func NewApplicationComponents(cfg *config.Config, log *slog.Logger) (*ApplicationComponents, error) {
	// The transport timeout covers the whole streamed read, so it must not
	// undercut the longest per-probe deadline.
	generateHTTP := httpclient.NewPooledClient(time.Duration(cfg.GenerateTimeout+5) * time.Second)
	streamer := ragclient.NewGenerateClient(cfg.RagBaseURL, time.Duration(cfg.GenerateTimeout)*time.Second, log, generateHTTP)

	consumer := usecase.NewStreamConsumer(log)
	classifier := usecase.NewOutcomeClassifier()

	probe := usecase.NewProbeUsecase(streamer, consumer, classifier, cfg.Temperature, cfg.MaxTokens, log)

	suite, err := usecase.NewSuiteUsecase(probe, time.Duration(cfg.SuiteInterval)*time.Second, cfg.SuiteCacheSize, log)
	if err != nil {
		return nil, fmt.Errorf("create suite usecase: %w", err)
	}

	compare := usecase.NewCompareUsecase(probe, log)

	return &ApplicationComponents{
		Streamer:       streamer,
		ProbeUsecase:   probe,
		SuiteUsecase:   suite,
		CompareUsecase: compare,
	}, nil
}
