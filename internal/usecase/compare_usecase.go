package usecase

import (
	"context"
	"log/slog"
	"time"
)

// CompareVerdict summarises a knowledge-base versus direct A/B run.
type CompareVerdict string

const (
	CompareBothWorking       CompareVerdict = "both_working"
	CompareKnowledgeBaseOnly CompareVerdict = "knowledge_base_only"
	CompareDirectOnly        CompareVerdict = "direct_only"
	CompareBothBroken        CompareVerdict = "both_broken"
)

// CompareInput describes the A/B run: the same question is sent once with
// the knowledge base enabled and once as a direct generation call.
type CompareInput struct {
	Query                string
	Collections          []string
	KnowledgeBaseTimeout time.Duration
	DirectTimeout        time.Duration
}

// CompareReport carries both sides plus the combined verdict. The Err
// fields record transport-level failures that produced no result.
type CompareReport struct {
	KnowledgeBase    *ProbeResult
	Direct           *ProbeResult
	KnowledgeBaseErr string
	DirectErr        string
	Verdict          CompareVerdict
}

// CompareUsecase runs the same query through both generation paths.
type CompareUsecase interface {
	Execute(ctx context.Context, input CompareInput) (*CompareReport, error)
}

type compareUsecase struct {
	probe  ProbeUsecase
	logger *slog.Logger
}

// NewCompareUsecase wires a probe into the A/B runner.
func NewCompareUsecase(probe ProbeUsecase, logger *slog.Logger) CompareUsecase {
	return &compareUsecase{probe: probe, logger: logger}
}

func (u *compareUsecase) Execute(ctx context.Context, input CompareInput) (*CompareReport, error) {
	report := &CompareReport{}

	kbResult, err := u.probe.Execute(ctx, ProbeInput{
		Query:            input.Query,
		UseKnowledgeBase: true,
		Collections:      input.Collections,
		Timeout:          input.KnowledgeBaseTimeout,
	})
	if err != nil {
		report.KnowledgeBaseErr = err.Error()
	} else {
		report.KnowledgeBase = kbResult
	}

	directResult, err := u.probe.Execute(ctx, ProbeInput{
		Query:            input.Query,
		UseKnowledgeBase: false,
		Timeout:          input.DirectTimeout,
	})
	if err != nil {
		report.DirectErr = err.Error()
	} else {
		report.Direct = directResult
	}

	kbWorking := report.KnowledgeBase != nil && report.KnowledgeBase.Outcome == OutcomeSuccess
	directWorking := report.Direct != nil && report.Direct.Outcome == OutcomeSuccess

	switch {
	case kbWorking && directWorking:
		report.Verdict = CompareBothWorking
	case kbWorking:
		report.Verdict = CompareKnowledgeBaseOnly
	case directWorking:
		report.Verdict = CompareDirectOnly
	default:
		report.Verdict = CompareBothBroken
	}

	u.logger.Info("compare_completed",
		slog.Bool("knowledge_base_working", kbWorking),
		slog.Bool("direct_working", directWorking),
		slog.String("verdict", string(report.Verdict)))

	return report, nil
}
