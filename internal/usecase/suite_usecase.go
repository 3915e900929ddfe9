package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// SuiteCase pairs a query with the keywords a valid answer should contain.
type SuiteCase struct {
	Query            string
	ExpectedKeywords []string
}

// SuiteCaseResult is the per-case outcome of a suite run. Err is set when
// the probe could not complete at the transport level.
type SuiteCaseResult struct {
	Case   SuiteCase
	Result *ProbeResult
	Err    string
}

// SuiteReport aggregates a full suite run.
type SuiteReport struct {
	Results     []SuiteCaseResult
	Passed      int
	SuccessRate float64
	Elapsed     time.Duration
}

// SuiteOptions carries the per-run parameters shared by every case.
type SuiteOptions struct {
	UseKnowledgeBase bool
	Collections      []string
	Timeout          time.Duration
	Concurrency      int
}

// DefaultSuiteCases are canned knowledge-base questions with answers the
// collection is expected to cover.
var DefaultSuiteCases = []SuiteCase{
	{Query: "What is Python and when was it created?", ExpectedKeywords: []string{"Python", "1991", "Guido van Rossum", "programming"}},
	{Query: "What does RAG stand for?", ExpectedKeywords: []string{"Retrieval", "Augmented", "Generation"}},
	{Query: "What is the capital of France?", ExpectedKeywords: []string{"Paris", "France"}},
	{Query: "Tell me about Docker containers", ExpectedKeywords: []string{"Docker", "containers", "isolated", "applications"}},
}

// SuiteUsecase runs a set of probe cases with pacing between queries and
// reports an aggregate verdict.
type SuiteUsecase interface {
	Run(ctx context.Context, cases []SuiteCase, opts SuiteOptions) (*SuiteReport, error)
}

type suiteUsecase struct {
	probe   ProbeUsecase
	limiter *rate.Limiter
	cache   *lru.Cache[string, *ProbeResult]
	logger  *slog.Logger
}

// NewSuiteUsecase builds a suite runner. interval is the pause enforced
// between query starts so the server is not hammered; cacheSize bounds the
// per-query result memoisation used when a case repeats within a run.
func NewSuiteUsecase(probe ProbeUsecase, interval time.Duration, cacheSize int, logger *slog.Logger) (SuiteUsecase, error) {
	if cacheSize <= 0 {
		cacheSize = 1
	}
	cache, err := lru.New[string, *ProbeResult](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create suite result cache: %w", err)
	}

	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}

	return &suiteUsecase{
		probe:   probe,
		limiter: rate.NewLimiter(limit, 1),
		cache:   cache,
		logger:  logger,
	}, nil
}

func (u *suiteUsecase) Run(ctx context.Context, cases []SuiteCase, opts SuiteOptions) (*SuiteReport, error) {
	if len(cases) == 0 {
		cases = DefaultSuiteCases
	}

	start := time.Now()
	results := make([]SuiteCaseResult, len(cases))

	u.logger.Info("suite_started",
		slog.Int("cases", len(cases)),
		slog.Bool("use_knowledge_base", opts.UseKnowledgeBase),
		slog.Int("concurrency", opts.Concurrency))

	if opts.Concurrency > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Concurrency)
		for i, c := range cases {
			i, c := i, c
			g.Go(func() error {
				results[i] = u.runCase(gctx, c, opts)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, c := range cases {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			results[i] = u.runCase(ctx, c, opts)
		}
	}

	report := &SuiteReport{
		Results: results,
		Elapsed: time.Since(start),
	}
	for _, r := range results {
		if r.Err == "" && r.Result != nil && r.Result.Outcome == OutcomeSuccess {
			report.Passed++
		}
	}
	report.SuccessRate = float64(report.Passed) / float64(len(results)) * 100

	u.logger.Info("suite_completed",
		slog.Int("passed", report.Passed),
		slog.Int("total", len(results)),
		slog.Float64("success_rate", report.SuccessRate),
		slog.Int64("elapsed_ms", report.Elapsed.Milliseconds()))

	return report, nil
}

func (u *suiteUsecase) runCase(ctx context.Context, c SuiteCase, opts SuiteOptions) SuiteCaseResult {
	if cached, ok := u.cache.Get(c.Query); ok {
		u.logger.Debug("suite_case_cached", slog.String("query", truncateString(c.Query, 100)))
		return SuiteCaseResult{Case: c, Result: cached}
	}

	if err := u.limiter.Wait(ctx); err != nil {
		return SuiteCaseResult{Case: c, Err: err.Error()}
	}

	result, err := u.probe.Execute(ctx, ProbeInput{
		Query:            c.Query,
		ExpectedKeywords: c.ExpectedKeywords,
		UseKnowledgeBase: opts.UseKnowledgeBase,
		Collections:      opts.Collections,
		Timeout:          opts.Timeout,
	})
	if err != nil {
		return SuiteCaseResult{Case: c, Err: err.Error()}
	}

	u.cache.Add(c.Query, result)
	return SuiteCaseResult{Case: c, Result: result}
}
