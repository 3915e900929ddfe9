package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"rag-streamprobe/internal/di"
	"rag-streamprobe/internal/infra/config"
	"rag-streamprobe/internal/infra/logger"
	"rag-streamprobe/internal/usecase"
)

var (
	version = "dev"

	// Global flags
	verbose    bool
	serverURL  string
	collection string

	// Probe command flags
	probeQuery    string
	probeKeywords []string
	probeDirect   bool
	probeTimeout  int

	// Suite command flags
	suiteConcurrency int
	suiteDirect      bool

	// Compare command flags
	compareQuery string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "streamprobe",
	Short:   "Verify SSE streaming of a RAG generate endpoint",
	Version: version,
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Run a single streaming query and classify the outcome",
	Long: `Run one streaming query against the generate endpoint, aggregate the
SSE deltas, and print a three-way verdict (success / partial / failure).

Examples:
  # Probe with the default knowledge-base query
  streamprobe probe

  # Probe a specific question and require keywords in the answer
  streamprobe probe --query "What is the capital of France?" --keyword Paris --keyword France

  # Probe the direct generation path (knowledge base disabled)
  streamprobe probe --direct --timeout 30`,
	RunE: runProbe,
}

var suiteCmd = &cobra.Command{
	Use:   "suite",
	Short: "Run the knowledge-base keyword suite",
	RunE:  runSuite,
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare knowledge-base and direct generation on one query",
	RunE:  runCompare,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server base URL (overrides RAG_URL)")
	rootCmd.PersistentFlags().StringVar(&collection, "collection", "", "knowledge-base collection (overrides RAG_COLLECTION)")

	probeCmd.Flags().StringVar(&probeQuery, "query", "What is Python?", "query to send")
	probeCmd.Flags().StringArrayVar(&probeKeywords, "keyword", nil, "keyword the answer should contain (repeatable)")
	probeCmd.Flags().BoolVar(&probeDirect, "direct", false, "disable the knowledge base for this probe")
	probeCmd.Flags().IntVar(&probeTimeout, "timeout", 0, "deadline in seconds (0 uses the configured default)")

	suiteCmd.Flags().IntVar(&suiteConcurrency, "concurrency", 1, "number of concurrent probes")
	suiteCmd.Flags().BoolVar(&suiteDirect, "direct", false, "run the suite without the knowledge base")

	compareCmd.Flags().StringVar(&compareQuery, "query", "What is Python and when was it created?", "query to send on both paths")

	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(suiteCmd)
	rootCmd.AddCommand(compareCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

func setup() (*config.Config, *di.ApplicationComponents, error) {
	cfg := config.Load()
	if serverURL != "" {
		cfg.RagBaseURL = serverURL
	}
	if collection != "" {
		cfg.CollectionName = collection
	}

	components, err := di.NewApplicationComponents(cfg, newLogger())
	if err != nil {
		return nil, nil, err
	}
	return cfg, components, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

var runLogger = logger.NewContextLogger("streamprobe")

// annotate stamps the run context so every log line carries the target
// server and the run phase.
func annotate(ctx context.Context, cfg *config.Config, phase string) (context.Context, *slog.Logger) {
	ctx = logger.WithTarget(ctx, cfg.RagBaseURL)
	ctx = logger.WithRunPhase(ctx, phase)
	return ctx, runLogger.WithContext(ctx)
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, components, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	ctx = logger.WithQuery(ctx, probeQuery)
	ctx, runLog := annotate(ctx, cfg, "probe")
	runLog.Info("run_started", "use_knowledge_base", !probeDirect)

	timeout := cfg.GenerateTimeout
	if probeDirect {
		timeout = cfg.DirectTimeout
	}
	if probeTimeout > 0 {
		timeout = probeTimeout
	}

	input := usecase.ProbeInput{
		Query:            probeQuery,
		ExpectedKeywords: probeKeywords,
		UseKnowledgeBase: !probeDirect,
		Timeout:          time.Duration(timeout) * time.Second,
	}
	if !probeDirect {
		input.Collections = []string{cfg.CollectionName}
	}

	result, err := components.ProbeUsecase.Execute(ctx, input)
	if err != nil {
		return fmt.Errorf("probe: %w", err)
	}

	printProbeResult(result)

	if result.Outcome == usecase.OutcomeFailure {
		return errors.New("verdict: failure")
	}
	return nil
}

func runSuite(cmd *cobra.Command, args []string) error {
	cfg, components, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	ctx, runLog := annotate(ctx, cfg, "suite")
	runLog.Info("run_started", "use_knowledge_base", !suiteDirect, "concurrency", suiteConcurrency)

	timeout := cfg.GenerateTimeout
	if suiteDirect {
		timeout = cfg.DirectTimeout
	}

	opts := usecase.SuiteOptions{
		UseKnowledgeBase: !suiteDirect,
		Timeout:          time.Duration(timeout) * time.Second,
		Concurrency:      suiteConcurrency,
	}
	if !suiteDirect {
		opts.Collections = []string{cfg.CollectionName}
	}

	report, err := components.SuiteUsecase.Run(ctx, nil, opts)
	if err != nil {
		return fmt.Errorf("suite: %w", err)
	}

	fmt.Printf("Suite Results:\n")
	for i, r := range report.Results {
		if r.Err != "" {
			fmt.Printf("  %d. FAILED  %-50s (%s)\n", i+1, r.Case.Query, r.Err)
			continue
		}
		fmt.Printf("  %d. %-7s %-50s (%.2fs, %d events)\n",
			i+1, verdictLabel(r.Result.Outcome), r.Case.Query,
			r.Result.Elapsed.Seconds(), r.Result.EventCount)
	}
	fmt.Printf("\nPassed: %d/%d (%.1f%%)\n", report.Passed, len(report.Results), report.SuccessRate)

	if report.Passed < len(report.Results) {
		return errors.New("suite had failing cases")
	}
	return nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, components, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	ctx = logger.WithQuery(ctx, compareQuery)
	ctx, runLog := annotate(ctx, cfg, "compare")
	runLog.Info("run_started")

	report, err := components.CompareUsecase.Execute(ctx, usecase.CompareInput{
		Query:                compareQuery,
		Collections:          []string{cfg.CollectionName},
		KnowledgeBaseTimeout: time.Duration(cfg.GenerateTimeout) * time.Second,
		DirectTimeout:        time.Duration(cfg.DirectTimeout) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("compare: %w", err)
	}

	fmt.Printf("Compare Results:\n")
	printCompareSide("Knowledge Base", report.KnowledgeBase, report.KnowledgeBaseErr)
	printCompareSide("Direct", report.Direct, report.DirectErr)
	fmt.Printf("\nVerdict: %s\n", report.Verdict)

	if report.Verdict != usecase.CompareBothWorking {
		return fmt.Errorf("compare verdict: %s", report.Verdict)
	}
	return nil
}

func printProbeResult(result *usecase.ProbeResult) {
	fmt.Printf("Probe Result:\n")
	fmt.Printf("  Probe ID:    %s\n", result.ProbeID)
	fmt.Printf("  Verdict:     %s\n", verdictLabel(result.Outcome))
	fmt.Printf("  Elapsed:     %.2fs\n", result.Elapsed.Seconds())
	fmt.Printf("  Lines:       %d\n", result.LineCount)
	fmt.Printf("  Events:      %d\n", result.EventCount)
	fmt.Printf("  Malformed:   %d\n", result.MalformedCount)
	fmt.Printf("  Terminated:  %t\n", result.Terminated)
	fmt.Printf("  Timed out:   %t\n", result.TimedOut)
	if result.Text != "" {
		fmt.Printf("  Response:    %s\n", previewText(result.Text, 300))
	}
}

func printCompareSide(label string, result *usecase.ProbeResult, errMsg string) {
	if errMsg != "" {
		fmt.Printf("  %-15s FAILED (%s)\n", label+":", errMsg)
		return
	}
	fmt.Printf("  %-15s %s (%.2fs, %d chars)\n",
		label+":", verdictLabel(result.Outcome), result.Elapsed.Seconds(), len(result.Text))
}

func verdictLabel(outcome usecase.Outcome) string {
	switch outcome {
	case usecase.OutcomeSuccess:
		return "SUCCESS"
	case usecase.OutcomePartial:
		return "PARTIAL"
	default:
		return "FAILURE"
	}
}

func previewText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
