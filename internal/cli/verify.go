package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/crosscheck/internal/cache"
	"github.com/ppiankov/crosscheck/internal/model"
	"github.com/ppiankov/crosscheck/internal/report"
	"github.com/ppiankov/crosscheck/internal/retrieve"
	"github.com/ppiankov/crosscheck/internal/store"
	"github.com/ppiankov/crosscheck/internal/verify"
	"github.com/ppiankov/crosscheck/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency    int
	archiveDir     string
	reportsDir     string
	checkpointPath string
	resume         bool
	forceFetch     bool
	resetReports   bool
	noCache        bool
	minDelay       time.Duration
	runTimeout     time.Duration
	httpTimeout    time.Duration
	userAgent      string
	judgeEnabled   bool
	judgeModel     string
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <records.json> [more.json...]",
	Short: "Retrieve cited sources and verify records against them",
	Long: `Verify processes every record in the input files:
- Retrieve each citation with the fallback chain (direct, stealth
  headers, web-archive snapshot, cache view, URL variations)
- Serialize requests per origin; run distinct origins concurrently
- Archive raw HTML and extracted text under the archive directory
- Score support with mechanical checks (name, location, date, keywords)
- Optionally consult the judge for advisory relevance and corrections
- Write a timestamped JSON + Markdown run report

Runs are resumable: completed record IDs are checkpointed after each
item.

Example:
  crosscheck verify records.json
  crosscheck verify records.json --concurrency 16 --archive-dir ./sources
  crosscheck verify records.json --resume --judge`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().IntVar(&concurrency, "concurrency", 8, "number of concurrent workers")
	verifyCmd.Flags().StringVar(&archiveDir, "archive-dir", "sources", "directory for archived source documents")
	verifyCmd.Flags().StringVar(&reportsDir, "reports-dir", "reports", "directory for run reports")
	verifyCmd.Flags().StringVar(&checkpointPath, "checkpoint", ".crosscheck-checkpoint.json", "checkpoint file for resumable runs")
	verifyCmd.Flags().BoolVar(&resume, "resume", false, "skip records already in the checkpoint file")
	verifyCmd.Flags().BoolVar(&forceFetch, "force-fetch", false, "refetch sources even when already archived")
	verifyCmd.Flags().BoolVar(&resetReports, "reset", false, "allow overwriting an existing report file")
	verifyCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the archive-index lookup cache")
	verifyCmd.Flags().DurationVar(&minDelay, "min-delay", time.Second, "minimum delay between requests to one origin")
	verifyCmd.Flags().DurationVar(&runTimeout, "timeout", 2*time.Hour, "total timeout for the batch")
	verifyCmd.Flags().DurationVar(&httpTimeout, "http-timeout", 30*time.Second, "timeout for individual HTTP requests")
	verifyCmd.Flags().StringVar(&userAgent, "ua", "", "override HTTP User-Agent")
	verifyCmd.Flags().BoolVar(&judgeEnabled, "judge", false, "enable advisory judge evaluation")
	verifyCmd.Flags().StringVar(&judgeModel, "judge-model", "gpt-4o-mini", "judge model name")
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	cfg := buildVerifyConfig()

	// Configuration problems fail fast; per-record problems never do.
	var judge verify.Judge
	if judgeEnabled {
		cfg.Judge.Enabled = true
		cfg.Judge.Model = judgeModel
		cfg.Judge.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.Judge.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
		j, err := verify.NewOpenAIJudge(cfg.Judge)
		if err != nil {
			return fmt.Errorf("initialize judge: %w", err)
		}
		judge = j
	}

	s, err := store.Load(args...)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	records := s.All()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Crosscheck Verification Run\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Records:      %d\n", len(records))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Archive:      %s\n", archiveDir)
	fmt.Fprintf(os.Stderr, "  Min delay:    %v per origin\n", minDelay)
	if judgeEnabled {
		fmt.Fprintf(os.Stderr, "  Judge:        %s\n", judgeModel)
	}
	fmt.Fprintf(os.Stderr, "\n")

	var lookups cache.Cache
	if cfg.Cache.Enabled {
		lookups = cache.NewLayered(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}

	client := retrieve.NewClient(cfg, lookups)
	archive := retrieve.NewArchive(cfg.Archive.Dir)
	engine := verify.NewEngine(cfg.Verify, judge)

	var cp *worker.Checkpoint
	if checkpointPath != "" {
		cp, err = worker.LoadCheckpoint(checkpointPath)
		if err != nil {
			return fmt.Errorf("load checkpoint: %w", err)
		}
		if !resume && cp.Count() > 0 {
			if err := cp.Reset(); err != nil {
				return fmt.Errorf("reset checkpoint: %w", err)
			}
		} else if resume && verbose {
			fmt.Fprintf(os.Stderr, "Resuming: %d records already processed\n", cp.Count())
		}
	}

	batch := &worker.Batch{
		Client:     client,
		Archive:    archive,
		Engine:     engine,
		Checkpoint: cp,
		Workers:    concurrency,
		ForceFetch: forceFetch,
		Verbose:    verbose,
	}

	results := batch.Run(ctx, records)

	for _, res := range results {
		marker := "✓"
		if res.Verdict == model.VerdictNoMatch || res.Verdict == model.VerdictInaccessible || res.Verdict == model.VerdictNoSources {
			marker = "✗"
		}
		fmt.Fprintf(os.Stderr, "%s %s: %s (%d/100)\n", marker, res.EntryID, res.Verdict, res.Score)
	}

	rep := report.Aggregate(results)
	renderer := report.NewRenderer(reportsDir, resetReports)
	jsonPath, mdPath, err := renderer.Write(rep)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Run Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Verified:        %d\n", rep.ByVerdict[model.VerdictVerified])
	fmt.Fprintf(os.Stderr, "  Likely valid:    %d\n", rep.ByVerdict[model.VerdictLikelyValid])
	fmt.Fprintf(os.Stderr, "  Weak match:      %d\n", rep.ByVerdict[model.VerdictWeakMatch])
	fmt.Fprintf(os.Stderr, "  No match:        %d\n", rep.ByVerdict[model.VerdictNoMatch])
	fmt.Fprintf(os.Stderr, "  No sources:      %d\n", rep.ByVerdict[model.VerdictNoSources])
	fmt.Fprintf(os.Stderr, "  Inaccessible:    %d\n", rep.ByVerdict[model.VerdictInaccessible])
	if rep.JudgeDegraded > 0 {
		fmt.Fprintf(os.Stderr, "  Judge degraded:  %d\n", rep.JudgeDegraded)
	}
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  JSON report:     %s\n", jsonPath)
	fmt.Fprintf(os.Stderr, "  Summary:         %s\n", mdPath)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

func buildVerifyConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.HTTP.Timeout = httpTimeout
	if userAgent != "" {
		cfg.HTTP.UserAgent = userAgent
	}
	cfg.Cache.Enabled = !noCache
	cfg.Archive.Dir = archiveDir
	cfg.Archive.ForceFetch = forceFetch
	cfg.Concurrency.Workers = concurrency
	cfg.RateLimiting.MinDelay = minDelay
	cfg.Output.Dir = reportsDir
	cfg.Output.Verbose = verbose
	cfg.Output.Reset = resetReports
	cfg.Checkpoint.Path = checkpointPath
	cfg.Checkpoint.Resume = resume
	return cfg
}
