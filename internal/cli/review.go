package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/loupedev/loupe/internal/config"
	"github.com/loupedev/loupe/internal/gitctx"
	"github.com/loupedev/loupe/internal/github"
	"github.com/loupedev/loupe/internal/logging"
	"github.com/loupedev/loupe/internal/review"
)

// Shared review flags
var (
	flagModels            string
	flagMaxRetries        int
	flagConcurrency       int
	flagOversizePolicy    string
	flagChunkTriggerFiles int
	flagChunkTriggerChars int
	flagMaxChunkChars     int
	flagMaxChunkFiles     int
	flagMaxCallChars      int
	flagNoRedact          bool
	flagPost              bool
	flagLogLevel          string
	flagLogFormat         string
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review a change set",
}

func init() {
	for _, cmd := range []*cobra.Command{reviewPRCmd, reviewUnstagedCmd, reviewStagedCmd, reviewRangeCmd} {
		addReviewFlags(cmd)
		reviewCmd.AddCommand(cmd)
	}
	reviewPRCmd.Flags().BoolVar(&flagPost, "post", true, "Post the review as a PR comment (false prints to stdout)")
}

func addReviewFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagModels, "models", "", "Fallback chain as provider:model pairs (comma-separated)")
	cmd.Flags().IntVar(&flagMaxRetries, "max-retries", 0, "Attempts per model candidate for transient failures")
	cmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "Parallel chunk calls (1 = sequential)")
	cmd.Flags().StringVar(&flagOversizePolicy, "oversize-policy", "", "Oversized single-file handling (truncate, reject)")
	cmd.Flags().IntVar(&flagChunkTriggerFiles, "chunk-trigger-files", 0, "File count above which chunking engages")
	cmd.Flags().IntVar(&flagChunkTriggerChars, "chunk-trigger-chars", 0, "Diff size above which chunking engages")
	cmd.Flags().IntVar(&flagMaxChunkChars, "max-chunk-chars", 0, "Maximum characters per chunk")
	cmd.Flags().IntVar(&flagMaxChunkFiles, "max-chunk-files", 0, "Maximum files per chunk")
	cmd.Flags().IntVar(&flagMaxCallChars, "max-call-chars", 0, "Hard character ceiling for one model call")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
	cmd.Flags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&flagLogFormat, "log-format", "", "Log format (text, json)")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	setInt := func(key string, v int) {
		if v > 0 {
			m[key] = strconv.Itoa(v)
		}
	}
	if flagModels != "" {
		m["models"] = flagModels
	}
	setInt("maxRetries", flagMaxRetries)
	setInt("concurrency", flagConcurrency)
	setInt("chunkTriggerFiles", flagChunkTriggerFiles)
	setInt("chunkTriggerChars", flagChunkTriggerChars)
	setInt("maxChunkChars", flagMaxChunkChars)
	setInt("maxChunkFiles", flagMaxChunkFiles)
	setInt("maxCallChars", flagMaxCallChars)
	if flagOversizePolicy != "" {
		m["oversizePolicy"] = flagOversizePolicy
	}
	if flagLogLevel != "" {
		m["logLevel"] = flagLogLevel
	}
	if flagLogFormat != "" {
		m["logFormat"] = flagLogFormat
	}
	return m
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(buildOverrides())
	if err != nil {
		return config.Config{}, err
	}
	if flagNoRedact {
		cfg.RedactSecrets = false
		fmt.Fprintln(os.Stderr, "WARNING: secret redaction is disabled")
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}

// signalContext returns a context cancelled by SIGINT/SIGTERM so an
// interrupted run still produces its partial document.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

var reviewPRCmd = &cobra.Command{
	Use:   "pr [number]",
	Short: "Review a pull request and post one consolidated comment",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitCode = runPR(args)
	},
}

func runPR(args []string) int {
	cfg, err := loadConfig()
	if err != nil {
		return fail(err)
	}

	ctx, stop := signalContext()
	defer stop()

	prNumber, err := resolvePRNumber(args)
	if err != nil {
		return fail(err)
	}
	owner, repo, err := resolveRepo()
	if err != nil {
		return fail(err)
	}

	client, err := github.NewClient(ctx, os.Getenv("GITHUB_TOKEN"), owner, repo)
	if err != nil {
		return fail(err)
	}

	rawDiff, err := client.FetchDiff(ctx, prNumber)
	if err != nil {
		return fail(err)
	}

	outcome, err := review.NewEngine(cfg).Run(ctx, rawDiff)
	if err != nil {
		return fail(err)
	}

	if outcome.Status == review.StatusNothingToReview {
		fmt.Fprintln(os.Stderr, "nothing to review: PR diff is empty")
		return ExitSuccess
	}

	if flagPost {
		if err := client.PostComment(ctx, prNumber, outcome.Document); err != nil {
			return fail(err)
		}
		fmt.Fprintf(os.Stderr, "posted review to %s/%s#%d (%s, %d chunks)\n",
			owner, repo, prNumber, outcome.Status, outcome.Chunks)
	} else {
		fmt.Fprintln(os.Stdout, outcome.Document)
	}

	return statusExitCode(outcome.Status)
}

func resolvePRNumber(args []string) (int, error) {
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid PR number %q", args[0])
		}
		return n, nil
	}
	if ref := os.Getenv("GITHUB_REF"); ref != "" {
		return github.PRNumberFromRef(ref)
	}
	return 0, fmt.Errorf("no PR number given and GITHUB_REF is not set")
}

func resolveRepo() (owner, repo string, err error) {
	if full := os.Getenv("GITHUB_REPOSITORY"); full != "" {
		return github.SplitRepo(full)
	}
	return gitctx.DetectRepo()
}

var reviewUnstagedCmd = &cobra.Command{
	Use:   "unstaged",
	Short: "Review working tree changes",
	Run: func(cmd *cobra.Command, args []string) {
		exitCode = runLocal(gitctx.Unstaged)
	},
}

var reviewStagedCmd = &cobra.Command{
	Use:   "staged",
	Short: "Review staged changes",
	Run: func(cmd *cobra.Command, args []string) {
		exitCode = runLocal(gitctx.Staged)
	},
}

var reviewRangeCmd = &cobra.Command{
	Use:   "range <rev-range>",
	Short: "Review a revision range (e.g. origin/main..HEAD)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitCode = runLocal(func() (string, error) { return gitctx.Range(args[0]) })
	},
}

func runLocal(source func() (string, error)) int {
	cfg, err := loadConfig()
	if err != nil {
		return fail(err)
	}

	ctx, stop := signalContext()
	defer stop()

	rawDiff, err := source()
	if err != nil {
		return fail(err)
	}

	outcome, err := review.NewEngine(cfg).Run(ctx, rawDiff)
	if err != nil {
		return fail(err)
	}

	if outcome.Status == review.StatusNothingToReview {
		fmt.Fprintln(os.Stderr, "nothing to review")
		return ExitSuccess
	}

	fmt.Fprintln(os.Stdout, outcome.Document)
	return statusExitCode(outcome.Status)
}

func statusExitCode(status review.RunStatus) int {
	switch status {
	case review.StatusComplete, review.StatusNothingToReview:
		return ExitSuccess
	case review.StatusPartialFailure:
		return ExitPartial
	default:
		return ExitRuntimeError
	}
}

func fail(err error) int {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	return ExitRuntimeError
}
