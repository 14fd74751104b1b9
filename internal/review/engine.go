package review

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/loupedev/loupe/internal/config"
	"github.com/loupedev/loupe/internal/diff"
	"github.com/loupedev/loupe/internal/logging"
	"github.com/loupedev/loupe/internal/redact"
)

// Engine orchestrates a review run: parse, plan, call per chunk, merge.
// All state is per-run; nothing persists across invocations.
type Engine struct {
	cfg    config.Config
	caller *Caller
	log    *slog.Logger
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithCaller replaces the model caller, mainly for tests.
func WithCaller(c *Caller) EngineOption {
	return func(e *Engine) { e.caller = c }
}

// NewEngine builds an Engine for cfg.
func NewEngine(cfg config.Config, opts ...EngineOption) *Engine {
	e := &Engine{
		cfg: cfg,
		log: logging.WithComponent("engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.caller == nil {
		e.caller = NewCaller(cfg)
	}
	return e
}

// Run reviews rawDiff and returns the merged document with a run-level
// status. Config and planning errors abort before any network call; a
// per-chunk failure only marks that chunk. On cancellation the completed
// results are kept and the partial document is still returned.
func (e *Engine) Run(ctx context.Context, rawDiff string) (*Outcome, error) {
	start := time.Now()

	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()

	if e.cfg.RedactSecrets {
		rawDiff = redact.Secrets(rawDiff)
	}

	segments := diff.Parse(rawDiff)
	if len(segments) == 0 {
		e.log.Info("nothing to review", "run", runID)
		return &Outcome{
			RunID:   runID,
			Status:  StatusNothingToReview,
			Elapsed: time.Since(start),
		}, nil
	}

	chunks, err := Plan(segments, e.cfg)
	if err != nil {
		return nil, fmt.Errorf("planning chunks: %w", err)
	}
	e.log.Info("review planned", "run", runID, "files", len(segments), "chunks", len(chunks))

	results := e.callAll(ctx, chunks)

	outcome := &Outcome{
		RunID:    runID,
		Status:   StatusOf(results, ctx.Err()),
		Document: Merge(results),
		Results:  results,
		Chunks:   len(chunks),
		Elapsed:  time.Since(start),
	}
	if ctx.Err() != nil {
		outcome.Reason = ctx.Err().Error()
	}
	e.log.Info("review finished", "run", runID, "status", string(outcome.Status),
		"elapsed", outcome.Elapsed)
	return outcome, nil
}

// callAll reviews every chunk under the configured concurrency bound.
// Results land at their chunk index regardless of completion order.
// Chunks whose turn comes after cancellation become failure placeholders
// without a network call.
func (e *Engine) callAll(ctx context.Context, chunks []Chunk) []Result {
	system := SystemPrompt()
	results := make([]Result, len(chunks))

	var wg sync.WaitGroup
	sem := make(chan struct{}, e.cfg.Concurrency)

	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk Chunk) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			files := chunk.Files()
			if ctx.Err() != nil {
				results[i] = Result{
					ChunkIndex: i,
					Files:      files,
					Status:     ResultFailed,
					Err:        fmt.Errorf("not reviewed: %w", ctx.Err()),
				}
				return
			}

			e.log.Debug("chunk dispatched", "chunk", i, "files", len(files), "chars", len(chunk.Text))
			body, attempts, err := e.caller.Call(ctx, i, system, UserPrompt(chunk, len(chunks)))
			if err != nil {
				results[i] = Result{
					ChunkIndex: i,
					Files:      files,
					Status:     ResultFailed,
					Attempts:   attempts,
					Err:        err,
				}
				return
			}
			results[i] = Result{
				ChunkIndex: i,
				Files:      files,
				Body:       body,
				Status:     ResultOk,
				Attempts:   attempts,
			}
		}(i, chunk)
	}

	wg.Wait()
	return results
}
