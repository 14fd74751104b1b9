package review

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/loupedev/loupe/internal/config"
	"github.com/loupedev/loupe/internal/logging"
	"github.com/loupedev/loupe/internal/providers"
)

// Caller drives one model request per chunk through the ordered fallback
// chain with retry and capped exponential backoff. One Caller is shared by
// all chunks of a run; it holds no per-chunk state.
type Caller struct {
	cfg config.Config
	log *slog.Logger

	// newClient and sleep are injectable for tests.
	newClient func(provider, model string) (providers.Client, error)
	sleep     func(ctx context.Context, d time.Duration) error
}

// CallerOption customizes a Caller.
type CallerOption func(*Caller)

// WithClientFactory replaces the provider client factory.
func WithClientFactory(fn func(provider, model string) (providers.Client, error)) CallerOption {
	return func(c *Caller) { c.newClient = fn }
}

// WithSleep replaces the backoff sleep, letting tests observe delays
// without waiting them out.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) CallerOption {
	return func(c *Caller) { c.sleep = fn }
}

// NewCaller builds a Caller for cfg.
func NewCaller(cfg config.Config, opts ...CallerOption) *Caller {
	c := &Caller{
		cfg:       cfg,
		log:       logging.WithComponent("caller"),
		newClient: providers.New,
		sleep:     sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call obtains review text for one chunk's prompt. Candidates are tried in
// chain order; retryable failures are retried against the same candidate
// up to MaxRetries attempts with backoff, fatal failures advance the chain
// immediately with zero delay. When the chain is exhausted the returned
// error is an *ExhaustedError; it never carries beyond the chunk.
func (c *Caller) Call(ctx context.Context, chunkIndex int, system, prompt string) (string, []CallAttempt, error) {
	var attempts []CallAttempt
	var lastErr error

	for _, cand := range c.cfg.Fallback {
		client, err := c.newClient(cand.Provider, cand.Model)
		if err != nil {
			// A candidate that cannot even be constructed (missing
			// key, unknown provider) is fatal for that candidate.
			attempts = append(attempts, CallAttempt{
				Attempt: 1, Candidate: cand, Outcome: OutcomeFatal, Err: err,
			})
			lastErr = err
			c.log.Warn("candidate unavailable", "chunk", chunkIndex, "candidate", cand.String(), "error", err)
			continue
		}

		body, candAttempts, err := c.tryCandidate(ctx, chunkIndex, cand, client, system, prompt)
		attempts = append(attempts, candAttempts...)
		if err == nil {
			return body, attempts, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}

	return "", attempts, &ExhaustedError{Candidates: len(c.cfg.Fallback), LastErr: lastErr}
}

// tryCandidate runs the per-candidate retry loop.
func (c *Caller) tryCandidate(ctx context.Context, chunkIndex int, cand config.ModelCandidate, client providers.Client, system, prompt string) (string, []CallAttempt, error) {
	var attempts []CallAttempt

	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		resp, err := client.Generate(ctx, providers.Request{
			System: system,
			Prompt: prompt,
		})
		if err == nil {
			attempts = append(attempts, CallAttempt{
				Attempt: attempt, Candidate: cand, Outcome: OutcomeSuccess,
			})
			c.log.Info("chunk reviewed", "chunk", chunkIndex, "candidate", cand.String(),
				"attempt", attempt, "tokens", resp.TokensUsed)
			return resp.Text, attempts, nil
		}

		if providers.Retryable(err) && attempt < c.cfg.MaxRetries {
			delay := c.backoff(attempt)
			attempts = append(attempts, CallAttempt{
				Attempt: attempt, Candidate: cand, Outcome: OutcomeRetryable, Delay: delay, Err: err,
			})
			c.log.Warn("retryable failure, backing off", "chunk", chunkIndex,
				"candidate", cand.String(), "attempt", attempt, "delay", delay, "error", err)
			if serr := c.sleep(ctx, delay); serr != nil {
				return "", attempts, serr
			}
			continue
		}

		// Fatal failure, or retry budget spent: advance the chain with
		// no further delay.
		outcome := OutcomeFatal
		if providers.Retryable(err) {
			outcome = OutcomeRetryable
		}
		attempts = append(attempts, CallAttempt{
			Attempt: attempt, Candidate: cand, Outcome: outcome, Err: err,
		})
		c.log.Warn("candidate failed, advancing chain", "chunk", chunkIndex,
			"candidate", cand.String(), "attempt", attempt, "error", err)
		return "", attempts, err
	}

	// Unreachable with MaxRetries >= 1; kept for safety.
	return "", attempts, &ExhaustedError{Candidates: 1}
}

// backoff computes the delay before retry attempt+1: base doubled per
// attempt plus jitter, capped at MaxBackoff. Delays are monotonic
// non-decreasing up to the cap because the jitter range (half the base) is
// smaller than each doubling step.
func (c *Caller) backoff(attempt int) time.Duration {
	base := c.cfg.BaseBackoff
	d := base << uint(attempt-1)
	if half := int64(base / 2); half > 0 {
		d += time.Duration(rand.Int63n(half))
	}
	if d > c.cfg.MaxBackoff {
		d = c.cfg.MaxBackoff
	}
	return d
}

// sleepCtx sleeps for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
