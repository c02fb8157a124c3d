package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryProvider retries transient failures with capped, jittered
// exponential backoff. Requests tagged with an interactive purpose such as
// PurposeTutor get one attempt. An invalid structured reply is asked for
// again once.
type RetryProvider struct {
	inner Provider
	cfg   RetryConfig
}

func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, cfg: cfg}
}

func (r *RetryProvider) ModelID() string { return r.inner.ModelID() }

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	attempts := r.cfg.attempts(PurposeFrom(ctx))
	reasked := false
	var err error
	for i := range attempts {
		if i > 0 {
			if werr := wait(ctx, r.cfg.delay(i-1, err)); werr != nil {
				return nil, werr
			}
		}
		var resp *Response
		if resp, err = r.inner.Generate(ctx, req); err == nil {
			return resp, nil
		}
		if !retryable(err, &reasked) {
			return nil, err
		}
	}
	return nil, err
}

func (c RetryConfig) attempts(p Purpose) int {
	if p.interactive() || c.MaxAttempts < 1 {
		return 1
	}
	return c.MaxAttempts
}

// delay is the pause after the given zero-based attempt failed with err.
func (c RetryConfig) delay(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	d := float64(c.InitialWait) * math.Pow(c.Multiplier, float64(attempt))
	if c.MaxWait > 0 {
		d = math.Min(d, float64(c.MaxWait))
	}
	// ±20% jitter
	return time.Duration(d * (0.8 + 0.4*rand.Float64()))
}

func retryable(err error, reasked *bool) bool {
	var (
		invalid  *ErrInvalidResponse
		cut      *ErrMaxTokensExceeded
		rejected *ErrRequestRejected
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.As(err, &cut), errors.As(err, &rejected):
		return false
	case errors.As(err, &invalid):
		if *reasked {
			return false
		}
		*reasked = true
		return true
	default:
		return true
	}
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
