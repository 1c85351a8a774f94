// Package executor bounds every provider call with a per-attempt timeout and
// a retry cap, recording the outcome of each attempt.
package executor

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/tobikareem/desola-flights/internal/metrics"
	"github.com/tobikareem/desola-flights/internal/models"
	"github.com/tobikareem/desola-flights/internal/providers"
)

const (
	// DefaultMaxRetries of 2 gives up to 3 attempts per provider call.
	DefaultMaxRetries = 2

	DefaultAttemptTimeout = 60 * time.Second
)

type Config struct {
	MaxRetries     int
	AttemptTimeout time.Duration
}

type Executor struct {
	cfg   Config
	stats *Stats
}

func New(cfg Config, stats *Stats) *Executor {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = DefaultAttemptTimeout
	}
	if stats == nil {
		stats = NewStats()
	}
	return &Executor{cfg: cfg, stats: stats}
}

func (e *Executor) Stats() *Stats {
	return e.stats
}

// Run performs the provider search with up to MaxRetries+1 attempts. Each
// attempt runs under its own timeout derived from ctx, so cancelling ctx
// aborts the in-flight attempt and prevents further ones. A nil return means
// the provider is unavailable for this request; the error is never surfaced
// past the stats and logs.
func (e *Executor) Run(ctx context.Context, p providers.Provider, query models.SearchQuery) *models.SearchResponse {
	name := p.Name()

	for attempt := 0; attempt <= e.cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil
		}

		attemptCtx, cancel := context.WithTimeout(ctx, e.cfg.AttemptTimeout)
		start := time.Now()
		resp, err := p.Search(attemptCtx, query)
		elapsed := time.Since(start)
		timedOut := attemptCtx.Err() != nil && ctx.Err() == nil
		cancel()

		if err == nil && resp != nil {
			e.stats.RecordSuccess(name, elapsed)
			metrics.ProviderAttemptsTotal.WithLabelValues(name, "success").Inc()
			metrics.ProviderSearchDuration.WithLabelValues(name).Observe(elapsed.Seconds())
			return resp
		}

		e.stats.RecordFailure(name)
		if err == nil {
			err = errors.New("provider returned no response")
		}
		if timedOut && errors.Is(err, context.DeadlineExceeded) {
			err = &providers.TimeoutError{Provider: name}
			metrics.ProviderAttemptsTotal.WithLabelValues(name, "timeout").Inc()
		} else {
			metrics.ProviderAttemptsTotal.WithLabelValues(name, "error").Inc()
		}
		log.Printf("provider %s attempt %d/%d failed: %v", name, attempt+1, e.cfg.MaxRetries+1, err)
	}

	return nil
}
