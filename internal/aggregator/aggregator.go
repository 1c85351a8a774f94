// Package aggregator fans a validated search query out to every configured
// provider, joins the outcomes and combines the survivors into one response.
package aggregator

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/tobikareem/desola-flights/internal/cache"
	"github.com/tobikareem/desola-flights/internal/combiner"
	"github.com/tobikareem/desola-flights/internal/executor"
	"github.com/tobikareem/desola-flights/internal/filter"
	"github.com/tobikareem/desola-flights/internal/metrics"
	"github.com/tobikareem/desola-flights/internal/models"
	"github.com/tobikareem/desola-flights/internal/providers"
	"github.com/tobikareem/desola-flights/internal/ratelimit"
)

// Outcome separates "no matching flights" from "every provider was
// unavailable"; the response body shape is the same either way.
type Outcome int

const (
	OutcomeResults Outcome = iota
	OutcomePartialFailure
	OutcomeAllFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomePartialFailure:
		return "partial_provider_failure"
	case OutcomeAllFailed:
		return "all_providers_failed"
	default:
		return "results"
	}
}

type Config struct {
	// Providers is the fixed set of provider names queried per request.
	Providers   []string
	RateLimiter *ratelimit.ProviderLimiter
}

type Aggregator struct {
	registry *providers.Registry
	exec     *executor.Executor
	logos    *cache.LogoIndex
	cfg      Config
}

type Result struct {
	Response           *models.SearchResponse
	Outcome            Outcome
	ProvidersQueried   int
	ProvidersSucceeded int
	ProvidersFailed    int
	FailedProviders    []string
	Elapsed            time.Duration
}

func New(registry *providers.Registry, exec *executor.Executor, logos *cache.LogoIndex, cfg Config) *Aggregator {
	if len(cfg.Providers) == 0 {
		cfg.Providers = registry.Names()
	}
	if logos == nil {
		logos = cache.NewLogoIndex(cache.DefaultLogoTTL)
	}
	return &Aggregator{
		registry: registry,
		exec:     exec,
		logos:    logos,
		cfg:      cfg,
	}
}

// Handle validates the query, queries all providers concurrently and returns
// the combined response. On validation failure the field→messages map is
// non-empty, the response is empty and no provider is called.
func (a *Aggregator) Handle(ctx context.Context, query models.SearchQuery) (*Result, map[string][]string) {
	if errs := query.Validate(time.Now()); len(errs) > 0 {
		return &Result{Response: models.EmptySearchResponse()}, errs
	}

	start := time.Now()

	// Each provider writes into its own slot so the responses reach the
	// combiner in configured order, never in completion order. Ties between
	// equal-price offers then resolve the same way on every request.
	slots := make([]*models.SearchResponse, len(a.cfg.Providers))
	var wg sync.WaitGroup

	for i, name := range a.cfg.Providers {
		adapter, ok := a.registry.Get(name)
		if !ok {
			log.Printf("no adapter registered for provider %s, skipping", name)
			continue
		}

		wg.Add(1)
		go func(slot int, name string, p providers.Provider) {
			defer wg.Done()

			if a.cfg.RateLimiter != nil {
				if err := a.cfg.RateLimiter.Wait(ctx, name); err != nil {
					log.Printf("rate limiter rejected provider %s: %v", name, err)
					return
				}
			}

			slots[slot] = a.exec.Run(ctx, p, query)
		}(i, name, adapter)
	}

	wg.Wait()

	result := &Result{ProvidersQueried: len(a.cfg.Providers)}
	responses := make([]*models.SearchResponse, 0, len(a.cfg.Providers))
	for i, resp := range slots {
		if resp == nil {
			result.ProvidersFailed++
			result.FailedProviders = append(result.FailedProviders, a.cfg.Providers[i])
			continue
		}
		result.ProvidersSucceeded++
		responses = append(responses, resp)
	}

	combined := combiner.Combine(responses, a.logos.Snapshot())
	combined.Offers = filter.Apply(combined.Offers, query.Filters, query.SortBy, query.SortOrder)
	combined.Total = len(combined.Offers)

	result.Response = combined
	result.Outcome = classify(result)
	result.Elapsed = time.Since(start)
	metrics.SearchRequestsTotal.WithLabelValues(result.Outcome.String()).Inc()

	return result, nil
}

// Stats exposes the per-provider performance counters accumulated so far.
func (a *Aggregator) Stats() map[string]executor.ProviderStats {
	return a.exec.Stats().Snapshot()
}

func classify(r *Result) Outcome {
	switch {
	case r.ProvidersQueried > 0 && r.ProvidersSucceeded == 0:
		return OutcomeAllFailed
	case r.ProvidersFailed > 0:
		return OutcomePartialFailure
	default:
		return OutcomeResults
	}
}
