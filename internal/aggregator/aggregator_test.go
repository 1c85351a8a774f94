package aggregator

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tobikareem/desola-flights/internal/cache"
	"github.com/tobikareem/desola-flights/internal/executor"
	"github.com/tobikareem/desola-flights/internal/models"
	"github.com/tobikareem/desola-flights/internal/providers"
)

type fakeProvider struct {
	name   string
	calls  atomic.Int32
	offers []models.Offer
	block  bool
	delay  time.Duration
}

func (p *fakeProvider) Name() string {
	return p.name
}

func (p *fakeProvider) Search(ctx context.Context, query models.SearchQuery) (*models.SearchResponse, error) {
	p.calls.Add(1)
	if p.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &models.SearchResponse{Currency: "USD", Total: len(p.offers), Offers: p.offers}, nil
}

func nonStopOffer(id, provider string, price float64, origin, destination string) models.Offer {
	return models.Offer{
		ID:       id,
		Provider: provider,
		Price:    models.Price{Amount: price, Currency: "USD"},
		Itineraries: []models.Itinerary{{
			Direction: models.DirectionOutbound,
			Segments: []models.Segment{{
				Departure:        models.SegmentPoint{Airport: origin},
				Arrival:          models.SegmentPoint{Airport: destination},
				MarketingAirline: models.Airline{Code: "DL"},
			}},
		}},
	}
}

func oneStopOffer(id, provider string, price float64, origin, via, destination string) models.Offer {
	offer := nonStopOffer(id, provider, price, origin, via)
	offer.Itineraries[0].Segments = append(offer.Itineraries[0].Segments, models.Segment{
		Departure:        models.SegmentPoint{Airport: via},
		Arrival:          models.SegmentPoint{Airport: destination},
		MarketingAirline: models.Airline{Code: "DL"},
	})
	offer.Itineraries[0].Stops = 1
	return offer
}

func newAggregator(t *testing.T, attemptTimeout time.Duration, maxRetries int, providerList ...providers.Provider) *Aggregator {
	t.Helper()
	registry := providers.NewRegistry()
	names := make([]string, 0, len(providerList))
	for _, p := range providerList {
		registry.Register(p)
		names = append(names, p.Name())
	}
	exec := executor.New(executor.Config{MaxRetries: maxRetries, AttemptTimeout: attemptTimeout}, executor.NewStats())
	return New(registry, exec, cache.NewLogoIndex(cache.DefaultLogoTTL), Config{Providers: names})
}

func futureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format("2006-01-02")
}

func TestHandle_ValidationGateSkipsProviders(t *testing.T) {
	p := &fakeProvider{name: "amadeus"}
	agg := newAggregator(t, time.Second, 0, p)

	query := models.SearchQuery{
		Origin:        "JFK",
		Destination:   "LAX",
		DepartureDate: futureDate(7),
		Adults:        0,
	}

	result, errs := agg.Handle(context.Background(), query)
	if len(errs) == 0 {
		t.Fatal("expected validation errors")
	}
	if got := p.calls.Load(); got != 0 {
		t.Errorf("expected 0 provider calls, got %d", got)
	}
	if result.Response.Total != 0 {
		t.Errorf("expected empty response, got %d offers", result.Response.Total)
	}
}

func TestHandle_CheapestOfferAcrossProviders(t *testing.T) {
	// Provider A: $200 non-stop JFK-LAX. Provider B: $180 one-stop on the
	// same route. Both group under "JFK-LAX|"; the $180 offer wins.
	a := &fakeProvider{name: "amadeus", offers: []models.Offer{nonStopOffer("a-1", "amadeus", 200, "JFK", "LAX")}}
	b := &fakeProvider{name: "skyscanner", offers: []models.Offer{oneStopOffer("b-1", "skyscanner", 180, "JFK", "DEN", "LAX")}}
	agg := newAggregator(t, time.Second, 0, a, b)

	query := models.SearchQuery{Origin: "JFK", Destination: "LAX", DepartureDate: futureDate(7), Adults: 1}

	result, errs := agg.Handle(context.Background(), query)
	if len(errs) != 0 {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
	if result.Response.Total != 1 {
		t.Fatalf("expected exactly 1 combined offer, got %d", result.Response.Total)
	}
	winner := result.Response.Offers[0]
	if winner.Price.Amount != 180 || winner.Provider != "skyscanner" {
		t.Errorf("expected the $180 skyscanner offer, got $%v from %s", winner.Price.Amount, winner.Provider)
	}
	if result.Outcome != OutcomeResults {
		t.Errorf("expected OutcomeResults, got %v", result.Outcome)
	}
}

func TestHandle_TieBreakIgnoresCompletionOrder(t *testing.T) {
	// Both providers return a $150 JFK-LAX offer but the first-configured
	// provider answers last. The combiner must still see the responses in
	// configured order, so amadeus wins the tie on every run.
	a := &fakeProvider{name: "amadeus", delay: 80 * time.Millisecond, offers: []models.Offer{nonStopOffer("a-1", "amadeus", 150, "JFK", "LAX")}}
	b := &fakeProvider{name: "skyscanner", offers: []models.Offer{nonStopOffer("b-1", "skyscanner", 150, "JFK", "LAX")}}
	agg := newAggregator(t, 5*time.Second, 0, a, b)

	query := models.SearchQuery{Origin: "JFK", Destination: "LAX", DepartureDate: futureDate(7), Adults: 1}

	result, errs := agg.Handle(context.Background(), query)
	if len(errs) != 0 {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
	if result.Response.Total != 1 {
		t.Fatalf("expected 1 combined offer, got %d", result.Response.Total)
	}
	if winner := result.Response.Offers[0]; winner.ID != "a-1" {
		t.Errorf("tie resolved by completion order: winner = %q, want a-1 from the first configured provider", winner.ID)
	}
}

func TestHandle_NilLogoIndexDefaults(t *testing.T) {
	p := &fakeProvider{name: "amadeus", offers: []models.Offer{nonStopOffer("a-1", "amadeus", 120, "JFK", "LAX")}}
	registry := providers.NewRegistry()
	registry.Register(p)
	exec := executor.New(executor.Config{MaxRetries: 0, AttemptTimeout: time.Second}, executor.NewStats())
	agg := New(registry, exec, nil, Config{Providers: []string{"amadeus"}})

	query := models.SearchQuery{Origin: "JFK", Destination: "LAX", DepartureDate: futureDate(7), Adults: 1}

	result, errs := agg.Handle(context.Background(), query)
	if len(errs) != 0 {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
	if result.Response.Total != 1 {
		t.Errorf("expected the offer to survive without a logo index, got %d offers", result.Response.Total)
	}
}

func TestHandle_PartialProviderFailure(t *testing.T) {
	// Provider A times out on every attempt; B's offers must still come
	// through, with the failure visible only in stats and metadata.
	a := &fakeProvider{name: "amadeus", block: true}
	b := &fakeProvider{name: "skyscanner", offers: []models.Offer{nonStopOffer("b-1", "skyscanner", 250, "JFK", "LAX")}}
	agg := newAggregator(t, 20*time.Millisecond, 1, a, b)

	query := models.SearchQuery{Origin: "JFK", Destination: "LAX", DepartureDate: futureDate(7), Adults: 1}

	result, errs := agg.Handle(context.Background(), query)
	if len(errs) != 0 {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
	if result.Response.Total != 1 || result.Response.Offers[0].Provider != "skyscanner" {
		t.Fatalf("expected only skyscanner offers, got %+v", result.Response.Offers)
	}
	if result.Outcome != OutcomePartialFailure {
		t.Errorf("expected OutcomePartialFailure, got %v", result.Outcome)
	}
	if result.ProvidersFailed != 1 || len(result.FailedProviders) != 1 || result.FailedProviders[0] != "amadeus" {
		t.Errorf("unexpected failure bookkeeping: %+v", result)
	}
	if got := a.calls.Load(); got != 2 {
		t.Errorf("expected the failing provider to be attempted twice, got %d", got)
	}
	if stats := agg.Stats()["amadeus"]; stats.FailureCount != 2 {
		t.Errorf("expected 2 recorded failures for amadeus, got %+v", stats)
	}
}

func TestHandle_AllProvidersFailed(t *testing.T) {
	a := &fakeProvider{name: "amadeus", block: true}
	b := &fakeProvider{name: "skyscanner", block: true}
	agg := newAggregator(t, 20*time.Millisecond, 0, a, b)

	query := models.SearchQuery{Origin: "JFK", Destination: "LAX", DepartureDate: futureDate(7), Adults: 1}

	result, errs := agg.Handle(context.Background(), query)
	if len(errs) != 0 {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
	if result.Response.Total != 0 {
		t.Errorf("expected an empty response, got %d offers", result.Response.Total)
	}
	if result.Outcome != OutcomeAllFailed {
		t.Errorf("expected OutcomeAllFailed, got %v", result.Outcome)
	}
}

func TestHandle_UnregisteredProviderIsSkipped(t *testing.T) {
	b := &fakeProvider{name: "skyscanner", offers: []models.Offer{nonStopOffer("b-1", "skyscanner", 99, "JFK", "LAX")}}

	registry := providers.NewRegistry()
	registry.Register(b)
	exec := executor.New(executor.Config{MaxRetries: 0, AttemptTimeout: time.Second}, executor.NewStats())
	agg := New(registry, exec, cache.NewLogoIndex(cache.DefaultLogoTTL), Config{
		Providers: []string{"ghost", "skyscanner"},
	})

	query := models.SearchQuery{Origin: "JFK", Destination: "LAX", DepartureDate: futureDate(7), Adults: 1}

	result, errs := agg.Handle(context.Background(), query)
	if len(errs) != 0 {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
	if result.Response.Total != 1 {
		t.Fatalf("expected skyscanner's offer to survive, got %d offers", result.Response.Total)
	}
	if result.Outcome != OutcomePartialFailure {
		t.Errorf("expected OutcomePartialFailure for the missing adapter, got %v", result.Outcome)
	}
	if len(result.FailedProviders) != 1 || result.FailedProviders[0] != "ghost" {
		t.Errorf("expected ghost in the failed list, got %v", result.FailedProviders)
	}
}

func TestHandle_AppliesQueryFilters(t *testing.T) {
	a := &fakeProvider{name: "amadeus", offers: []models.Offer{
		nonStopOffer("cheap", "amadeus", 100, "JFK", "LAX"),
		oneStopOffer("stopper", "amadeus", 80, "JFK", "DEN", "SFO"),
	}}
	agg := newAggregator(t, time.Second, 0, a)

	query := models.SearchQuery{
		Origin:        "JFK",
		Destination:   "LAX",
		DepartureDate: futureDate(7),
		Adults:        1,
		Filters:       &models.SearchFilters{NonStop: true},
	}

	result, errs := agg.Handle(context.Background(), query)
	if len(errs) != 0 {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
	if result.Response.Total != 1 || result.Response.Offers[0].ID != "cheap" {
		t.Fatalf("expected only the non-stop offer, got %+v", result.Response.Offers)
	}
}
