package executor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tobikareem/desola-flights/internal/models"
)

type stubProvider struct {
	name    string
	calls   atomic.Int32
	search  func(ctx context.Context, query models.SearchQuery) (*models.SearchResponse, error)
	failFor int32
}

func (p *stubProvider) Name() string {
	if p.name == "" {
		return "stub"
	}
	return p.name
}

func (p *stubProvider) Search(ctx context.Context, query models.SearchQuery) (*models.SearchResponse, error) {
	calls := p.calls.Add(1)
	if p.search != nil {
		return p.search(ctx, query)
	}
	if calls <= p.failFor {
		return nil, errors.New("boom")
	}
	return &models.SearchResponse{Currency: "USD"}, nil
}

func TestRun_SuccessRecordsLatency(t *testing.T) {
	exec := New(Config{MaxRetries: 2, AttemptTimeout: time.Second}, NewStats())
	p := &stubProvider{}

	resp := exec.Run(context.Background(), p, models.SearchQuery{})
	if resp == nil {
		t.Fatal("expected a response")
	}
	if got := p.calls.Load(); got != 1 {
		t.Errorf("expected 1 attempt, got %d", got)
	}

	stats := exec.Stats().Get("stub")
	if stats.SuccessCount != 1 || stats.FailureCount != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestRun_RetryBound(t *testing.T) {
	// A provider that always fails must be attempted exactly maxRetries+1
	// times.
	exec := New(Config{MaxRetries: 2, AttemptTimeout: time.Second}, NewStats())
	p := &stubProvider{search: func(ctx context.Context, query models.SearchQuery) (*models.SearchResponse, error) {
		return nil, errors.New("boom")
	}}

	resp := exec.Run(context.Background(), p, models.SearchQuery{})
	if resp != nil {
		t.Fatal("expected nil for an exhausted provider")
	}
	if got := p.calls.Load(); got != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", got)
	}

	stats := exec.Stats().Get("stub")
	if stats.FailureCount != 3 || stats.SuccessCount != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestRun_TimeoutCountsAsFailure(t *testing.T) {
	exec := New(Config{MaxRetries: 1, AttemptTimeout: 10 * time.Millisecond}, NewStats())
	p := &stubProvider{search: func(ctx context.Context, query models.SearchQuery) (*models.SearchResponse, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}

	resp := exec.Run(context.Background(), p, models.SearchQuery{})
	if resp != nil {
		t.Fatal("expected nil after timeouts")
	}
	if got := p.calls.Load(); got != 2 {
		t.Errorf("expected 2 attempts, got %d", got)
	}
	if stats := exec.Stats().Get("stub"); stats.FailureCount != 2 {
		t.Errorf("expected 2 recorded failures, got %+v", stats)
	}
}

func TestRun_RecoversAfterFailedAttempt(t *testing.T) {
	exec := New(Config{MaxRetries: 2, AttemptTimeout: time.Second}, NewStats())
	p := &stubProvider{failFor: 2}

	resp := exec.Run(context.Background(), p, models.SearchQuery{})
	if resp == nil {
		t.Fatal("expected the third attempt to succeed")
	}
	if got := p.calls.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}

	stats := exec.Stats().Get("stub")
	if stats.SuccessCount != 1 || stats.FailureCount != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestRun_OuterCancellationStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	exec := New(Config{MaxRetries: 5, AttemptTimeout: time.Second}, NewStats())
	p := &stubProvider{search: func(ctx context.Context, query models.SearchQuery) (*models.SearchResponse, error) {
		cancel()
		return nil, errors.New("boom")
	}}

	resp := exec.Run(ctx, p, models.SearchQuery{})
	if resp != nil {
		t.Fatal("expected nil after cancellation")
	}
	if got := p.calls.Load(); got != 1 {
		t.Errorf("expected no retries after outer cancel, got %d attempts", got)
	}
}
