package executor

import (
	"sync"
	"time"
)

// ProviderStats are running counters for one provider. Averages are derived,
// not stored.
type ProviderStats struct {
	SuccessCount int           `json:"success_count"`
	FailureCount int           `json:"failure_count"`
	TotalLatency time.Duration `json:"total_latency"`
}

// AverageLatency is total successful-call latency over success count, zero
// when nothing has succeeded.
func (s ProviderStats) AverageLatency() time.Duration {
	if s.SuccessCount == 0 {
		return 0
	}
	return s.TotalLatency / time.Duration(s.SuccessCount)
}

// Stats is the per-provider performance map. It is written from every
// concurrent provider task, so all access goes through the mutex.
type Stats struct {
	mu         sync.Mutex
	byProvider map[string]ProviderStats
}

func NewStats() *Stats {
	return &Stats{byProvider: make(map[string]ProviderStats)}
}

func (s *Stats) RecordSuccess(provider string, elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.byProvider[provider]
	entry.SuccessCount++
	entry.TotalLatency += elapsed
	s.byProvider[provider] = entry
}

func (s *Stats) RecordFailure(provider string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.byProvider[provider]
	entry.FailureCount++
	s.byProvider[provider] = entry
}

func (s *Stats) Get(provider string) ProviderStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byProvider[provider]
}

func (s *Stats) Snapshot() map[string]ProviderStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make(map[string]ProviderStats, len(s.byProvider))
	for provider, entry := range s.byProvider {
		snapshot[provider] = entry
	}
	return snapshot
}
