package executor

import (
	"sync"
	"testing"
	"time"
)

func TestStats_ConcurrentUpdatesLoseNothing(t *testing.T) {
	stats := NewStats()

	const workers = 16
	const perWorker = 200

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				stats.RecordSuccess("amadeus", time.Millisecond)
				stats.RecordFailure("skyscanner")
			}
		}()
	}
	wg.Wait()

	amadeus := stats.Get("amadeus")
	if amadeus.SuccessCount != workers*perWorker {
		t.Errorf("lost success increments: got %d, want %d", amadeus.SuccessCount, workers*perWorker)
	}
	if amadeus.TotalLatency != time.Duration(workers*perWorker)*time.Millisecond {
		t.Errorf("lost latency samples: got %v", amadeus.TotalLatency)
	}

	skyscanner := stats.Get("skyscanner")
	if skyscanner.FailureCount != workers*perWorker {
		t.Errorf("lost failure increments: got %d, want %d", skyscanner.FailureCount, workers*perWorker)
	}
}

func TestProviderStats_AverageLatency(t *testing.T) {
	stats := NewStats()
	stats.RecordSuccess("amadeus", 100*time.Millisecond)
	stats.RecordSuccess("amadeus", 300*time.Millisecond)

	if avg := stats.Get("amadeus").AverageLatency(); avg != 200*time.Millisecond {
		t.Errorf("expected 200ms average, got %v", avg)
	}
}

func TestProviderStats_AverageLatencyNoSuccesses(t *testing.T) {
	stats := NewStats()
	stats.RecordFailure("amadeus")

	if avg := stats.Get("amadeus").AverageLatency(); avg != 0 {
		t.Errorf("expected zero average with no successes, got %v", avg)
	}
}

func TestStats_SnapshotIsACopy(t *testing.T) {
	stats := NewStats()
	stats.RecordSuccess("amadeus", time.Second)

	snapshot := stats.Snapshot()
	snapshot["amadeus"] = ProviderStats{}

	if stats.Get("amadeus").SuccessCount != 1 {
		t.Error("mutating the snapshot changed the live stats")
	}
}
