// Package background runs fire-and-forget work off the request path while
// keeping it supervised: failures are logged and tests can wait for drain.
package background

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	defaultConcurrency = 8
	defaultTaskTimeout = 10 * time.Second
)

type Writer struct {
	sem     chan struct{}
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewWriter(concurrency int, timeout time.Duration) *Writer {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if timeout <= 0 {
		timeout = defaultTaskTimeout
	}
	return &Writer{
		sem:     make(chan struct{}, concurrency),
		timeout: timeout,
	}
}

// Submit schedules fn on its own goroutine. The caller never waits on it and
// never sees its error; failures are logged under name.
func (w *Writer) Submit(name string, fn func(ctx context.Context) error) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.sem <- struct{}{}
		defer func() { <-w.sem }()

		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			log.Printf("background task %s failed: %v", name, err)
		}
	}()
}

// Wait blocks until every submitted task has finished.
func (w *Writer) Wait() {
	w.wg.Wait()
}
