package parallel

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPool(t *testing.T) {
	t.Run("runs submitted tasks", func(t *testing.T) {
		pool := NewWorkerPool(4)
		defer pool.Shutdown()

		var counter int64
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			err := pool.Submit(context.Background(), func() {
				defer wg.Done()
				atomic.AddInt64(&counter, 1)
			})
			if err != nil {
				t.Fatalf("Submit failed: %v", err)
			}
		}
		wg.Wait()

		if got := atomic.LoadInt64(&counter); got != 20 {
			t.Errorf("Expected 20 tasks to run, got %d", got)
		}
	})

	t.Run("defaults worker count to CPUs", func(t *testing.T) {
		pool := NewWorkerPool(0)
		defer pool.Shutdown()

		if pool.WorkerCount() <= 0 {
			t.Errorf("Expected positive worker count, got %d", pool.WorkerCount())
		}
	})

	t.Run("submit after shutdown fails", func(t *testing.T) {
		pool := NewWorkerPool(1)
		pool.Shutdown()

		err := pool.Submit(context.Background(), func() {})
		if err != ErrPoolShutdown {
			t.Errorf("Expected ErrPoolShutdown, got %v", err)
		}
	})

	t.Run("submit respects context cancellation", func(t *testing.T) {
		pool := NewWorkerPool(1)
		defer pool.Shutdown()

		// Saturate the single worker and its queue with blocked tasks
		// so the next submission cannot be enqueued.
		release := make(chan struct{})
		for i := 0; i < 3; i++ {
			_ = pool.Submit(context.Background(), func() { <-release })
		}

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err := pool.Submit(ctx, func() { <-release })
		close(release)
		if err != context.DeadlineExceeded {
			t.Errorf("Expected DeadlineExceeded, got %v", err)
		}
	})

	t.Run("recovers from panicking tasks", func(t *testing.T) {
		pool := NewWorkerPool(2)
		defer pool.Shutdown()

		_ = pool.Submit(context.Background(), func() {
			panic("task failure")
		})

		// The pool must still accept and run work after a panic.
		done := make(chan struct{})
		_ = pool.Submit(context.Background(), func() { close(done) })
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("pool stopped processing after a panicking task")
		}

		deadline := time.Now().Add(time.Second)
		for {
			if _, _, failed := pool.Stats(); failed == 1 {
				break
			}
			if time.Now().After(deadline) {
				t.Fatal("panicking task was never recorded as failed")
			}
			time.Sleep(time.Millisecond)
		}
	})

	t.Run("tracks submission stats", func(t *testing.T) {
		pool := NewWorkerPool(2)
		defer pool.Shutdown()

		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			wg.Add(1)
			_ = pool.Submit(context.Background(), func() { wg.Done() })
		}
		wg.Wait()

		submitted, _, _ := pool.Stats()
		if submitted != 5 {
			t.Errorf("Expected 5 submitted, got %d", submitted)
		}
	})
}
