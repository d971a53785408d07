// Package parallel provides a bounded worker pool for running
// independent evaluation sessions concurrently. Each submitted task is
// expected to own its resources (one arena per session); the pool only
// schedules, it never shares evaluation state between workers.
package parallel

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// ErrPoolShutdown is returned when submitting to a pool that has been
// shut down.
var ErrPoolShutdown = errors.New("parallel: worker pool has been shut down")

// WorkerPool runs tasks on a fixed set of goroutines with a bounded
// queue for backpressure. Submission blocks when the queue is full,
// which keeps a burst of sessions from exhausting memory.
type WorkerPool struct {
	workers      int
	taskChan     chan func()
	workerWg     sync.WaitGroup
	shutdownChan chan struct{}
	once         sync.Once

	submitted int64
	completed int64
	failed    int64
}

// NewWorkerPool creates a pool of the given size. A size of 0 or less
// defaults to the number of CPU cores.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	pool := &WorkerPool{
		workers:      workers,
		taskChan:     make(chan func(), workers*2),
		shutdownChan: make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		pool.workerWg.Add(1)
		go pool.worker()
	}
	return pool
}

func (wp *WorkerPool) worker() {
	defer wp.workerWg.Done()
	for {
		select {
		case task := <-wp.taskChan:
			if task != nil {
				wp.run(task)
			}
		case <-wp.shutdownChan:
			return
		}
	}
}

func (wp *WorkerPool) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			atomic.AddInt64(&wp.failed, 1)
			return
		}
		atomic.AddInt64(&wp.completed, 1)
	}()
	task()
}

// Submit queues a task for execution, blocking while the queue is
// full. It returns the context error on cancellation and
// ErrPoolShutdown after Shutdown.
func (wp *WorkerPool) Submit(ctx context.Context, task func()) error {
	atomic.AddInt64(&wp.submitted, 1)
	select {
	case <-wp.shutdownChan:
		return ErrPoolShutdown
	default:
	}
	select {
	case wp.taskChan <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-wp.shutdownChan:
		return ErrPoolShutdown
	}
}

// Shutdown stops the pool, waiting for in-flight tasks to complete.
// Safe to call multiple times.
func (wp *WorkerPool) Shutdown() {
	wp.once.Do(func() {
		close(wp.shutdownChan)
		wp.workerWg.Wait()
	})
}

// WorkerCount returns the fixed number of workers.
func (wp *WorkerPool) WorkerCount() int { return wp.workers }

// QueueDepth returns the number of queued, unstarted tasks.
func (wp *WorkerPool) QueueDepth() int { return len(wp.taskChan) }

// Stats returns the submitted/completed/failed task counters.
func (wp *WorkerPool) Stats() (submitted, completed, failed int64) {
	return atomic.LoadInt64(&wp.submitted),
		atomic.LoadInt64(&wp.completed),
		atomic.LoadInt64(&wp.failed)
}
