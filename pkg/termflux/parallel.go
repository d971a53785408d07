package termflux

import (
	"context"
	"sync"

	"github.com/gitrdm/termflux/internal/parallel"
)

// BatchTask builds an expression graph in a fresh arena and returns
// the root to evaluate together with the state snapshot to evaluate
// it against.
type BatchTask func(a *Arena) (root, state Handle)

// BatchResult is the outcome of one batch task: the session's arena
// (handles in Value and Deps resolve against it) and the reducer
// result. Err is non-nil only when the task could not be scheduled.
type BatchResult struct {
	Arena *Arena
	Value Handle
	Deps  Handle
	Err   error
}

// EvaluateAll runs independent evaluation sessions over a bounded
// worker pool, one fresh arena per task. Arenas are session-local and
// never shared between workers, so the sessions are fully isolated;
// only the scheduling is concurrent.
func EvaluateAll(ctx context.Context, workers int, tasks []BatchTask) []BatchResult {
	pool := parallel.NewWorkerPool(workers)
	defer pool.Shutdown()

	results := make([]BatchResult, len(tasks))
	var wg sync.WaitGroup
	for i, task := range tasks {
		i, task := i, task
		wg.Add(1)
		err := pool.Submit(ctx, func() {
			defer wg.Done()
			a := NewArena()
			root, state := task(a)
			value, deps := a.Evaluate(root, state)
			results[i] = BatchResult{Arena: a, Value: value, Deps: deps}
		})
		if err != nil {
			wg.Done()
			results[i] = BatchResult{Err: err}
		}
	}
	wg.Wait()
	return results
}
