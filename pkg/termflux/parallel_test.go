package termflux

import (
	"context"
	"testing"
)

// TestEvaluateAll fans independent sessions out over the worker pool:
// every task gets its own arena and the results line up with their
// tasks.
func TestEvaluateAll(t *testing.T) {
	tasks := make([]BatchTask, 8)
	for i := range tasks {
		n := int64(i)
		tasks[i] = func(a *Arena) (Handle, Handle) {
			root := a.Application(a.Builtin(BuiltinMultiply), a.Pair(a.Int(n), a.Int(n)))
			return root, NIL
		}
	}

	results := EvaluateAll(context.Background(), 4, tasks)
	if len(results) != len(tasks) {
		t.Fatalf("expected %d results, got %d", len(tasks), len(results))
	}
	for i, result := range results {
		if result.Err != nil {
			t.Fatalf("task %d failed to schedule: %v", i, result.Err)
		}
		if result.Arena == nil {
			t.Fatalf("task %d has no arena", i)
		}
		v, ok := result.Arena.IntValue(result.Value)
		if !ok || v != int64(i*i) {
			t.Errorf("task %d = %s, want %d", i, result.Arena.Format(result.Value), i*i)
		}
	}
}

// TestEvaluateAllIsolation checks that sessions do not leak state into
// one another: the same effect condition resolves differently per
// task because each task carries its own state snapshot.
func TestEvaluateAllIsolation(t *testing.T) {
	tasks := make([]BatchTask, 4)
	for i := range tasks {
		n := int64(i)
		tasks[i] = func(a *Arena) (Handle, Handle) {
			condition := a.CustomCondition(a.Symbol(1), a.Nil(), a.Symbol(0))
			state := a.Hashmap([]KV{{Key: condition, Value: a.Int(n)}})
			return a.Effect(condition), state
		}
	}

	results := EvaluateAll(context.Background(), 2, tasks)
	for i, result := range results {
		v, ok := result.Arena.IntValue(result.Value)
		if !ok || v != int64(i) {
			t.Errorf("task %d resolved to %s, want %d", i, result.Arena.Format(result.Value), i)
		}
	}
}
