// Package termflux provides a lazy functional expression runtime with
// dependency tracking for incremental re-evaluation.
//
// The runtime is built around a session-scoped term heap (an Arena) that
// holds an immutable graph of tagged terms: atoms, collections, lambdas,
// applications, effects and lazy iterators. A host program builds an
// expression graph through the Arena constructor API, then evaluates it
// against a keyed state snapshot:
//
//	a := termflux.NewArena()
//	add := a.Application(a.Builtin(termflux.BuiltinAdd), a.Pair(a.Int(3), a.Int(4)))
//	value, deps := a.Evaluate(add, termflux.NIL)
//	// value is Int(7), deps is NIL
//
// Evaluation is normal-order: function application substitutes arguments
// into the body and only forces what the result demands. Strict argument
// positions (builtin arithmetic, comparisons, collection operations)
// evaluate eagerly and short-circuit over Signal terms, so independent
// errors surface together rather than one at a time.
//
// State is an abstract mapping from Condition terms to values. An Effect
// term reads the value for its condition from the state and records the
// condition as a dependency. Every evaluation returns both a value and
// the dependency set of conditions that influenced it, which is what
// makes cheap incremental re-evaluation possible: when the host knows
// which conditions changed, it knows which results are stale.
//
// Each Application term carries a private memo cell keyed by two digests
// of the state: the hash of the whole state map (fast path) and the hash
// of just the state values its dependencies consumed (validated path).
// Repeated evaluation under unchanged inputs is therefore O(1) per
// application node.
//
// Errors never surface as Go errors or panics from the evaluation API.
// All evaluation failures are in-band Signal terms carrying typed
// Condition values (type errors, arity errors, raised errors, pending
// effects), and they propagate through strict positions by set union.
//
// An Arena is a single evaluation session: single-threaded, append-only,
// freed as a whole. Concurrent evaluations use independent arenas; see
// the internal/parallel package for fanning sessions out over a worker
// pool.
package termflux
