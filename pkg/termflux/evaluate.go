package termflux

// The reducer. Evaluation is normal-order β-reduction by substitution:
// applying a Lambda substitutes the argument terms into the body
// unevaluated, and only the demanded parts of the result are forced.
// Strict positions (builtin arithmetic and friends) evaluate eagerly
// and short-circuit over Signal terms by unioning every signal-valued
// argument, so independent failures surface together.
//
// Every reducer entry point returns a (value, dependencies) pair. The
// dependency set names the state conditions the value consumed;
// callers union the sets as evaluation proceeds, callee first.

// session is one evaluation pass: an arena plus the state snapshot the
// pass reads through Effect terms. The overall state hash is computed
// once per session on demand.
type session struct {
	a              *Arena
	state          Handle
	stateHash      uint64
	stateHashKnown bool
}

func (s *session) overallStateHash() uint64 {
	if !s.stateHashKnown {
		s.stateHash = s.a.HashOf(s.state)
		s.stateHashKnown = true
	}
	return s.stateHash
}

// evaluate reduces a term to a value. Only Application, Effect, Let
// and LazyResult have non-trivial evaluation; everything else is
// already a value and evaluates to itself with no dependencies.
func (s *session) evaluate(h Handle) (Handle, Handle) {
	if h == NIL {
		return NIL, NIL
	}
	if t, ok := s.a.term(h).(evaluable); ok {
		return t.evaluate(s, h)
	}
	return h, NIL
}

// applyTarget dispatches application over the target's kind. Signals
// absorb the application; non-callables yield
// Signal(InvalidFunctionTarget).
func (s *session) applyTarget(target, args Handle) (Handle, Handle) {
	if fn, ok := s.a.term(target).(applicable); ok {
		return fn.apply(s, target, args)
	}
	return s.a.Signal(s.a.InvalidFunctionTargetCondition(target)), NIL
}

// evaluateArgs strictly evaluates an argument slice, accumulating
// dependencies in evaluation order (left to right). Signal results do
// not abort the walk: every argument is still evaluated so that
// independent failures are all discovered, and the union of every
// signal-valued argument is returned as the combined signal.
func (s *session) evaluateArgs(args []Handle) (values []Handle, deps Handle, combined Handle) {
	values = make([]Handle, len(args))
	for i, arg := range args {
		value, d := s.evaluate(arg)
		values[i] = value
		deps = s.a.Union(deps, d)
		if s.a.IsSignal(value) {
			combined = s.a.SignalUnion(combined, value)
		}
	}
	return values, deps, combined
}

// Evaluate reduces an expression against a state snapshot and returns
// the result value together with the set of state conditions it
// consumed. state is a Hashmap (or Record) keyed by Condition terms,
// or NIL for the empty state. Errors are in-band: inspect the result
// with IsSignal.
func (a *Arena) Evaluate(root, state Handle) (value, deps Handle) {
	s := &session{a: a, state: state}
	return s.evaluate(root)
}

// Apply applies a callable to an argument List against a state
// snapshot. The result of the application step is evaluated before it
// is returned, so the caller always receives a value (or a Signal).
func (a *Arena) Apply(target, args, state Handle) (value, deps Handle) {
	s := &session{a: a, state: state}
	intermediate, d1 := s.applyTarget(target, args)
	result, d2 := s.evaluate(intermediate)
	return result, a.Union(d1, d2)
}
