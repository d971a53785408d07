package termflux

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// effectTerm reads the value associated with its condition from the
// ambient state. Evaluating an effect always records the condition as
// a dependency, hit or miss; a miss yields a signal carrying the
// condition, which is how unresolved inputs propagate.
type effectTerm struct {
	condition Handle
}

func (t *effectTerm) Kind() Kind { return KindEffect }

func (t *effectTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindEffect)
	hashChild(a, d, t.condition)
}

func (t *effectTerm) equal(a *Arena, other Term) bool {
	return a.Equal(t.condition, other.(*effectTerm).condition)
}

func (t *effectTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	sb.WriteString("Effect(")
	a.formatInto(t.condition, sb, debug)
	sb.WriteByte(')')
}

func (t *effectTerm) substitute(a *Arena, sub substitution) Handle {
	next := a.substituteTerm(t.condition, sub)
	if next == NIL {
		return NIL
	}
	return a.Effect(next)
}

func (t *effectTerm) evaluate(s *session, self Handle) (Handle, Handle) {
	a := s.a
	value, hit := a.stateLookup(t.condition, s.state)
	if !hit {
		return a.Signal(t.condition), t.condition
	}
	return value, t.condition
}

// Effect returns a term that reads the state value for condition.
func (a *Arena) Effect(condition Handle) Handle {
	return a.alloc(&effectTerm{condition: condition})
}

// EffectCondition returns the condition of an Effect term.
func (a *Arena) EffectCondition(h Handle) (Handle, bool) {
	t, ok := a.term(h).(*effectTerm)
	if !ok {
		return NIL, false
	}
	return t.condition, true
}

// stateLookup resolves a condition against a state term. State is an
// abstract condition-to-value mapping supplied by the host: a Hashmap
// keyed by Condition terms, a Record, or NIL for the empty state.
// A NIL state misses every lookup.
func (a *Arena) stateLookup(condition, state Handle) (Handle, bool) {
	switch t := a.term(state).(type) {
	case nil:
		return NIL, false
	case *hashmapTerm:
		return t.lookup(a, condition)
	case *recordTerm:
		return a.RecordGet(state, condition)
	default:
		return NIL, false
	}
}

// StateLookup is the host-facing form of the effect lookup: it returns
// the resolved value (NIL on a miss) together with the dependency set
// recording the consulted condition.
func (a *Arena) StateLookup(condition, state Handle) (Handle, Handle) {
	value, _ := a.stateLookup(condition, state)
	return value, condition
}
