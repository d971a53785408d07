package termflux

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// signalTerm carries a set of conditions through evaluation. The set
// is a dependency-set-shaped value: a single Condition handle or a
// Tree of conditions. Signals propagate through strict argument
// positions; applying a signal to anything yields the signal itself.
type signalTerm struct {
	conditions Handle
}

func (t *signalTerm) Kind() Kind { return KindSignal }

func (t *signalTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindSignal)
	hashChild(a, d, t.conditions)
}

func (t *signalTerm) equal(a *Arena, other Term) bool {
	return a.Equal(t.conditions, other.(*signalTerm).conditions)
}

func (t *signalTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	sb.WriteString("Signal<")
	conditions := a.treeLeaves(t.conditions)
	for i, c := range conditions {
		if i > 0 {
			sb.WriteString(", ")
		}
		a.formatInto(c, sb, debug)
	}
	sb.WriteByte('>')
}

func (t *signalTerm) substitute(a *Arena, sub substitution) Handle {
	next := a.substituteTerm(t.conditions, sub)
	if next == NIL {
		return NIL
	}
	return a.signalFromSet(next)
}

// apply makes a signal absorb any application of itself: the result is
// the signal, whatever the arguments.
func (t *signalTerm) apply(s *session, self Handle, args Handle) (Handle, Handle) {
	return self, NIL
}

func (t *signalTerm) funcArity(a *Arena) (int, bool) { return 0, true }

// Signal wraps a single condition in a signal.
func (a *Arena) Signal(condition Handle) Handle {
	return a.alloc(&signalTerm{conditions: condition})
}

// signalFromSet wraps an existing condition set (a Condition leaf or a
// Tree of conditions) in a signal.
func (a *Arena) signalFromSet(conditions Handle) Handle {
	return a.alloc(&signalTerm{conditions: conditions})
}

// SignalConditionSet returns the raw condition set of a Signal term.
func (a *Arena) SignalConditionSet(h Handle) (Handle, bool) {
	t, ok := a.term(h).(*signalTerm)
	if !ok {
		return NIL, false
	}
	return t.conditions, true
}

// SignalConditions enumerates the distinct conditions of a Signal
// term.
func (a *Arena) SignalConditions(h Handle) ([]Handle, bool) {
	t, ok := a.term(h).(*signalTerm)
	if !ok {
		return nil, false
	}
	return a.StateDependencies(t.conditions), true
}

// SignalUnion combines two signal terms into one carrying the tree
// union of their condition sets. Either operand may be NIL, in which
// case the other is returned. Duplicate conditions are tolerated.
func (a *Arena) SignalUnion(x, y Handle) Handle {
	if x == NIL {
		return y
	}
	if y == NIL {
		return x
	}
	if x == y {
		return x
	}
	sx, okx := a.term(x).(*signalTerm)
	sy, oky := a.term(y).(*signalTerm)
	if !okx || !oky {
		if okx {
			return x
		}
		return y
	}
	return a.signalFromSet(a.Union(sx.conditions, sy.conditions))
}
