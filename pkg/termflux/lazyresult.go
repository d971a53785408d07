package termflux

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// lazyResultTerm is a precomputed (value, dependencies) pair. It lets
// a host splice an already-evaluated result back into a graph without
// losing the dependency information that produced it.
type lazyResultTerm struct {
	value Handle
	deps  Handle
}

func (t *lazyResultTerm) Kind() Kind { return KindLazyResult }

func (t *lazyResultTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindLazyResult)
	hashChild(a, d, t.value)
	hashChild(a, d, t.deps)
}

func (t *lazyResultTerm) equal(a *Arena, other Term) bool {
	o := other.(*lazyResultTerm)
	return a.Equal(t.value, o.value) && a.Equal(t.deps, o.deps)
}

func (t *lazyResultTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	sb.WriteString("LazyResult(")
	a.formatInto(t.value, sb, debug)
	sb.WriteByte(')')
}

func (t *lazyResultTerm) substitute(a *Arena, sub substitution) Handle {
	value := a.substituteTerm(t.value, sub)
	deps := a.substituteTerm(t.deps, sub)
	if value == NIL && deps == NIL {
		return NIL
	}
	if value == NIL {
		value = t.value
	}
	if deps == NIL {
		deps = t.deps
	}
	return a.LazyResult(value, deps)
}

func (t *lazyResultTerm) evaluate(s *session, self Handle) (Handle, Handle) {
	return t.value, t.deps
}

// LazyResult wraps a precomputed value and its dependency set.
// Evaluating the wrapper yields exactly that pair.
func (a *Arena) LazyResult(value, deps Handle) Handle {
	return a.alloc(&lazyResultTerm{value: value, deps: deps})
}

// LazyResultFields returns the value and dependency set of a
// LazyResult term.
func (a *Arena) LazyResultFields(h Handle) (value, deps Handle, ok bool) {
	t, isLazy := a.term(h).(*lazyResultTerm)
	if !isLazy {
		return NIL, NIL, false
	}
	return t.value, t.deps, true
}
