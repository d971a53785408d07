package termflux

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// appCache is the per-Application memo cell. It is the single
// interior-mutable slot in the term model: everything else in an arena
// is frozen after construction.
//
// Invariants:
//   - value == NIL means nothing is cached; the hash fields are then
//     meaningless.
//   - deps is the dependency set of the cached value.
//   - overallStateHash is the hash of the most recent state term for
//     which the cached value was known valid.
//   - minimalStateHash is the aggregate hash of the state values the
//     dependency set resolved to under that state.
type appCache struct {
	value            Handle
	deps             Handle
	overallStateHash uint64
	minimalStateHash uint64
}

func (c *appCache) reset() {
	*c = appCache{}
}

// applicationTerm applies a target to an argument list. The target and
// args never change; the cache cell does.
type applicationTerm struct {
	target Handle
	args   Handle // List
	cache  appCache
}

func (t *applicationTerm) Kind() Kind { return KindApplication }

// writeHash covers target and args only. The cache is observably
// mutable state and stays out of structural identity.
func (t *applicationTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindApplication)
	hashChild(a, d, t.target)
	hashChild(a, d, t.args)
}

func (t *applicationTerm) equal(a *Arena, other Term) bool {
	o := other.(*applicationTerm)
	return a.Equal(t.target, o.target) && a.Equal(t.args, o.args)
}

func (t *applicationTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	sb.WriteString("Apply(")
	a.formatInto(t.target, sb, debug)
	sb.WriteString(", ")
	a.formatInto(t.args, sb, debug)
	sb.WriteByte(')')
}

// substitute rebuilds the application with a fresh, empty cache cell:
// a substituted application is a different expression.
func (t *applicationTerm) substitute(a *Arena, sub substitution) Handle {
	target := a.substituteTerm(t.target, sub)
	args := a.substituteTerm(t.args, sub)
	if target == NIL && args == NIL {
		return NIL
	}
	if target == NIL {
		target = t.target
	}
	if args == NIL {
		args = t.args
	}
	return a.Application(target, args)
}

// evaluate consults the memo cell before doing any work.
//
// The fast path accepts when the whole state is unchanged. The
// validated path recomputes only the aggregate hash of the state
// values the previous result consumed; when that matches, the rest of
// the state changed but nothing this application read, so the cached
// result is still correct and the cell is retargeted at the new state.
// Any other outcome discards the cell monotonically — state moves
// forward, stale values are not coming back.
func (t *applicationTerm) evaluate(s *session, self Handle) (Handle, Handle) {
	a := s.a
	if t.cache.value != NIL {
		overall := s.overallStateHash()
		if overall == t.cache.overallStateHash {
			return t.cache.value, t.cache.deps
		}
		if a.stateValueHash(t.cache.deps, s.state) == t.cache.minimalStateHash {
			t.cache.overallStateHash = overall
			return t.cache.value, t.cache.deps
		}
		log.WithField("application", uint32(self)).Trace("application cache invalidated")
		t.cache.reset()
	}

	target, d1 := s.evaluate(t.target)
	intermediate, d2 := s.applyTarget(target, t.args)
	value, d3 := s.evaluate(intermediate)
	deps := a.Union(a.Union(d1, d2), d3)

	t.cache = appCache{
		value:            value,
		deps:             deps,
		overallStateHash: s.overallStateHash(),
		minimalStateHash: a.stateValueHash(deps, s.state),
	}
	return value, deps
}

// Application applies target to an argument List (or NIL for no
// arguments). Each Application term carries its own memo cell.
func (a *Arena) Application(target, args Handle) Handle {
	return a.alloc(&applicationTerm{target: target, args: args})
}

// ApplicationFields returns the target and argument list of an
// Application term.
func (a *Arena) ApplicationFields(h Handle) (target, args Handle, ok bool) {
	t, isApp := a.term(h).(*applicationTerm)
	if !isApp {
		return NIL, NIL, false
	}
	return t.target, t.args, true
}

// ApplicationCached reports whether the application currently holds a
// memoized result, and returns it when present.
func (a *Arena) ApplicationCached(h Handle) (value, deps Handle, ok bool) {
	t, isApp := a.term(h).(*applicationTerm)
	if !isApp || t.cache.value == NIL {
		return NIL, NIL, false
	}
	return t.cache.value, t.cache.deps, true
}
