package termflux

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

// CompiledFn is the host ABI for externally linked functions: the
// arguments arrive strictly evaluated and the function returns a
// (value, dependencies) pair like any other reducer step.
type CompiledFn func(a *Arena, args []Handle, state Handle) (value, deps Handle)

type compiledEntry struct {
	arity int
	fn    CompiledFn
}

// compiledRegistry is process-wide: Compiled terms only carry a target
// id, so the linkage outlives any single arena.
var (
	compiledMu       sync.RWMutex
	compiledRegistry = map[uint32]compiledEntry{}
)

// RegisterCompiled links a host function to a Compiled target id.
// Re-registering an id is an error; tests that need to relink use
// UnregisterCompiled first.
func RegisterCompiled(targetID uint32, arity int, fn CompiledFn) error {
	if fn == nil {
		return errors.New("termflux: nil compiled function")
	}
	compiledMu.Lock()
	defer compiledMu.Unlock()
	if _, exists := compiledRegistry[targetID]; exists {
		return errors.Errorf("termflux: compiled target %d already registered", targetID)
	}
	compiledRegistry[targetID] = compiledEntry{arity: arity, fn: fn}
	log.WithField("target", targetID).Debug("compiled function registered")
	return nil
}

// UnregisterCompiled removes a linked host function.
func UnregisterCompiled(targetID uint32) {
	compiledMu.Lock()
	defer compiledMu.Unlock()
	delete(compiledRegistry, targetID)
}

func lookupCompiled(targetID uint32) (compiledEntry, bool) {
	compiledMu.RLock()
	defer compiledMu.RUnlock()
	entry, ok := compiledRegistry[targetID]
	return entry, ok
}

// compiledTerm references an externally linked function by target id.
type compiledTerm struct {
	targetID uint32
	numArgs  int
}

func (t *compiledTerm) Kind() Kind { return KindCompiled }

func (t *compiledTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindCompiled)
	hashU32(d, t.targetID)
	hashU32(d, uint32(t.numArgs))
}

func (t *compiledTerm) equal(a *Arena, other Term) bool {
	o := other.(*compiledTerm)
	return t.targetID == o.targetID && t.numArgs == o.numArgs
}

func (t *compiledTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	fmt.Fprintf(sb, "Compiled(%d/%d)", t.targetID, t.numArgs)
}

func (t *compiledTerm) funcArity(a *Arena) (int, bool) { return t.numArgs, false }

// apply strictly evaluates the arguments, short-circuits over signals
// and calls through the registry. An unlinked target id is a
// non-callable.
func (t *compiledTerm) apply(s *session, self Handle, args Handle) (Handle, Handle) {
	a := s.a
	entry, linked := lookupCompiled(t.targetID)
	if !linked {
		return a.Signal(a.InvalidFunctionTargetCondition(self)), NIL
	}
	items, isList := a.listItems(args)
	if !isList || len(items) != t.numArgs || entry.arity != t.numArgs {
		return a.Signal(a.InvalidFunctionArgsCondition(self, args)), NIL
	}
	values, deps, combined := s.evaluateArgs(items)
	if combined != NIL {
		return combined, deps
	}
	value, d := entry.fn(a, values, s.state)
	return value, a.Union(deps, d)
}

// Compiled returns a reference to an externally linked function of
// the given arity.
func (a *Arena) Compiled(targetID uint32, numArgs int) Handle {
	return a.alloc(&compiledTerm{targetID: targetID, numArgs: numArgs})
}

// CompiledFields returns the target id and arity of a Compiled term.
func (a *Arena) CompiledFields(h Handle) (targetID uint32, numArgs int, ok bool) {
	t, isCompiled := a.term(h).(*compiledTerm)
	if !isCompiled {
		return 0, 0, false
	}
	return t.targetID, t.numArgs, true
}
