package termflux

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

// ErrOutOfMemory is recorded by an Arena when an allocation would
// exceed its configured term limit. The allocating constructor returns
// NIL; the host inspects Err to distinguish exhaustion from a
// deliberate NIL.
var ErrOutOfMemory = errors.New("termflux: arena out of memory")

// defaultStringCacheSize bounds the recently-seen-string interning
// cache. Interning is an optimization only; eviction never affects
// semantics because structural equality does not depend on handle
// identity for non-singleton terms.
const defaultStringCacheSize = 1024

// Arena is a session-scoped term heap. Terms are allocated append-only
// and stay live until the whole arena is released; there is no tracing
// collector. An Arena is not safe for concurrent use — one evaluation
// session owns one arena. Independent sessions use independent arenas.
type Arena struct {
	terms  []Term
	hashes []uint64
	limit  int
	err    error

	strings *lru.Cache

	// Interned singletons. Constructors return these handles whenever
	// the inputs match, which makes handle equality meaningful for the
	// common small values.
	nilSingleton     Handle
	trueSingleton    Handle
	falseSingleton   Handle
	smallInts        [smallIntMax - smallIntMin + 1]Handle
	smallVariables   [smallVariableCount]Handle
	emptyList        Handle
	emptyString      Handle
	emptyHashmap     Handle
	emptyHashset     Handle
	pendingSingleton Handle
	invalidPointer   Handle
	emptyIterator    Handle
	integersIterator Handle
}

const (
	smallIntMin        = -1
	smallIntMax        = 9
	smallVariableCount = 16
)

// ArenaOption configures a new Arena.
type ArenaOption func(*Arena)

// WithTermLimit caps the number of terms the arena will allocate.
// Constructors that would exceed the cap return NIL and the arena
// records ErrOutOfMemory. A limit of 0 (the default) means unbounded.
func WithTermLimit(limit int) ArenaOption {
	return func(a *Arena) { a.limit = limit }
}

// WithStringCacheSize sets the capacity of the string interning cache.
func WithStringCacheSize(size int) ArenaOption {
	return func(a *Arena) {
		if size > 0 {
			cache, err := lru.New(size)
			if err == nil {
				a.strings = cache
			}
		}
	}
}

// NewArena creates an empty arena and allocates the interned
// singletons: Nil, the booleans, Int -1..9, Variable 0..15, the empty
// collections and the Pending and InvalidPointer conditions.
func NewArena(opts ...ArenaOption) *Arena {
	a := &Arena{
		terms:  make([]Term, 1, 256), // index 0 is NIL
		hashes: make([]uint64, 1, 256),
	}
	cache, err := lru.New(defaultStringCacheSize)
	if err == nil {
		a.strings = cache
	}
	for _, opt := range opts {
		opt(a)
	}

	a.nilSingleton = a.alloc(&nilTerm{})
	a.trueSingleton = a.alloc(&booleanTerm{value: true})
	a.falseSingleton = a.alloc(&booleanTerm{value: false})
	for i := range a.smallInts {
		a.smallInts[i] = a.alloc(&intTerm{value: int64(i + smallIntMin)})
	}
	for i := range a.smallVariables {
		a.smallVariables[i] = a.alloc(&variableTerm{offset: uint32(i)})
	}
	a.emptyList = a.alloc(&listTerm{})
	a.emptyString = a.alloc(&stringTerm{})
	a.emptyHashmap = a.alloc(&hashmapTerm{})
	a.emptyHashset = a.alloc(&hashsetTerm{entries: a.emptyHashmap})
	a.pendingSingleton = a.alloc(&conditionTerm{ctype: CondPending})
	a.invalidPointer = a.alloc(&conditionTerm{ctype: CondInvalidPointer})
	a.emptyIterator = a.alloc(&emptyIteratorTerm{})
	a.integersIterator = a.alloc(&integersIteratorTerm{})

	log.WithField("limit", a.limit).Debug("arena created")
	return a
}

// alloc appends a term and returns its handle. When the configured
// term limit is exceeded it records ErrOutOfMemory and returns NIL.
func (a *Arena) alloc(t Term) Handle {
	if a.limit > 0 && len(a.terms) > a.limit {
		if a.err == nil {
			a.err = errors.Wrapf(ErrOutOfMemory, "allocating %s after %d terms", t.Kind(), len(a.terms)-1)
			log.WithField("terms", len(a.terms)-1).Warn("arena exhausted")
		}
		return NIL
	}
	a.terms = append(a.terms, t)
	a.hashes = append(a.hashes, 0)
	return Handle(len(a.terms) - 1)
}

// term resolves a handle to its record. NIL and out-of-range handles
// resolve to nil.
func (a *Arena) term(h Handle) Term {
	if h == NIL || int(h) >= len(a.terms) {
		return nil
	}
	return a.terms[h]
}

// Len returns the number of live terms in the arena, excluding the NIL
// sentinel slot.
func (a *Arena) Len() int {
	return len(a.terms) - 1
}

// Err returns the first allocation failure recorded by the arena, or
// nil. Once set, subsequent constructors keep returning NIL.
func (a *Arena) Err() error {
	return a.err
}

// KindOf returns the variant tag of a term, or 0 for NIL.
func (a *Arena) KindOf(h Handle) Kind {
	t := a.term(h)
	if t == nil {
		return 0
	}
	return t.Kind()
}
