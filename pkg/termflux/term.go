package termflux

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Handle identifies a term in an Arena. Handles are stable for the
// lifetime of the arena and cheap to copy and compare. The zero value
// NIL is the "absent" sentinel and never refers to an allocated term.
type Handle uint32

// NIL is the absent-term sentinel. It is a valid dependency set (the
// empty set), a valid state (the empty state) and a valid "no change"
// result from substitution.
const NIL Handle = 0

// Kind discriminates the term variants stored in an Arena.
type Kind uint8

// Term variant tags. The iterator variants occupy a contiguous range so
// that IsIterator is a single comparison.
const (
	KindNil Kind = iota + 1
	KindBoolean
	KindInt
	KindFloat
	KindString
	KindSymbol
	KindTimestamp
	KindDate
	KindList
	KindRecord
	KindTree
	KindHashmap
	KindHashset
	KindCondition
	KindSignal
	KindEffect
	KindBuiltin
	KindCompiled
	KindLambda
	KindPartial
	KindConstructor
	KindVariable
	KindLet
	KindApplication
	KindLazyResult

	KindEmptyIterator
	KindOnceIterator
	KindRangeIterator
	KindRepeatIterator
	KindIntegersIterator
	KindMapIterator
	KindFilterIterator
	KindFlattenIterator
	KindZipIterator
	KindSkipIterator
	KindTakeIterator
	KindIntersperseIterator
	KindEvaluateIterator
	KindIndexedAccessorIterator
	KindHashmapKeysIterator
	KindHashmapValuesIterator
)

var kindNames = map[Kind]string{
	KindNil:                     "Nil",
	KindBoolean:                 "Boolean",
	KindInt:                     "Int",
	KindFloat:                   "Float",
	KindString:                  "String",
	KindSymbol:                  "Symbol",
	KindTimestamp:               "Timestamp",
	KindDate:                    "Date",
	KindList:                    "List",
	KindRecord:                  "Record",
	KindTree:                    "Tree",
	KindHashmap:                 "Hashmap",
	KindHashset:                 "Hashset",
	KindCondition:               "Condition",
	KindSignal:                  "Signal",
	KindEffect:                  "Effect",
	KindBuiltin:                 "Builtin",
	KindCompiled:                "Compiled",
	KindLambda:                  "Lambda",
	KindPartial:                 "Partial",
	KindConstructor:             "Constructor",
	KindVariable:                "Variable",
	KindLet:                     "Let",
	KindApplication:             "Application",
	KindLazyResult:              "LazyResult",
	KindEmptyIterator:           "EmptyIterator",
	KindOnceIterator:            "OnceIterator",
	KindRangeIterator:           "RangeIterator",
	KindRepeatIterator:          "RepeatIterator",
	KindIntegersIterator:        "IntegersIterator",
	KindMapIterator:             "MapIterator",
	KindFilterIterator:          "FilterIterator",
	KindFlattenIterator:         "FlattenIterator",
	KindZipIterator:             "ZipIterator",
	KindSkipIterator:            "SkipIterator",
	KindTakeIterator:            "TakeIterator",
	KindIntersperseIterator:     "IntersperseIterator",
	KindEvaluateIterator:        "EvaluateIterator",
	KindIndexedAccessorIterator: "IndexedAccessorIterator",
	KindHashmapKeysIterator:     "HashmapKeysIterator",
	KindHashmapValuesIterator:   "HashmapValuesIterator",
}

// String returns the variant name for the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Term is the interface implemented by every variant record stored in
// an Arena. The required methods are the capabilities every variant
// carries: structural hashing, structural equality and formatting.
// Optional capabilities (evaluation, application, substitution,
// iteration, JSON conversion) are expressed as additional interfaces
// below; variants that do not implement them get the documented
// defaults from the dispatch helpers in evaluate.go and substitute.go.
type Term interface {
	// Kind returns the variant tag.
	Kind() Kind

	// writeHash feeds the structural identity of the term into the
	// digest. Child references contribute their cached structural hash
	// rather than being re-walked.
	writeHash(a *Arena, d *xxhash.Digest)

	// equal reports structural equality against another term of the
	// same kind. Callers guarantee other.Kind() == t.Kind().
	equal(a *Arena, other Term) bool

	// format writes the display (debug == false) or debug form.
	format(a *Arena, sb *strings.Builder, debug bool)
}

// evaluable is implemented by variants with non-trivial evaluation:
// Application, Effect, Let and LazyResult. Everything else evaluates to
// itself with no dependencies.
type evaluable interface {
	evaluate(s *session, self Handle) (Handle, Handle)
}

// applicable is implemented by callable variants: Lambda, Partial,
// Constructor, Builtin and Compiled. args is a List handle (or NIL for
// the empty argument list). Applying any other variant yields
// Signal(InvalidFunctionTarget).
type applicable interface {
	apply(s *session, self Handle, args Handle) (Handle, Handle)

	// funcArity returns the declared argument count and whether the
	// callable accepts additional arguments beyond it.
	funcArity(a *Arena) (int, bool)
}

// substitutable is implemented by variants that may contain Variable
// terms. substitute returns NIL when no change would be made, so
// structural sharing is preserved. See substitute.go for the two
// substitution modes.
type substitutable interface {
	substitute(a *Arena, sub substitution) Handle
}

// iterable is implemented by variants that can produce a lazy sequence:
// the iterator variants themselves plus List, Record, Tree, Hashmap,
// Hashset and String. iterate returns an iterator term handle.
type iterable interface {
	iterate(a *Arena, self Handle) Handle
}

// iteratorTerm is the protocol implemented by the iterator variants.
// st is an opaque per-traversal state handle, NIL on the first call.
// ok == false signals the end of the sequence.
type iteratorTerm interface {
	sizeHint(a *Arena) (int, bool)
	next(s *session, self Handle, st Handle) (item, nextState, deps Handle, ok bool)
}

// jsonable is implemented by variants with a JSON rendering. Variants
// without it make ToJSON fail.
type jsonable interface {
	jsonValue(a *Arena) (interface{}, bool)
}

// IsIterator reports whether the handle refers to an iterator variant.
func (a *Arena) IsIterator(h Handle) bool {
	k := a.KindOf(h)
	return k >= KindEmptyIterator && k <= KindHashmapValuesIterator
}

// IsAtomic reports whether the handle refers to a self-contained value
// that needs no further reduction and references no other terms.
func (a *Arena) IsAtomic(h Handle) bool {
	switch a.KindOf(h) {
	case KindNil, KindBoolean, KindInt, KindFloat, KindString, KindSymbol,
		KindTimestamp, KindDate, KindBuiltin, KindCompiled, KindVariable:
		return true
	default:
		return false
	}
}

// IsTruthy reports the boolean interpretation of a term: Nil and
// Boolean(false) are falsy, everything else is truthy.
func (a *Arena) IsTruthy(h Handle) bool {
	switch t := a.term(h).(type) {
	case nil:
		return false
	case *nilTerm:
		return false
	case *booleanTerm:
		return t.value
	default:
		return true
	}
}

// IsSignal reports whether the handle refers to a Signal term.
func (a *Arena) IsSignal(h Handle) bool {
	return a.KindOf(h) == KindSignal
}

// IsCondition reports whether the handle refers to a Condition term.
func (a *Arena) IsCondition(h Handle) bool {
	return a.KindOf(h) == KindCondition
}

// IsCallable reports whether applying the term can succeed: Lambda,
// Partial, Constructor, Builtin and Compiled targets.
func (a *Arena) IsCallable(h Handle) bool {
	_, ok := a.term(h).(applicable)
	return ok
}

// Arity returns the declared argument count of a callable term and
// whether it is variadic. ok is false for non-callable terms.
func (a *Arena) Arity(h Handle) (n int, variadic bool, ok bool) {
	fn, isFn := a.term(h).(applicable)
	if !isFn {
		return 0, false, false
	}
	n, variadic = fn.funcArity(a)
	return n, variadic, true
}
