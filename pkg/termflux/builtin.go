package termflux

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// BuiltinID names a builtin function. Builtin terms are pure ids; the
// behavior lives in the process-wide registry below.
type BuiltinID uint32

// The builtin library.
const (
	BuiltinAdd BuiltinID = iota + 1
	BuiltinSubtract
	BuiltinMultiply
	BuiltinDivide
	BuiltinRemainder
	BuiltinPow
	BuiltinAbs
	BuiltinMin
	BuiltinMax
	BuiltinFloor
	BuiltinCeil
	BuiltinRound

	BuiltinEqual
	BuiltinLt
	BuiltinLte
	BuiltinGt
	BuiltinGte

	BuiltinNot
	BuiltinAnd
	BuiltinOr
	BuiltinIf

	BuiltinLength
	BuiltinGet
	BuiltinHas
	BuiltinKeys
	BuiltinValues
	BuiltinPush
	BuiltinConcat
	BuiltinSlice
	BuiltinMerge
	BuiltinIsEmpty
	BuiltinCar
	BuiltinCdr
	BuiltinCons

	BuiltinMap
	BuiltinFilter
	BuiltinReduce
	BuiltinTake
	BuiltinSkip
	BuiltinZip
	BuiltinFlatten
	BuiltinRange
	BuiltinRepeat
	BuiltinOnce
	BuiltinIntersperse
	BuiltinCollectList
	BuiltinCollectHashmap
	BuiltinCollectHashset
	BuiltinCollectString
	BuiltinCollectRecord

	BuiltinRaise
	BuiltinIfError
	BuiltinSequence
	BuiltinEffect
	BuiltinResolveDeep

	BuiltinApply
	BuiltinIdentity
	BuiltinHash
	BuiltinLog

	BuiltinStartsWith
	BuiltinEndsWith
	BuiltinSplit
	BuiltinReplace
)

// argMode controls how an argument position is handled before the
// builtin implementation runs.
type argMode uint8

const (
	// argStrict evaluates the argument and dispatches overloads on its
	// runtime kind.
	argStrict argMode = iota
	// argEager evaluates the argument but does not participate in
	// overload dispatch.
	argEager
	// argLazy passes the argument through unevaluated.
	argLazy
)

// kindAny is the overload wildcard: matches every runtime kind.
const kindAny Kind = 0

// builtinImpl runs a builtin over its processed arguments: strict and
// eager positions arrive evaluated, lazy positions arrive as written.
type builtinImpl func(s *session, self Handle, args []Handle) (Handle, Handle)

type overload struct {
	kinds []Kind
	impl  builtinImpl
}

type builtinDef struct {
	name     string
	modes    []argMode
	variadic bool
	// variadicMode applies to arguments beyond len(modes).
	variadicMode argMode
	// acceptsSignals suppresses the strict short-circuit so the
	// implementation can inspect signal arguments (IfError).
	acceptsSignals bool
	overloads      []overload
	fallback       builtinImpl
}

func (d *builtinDef) arityOK(n int) bool {
	if d.variadic {
		return n >= len(d.modes)
	}
	return n == len(d.modes)
}

func (d *builtinDef) mode(i int) argMode {
	if i < len(d.modes) {
		return d.modes[i]
	}
	return d.variadicMode
}

var builtins = map[BuiltinID]*builtinDef{}

func registerBuiltin(id BuiltinID, def *builtinDef) {
	builtins[id] = def
}

// matches reports whether the runtime kinds of the strict arguments
// satisfy the overload's expectations; kindAny slots match anything.
func (o *overload) matches(strictKinds []Kind) bool {
	if len(o.kinds) != len(strictKinds) {
		return false
	}
	for i, want := range o.kinds {
		if want != kindAny && want != strictKinds[i] {
			return false
		}
	}
	return true
}

// builtinTerm is a reference to a registry entry.
type builtinTerm struct {
	id BuiltinID
}

func (t *builtinTerm) Kind() Kind { return KindBuiltin }

func (t *builtinTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindBuiltin)
	hashU32(d, uint32(t.id))
}

func (t *builtinTerm) equal(a *Arena, other Term) bool {
	return t.id == other.(*builtinTerm).id
}

func (t *builtinTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	if def, ok := builtins[t.id]; ok {
		sb.WriteString("Builtin(")
		sb.WriteString(def.name)
		sb.WriteByte(')')
		return
	}
	sb.WriteString("Builtin(?)")
}

func (t *builtinTerm) funcArity(a *Arena) (int, bool) {
	def, ok := builtins[t.id]
	if !ok {
		return 0, false
	}
	return len(def.modes), def.variadic
}

// apply evaluates the strict and eager positions left to right,
// short-circuits over signals by unioning every signal-valued
// argument, picks the overload matching the strict kinds and runs it.
func (t *builtinTerm) apply(s *session, self Handle, args Handle) (Handle, Handle) {
	a := s.a
	def, ok := builtins[t.id]
	if !ok {
		return a.Signal(a.InvalidFunctionTargetCondition(self)), NIL
	}
	items, isList := a.listItems(args)
	if !isList || !def.arityOK(len(items)) {
		return a.Signal(a.InvalidFunctionArgsCondition(self, args)), NIL
	}

	processed := make([]Handle, len(items))
	strictKinds := make([]Kind, 0, len(items))
	var deps, combined Handle
	for i, arg := range items {
		mode := def.mode(i)
		if mode == argLazy {
			processed[i] = arg
			continue
		}
		value, d := s.evaluate(arg)
		processed[i] = value
		deps = a.Union(deps, d)
		if a.IsSignal(value) {
			combined = a.SignalUnion(combined, value)
		}
		if mode == argStrict {
			strictKinds = append(strictKinds, a.KindOf(value))
		}
	}
	if combined != NIL && !def.acceptsSignals {
		return combined, deps
	}

	for i := range def.overloads {
		if def.overloads[i].matches(strictKinds) {
			value, d := def.overloads[i].impl(s, self, processed)
			return value, a.Union(deps, d)
		}
	}
	if def.fallback != nil {
		value, d := def.fallback(s, self, processed)
		return value, a.Union(deps, d)
	}
	return a.Signal(a.InvalidFunctionArgsCondition(self, args)), deps
}

// Builtin returns a reference to a registered builtin function.
func (a *Arena) Builtin(id BuiltinID) Handle {
	return a.alloc(&builtinTerm{id: id})
}

// BuiltinIDOf returns the id of a Builtin term.
func (a *Arena) BuiltinIDOf(h Handle) (BuiltinID, bool) {
	t, ok := a.term(h).(*builtinTerm)
	if !ok {
		return 0, false
	}
	return t.id, true
}

// BuiltinName returns the registry name of a builtin id.
func BuiltinName(id BuiltinID) string {
	if def, ok := builtins[id]; ok {
		return def.name
	}
	return "unknown"
}
