package termflux

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// variableTerm is a de Bruijn reference: stack offset 0 is the
// innermost binding of the surrounding substitution chain. Offsets
// 0..15 are interned.
type variableTerm struct {
	offset uint32
}

func (t *variableTerm) Kind() Kind { return KindVariable }

func (t *variableTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindVariable)
	hashU32(d, t.offset)
}

func (t *variableTerm) equal(a *Arena, other Term) bool {
	return t.offset == other.(*variableTerm).offset
}

func (t *variableTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	fmt.Fprintf(sb, "Variable(%d)", t.offset)
}

// substitute implements the variable end of the substitution contract.
// In shift mode the offset grows by the delta once it reaches the
// cutoff tracked in sub.scope. In instantiation mode variables inside
// the window are replaced (in reversed order, innermost binding last
// in the list) and variables beyond it move down past the consumed
// bindings; a replacement spliced under binders is shifted by the
// binder depth so its free variables keep pointing outward.
func (t *variableTerm) substitute(a *Arena, sub substitution) Handle {
	if sub.vars == NIL {
		if sub.delta == 0 || t.offset < sub.scope {
			return NIL
		}
		return a.Variable(t.offset + sub.delta)
	}
	items, ok := a.listItems(sub.vars)
	if !ok {
		return NIL
	}
	n := uint32(len(items))
	switch {
	case t.offset < sub.scope:
		return NIL
	case t.offset < sub.scope+n:
		replacement := items[n-1-(t.offset-sub.scope)]
		if sub.scope > 0 {
			if shifted := a.substituteTerm(replacement, substitution{delta: sub.scope}); shifted != NIL {
				return shifted
			}
		}
		return replacement
	default:
		return a.Variable(t.offset - n)
	}
}

// Variable returns a de Bruijn variable, interned for offsets 0..15.
func (a *Arena) Variable(offset uint32) Handle {
	if offset < smallVariableCount {
		return a.smallVariables[offset]
	}
	return a.alloc(&variableTerm{offset: offset})
}

// VariableOffset returns the stack offset of a Variable term.
func (a *Arena) VariableOffset(h Handle) (uint32, bool) {
	t, ok := a.term(h).(*variableTerm)
	if !ok {
		return 0, false
	}
	return t.offset, true
}

// lambdaTerm is an n-ary abstraction over a body that references its
// parameters through Variable offsets 0..numArgs-1.
type lambdaTerm struct {
	numArgs uint32
	body    Handle
}

func (t *lambdaTerm) Kind() Kind { return KindLambda }

func (t *lambdaTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindLambda)
	hashU32(d, t.numArgs)
	hashChild(a, d, t.body)
}

func (t *lambdaTerm) equal(a *Arena, other Term) bool {
	o := other.(*lambdaTerm)
	return t.numArgs == o.numArgs && a.Equal(t.body, o.body)
}

func (t *lambdaTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	fmt.Fprintf(sb, "Lambda(%d, ", t.numArgs)
	a.formatInto(t.body, sb, debug)
	sb.WriteByte(')')
}

// substitute passes through to the body with the scope offset widened
// by the parameters this lambda binds.
func (t *lambdaTerm) substitute(a *Arena, sub substitution) Handle {
	body := a.substituteTerm(t.body, sub.widen(t.numArgs))
	if body == NIL {
		return NIL
	}
	return a.Lambda(int(t.numArgs), body)
}

func (t *lambdaTerm) funcArity(a *Arena) (int, bool) { return int(t.numArgs), false }

// apply performs the β-step: the arguments substitute into the body at
// scope 0 and the substituted body is returned unevaluated; the caller
// decides when to force it.
func (t *lambdaTerm) apply(s *session, self Handle, args Handle) (Handle, Handle) {
	a := s.a
	items, ok := a.listItems(args)
	if !ok || uint32(len(items)) != t.numArgs {
		return a.Signal(a.InvalidFunctionArgsCondition(self, args)), NIL
	}
	if t.numArgs == 0 {
		return t.body, NIL
	}
	if body := a.substituteTerm(t.body, substitution{vars: args}); body != NIL {
		return body, NIL
	}
	return t.body, NIL
}

// Lambda returns an abstraction of numArgs parameters over body.
func (a *Arena) Lambda(numArgs int, body Handle) Handle {
	return a.alloc(&lambdaTerm{numArgs: uint32(numArgs), body: body})
}

// LambdaFields returns the parameter count and body of a Lambda term.
func (a *Arena) LambdaFields(h Handle) (numArgs int, body Handle, ok bool) {
	t, isLambda := a.term(h).(*lambdaTerm)
	if !isLambda {
		return 0, NIL, false
	}
	return int(t.numArgs), t.body, true
}

// partialTerm binds a prefix of arguments onto an underlying callable.
type partialTerm struct {
	target    Handle
	boundArgs Handle // List
}

func (t *partialTerm) Kind() Kind { return KindPartial }

func (t *partialTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindPartial)
	hashChild(a, d, t.target)
	hashChild(a, d, t.boundArgs)
}

func (t *partialTerm) equal(a *Arena, other Term) bool {
	o := other.(*partialTerm)
	return a.Equal(t.target, o.target) && a.Equal(t.boundArgs, o.boundArgs)
}

func (t *partialTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	sb.WriteString("Partial(")
	a.formatInto(t.target, sb, debug)
	sb.WriteString(", ")
	a.formatInto(t.boundArgs, sb, debug)
	sb.WriteByte(')')
}

func (t *partialTerm) substitute(a *Arena, sub substitution) Handle {
	target := a.substituteTerm(t.target, sub)
	boundArgs := a.substituteTerm(t.boundArgs, sub)
	if target == NIL && boundArgs == NIL {
		return NIL
	}
	if target == NIL {
		target = t.target
	}
	if boundArgs == NIL {
		boundArgs = t.boundArgs
	}
	return a.alloc(&partialTerm{target: target, boundArgs: boundArgs})
}

func (t *partialTerm) funcArity(a *Arena) (int, bool) {
	bound, _ := a.ListLen(t.boundArgs)
	n, variadic, ok := a.Arity(t.target)
	if !ok {
		return 0, false
	}
	remaining := n - bound
	if remaining < 0 {
		remaining = 0
	}
	return remaining, variadic
}

// apply concatenates the bound prefix with the incoming arguments and
// forwards to the underlying target.
func (t *partialTerm) apply(s *session, self Handle, args Handle) (Handle, Handle) {
	a := s.a
	bound, _ := a.listItems(t.boundArgs)
	incoming, ok := a.listItems(args)
	if !ok {
		return a.Signal(a.InvalidFunctionArgsCondition(self, args)), NIL
	}
	combined := make([]Handle, 0, len(bound)+len(incoming))
	combined = append(combined, bound...)
	combined = append(combined, incoming...)
	return s.applyTarget(t.target, a.List(combined...))
}

// Partial binds args as the leading arguments of target.
func (a *Arena) Partial(target Handle, args ...Handle) Handle {
	return a.alloc(&partialTerm{target: target, boundArgs: a.List(args...)})
}

// PartialFields returns the target and bound argument list of a
// Partial term.
func (a *Arena) PartialFields(h Handle) (target, boundArgs Handle, ok bool) {
	t, isPartial := a.term(h).(*partialTerm)
	if !isPartial {
		return NIL, NIL, false
	}
	return t.target, t.boundArgs, true
}

// letTerm introduces a single binding at stack offset 0 of its body.
type letTerm struct {
	initializer Handle
	body        Handle
}

func (t *letTerm) Kind() Kind { return KindLet }

func (t *letTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindLet)
	hashChild(a, d, t.initializer)
	hashChild(a, d, t.body)
}

func (t *letTerm) equal(a *Arena, other Term) bool {
	o := other.(*letTerm)
	return a.Equal(t.initializer, o.initializer) && a.Equal(t.body, o.body)
}

func (t *letTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	sb.WriteString("Let(")
	a.formatInto(t.initializer, sb, debug)
	sb.WriteString(", ")
	a.formatInto(t.body, sb, debug)
	sb.WriteByte(')')
}

func (t *letTerm) substitute(a *Arena, sub substitution) Handle {
	initializer := a.substituteTerm(t.initializer, sub)
	body := a.substituteTerm(t.body, sub.widen(1))
	if initializer == NIL && body == NIL {
		return NIL
	}
	if initializer == NIL {
		initializer = t.initializer
	}
	if body == NIL {
		body = t.body
	}
	return a.Let(initializer, body)
}

// evaluate substitutes the initializer into the body at scope 0 and
// evaluates the result.
func (t *letTerm) evaluate(s *session, self Handle) (Handle, Handle) {
	a := s.a
	body := t.body
	if bound := a.substituteTerm(t.body, substitution{vars: a.UnitList(t.initializer)}); bound != NIL {
		body = bound
	}
	return s.evaluate(body)
}

// Let binds initializer at stack offset 0 of body.
func (a *Arena) Let(initializer, body Handle) Handle {
	return a.alloc(&letTerm{initializer: initializer, body: body})
}

// LetFields returns the initializer and body of a Let term.
func (a *Arena) LetFields(h Handle) (initializer, body Handle, ok bool) {
	t, isLet := a.term(h).(*letTerm)
	if !isLet {
		return NIL, NIL, false
	}
	return t.initializer, t.body, true
}
