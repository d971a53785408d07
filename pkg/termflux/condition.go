package termflux

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ConditionType discriminates the kinds of Condition terms. A
// Condition is a typed effect key: a value describing what is being
// requested or what went wrong, not itself an effect.
type ConditionType uint8

const (
	// CondCustom is a user-defined effect key with an effect type, a
	// payload and a token.
	CondCustom ConditionType = iota + 1
	// CondPending marks an effect whose value is not yet resolved.
	CondPending
	// CondError is a user-raised error with a payload.
	CondError
	// CondTypeError reports a strict argument of the wrong variant.
	CondTypeError
	// CondInvalidFunctionTarget reports application of a non-callable.
	CondInvalidFunctionTarget
	// CondInvalidFunctionArgs reports a wrong arity or unresolvable
	// overload.
	CondInvalidFunctionArgs
	// CondInvalidPointer reports a reference to a sentinel location.
	CondInvalidPointer
)

var conditionNames = map[ConditionType]string{
	CondCustom:                "Custom",
	CondPending:               "Pending",
	CondError:                 "Error",
	CondTypeError:             "TypeError",
	CondInvalidFunctionTarget: "InvalidFunctionTarget",
	CondInvalidFunctionArgs:   "InvalidFunctionArgs",
	CondInvalidPointer:        "InvalidPointer",
}

// String returns the condition kind name.
func (c ConditionType) String() string {
	if name, ok := conditionNames[c]; ok {
		return name
	}
	return "Unknown"
}

// conditionTerm is the tagged union of condition kinds. Unused fields
// stay at their zero values for kinds that do not carry them.
type conditionTerm struct {
	ctype ConditionType

	// Custom
	effectType Handle
	payload    Handle // also Error payload
	token      Handle

	// TypeError
	expected Kind
	received Handle

	// InvalidFunctionTarget / InvalidFunctionArgs
	target Handle
	args   Handle
}

func (t *conditionTerm) Kind() Kind { return KindCondition }

func (t *conditionTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindCondition)
	_, _ = d.Write([]byte{byte(t.ctype)})
	switch t.ctype {
	case CondCustom:
		hashChild(a, d, t.effectType)
		hashChild(a, d, t.payload)
		hashChild(a, d, t.token)
	case CondError:
		hashChild(a, d, t.payload)
	case CondTypeError:
		_, _ = d.Write([]byte{byte(t.expected)})
		hashChild(a, d, t.received)
	case CondInvalidFunctionTarget:
		hashChild(a, d, t.target)
	case CondInvalidFunctionArgs:
		hashChild(a, d, t.target)
		hashChild(a, d, t.args)
	}
}

func (t *conditionTerm) equal(a *Arena, other Term) bool {
	o := other.(*conditionTerm)
	if t.ctype != o.ctype {
		return false
	}
	switch t.ctype {
	case CondCustom:
		return a.Equal(t.effectType, o.effectType) &&
			a.Equal(t.payload, o.payload) &&
			a.Equal(t.token, o.token)
	case CondError:
		return a.Equal(t.payload, o.payload)
	case CondTypeError:
		return t.expected == o.expected && a.Equal(t.received, o.received)
	case CondInvalidFunctionTarget:
		return a.Equal(t.target, o.target)
	case CondInvalidFunctionArgs:
		return a.Equal(t.target, o.target) && a.Equal(t.args, o.args)
	default:
		// Pending and InvalidPointer carry no payload.
		return true
	}
}

func (t *conditionTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	switch t.ctype {
	case CondCustom:
		sb.WriteString("Custom(")
		a.formatInto(t.effectType, sb, debug)
		sb.WriteString(", ")
		a.formatInto(t.payload, sb, debug)
		sb.WriteString(", ")
		a.formatInto(t.token, sb, debug)
		sb.WriteByte(')')
	case CondError:
		sb.WriteString("Error(")
		a.formatInto(t.payload, sb, debug)
		sb.WriteByte(')')
	case CondTypeError:
		fmt.Fprintf(sb, "TypeError(expected=%s, received=", t.expected)
		a.formatInto(t.received, sb, debug)
		sb.WriteByte(')')
	case CondInvalidFunctionTarget:
		sb.WriteString("InvalidFunctionTarget(")
		a.formatInto(t.target, sb, debug)
		sb.WriteByte(')')
	case CondInvalidFunctionArgs:
		sb.WriteString("InvalidFunctionArgs(")
		a.formatInto(t.target, sb, debug)
		sb.WriteString(", ")
		a.formatInto(t.args, sb, debug)
		sb.WriteByte(')')
	default:
		sb.WriteString(t.ctype.String())
	}
}

func (t *conditionTerm) substitute(a *Arena, sub substitution) Handle {
	switch t.ctype {
	case CondCustom:
		effectType := a.substituteTerm(t.effectType, sub)
		payload := a.substituteTerm(t.payload, sub)
		token := a.substituteTerm(t.token, sub)
		if effectType == NIL && payload == NIL && token == NIL {
			return NIL
		}
		if effectType == NIL {
			effectType = t.effectType
		}
		if payload == NIL {
			payload = t.payload
		}
		if token == NIL {
			token = t.token
		}
		return a.CustomCondition(effectType, payload, token)
	case CondError:
		payload := a.substituteTerm(t.payload, sub)
		if payload == NIL {
			return NIL
		}
		return a.ErrorCondition(payload)
	default:
		return NIL
	}
}

// CustomCondition returns a user-defined effect key.
func (a *Arena) CustomCondition(effectType, payload, token Handle) Handle {
	return a.alloc(&conditionTerm{
		ctype:      CondCustom,
		effectType: effectType,
		payload:    payload,
		token:      token,
	})
}

// PendingCondition returns the interned pending placeholder.
func (a *Arena) PendingCondition() Handle { return a.pendingSingleton }

// InvalidPointerCondition returns the interned invalid-pointer
// condition.
func (a *Arena) InvalidPointerCondition() Handle { return a.invalidPointer }

// ErrorCondition returns a user-raised error condition.
func (a *Arena) ErrorCondition(payload Handle) Handle {
	return a.alloc(&conditionTerm{ctype: CondError, payload: payload})
}

// TypeErrorCondition reports that a strict argument had the wrong
// variant.
func (a *Arena) TypeErrorCondition(expected Kind, received Handle) Handle {
	return a.alloc(&conditionTerm{ctype: CondTypeError, expected: expected, received: received})
}

// InvalidFunctionTargetCondition reports application of a
// non-callable term.
func (a *Arena) InvalidFunctionTargetCondition(target Handle) Handle {
	return a.alloc(&conditionTerm{ctype: CondInvalidFunctionTarget, target: target})
}

// InvalidFunctionArgsCondition reports a wrong arity or an
// unresolvable overload.
func (a *Arena) InvalidFunctionArgsCondition(target, args Handle) Handle {
	return a.alloc(&conditionTerm{ctype: CondInvalidFunctionArgs, target: target, args: args})
}

// ConditionTypeOf returns the kind of a Condition term.
func (a *Arena) ConditionTypeOf(h Handle) (ConditionType, bool) {
	t, ok := a.term(h).(*conditionTerm)
	if !ok {
		return 0, false
	}
	return t.ctype, true
}

// CustomConditionFields returns the effect type, payload and token of
// a Custom condition.
func (a *Arena) CustomConditionFields(h Handle) (effectType, payload, token Handle, ok bool) {
	t, isCond := a.term(h).(*conditionTerm)
	if !isCond || t.ctype != CondCustom {
		return NIL, NIL, NIL, false
	}
	return t.effectType, t.payload, t.token, true
}

// ErrorConditionPayload returns the payload of an Error condition.
func (a *Arena) ErrorConditionPayload(h Handle) (Handle, bool) {
	t, ok := a.term(h).(*conditionTerm)
	if !ok || t.ctype != CondError {
		return NIL, false
	}
	return t.payload, true
}

// TypeErrorConditionFields returns the expected kind and received term
// of a TypeError condition.
func (a *Arena) TypeErrorConditionFields(h Handle) (expected Kind, received Handle, ok bool) {
	t, isCond := a.term(h).(*conditionTerm)
	if !isCond || t.ctype != CondTypeError {
		return 0, NIL, false
	}
	return t.expected, t.received, true
}
