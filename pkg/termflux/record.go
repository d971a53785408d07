package termflux

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// recordTerm pairs a List of keys with a List of values of the same
// length. Records are what Constructor application produces.
type recordTerm struct {
	keys   Handle
	values Handle
}

func (t *recordTerm) Kind() Kind { return KindRecord }

func (t *recordTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindRecord)
	hashChild(a, d, t.keys)
	hashChild(a, d, t.values)
}

func (t *recordTerm) equal(a *Arena, other Term) bool {
	o := other.(*recordTerm)
	return a.Equal(t.keys, o.keys) && a.Equal(t.values, o.values)
}

func (t *recordTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	keys, _ := a.listItems(t.keys)
	values, _ := a.listItems(t.values)
	sb.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		a.formatInto(key, sb, debug)
		sb.WriteString(": ")
		if i < len(values) {
			a.formatInto(values[i], sb, debug)
		}
	}
	sb.WriteByte('}')
}

func (t *recordTerm) jsonValue(a *Arena) (interface{}, bool) {
	keys, _ := a.listItems(t.keys)
	values, _ := a.listItems(t.values)
	if len(keys) != len(values) {
		return nil, false
	}
	out := make(map[string]interface{}, len(keys))
	for i, key := range keys {
		name, ok := a.StringValue(key)
		if !ok {
			return nil, false
		}
		v, ok := a.jsonValueOf(values[i])
		if !ok {
			return nil, false
		}
		out[name] = v
	}
	return out, true
}

func (t *recordTerm) substitute(a *Arena, sub substitution) Handle {
	keys := a.substituteTerm(t.keys, sub)
	values := a.substituteTerm(t.values, sub)
	if keys == NIL && values == NIL {
		return NIL
	}
	if keys == NIL {
		keys = t.keys
	}
	if values == NIL {
		values = t.values
	}
	return a.Record(keys, values)
}

func (t *recordTerm) iterate(a *Arena, self Handle) Handle {
	return a.IndexedAccessorIterator(t.values, NIL)
}

// Record pairs a key list with a value list. Callers keep the two the
// same length; RecordGet on a malformed record misses.
func (a *Arena) Record(keys, values Handle) Handle {
	return a.alloc(&recordTerm{keys: keys, values: values})
}

// RecordFields returns the key and value lists of a Record term.
func (a *Arena) RecordFields(h Handle) (keys, values Handle, ok bool) {
	t, isRecord := a.term(h).(*recordTerm)
	if !isRecord {
		return NIL, NIL, false
	}
	return t.keys, t.values, true
}

// RecordGet returns the value stored under a structurally equal key.
func (a *Arena) RecordGet(h, key Handle) (Handle, bool) {
	t, ok := a.term(h).(*recordTerm)
	if !ok {
		return NIL, false
	}
	keys, _ := a.listItems(t.keys)
	values, _ := a.listItems(t.values)
	for i, k := range keys {
		if i < len(values) && a.Equal(k, key) {
			return values[i], true
		}
	}
	return NIL, false
}

// constructorTerm is a callable that packages its arguments into a
// Record under a fixed key list.
type constructorTerm struct {
	keys Handle
}

func (t *constructorTerm) Kind() Kind { return KindConstructor }

func (t *constructorTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindConstructor)
	hashChild(a, d, t.keys)
}

func (t *constructorTerm) equal(a *Arena, other Term) bool {
	return a.Equal(t.keys, other.(*constructorTerm).keys)
}

func (t *constructorTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	sb.WriteString("Constructor(")
	a.formatInto(t.keys, sb, debug)
	sb.WriteByte(')')
}

func (t *constructorTerm) substitute(a *Arena, sub substitution) Handle {
	next := a.substituteTerm(t.keys, sub)
	if next == NIL {
		return NIL
	}
	return a.Constructor(next)
}

func (t *constructorTerm) funcArity(a *Arena) (int, bool) {
	n, _ := a.ListLen(t.keys)
	return n, false
}

func (t *constructorTerm) apply(s *session, self Handle, args Handle) (Handle, Handle) {
	a := s.a
	keys, _ := a.listItems(t.keys)
	items, ok := a.listItems(args)
	if !ok || len(items) != len(keys) {
		return a.Signal(a.InvalidFunctionArgsCondition(self, args)), NIL
	}
	return a.Record(t.keys, args), NIL
}

// Constructor returns a callable that builds Records with the given
// key list.
func (a *Arena) Constructor(keys Handle) Handle {
	return a.alloc(&constructorTerm{keys: keys})
}

// ConstructorKeys returns the key list of a Constructor term.
func (a *Arena) ConstructorKeys(h Handle) (Handle, bool) {
	t, ok := a.term(h).(*constructorTerm)
	if !ok {
		return NIL, false
	}
	return t.keys, true
}
