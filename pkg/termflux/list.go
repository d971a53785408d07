package termflux

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// listTerm is an ordered sequence of term handles. The empty list is
// interned.
type listTerm struct {
	items []Handle
}

func (t *listTerm) Kind() Kind { return KindList }

func (t *listTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindList)
	hashU32(d, uint32(len(t.items)))
	for _, item := range t.items {
		hashChild(a, d, item)
	}
}

func (t *listTerm) equal(a *Arena, other Term) bool {
	o := other.(*listTerm)
	if len(t.items) != len(o.items) {
		return false
	}
	for i, item := range t.items {
		if !a.Equal(item, o.items[i]) {
			return false
		}
	}
	return true
}

func (t *listTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	sb.WriteByte('[')
	for i, item := range t.items {
		if i > 0 {
			sb.WriteString(", ")
		}
		a.formatInto(item, sb, debug)
	}
	sb.WriteByte(']')
}

func (t *listTerm) jsonValue(a *Arena) (interface{}, bool) {
	out := make([]interface{}, len(t.items))
	for i, item := range t.items {
		v, ok := a.jsonValueOf(item)
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func (t *listTerm) substitute(a *Arena, sub substitution) Handle {
	items, changed := a.substituteAll(t.items, sub)
	if !changed {
		return NIL
	}
	return a.List(items...)
}

func (t *listTerm) iterate(a *Arena, self Handle) Handle {
	return a.IndexedAccessorIterator(self, NIL)
}

// EmptyList returns the interned empty list.
func (a *Arena) EmptyList() Handle { return a.emptyList }

// UnitList returns a single-element list.
func (a *Arena) UnitList(x Handle) Handle {
	return a.alloc(&listTerm{items: []Handle{x}})
}

// Pair returns a two-element list.
func (a *Arena) Pair(x, y Handle) Handle {
	return a.alloc(&listTerm{items: []Handle{x, y}})
}

// Triple returns a three-element list.
func (a *Arena) Triple(x, y, z Handle) Handle {
	return a.alloc(&listTerm{items: []Handle{x, y, z}})
}

// List returns a list of the given items. An empty call returns the
// interned empty list.
func (a *Arena) List(items ...Handle) Handle {
	if len(items) == 0 {
		return a.emptyList
	}
	owned := make([]Handle, len(items))
	copy(owned, items)
	return a.alloc(&listTerm{items: owned})
}

// ListItems returns the backing items of a List term. The returned
// slice must not be mutated.
func (a *Arena) ListItems(h Handle) ([]Handle, bool) {
	t, ok := a.term(h).(*listTerm)
	if !ok {
		return nil, false
	}
	return t.items, true
}

// ListLen returns the length of a List term.
func (a *Arena) ListLen(h Handle) (int, bool) {
	t, ok := a.term(h).(*listTerm)
	if !ok {
		return 0, false
	}
	return len(t.items), true
}

// ListGet returns the item at index i of a List term.
func (a *Arena) ListGet(h Handle, i int) (Handle, bool) {
	t, ok := a.term(h).(*listTerm)
	if !ok || i < 0 || i >= len(t.items) {
		return NIL, false
	}
	return t.items[i], true
}

// listItems resolves args-style handles: a List handle yields its
// items, NIL yields the empty slice. Any other kind yields ok=false.
func (a *Arena) listItems(h Handle) ([]Handle, bool) {
	if h == NIL {
		return nil, true
	}
	t, ok := a.term(h).(*listTerm)
	if !ok {
		return nil, false
	}
	return t.items, true
}

// ListBuilder accumulates items for a list whose final length is not
// known up front. Append amortizes growth; Build performs the single
// final allocation. The zero value is ready to use.
type ListBuilder struct {
	items []Handle
}

// Append adds an item to the in-progress list.
func (b *ListBuilder) Append(h Handle) {
	b.items = append(b.items, h)
}

// Len returns the number of items appended so far.
func (b *ListBuilder) Len() int { return len(b.items) }

// Build finalizes the list in the arena. The builder may be reused
// afterwards; the built list owns a copy of the items.
func (b *ListBuilder) Build(a *Arena) Handle {
	return a.List(b.items...)
}

// StringBuilder accumulates byte content for a string whose final
// length is not known up front, mirroring ListBuilder.
type StringBuilder struct {
	sb strings.Builder
}

// WriteString appends string content.
func (b *StringBuilder) WriteString(s string) {
	b.sb.WriteString(s)
}

// Len returns the number of bytes accumulated so far.
func (b *StringBuilder) Len() int { return b.sb.Len() }

// Build finalizes the string in the arena.
func (b *StringBuilder) Build(a *Arena) Handle {
	return a.String(b.sb.String())
}
