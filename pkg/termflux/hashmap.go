package termflux

import (
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// hashmapTerm is an open-addressed, linear-probed mapping from term
// keys to term values. Capacity is ceil(4n/3) rounded up to the
// allocation-friendly minimum of 8 slots; an empty slot has a NIL key.
// The empty hashmap is interned.
//
// Equality is the documented probabilistic check: two hashmaps are
// equal when they have the same entry count and the same structural
// hash. The hash folds per-entry digests order-insensitively, so maps
// with different insertion histories still hash (and therefore
// compare) equal.
type hashmapTerm struct {
	n       int
	buckets []hmBucket
}

type hmBucket struct {
	key   Handle
	value Handle
}

// KV is a key/value pair for hashmap construction and enumeration.
type KV struct {
	Key   Handle
	Value Handle
}

const hashmapMinCapacity = 8

func hashmapCapacity(n int) int {
	c := (4*n + 2) / 3
	if c < hashmapMinCapacity {
		c = hashmapMinCapacity
	}
	return c
}

func (t *hashmapTerm) Kind() Kind { return KindHashmap }

func (t *hashmapTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindHashmap)
	hashU32(d, uint32(t.n))
	if t.n == 0 {
		return
	}
	entries := make([]uint64, 0, t.n)
	for _, b := range t.buckets {
		if b.key == NIL {
			continue
		}
		entries = append(entries, combineHashes(a.HashOf(b.key), a.HashOf(b.value)))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i] < entries[j] })
	for _, e := range entries {
		hashU64(d, e)
	}
}

func (t *hashmapTerm) equal(a *Arena, other Term) bool {
	o := other.(*hashmapTerm)
	if t.n != o.n {
		return false
	}
	if t.n == 0 {
		return true
	}
	// Probabilistic same-size-and-hash check; the hash is
	// order-insensitive so scan history does not matter.
	return hashTermDirect(a, t) == hashTermDirect(a, o)
}

func (t *hashmapTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	sb.WriteByte('{')
	first := true
	for _, b := range t.buckets {
		if b.key == NIL {
			continue
		}
		if !first {
			sb.WriteString(", ")
		}
		first = false
		a.formatInto(b.key, sb, debug)
		sb.WriteString(": ")
		a.formatInto(b.value, sb, debug)
	}
	sb.WriteByte('}')
}

func (t *hashmapTerm) jsonValue(a *Arena) (interface{}, bool) {
	out := make(map[string]interface{}, t.n)
	for _, b := range t.buckets {
		if b.key == NIL {
			continue
		}
		key, ok := a.StringValue(b.key)
		if !ok {
			return nil, false
		}
		v, ok := a.jsonValueOf(b.value)
		if !ok {
			return nil, false
		}
		out[key] = v
	}
	return out, true
}

func (t *hashmapTerm) substitute(a *Arena, sub substitution) Handle {
	changed := false
	entries := make([]KV, 0, t.n)
	for _, b := range t.buckets {
		if b.key == NIL {
			continue
		}
		key, value := b.key, b.value
		if next := a.substituteTerm(key, sub); next != NIL {
			key, changed = next, true
		}
		if next := a.substituteTerm(value, sub); next != NIL {
			value, changed = next, true
		}
		entries = append(entries, KV{Key: key, Value: value})
	}
	if !changed {
		return NIL
	}
	// Rebuilding collapses keys that collided under substitution;
	// the later entry in scan order wins.
	return a.Hashmap(entries)
}

func (t *hashmapTerm) iterate(a *Arena, self Handle) Handle {
	return a.ZipIterator(a.HashmapKeysIterator(self), a.HashmapValuesIterator(self))
}

// lookup probes for a key and returns its value.
func (t *hashmapTerm) lookup(a *Arena, key Handle) (Handle, bool) {
	if t.n == 0 || len(t.buckets) == 0 {
		return NIL, false
	}
	c := uint64(len(t.buckets))
	i := a.HashOf(key) % c
	for probes := uint64(0); probes < c; probes++ {
		b := t.buckets[i]
		if b.key == NIL {
			return NIL, false
		}
		if a.Equal(b.key, key) {
			return b.value, true
		}
		i = (i + 1) % c
	}
	return NIL, false
}

// insert places an entry, overwriting an equal key. Caller guarantees
// free capacity.
func (t *hashmapTerm) insert(a *Arena, key, value Handle) {
	c := uint64(len(t.buckets))
	i := a.HashOf(key) % c
	for {
		b := &t.buckets[i]
		if b.key == NIL {
			b.key = key
			b.value = value
			t.n++
			return
		}
		if a.Equal(b.key, key) {
			b.value = value
			return
		}
		i = (i + 1) % c
	}
}

// EmptyHashmap returns the interned empty hashmap.
func (a *Arena) EmptyHashmap() Handle { return a.emptyHashmap }

// Hashmap builds a hashmap from entries. Duplicate keys collapse,
// last write wins. An empty entry set returns the interned singleton.
func (a *Arena) Hashmap(entries []KV) Handle {
	if len(entries) == 0 {
		return a.emptyHashmap
	}
	t := &hashmapTerm{buckets: make([]hmBucket, hashmapCapacity(len(entries)))}
	for _, e := range entries {
		t.insert(a, e.Key, e.Value)
	}
	return a.alloc(t)
}

// HashmapGet returns the value for key in a Hashmap term.
func (a *Arena) HashmapGet(h, key Handle) (Handle, bool) {
	t, ok := a.term(h).(*hashmapTerm)
	if !ok {
		return NIL, false
	}
	return t.lookup(a, key)
}

// HashmapHas reports whether key is present in a Hashmap term.
func (a *Arena) HashmapHas(h, key Handle) bool {
	_, ok := a.HashmapGet(h, key)
	return ok
}

// HashmapLen returns the entry count of a Hashmap term.
func (a *Arena) HashmapLen(h Handle) (int, bool) {
	t, ok := a.term(h).(*hashmapTerm)
	if !ok {
		return 0, false
	}
	return t.n, true
}

// HashmapEntries returns the entries of a Hashmap term in bucket scan
// order.
func (a *Arena) HashmapEntries(h Handle) ([]KV, bool) {
	t, ok := a.term(h).(*hashmapTerm)
	if !ok {
		return nil, false
	}
	out := make([]KV, 0, t.n)
	for _, b := range t.buckets {
		if b.key != NIL {
			out = append(out, KV{Key: b.key, Value: b.value})
		}
	}
	return out, true
}

// HashmapKeys returns the keys of a Hashmap term in bucket scan order.
func (a *Arena) HashmapKeys(h Handle) ([]Handle, bool) {
	entries, ok := a.HashmapEntries(h)
	if !ok {
		return nil, false
	}
	out := make([]Handle, len(entries))
	for i, e := range entries {
		out[i] = e.Key
	}
	return out, true
}

// HashmapValues returns the values of a Hashmap term in bucket scan
// order.
func (a *Arena) HashmapValues(h Handle) ([]Handle, bool) {
	entries, ok := a.HashmapEntries(h)
	if !ok {
		return nil, false
	}
	out := make([]Handle, len(entries))
	for i, e := range entries {
		out[i] = e.Value
	}
	return out, true
}

// HashmapBuilder accumulates entries for a hashmap whose final size is
// not known up front. It starts from a single-entry capacity and
// doubles, rehashing every live entry into the new bucket array on
// each growth step.
type HashmapBuilder struct {
	entries []KV
}

// Set adds or overwrites an entry.
func (b *HashmapBuilder) Set(key, value Handle) {
	b.entries = append(b.entries, KV{Key: key, Value: value})
}

// Len returns the number of entries staged so far, counting duplicate
// keys once each; collapse happens at Build.
func (b *HashmapBuilder) Len() int { return len(b.entries) }

// Build finalizes the hashmap in the arena.
func (b *HashmapBuilder) Build(a *Arena) Handle {
	return a.Hashmap(b.entries)
}

// hashsetTerm is a set of terms backed by a Hashmap with Nil values.
type hashsetTerm struct {
	entries Handle
}

func (t *hashsetTerm) Kind() Kind { return KindHashset }

func (t *hashsetTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindHashset)
	hashChild(a, d, t.entries)
}

func (t *hashsetTerm) equal(a *Arena, other Term) bool {
	return a.Equal(t.entries, other.(*hashsetTerm).entries)
}

func (t *hashsetTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	sb.WriteString("#{")
	items, _ := a.HashmapKeys(t.entries)
	for i, item := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		a.formatInto(item, sb, debug)
	}
	sb.WriteByte('}')
}

func (t *hashsetTerm) substitute(a *Arena, sub substitution) Handle {
	next := a.substituteTerm(t.entries, sub)
	if next == NIL {
		return NIL
	}
	return a.alloc(&hashsetTerm{entries: next})
}

func (t *hashsetTerm) iterate(a *Arena, self Handle) Handle {
	return a.HashmapKeysIterator(t.entries)
}

// EmptyHashset returns the interned empty hashset.
func (a *Arena) EmptyHashset() Handle { return a.emptyHashset }

// Hashset builds a set of the given items. Duplicates collapse. An
// empty call returns the interned singleton.
func (a *Arena) Hashset(items ...Handle) Handle {
	if len(items) == 0 {
		return a.emptyHashset
	}
	nilValue := a.Nil()
	entries := make([]KV, len(items))
	for i, item := range items {
		entries[i] = KV{Key: item, Value: nilValue}
	}
	return a.alloc(&hashsetTerm{entries: a.Hashmap(entries)})
}

// HashsetHas reports whether item is present in a Hashset term.
func (a *Arena) HashsetHas(h, item Handle) bool {
	t, ok := a.term(h).(*hashsetTerm)
	if !ok {
		return false
	}
	return a.HashmapHas(t.entries, item)
}

// HashsetLen returns the element count of a Hashset term.
func (a *Arena) HashsetLen(h Handle) (int, bool) {
	t, ok := a.term(h).(*hashsetTerm)
	if !ok {
		return 0, false
	}
	return a.HashmapLen(t.entries)
}

// HashsetItems returns the elements of a Hashset term in bucket scan
// order.
func (a *Arena) HashsetItems(h Handle) ([]Handle, bool) {
	t, ok := a.term(h).(*hashsetTerm)
	if !ok {
		return nil, false
	}
	return a.HashmapKeys(t.entries)
}
