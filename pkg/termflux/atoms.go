package termflux

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Atomic variants: Nil, Boolean, Int, Float, String, Symbol, Timestamp
// and Date. Atoms evaluate to themselves, contain no child references
// and never change under substitution.

// nilTerm is the unit value.
type nilTerm struct{}

func (t *nilTerm) Kind() Kind { return KindNil }

func (t *nilTerm) writeHash(a *Arena, d *xxhash.Digest) { hashTag(d, KindNil) }

func (t *nilTerm) equal(a *Arena, other Term) bool { return true }

func (t *nilTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	sb.WriteString("null")
}

func (t *nilTerm) jsonValue(a *Arena) (interface{}, bool) { return nil, true }

// Nil returns the interned unit value.
func (a *Arena) Nil() Handle { return a.nilSingleton }

// booleanTerm holds a boolean value. Both values are interned.
type booleanTerm struct {
	value bool
}

func (t *booleanTerm) Kind() Kind { return KindBoolean }

func (t *booleanTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindBoolean)
	hashBool(d, t.value)
}

func (t *booleanTerm) equal(a *Arena, other Term) bool {
	return t.value == other.(*booleanTerm).value
}

func (t *booleanTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	sb.WriteString(strconv.FormatBool(t.value))
}

func (t *booleanTerm) jsonValue(a *Arena) (interface{}, bool) { return t.value, true }

// Boolean returns the interned boolean for b.
func (a *Arena) Boolean(b bool) Handle {
	if b {
		return a.trueSingleton
	}
	return a.falseSingleton
}

// BoolValue returns the value of a Boolean term.
func (a *Arena) BoolValue(h Handle) (bool, bool) {
	t, ok := a.term(h).(*booleanTerm)
	if !ok {
		return false, false
	}
	return t.value, true
}

// intTerm holds a 64-bit signed integer. Values -1..9 are interned.
type intTerm struct {
	value int64
}

func (t *intTerm) Kind() Kind { return KindInt }

func (t *intTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindInt)
	hashI64(d, t.value)
}

func (t *intTerm) equal(a *Arena, other Term) bool {
	return t.value == other.(*intTerm).value
}

func (t *intTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	sb.WriteString(strconv.FormatInt(t.value, 10))
}

func (t *intTerm) jsonValue(a *Arena) (interface{}, bool) { return t.value, true }

// Int returns a term holding v, interned for v in -1..9.
func (a *Arena) Int(v int64) Handle {
	if v >= smallIntMin && v <= smallIntMax {
		return a.smallInts[v-smallIntMin]
	}
	return a.alloc(&intTerm{value: v})
}

// IntValue returns the value of an Int term.
func (a *Arena) IntValue(h Handle) (int64, bool) {
	t, ok := a.term(h).(*intTerm)
	if !ok {
		return 0, false
	}
	return t.value, true
}

// floatTerm holds a 64-bit IEEE-754 float. All NaN payloads compare
// and hash equal.
type floatTerm struct {
	value float64
}

func (t *floatTerm) Kind() Kind { return KindFloat }

func (t *floatTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindFloat)
	hashFloat(d, t.value)
}

func (t *floatTerm) equal(a *Arena, other Term) bool {
	o := other.(*floatTerm)
	return t.value == o.value || (math.IsNaN(t.value) && math.IsNaN(o.value))
}

func (t *floatTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	sb.WriteString(strconv.FormatFloat(t.value, 'g', -1, 64))
}

func (t *floatTerm) jsonValue(a *Arena) (interface{}, bool) {
	// NaN and the infinities have no JSON rendering; they emit null.
	if math.IsNaN(t.value) || math.IsInf(t.value, 0) {
		return nil, true
	}
	return t.value, true
}

// Float returns a term holding v.
func (a *Arena) Float(v float64) Handle {
	return a.alloc(&floatTerm{value: v})
}

// FloatValue returns the value of a Float term.
func (a *Arena) FloatValue(h Handle) (float64, bool) {
	t, ok := a.term(h).(*floatTerm)
	if !ok {
		return 0, false
	}
	return t.value, true
}

// stringTerm holds an immutable byte string. The empty string is
// interned; recently-seen strings are deduplicated through the arena's
// LRU cache.
type stringTerm struct {
	value string
}

func (t *stringTerm) Kind() Kind { return KindString }

func (t *stringTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindString)
	_, _ = d.WriteString(t.value)
}

func (t *stringTerm) equal(a *Arena, other Term) bool {
	return t.value == other.(*stringTerm).value
}

func (t *stringTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	if debug {
		sb.WriteString(strconv.Quote(t.value))
	} else {
		sb.WriteString(t.value)
	}
}

func (t *stringTerm) jsonValue(a *Arena) (interface{}, bool) { return t.value, true }

func (t *stringTerm) iterate(a *Arena, self Handle) Handle {
	return a.IndexedAccessorIterator(self, NIL)
}

// String returns a term holding s. The empty string is the interned
// singleton; non-empty strings are deduplicated best-effort through
// the arena's LRU cache so repeated creation returns the same handle.
func (a *Arena) String(s string) Handle {
	if s == "" {
		return a.emptyString
	}
	if a.strings != nil {
		if cached, ok := a.strings.Get(s); ok {
			return cached.(Handle)
		}
	}
	h := a.alloc(&stringTerm{value: s})
	if h != NIL && a.strings != nil {
		a.strings.Add(s, h)
	}
	return h
}

// StringValue returns the contents of a String term.
func (a *Arena) StringValue(h Handle) (string, bool) {
	t, ok := a.term(h).(*stringTerm)
	if !ok {
		return "", false
	}
	return t.value, true
}

// symbolTerm holds an opaque 32-bit symbol id.
type symbolTerm struct {
	id uint32
}

func (t *symbolTerm) Kind() Kind { return KindSymbol }

func (t *symbolTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindSymbol)
	hashU32(d, t.id)
}

func (t *symbolTerm) equal(a *Arena, other Term) bool {
	return t.id == other.(*symbolTerm).id
}

func (t *symbolTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	fmt.Fprintf(sb, "Symbol(%d)", t.id)
}

// Symbol returns a term holding the symbol id.
func (a *Arena) Symbol(id uint32) Handle {
	return a.alloc(&symbolTerm{id: id})
}

// SymbolValue returns the id of a Symbol term.
func (a *Arena) SymbolValue(h Handle) (uint32, bool) {
	t, ok := a.term(h).(*symbolTerm)
	if !ok {
		return 0, false
	}
	return t.id, true
}

// timestampTerm holds a millisecond instant since the Unix epoch.
type timestampTerm struct {
	millis int64
}

func (t *timestampTerm) Kind() Kind { return KindTimestamp }

func (t *timestampTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindTimestamp)
	hashI64(d, t.millis)
}

func (t *timestampTerm) equal(a *Arena, other Term) bool {
	return t.millis == other.(*timestampTerm).millis
}

func (t *timestampTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	sb.WriteString(time.UnixMilli(t.millis).UTC().Format(time.RFC3339Nano))
}

func (t *timestampTerm) jsonValue(a *Arena) (interface{}, bool) {
	return time.UnixMilli(t.millis).UTC().Format(time.RFC3339Nano), true
}

// Timestamp returns a term holding a millisecond instant.
func (a *Arena) Timestamp(millis int64) Handle {
	return a.alloc(&timestampTerm{millis: millis})
}

// TimestampMillis returns the instant of a Timestamp term.
func (a *Arena) TimestampMillis(h Handle) (int64, bool) {
	t, ok := a.term(h).(*timestampTerm)
	if !ok {
		return 0, false
	}
	return t.millis, true
}

// dateTerm holds a calendar date as a millisecond instant.
type dateTerm struct {
	millis int64
}

func (t *dateTerm) Kind() Kind { return KindDate }

func (t *dateTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindDate)
	hashI64(d, t.millis)
}

func (t *dateTerm) equal(a *Arena, other Term) bool {
	return t.millis == other.(*dateTerm).millis
}

func (t *dateTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	sb.WriteString(time.UnixMilli(t.millis).UTC().Format("2006-01-02"))
}

func (t *dateTerm) jsonValue(a *Arena) (interface{}, bool) {
	return time.UnixMilli(t.millis).UTC().Format("2006-01-02"), true
}

// Date returns a term holding a calendar date instant.
func (a *Arena) Date(millis int64) Handle {
	return a.alloc(&dateTerm{millis: millis})
}

// DateMillis returns the instant of a Date term.
func (a *Arena) DateMillis(h Handle) (int64, bool) {
	t, ok := a.term(h).(*dateTerm)
	if !ok {
		return 0, false
	}
	return t.millis, true
}
