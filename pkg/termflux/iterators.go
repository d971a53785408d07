package termflux

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// The iterator variants. Each carries the construction-time inputs it
// needs to lazily produce items; per-traversal position lives entirely
// in the state handle threaded through next, so a single iterator term
// can be walked any number of times, concurrently within a session.
//
// Every variant upholds the protocol invariant that the state returned
// alongside a live item is never NIL.

// emptyIteratorTerm produces nothing. Interned.
type emptyIteratorTerm struct{}

func (t *emptyIteratorTerm) Kind() Kind { return KindEmptyIterator }

func (t *emptyIteratorTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindEmptyIterator)
}

func (t *emptyIteratorTerm) equal(a *Arena, other Term) bool { return true }

func (t *emptyIteratorTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	sb.WriteString("EmptyIterator")
}

func (t *emptyIteratorTerm) iterate(a *Arena, self Handle) Handle { return self }

func (t *emptyIteratorTerm) sizeHint(a *Arena) (int, bool) { return 0, true }

func (t *emptyIteratorTerm) next(s *session, self, st Handle) (Handle, Handle, Handle, bool) {
	return NIL, NIL, NIL, false
}

// EmptyIterator returns the interned empty iterator.
func (a *Arena) EmptyIterator() Handle { return a.emptyIterator }

// onceIteratorTerm produces a single item.
type onceIteratorTerm struct {
	item Handle
}

func (t *onceIteratorTerm) Kind() Kind { return KindOnceIterator }

func (t *onceIteratorTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindOnceIterator)
	hashChild(a, d, t.item)
}

func (t *onceIteratorTerm) equal(a *Arena, other Term) bool {
	return a.Equal(t.item, other.(*onceIteratorTerm).item)
}

func (t *onceIteratorTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	sb.WriteString("OnceIterator(")
	a.formatInto(t.item, sb, debug)
	sb.WriteByte(')')
}

func (t *onceIteratorTerm) substitute(a *Arena, sub substitution) Handle {
	next := a.substituteTerm(t.item, sub)
	if next == NIL {
		return NIL
	}
	return a.OnceIterator(next)
}

func (t *onceIteratorTerm) iterate(a *Arena, self Handle) Handle { return self }

func (t *onceIteratorTerm) sizeHint(a *Arena) (int, bool) { return 1, true }

func (t *onceIteratorTerm) next(s *session, self, st Handle) (Handle, Handle, Handle, bool) {
	if st != NIL {
		return NIL, NIL, NIL, false
	}
	return t.item, s.a.Boolean(true), NIL, true
}

// OnceIterator returns an iterator producing item exactly once.
func (a *Arena) OnceIterator(item Handle) Handle {
	return a.alloc(&onceIteratorTerm{item: item})
}

// rangeIteratorTerm produces length consecutive Ints from start.
type rangeIteratorTerm struct {
	start  int64
	length int64
}

func (t *rangeIteratorTerm) Kind() Kind { return KindRangeIterator }

func (t *rangeIteratorTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindRangeIterator)
	hashI64(d, t.start)
	hashI64(d, t.length)
}

func (t *rangeIteratorTerm) equal(a *Arena, other Term) bool {
	o := other.(*rangeIteratorTerm)
	return t.start == o.start && t.length == o.length
}

func (t *rangeIteratorTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	fmt.Fprintf(sb, "RangeIterator(%d, %d)", t.start, t.length)
}

func (t *rangeIteratorTerm) iterate(a *Arena, self Handle) Handle { return self }

func (t *rangeIteratorTerm) sizeHint(a *Arena) (int, bool) {
	if t.length < 0 {
		return 0, true
	}
	return int(t.length), true
}

func (t *rangeIteratorTerm) next(s *session, self, st Handle) (Handle, Handle, Handle, bool) {
	i := iterIndex(s.a, st)
	if i >= t.length {
		return NIL, NIL, NIL, false
	}
	return s.a.Int(t.start + i), s.a.Int(i + 1), NIL, true
}

// RangeIterator produces length consecutive integers starting at
// start.
func (a *Arena) RangeIterator(start, length int64) Handle {
	return a.alloc(&rangeIteratorTerm{start: start, length: length})
}

// repeatIteratorTerm produces the same item forever.
type repeatIteratorTerm struct {
	item Handle
}

func (t *repeatIteratorTerm) Kind() Kind { return KindRepeatIterator }

func (t *repeatIteratorTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindRepeatIterator)
	hashChild(a, d, t.item)
}

func (t *repeatIteratorTerm) equal(a *Arena, other Term) bool {
	return a.Equal(t.item, other.(*repeatIteratorTerm).item)
}

func (t *repeatIteratorTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	sb.WriteString("RepeatIterator(")
	a.formatInto(t.item, sb, debug)
	sb.WriteByte(')')
}

func (t *repeatIteratorTerm) substitute(a *Arena, sub substitution) Handle {
	next := a.substituteTerm(t.item, sub)
	if next == NIL {
		return NIL
	}
	return a.RepeatIterator(next)
}

func (t *repeatIteratorTerm) iterate(a *Arena, self Handle) Handle { return self }

func (t *repeatIteratorTerm) sizeHint(a *Arena) (int, bool) { return 0, false }

func (t *repeatIteratorTerm) next(s *session, self, st Handle) (Handle, Handle, Handle, bool) {
	return t.item, s.a.Boolean(true), NIL, true
}

// RepeatIterator produces item forever. Bound it with TakeIterator.
func (a *Arena) RepeatIterator(item Handle) Handle {
	return a.alloc(&repeatIteratorTerm{item: item})
}

// integersIteratorTerm produces 0, 1, 2, ... forever. Interned.
type integersIteratorTerm struct{}

func (t *integersIteratorTerm) Kind() Kind { return KindIntegersIterator }

func (t *integersIteratorTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindIntegersIterator)
}

func (t *integersIteratorTerm) equal(a *Arena, other Term) bool { return true }

func (t *integersIteratorTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	sb.WriteString("IntegersIterator")
}

func (t *integersIteratorTerm) iterate(a *Arena, self Handle) Handle { return self }

func (t *integersIteratorTerm) sizeHint(a *Arena) (int, bool) { return 0, false }

func (t *integersIteratorTerm) next(s *session, self, st Handle) (Handle, Handle, Handle, bool) {
	i := iterIndex(s.a, st)
	return s.a.Int(i), s.a.Int(i + 1), NIL, true
}

// IntegersIterator returns the interned iterator over the naturals.
func (a *Arena) IntegersIterator() Handle { return a.integersIterator }

// mapIteratorTerm transforms each source item by a callable. The
// transform stays lazy: items come out as unevaluated Applications and
// are only forced by a strict collect or an Evaluate iterator.
type mapIteratorTerm struct {
	source Handle
	fn     Handle
}

func (t *mapIteratorTerm) Kind() Kind { return KindMapIterator }

func (t *mapIteratorTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindMapIterator)
	hashChild(a, d, t.source)
	hashChild(a, d, t.fn)
}

func (t *mapIteratorTerm) equal(a *Arena, other Term) bool {
	o := other.(*mapIteratorTerm)
	return a.Equal(t.source, o.source) && a.Equal(t.fn, o.fn)
}

func (t *mapIteratorTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	sb.WriteString("MapIterator(")
	a.formatInto(t.source, sb, debug)
	sb.WriteString(", ")
	a.formatInto(t.fn, sb, debug)
	sb.WriteByte(')')
}

func (t *mapIteratorTerm) substitute(a *Arena, sub substitution) Handle {
	source, fn, changed := a.substitutePair(t.source, t.fn, sub)
	if !changed {
		return NIL
	}
	return a.MapIterator(source, fn)
}

func (t *mapIteratorTerm) iterate(a *Arena, self Handle) Handle { return self }

func (t *mapIteratorTerm) sizeHint(a *Arena) (int, bool) {
	return a.SizeHint(t.source)
}

func (t *mapIteratorTerm) next(s *session, self, st Handle) (Handle, Handle, Handle, bool) {
	_, src, ok := s.resolveIterator(t.source)
	if !ok {
		return NIL, NIL, NIL, false
	}
	item, nextState, deps, more := src.next(s, t.source, st)
	if !more {
		return NIL, NIL, deps, false
	}
	return s.a.Application(t.fn, s.a.UnitList(item)), nextState, deps, true
}

// MapIterator lazily applies fn to each item of source.
func (a *Arena) MapIterator(source, fn Handle) Handle {
	return a.alloc(&mapIteratorTerm{source: source, fn: fn})
}

// filterIteratorTerm keeps the source items whose predicate result is
// truthy. Predicate applications are forced as the walk proceeds; a
// predicate that signals yields the signal as the item so the failure
// reaches the collector.
type filterIteratorTerm struct {
	source Handle
	pred   Handle
}

func (t *filterIteratorTerm) Kind() Kind { return KindFilterIterator }

func (t *filterIteratorTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindFilterIterator)
	hashChild(a, d, t.source)
	hashChild(a, d, t.pred)
}

func (t *filterIteratorTerm) equal(a *Arena, other Term) bool {
	o := other.(*filterIteratorTerm)
	return a.Equal(t.source, o.source) && a.Equal(t.pred, o.pred)
}

func (t *filterIteratorTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	sb.WriteString("FilterIterator(")
	a.formatInto(t.source, sb, debug)
	sb.WriteString(", ")
	a.formatInto(t.pred, sb, debug)
	sb.WriteByte(')')
}

func (t *filterIteratorTerm) substitute(a *Arena, sub substitution) Handle {
	source, pred, changed := a.substitutePair(t.source, t.pred, sub)
	if !changed {
		return NIL
	}
	return a.FilterIterator(source, pred)
}

func (t *filterIteratorTerm) iterate(a *Arena, self Handle) Handle { return self }

func (t *filterIteratorTerm) sizeHint(a *Arena) (int, bool) { return 0, false }

func (t *filterIteratorTerm) next(s *session, self, st Handle) (Handle, Handle, Handle, bool) {
	a := s.a
	_, src, ok := s.resolveIterator(t.source)
	if !ok {
		return NIL, NIL, NIL, false
	}
	var deps Handle
	for {
		item, nextState, d, more := src.next(s, t.source, st)
		deps = a.Union(deps, d)
		if !more {
			return NIL, NIL, deps, false
		}
		verdict, vd := s.evaluate(a.Application(t.pred, a.UnitList(item)))
		deps = a.Union(deps, vd)
		if a.IsSignal(verdict) {
			return verdict, nextState, deps, true
		}
		if a.IsTruthy(verdict) {
			return item, nextState, deps, true
		}
		st = nextState
	}
}

// FilterIterator keeps the items of source for which pred evaluates
// truthy.
func (a *Arena) FilterIterator(source, pred Handle) Handle {
	return a.alloc(&filterIteratorTerm{source: source, pred: pred})
}

// flattenIteratorTerm concatenates the iterable items of its source.
// Non-iterable items pass through unchanged.
type flattenIteratorTerm struct {
	source Handle
}

func (t *flattenIteratorTerm) Kind() Kind { return KindFlattenIterator }

func (t *flattenIteratorTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindFlattenIterator)
	hashChild(a, d, t.source)
}

func (t *flattenIteratorTerm) equal(a *Arena, other Term) bool {
	return a.Equal(t.source, other.(*flattenIteratorTerm).source)
}

func (t *flattenIteratorTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	sb.WriteString("FlattenIterator(")
	a.formatInto(t.source, sb, debug)
	sb.WriteByte(')')
}

func (t *flattenIteratorTerm) substitute(a *Arena, sub substitution) Handle {
	next := a.substituteTerm(t.source, sub)
	if next == NIL {
		return NIL
	}
	return a.FlattenIterator(next)
}

func (t *flattenIteratorTerm) iterate(a *Arena, self Handle) Handle { return self }

func (t *flattenIteratorTerm) sizeHint(a *Arena) (int, bool) { return 0, false }

// next threads a three-slot state list: the outer position, the inner
// iterator currently being drained and the inner position.
func (t *flattenIteratorTerm) next(s *session, self, st Handle) (Handle, Handle, Handle, bool) {
	a := s.a
	_, src, ok := s.resolveIterator(t.source)
	if !ok {
		return NIL, NIL, NIL, false
	}
	outerState, inner, innerState := NIL, NIL, NIL
	if st != NIL {
		slots, _ := a.listItems(st)
		if len(slots) == 3 {
			outerState, inner, innerState = slots[0], slots[1], slots[2]
		}
	}
	var deps Handle
	for {
		if inner != NIL {
			if it, isIter := a.term(inner).(iteratorTerm); isIter {
				item, nextInner, d, more := it.next(s, inner, innerState)
				deps = a.Union(deps, d)
				if more {
					return item, a.Triple(outerState, inner, nextInner), deps, true
				}
			}
			inner, innerState = NIL, NIL
		}
		item, nextOuter, d, more := src.next(s, t.source, outerState)
		deps = a.Union(deps, d)
		if !more {
			return NIL, NIL, deps, false
		}
		outerState = nextOuter
		if iter, _, isIterable := s.resolveIterator(item); isIterable {
			inner, innerState = iter, NIL
			continue
		}
		return item, a.Triple(outerState, NIL, NIL), deps, true
	}
}

// FlattenIterator concatenates the iterable items of source one level
// deep.
func (a *Arena) FlattenIterator(source Handle) Handle {
	return a.alloc(&flattenIteratorTerm{source: source})
}

// zipIteratorTerm pairs items of two sources until either ends.
type zipIteratorTerm struct {
	left  Handle
	right Handle
}

func (t *zipIteratorTerm) Kind() Kind { return KindZipIterator }

func (t *zipIteratorTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindZipIterator)
	hashChild(a, d, t.left)
	hashChild(a, d, t.right)
}

func (t *zipIteratorTerm) equal(a *Arena, other Term) bool {
	o := other.(*zipIteratorTerm)
	return a.Equal(t.left, o.left) && a.Equal(t.right, o.right)
}

func (t *zipIteratorTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	sb.WriteString("ZipIterator(")
	a.formatInto(t.left, sb, debug)
	sb.WriteString(", ")
	a.formatInto(t.right, sb, debug)
	sb.WriteByte(')')
}

func (t *zipIteratorTerm) substitute(a *Arena, sub substitution) Handle {
	left, right, changed := a.substitutePair(t.left, t.right, sub)
	if !changed {
		return NIL
	}
	return a.ZipIterator(left, right)
}

func (t *zipIteratorTerm) iterate(a *Arena, self Handle) Handle { return self }

func (t *zipIteratorTerm) sizeHint(a *Arena) (int, bool) {
	ln, lok := a.SizeHint(t.left)
	rn, rok := a.SizeHint(t.right)
	if !lok || !rok {
		return 0, false
	}
	if rn < ln {
		return rn, true
	}
	return ln, true
}

func (t *zipIteratorTerm) next(s *session, self, st Handle) (Handle, Handle, Handle, bool) {
	a := s.a
	_, left, lok := s.resolveIterator(t.left)
	_, right, rok := s.resolveIterator(t.right)
	if !lok || !rok {
		return NIL, NIL, NIL, false
	}
	leftState, rightState := NIL, NIL
	if st != NIL {
		slots, _ := a.listItems(st)
		if len(slots) == 2 {
			leftState, rightState = slots[0], slots[1]
		}
	}
	litem, nextLeft, ld, lmore := left.next(s, t.left, leftState)
	ritem, nextRight, rd, rmore := right.next(s, t.right, rightState)
	deps := a.Union(ld, rd)
	if !lmore || !rmore {
		return NIL, NIL, deps, false
	}
	return a.Pair(litem, ritem), a.Pair(nextLeft, nextRight), deps, true
}

// ZipIterator pairs the items of two sources, ending with the shorter.
func (a *Arena) ZipIterator(left, right Handle) Handle {
	return a.alloc(&zipIteratorTerm{left: left, right: right})
}

// skipIteratorTerm drops the first count items of its source.
type skipIteratorTerm struct {
	source Handle
	count  int64
}

func (t *skipIteratorTerm) Kind() Kind { return KindSkipIterator }

func (t *skipIteratorTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindSkipIterator)
	hashChild(a, d, t.source)
	hashI64(d, t.count)
}

func (t *skipIteratorTerm) equal(a *Arena, other Term) bool {
	o := other.(*skipIteratorTerm)
	return t.count == o.count && a.Equal(t.source, o.source)
}

func (t *skipIteratorTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	sb.WriteString("SkipIterator(")
	a.formatInto(t.source, sb, debug)
	fmt.Fprintf(sb, ", %d)", t.count)
}

func (t *skipIteratorTerm) substitute(a *Arena, sub substitution) Handle {
	next := a.substituteTerm(t.source, sub)
	if next == NIL {
		return NIL
	}
	return a.SkipIterator(next, t.count)
}

func (t *skipIteratorTerm) iterate(a *Arena, self Handle) Handle { return self }

func (t *skipIteratorTerm) sizeHint(a *Arena) (int, bool) {
	n, ok := a.SizeHint(t.source)
	if !ok {
		return 0, false
	}
	n -= int(t.count)
	if n < 0 {
		n = 0
	}
	return n, true
}

func (t *skipIteratorTerm) next(s *session, self, st Handle) (Handle, Handle, Handle, bool) {
	a := s.a
	_, src, ok := s.resolveIterator(t.source)
	if !ok {
		return NIL, NIL, NIL, false
	}
	var deps Handle
	if st == NIL {
		for i := int64(0); i < t.count; i++ {
			_, nextState, d, more := src.next(s, t.source, st)
			deps = a.Union(deps, d)
			if !more {
				return NIL, NIL, deps, false
			}
			st = nextState
		}
	}
	item, nextState, d, more := src.next(s, t.source, st)
	deps = a.Union(deps, d)
	if !more {
		return NIL, NIL, deps, false
	}
	return item, nextState, deps, true
}

// SkipIterator drops the first count items of source.
func (a *Arena) SkipIterator(source Handle, count int64) Handle {
	return a.alloc(&skipIteratorTerm{source: source, count: count})
}

// takeIteratorTerm passes through at most count items of its source.
type takeIteratorTerm struct {
	source Handle
	count  int64
}

func (t *takeIteratorTerm) Kind() Kind { return KindTakeIterator }

func (t *takeIteratorTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindTakeIterator)
	hashChild(a, d, t.source)
	hashI64(d, t.count)
}

func (t *takeIteratorTerm) equal(a *Arena, other Term) bool {
	o := other.(*takeIteratorTerm)
	return t.count == o.count && a.Equal(t.source, o.source)
}

func (t *takeIteratorTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	sb.WriteString("TakeIterator(")
	a.formatInto(t.source, sb, debug)
	fmt.Fprintf(sb, ", %d)", t.count)
}

func (t *takeIteratorTerm) substitute(a *Arena, sub substitution) Handle {
	next := a.substituteTerm(t.source, sub)
	if next == NIL {
		return NIL
	}
	return a.TakeIterator(next, t.count)
}

func (t *takeIteratorTerm) iterate(a *Arena, self Handle) Handle { return self }

func (t *takeIteratorTerm) sizeHint(a *Arena) (int, bool) {
	limit := int(t.count)
	if limit < 0 {
		limit = 0
	}
	n, ok := a.SizeHint(t.source)
	if !ok {
		return 0, false
	}
	if n > limit {
		return limit, true
	}
	return n, true
}

func (t *takeIteratorTerm) next(s *session, self, st Handle) (Handle, Handle, Handle, bool) {
	a := s.a
	_, src, ok := s.resolveIterator(t.source)
	if !ok {
		return NIL, NIL, NIL, false
	}
	taken, srcState := int64(0), NIL
	if st != NIL {
		slots, _ := a.listItems(st)
		if len(slots) == 2 {
			taken = iterIndex(a, slots[0])
			srcState = slots[1]
		}
	}
	if taken >= t.count {
		return NIL, NIL, NIL, false
	}
	item, nextState, deps, more := src.next(s, t.source, srcState)
	if !more {
		return NIL, NIL, deps, false
	}
	return item, a.Pair(a.Int(taken+1), nextState), deps, true
}

// TakeIterator passes through at most count items of source.
func (a *Arena) TakeIterator(source Handle, count int64) Handle {
	return a.alloc(&takeIteratorTerm{source: source, count: count})
}

// intersperseIteratorTerm yields separator between consecutive source
// items.
type intersperseIteratorTerm struct {
	source    Handle
	separator Handle
}

func (t *intersperseIteratorTerm) Kind() Kind { return KindIntersperseIterator }

func (t *intersperseIteratorTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindIntersperseIterator)
	hashChild(a, d, t.source)
	hashChild(a, d, t.separator)
}

func (t *intersperseIteratorTerm) equal(a *Arena, other Term) bool {
	o := other.(*intersperseIteratorTerm)
	return a.Equal(t.source, o.source) && a.Equal(t.separator, o.separator)
}

func (t *intersperseIteratorTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	sb.WriteString("IntersperseIterator(")
	a.formatInto(t.source, sb, debug)
	sb.WriteString(", ")
	a.formatInto(t.separator, sb, debug)
	sb.WriteByte(')')
}

func (t *intersperseIteratorTerm) substitute(a *Arena, sub substitution) Handle {
	source, separator, changed := a.substitutePair(t.source, t.separator, sub)
	if !changed {
		return NIL
	}
	return a.IntersperseIterator(source, separator)
}

func (t *intersperseIteratorTerm) iterate(a *Arena, self Handle) Handle { return self }

func (t *intersperseIteratorTerm) sizeHint(a *Arena) (int, bool) {
	n, ok := a.SizeHint(t.source)
	if !ok {
		return 0, false
	}
	if n <= 1 {
		return n, true
	}
	return 2*n - 1, true
}

// next threads a three-slot state: a mode flag, a buffered item held
// back while the separator goes out, and the source position.
func (t *intersperseIteratorTerm) next(s *session, self, st Handle) (Handle, Handle, Handle, bool) {
	a := s.a
	_, src, ok := s.resolveIterator(t.source)
	if !ok {
		return NIL, NIL, NIL, false
	}
	const (
		modePull  = 0 // pull the next item, emitting the separator first
		modeFlush = 1 // emit the buffered item
	)
	if st == NIL {
		item, nextState, deps, more := src.next(s, t.source, st)
		if !more {
			return NIL, NIL, deps, false
		}
		return item, a.Triple(a.Int(modePull), a.Nil(), nextState), deps, true
	}
	slots, _ := a.listItems(st)
	if len(slots) != 3 {
		return NIL, NIL, NIL, false
	}
	mode := iterIndex(a, slots[0])
	buffered, srcState := slots[1], slots[2]
	if mode == modeFlush {
		return buffered, a.Triple(a.Int(modePull), a.Nil(), srcState), NIL, true
	}
	item, nextState, deps, more := src.next(s, t.source, srcState)
	if !more {
		return NIL, NIL, deps, false
	}
	return t.separator, a.Triple(a.Int(modeFlush), item, nextState), deps, true
}

// IntersperseIterator yields separator between consecutive items of
// source.
func (a *Arena) IntersperseIterator(source, separator Handle) Handle {
	return a.alloc(&intersperseIteratorTerm{source: source, separator: separator})
}

// evaluateIteratorTerm forces each source item as it is produced.
type evaluateIteratorTerm struct {
	source Handle
}

func (t *evaluateIteratorTerm) Kind() Kind { return KindEvaluateIterator }

func (t *evaluateIteratorTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindEvaluateIterator)
	hashChild(a, d, t.source)
}

func (t *evaluateIteratorTerm) equal(a *Arena, other Term) bool {
	return a.Equal(t.source, other.(*evaluateIteratorTerm).source)
}

func (t *evaluateIteratorTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	sb.WriteString("EvaluateIterator(")
	a.formatInto(t.source, sb, debug)
	sb.WriteByte(')')
}

func (t *evaluateIteratorTerm) substitute(a *Arena, sub substitution) Handle {
	next := a.substituteTerm(t.source, sub)
	if next == NIL {
		return NIL
	}
	return a.EvaluateIterator(next)
}

func (t *evaluateIteratorTerm) iterate(a *Arena, self Handle) Handle { return self }

func (t *evaluateIteratorTerm) sizeHint(a *Arena) (int, bool) {
	return a.SizeHint(t.source)
}

func (t *evaluateIteratorTerm) next(s *session, self, st Handle) (Handle, Handle, Handle, bool) {
	_, src, ok := s.resolveIterator(t.source)
	if !ok {
		return NIL, NIL, NIL, false
	}
	item, nextState, deps, more := src.next(s, t.source, st)
	if !more {
		return NIL, NIL, deps, false
	}
	value, vd := s.evaluate(item)
	return value, nextState, s.a.Union(deps, vd), true
}

// EvaluateIterator forces each item of source against the ambient
// state as the walk proceeds.
func (a *Arena) EvaluateIterator(source Handle) Handle {
	return a.alloc(&evaluateIteratorTerm{source: source})
}

// indexedAccessorIteratorTerm iterates a subject by position, or looks
// up an explicit key list against it. With keys == NIL it enumerates
// the subject's own elements: List items, Record values, String
// characters. With keys it yields subject[key] for each key, Nil on a
// miss.
type indexedAccessorIteratorTerm struct {
	subject Handle
	keys    Handle // List or NIL
}

func (t *indexedAccessorIteratorTerm) Kind() Kind { return KindIndexedAccessorIterator }

func (t *indexedAccessorIteratorTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindIndexedAccessorIterator)
	hashChild(a, d, t.subject)
	hashChild(a, d, t.keys)
}

func (t *indexedAccessorIteratorTerm) equal(a *Arena, other Term) bool {
	o := other.(*indexedAccessorIteratorTerm)
	return a.Equal(t.subject, o.subject) && a.Equal(t.keys, o.keys)
}

func (t *indexedAccessorIteratorTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	sb.WriteString("IndexedAccessorIterator(")
	a.formatInto(t.subject, sb, debug)
	if t.keys != NIL {
		sb.WriteString(", ")
		a.formatInto(t.keys, sb, debug)
	}
	sb.WriteByte(')')
}

func (t *indexedAccessorIteratorTerm) substitute(a *Arena, sub substitution) Handle {
	subject, keys, changed := a.substitutePair(t.subject, t.keys, sub)
	if !changed {
		return NIL
	}
	return a.IndexedAccessorIterator(subject, keys)
}

func (t *indexedAccessorIteratorTerm) iterate(a *Arena, self Handle) Handle { return self }

func (t *indexedAccessorIteratorTerm) length(a *Arena) int {
	if t.keys != NIL {
		n, _ := a.ListLen(t.keys)
		return n
	}
	switch subject := a.term(t.subject).(type) {
	case *listTerm:
		return len(subject.items)
	case *stringTerm:
		return len(subject.value)
	case *recordTerm:
		n, _ := a.ListLen(subject.values)
		return n
	default:
		return 0
	}
}

func (t *indexedAccessorIteratorTerm) sizeHint(a *Arena) (int, bool) {
	return t.length(a), true
}

func (t *indexedAccessorIteratorTerm) next(s *session, self, st Handle) (Handle, Handle, Handle, bool) {
	a := s.a
	i := iterIndex(a, st)
	if i >= int64(t.length(a)) {
		return NIL, NIL, NIL, false
	}
	var item Handle
	if t.keys != NIL {
		key, _ := a.ListGet(t.keys, int(i))
		item = a.accessorGet(t.subject, key)
	} else {
		switch subject := a.term(t.subject).(type) {
		case *listTerm:
			item = subject.items[i]
		case *stringTerm:
			item = a.String(subject.value[i : i+1])
		case *recordTerm:
			item, _ = a.ListGet(subject.values, int(i))
		}
	}
	return item, a.Int(i + 1), NIL, true
}

// accessorGet resolves a key against an indexable subject: Int index
// into a List or String, structural key into a Hashmap or Record.
// Misses yield Nil.
func (a *Arena) accessorGet(subject, key Handle) Handle {
	switch t := a.term(subject).(type) {
	case *listTerm:
		if i, ok := a.IntValue(key); ok && i >= 0 && i < int64(len(t.items)) {
			return t.items[i]
		}
	case *stringTerm:
		if i, ok := a.IntValue(key); ok && i >= 0 && i < int64(len(t.value)) {
			return a.String(t.value[i : i+1])
		}
	case *hashmapTerm:
		if value, ok := t.lookup(a, key); ok {
			return value
		}
	case *recordTerm:
		if value, ok := a.RecordGet(subject, key); ok {
			return value
		}
	}
	return a.Nil()
}

// IndexedAccessorIterator iterates subject by position (keys == NIL)
// or yields subject[key] for each key in the keys List.
func (a *Arena) IndexedAccessorIterator(subject, keys Handle) Handle {
	return a.alloc(&indexedAccessorIteratorTerm{subject: subject, keys: keys})
}

// hashmapKeysIteratorTerm walks the occupied buckets of a Hashmap
// yielding keys in scan order.
type hashmapKeysIteratorTerm struct {
	source Handle
}

func (t *hashmapKeysIteratorTerm) Kind() Kind { return KindHashmapKeysIterator }

func (t *hashmapKeysIteratorTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindHashmapKeysIterator)
	hashChild(a, d, t.source)
}

func (t *hashmapKeysIteratorTerm) equal(a *Arena, other Term) bool {
	return a.Equal(t.source, other.(*hashmapKeysIteratorTerm).source)
}

func (t *hashmapKeysIteratorTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	sb.WriteString("HashmapKeysIterator(")
	a.formatInto(t.source, sb, debug)
	sb.WriteByte(')')
}

func (t *hashmapKeysIteratorTerm) substitute(a *Arena, sub substitution) Handle {
	next := a.substituteTerm(t.source, sub)
	if next == NIL {
		return NIL
	}
	return a.HashmapKeysIterator(next)
}

func (t *hashmapKeysIteratorTerm) iterate(a *Arena, self Handle) Handle { return self }

func (t *hashmapKeysIteratorTerm) sizeHint(a *Arena) (int, bool) {
	n, ok := a.HashmapLen(t.source)
	return n, ok
}

func (t *hashmapKeysIteratorTerm) next(s *session, self, st Handle) (Handle, Handle, Handle, bool) {
	key, _, nextState, ok := hashmapScan(s.a, t.source, st)
	return key, nextState, NIL, ok
}

// HashmapKeysIterator iterates the keys of a Hashmap in bucket scan
// order.
func (a *Arena) HashmapKeysIterator(source Handle) Handle {
	return a.alloc(&hashmapKeysIteratorTerm{source: source})
}

// hashmapValuesIteratorTerm walks the occupied buckets of a Hashmap
// yielding values in scan order.
type hashmapValuesIteratorTerm struct {
	source Handle
}

func (t *hashmapValuesIteratorTerm) Kind() Kind { return KindHashmapValuesIterator }

func (t *hashmapValuesIteratorTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindHashmapValuesIterator)
	hashChild(a, d, t.source)
}

func (t *hashmapValuesIteratorTerm) equal(a *Arena, other Term) bool {
	return a.Equal(t.source, other.(*hashmapValuesIteratorTerm).source)
}

func (t *hashmapValuesIteratorTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	sb.WriteString("HashmapValuesIterator(")
	a.formatInto(t.source, sb, debug)
	sb.WriteByte(')')
}

func (t *hashmapValuesIteratorTerm) substitute(a *Arena, sub substitution) Handle {
	next := a.substituteTerm(t.source, sub)
	if next == NIL {
		return NIL
	}
	return a.HashmapValuesIterator(next)
}

func (t *hashmapValuesIteratorTerm) iterate(a *Arena, self Handle) Handle { return self }

func (t *hashmapValuesIteratorTerm) sizeHint(a *Arena) (int, bool) {
	n, ok := a.HashmapLen(t.source)
	return n, ok
}

func (t *hashmapValuesIteratorTerm) next(s *session, self, st Handle) (Handle, Handle, Handle, bool) {
	_, value, nextState, ok := hashmapScan(s.a, t.source, st)
	return value, nextState, NIL, ok
}

// HashmapValuesIterator iterates the values of a Hashmap in bucket
// scan order.
func (a *Arena) HashmapValuesIterator(source Handle) Handle {
	return a.alloc(&hashmapValuesIteratorTerm{source: source})
}

// iterIndex decodes an Int state handle, treating NIL as position 0.
func iterIndex(a *Arena, st Handle) int64 {
	if st == NIL {
		return 0
	}
	i, _ := a.IntValue(st)
	return i
}

// hashmapScan advances to the next occupied bucket at or after the
// position encoded in st and returns its entry plus the position after
// it.
func hashmapScan(a *Arena, source, st Handle) (key, value, nextState Handle, ok bool) {
	t, isMap := a.term(source).(*hashmapTerm)
	if !isMap {
		return NIL, NIL, NIL, false
	}
	for i := iterIndex(a, st); i < int64(len(t.buckets)); i++ {
		b := t.buckets[i]
		if b.key != NIL {
			return b.key, b.value, a.Int(i + 1), true
		}
	}
	return NIL, NIL, NIL, false
}
