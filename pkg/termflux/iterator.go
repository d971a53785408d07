package termflux

// The iterator protocol is the uniform lazy-sequence abstraction over
// collections, generators and transformers. An iterator term produces
// items one at a time through next, threading an opaque state handle:
// NIL on the first call, then whatever the previous call returned.
// Iterators never return NIL as a live state, so resumption is
// unambiguous.
//
// Producing an item may consult the ambient state (a Filter predicate
// runs applications, an Evaluate iterator forces effects), so next
// returns a dependency set alongside each item, and the collect
// helpers union them across the walk.

// Iterate returns an iterator term over any iterable value: the
// iterator variants themselves, List, Record, Tree, Hashmap, Hashset
// and String. It returns NIL for non-iterable terms.
func (a *Arena) Iterate(h Handle) Handle {
	t, ok := a.term(h).(iterable)
	if !ok {
		return NIL
	}
	return t.iterate(a, h)
}

// SizeHint returns the number of items an iterable will produce, when
// that is known without walking it. Non-iterator iterables are
// resolved through their iterate capability first.
func (a *Arena) SizeHint(h Handle) (int, bool) {
	t, ok := a.term(h).(iteratorTerm)
	if !ok {
		it, isIterable := a.term(h).(iterable)
		if !isIterable {
			return 0, false
		}
		t, ok = a.term(it.iterate(a, h)).(iteratorTerm)
		if !ok {
			return 0, false
		}
	}
	return t.sizeHint(a)
}

// Next advances an iterator by one item against a state snapshot. st
// is NIL on the first call; pass back the returned state to continue.
// ok is false at the end of the sequence.
func (a *Arena) Next(iter, st, state Handle) (item, nextState, deps Handle, ok bool) {
	t, isIter := a.term(iter).(iteratorTerm)
	if !isIter {
		return NIL, NIL, NIL, false
	}
	s := &session{a: a, state: state}
	return t.next(s, iter, st)
}

// resolveIterator coerces a value to an iterator term, through the
// iterable capability where needed.
func (s *session) resolveIterator(h Handle) (Handle, iteratorTerm, bool) {
	if t, ok := s.a.term(h).(iteratorTerm); ok {
		return h, t, true
	}
	if t, ok := s.a.term(h).(iterable); ok {
		iter := t.iterate(s.a, h)
		if it, ok := s.a.term(iter).(iteratorTerm); ok {
			return iter, it, true
		}
	}
	return NIL, nil, false
}

// collectItems walks an iterator to exhaustion, returning the items
// and the unioned dependencies.
func (s *session) collectItems(h Handle) ([]Handle, Handle, bool) {
	iter, it, ok := s.resolveIterator(h)
	if !ok {
		return nil, NIL, false
	}
	var items []Handle
	if hint, known := it.sizeHint(s.a); known {
		items = make([]Handle, 0, hint)
	}
	var deps Handle
	st := NIL
	for {
		item, nextState, d, more := it.next(s, iter, st)
		deps = s.a.Union(deps, d)
		if !more {
			return items, deps, true
		}
		items = append(items, item)
		st = nextState
	}
}

// Collect materializes an iterable into a List without forcing the
// items. Non-iterable input yields Signal(TypeError).
func (a *Arena) Collect(h, state Handle) (Handle, Handle) {
	s := &session{a: a, state: state}
	items, deps, ok := s.collectItems(h)
	if !ok {
		return a.Signal(a.TypeErrorCondition(KindEmptyIterator, h)), NIL
	}
	return a.List(items...), deps
}

// CollectStrict materializes an iterable into a List, evaluating every
// item. Signal items do not stop the walk: the iteration continues so
// that parallel failures surface together, and the union of every
// signal encountered is returned in place of the list.
func (a *Arena) CollectStrict(h, state Handle) (Handle, Handle) {
	s := &session{a: a, state: state}
	return s.collectStrict(h)
}

func (s *session) collectStrict(h Handle) (Handle, Handle) {
	a := s.a
	iter, it, ok := s.resolveIterator(h)
	if !ok {
		return a.Signal(a.TypeErrorCondition(KindEmptyIterator, h)), NIL
	}
	var builder ListBuilder
	var deps, combined Handle
	st := NIL
	for {
		item, nextState, d, more := it.next(s, iter, st)
		deps = a.Union(deps, d)
		if !more {
			break
		}
		value, vd := s.evaluate(item)
		deps = a.Union(deps, vd)
		if a.IsSignal(value) {
			combined = a.SignalUnion(combined, value)
		} else {
			builder.Append(value)
		}
		st = nextState
	}
	if combined != NIL {
		return combined, deps
	}
	return builder.Build(a), deps
}

// collectString concatenates an iterable of String items into a
// String, evaluating each item. A non-String item yields
// Signal(TypeError); signals union and continue per the strict rule.
func (s *session) collectString(h Handle) (Handle, Handle) {
	a := s.a
	iter, it, ok := s.resolveIterator(h)
	if !ok {
		return a.Signal(a.TypeErrorCondition(KindString, h)), NIL
	}
	var builder StringBuilder
	var deps, combined Handle
	st := NIL
	for {
		item, nextState, d, more := it.next(s, iter, st)
		deps = a.Union(deps, d)
		if !more {
			break
		}
		value, vd := s.evaluate(item)
		deps = a.Union(deps, vd)
		switch {
		case a.IsSignal(value):
			combined = a.SignalUnion(combined, value)
		default:
			if str, isString := a.StringValue(value); isString {
				builder.WriteString(str)
			} else {
				combined = a.SignalUnion(combined, a.Signal(a.TypeErrorCondition(KindString, value)))
			}
		}
		st = nextState
	}
	if combined != NIL {
		return combined, deps
	}
	return builder.Build(a), deps
}

// collectHashmap materializes an iterable of two-element [key, value]
// lists into a Hashmap, evaluating keys and values. The builder grows
// by amortized doubling when the source cannot size-hint.
func (s *session) collectHashmap(h Handle) (Handle, Handle) {
	a := s.a
	iter, it, ok := s.resolveIterator(h)
	if !ok {
		return a.Signal(a.TypeErrorCondition(KindHashmap, h)), NIL
	}
	var builder HashmapBuilder
	var deps, combined Handle
	st := NIL
	for {
		item, nextState, d, more := it.next(s, iter, st)
		deps = a.Union(deps, d)
		if !more {
			break
		}
		entry, vd := s.evaluate(item)
		deps = a.Union(deps, vd)
		st = nextState
		if a.IsSignal(entry) {
			combined = a.SignalUnion(combined, entry)
			continue
		}
		pair, isList := a.listItems(entry)
		if !isList || len(pair) != 2 {
			combined = a.SignalUnion(combined, a.Signal(a.TypeErrorCondition(KindList, entry)))
			continue
		}
		key, kd := s.evaluate(pair[0])
		value, vd2 := s.evaluate(pair[1])
		deps = a.Union(a.Union(deps, kd), vd2)
		if a.IsSignal(key) {
			combined = a.SignalUnion(combined, key)
		}
		if a.IsSignal(value) {
			combined = a.SignalUnion(combined, value)
		}
		if combined == NIL {
			builder.Set(key, value)
		}
	}
	if combined != NIL {
		return combined, deps
	}
	return builder.Build(a), deps
}

// collectHashset materializes an iterable into a Hashset, evaluating
// each item.
func (s *session) collectHashset(h Handle) (Handle, Handle) {
	value, deps := s.collectStrict(h)
	if s.a.IsSignal(value) {
		return value, deps
	}
	items, _ := s.a.listItems(value)
	return s.a.Hashset(items...), deps
}

// collectRecord materializes an iterable of [key, value] pairs into a
// Record, preserving encounter order.
func (s *session) collectRecord(h Handle) (Handle, Handle) {
	a := s.a
	value, deps := s.collectStrict(h)
	if a.IsSignal(value) {
		return value, deps
	}
	entries, _ := a.listItems(value)
	keys := make([]Handle, 0, len(entries))
	values := make([]Handle, 0, len(entries))
	for _, entry := range entries {
		pair, isList := a.listItems(entry)
		if !isList || len(pair) != 2 {
			return a.Signal(a.TypeErrorCondition(KindList, entry)), deps
		}
		keys = append(keys, pair[0])
		values = append(values, pair[1])
	}
	return a.Record(a.List(keys...), a.List(values...)), deps
}
