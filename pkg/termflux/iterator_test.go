package termflux

import "testing"

// collectInts walks an iterable and returns the Int items, failing the
// test on any non-Int.
func collectInts(t *testing.T, a *Arena, h Handle) []int64 {
	t.Helper()
	list, _ := a.CollectStrict(h, NIL)
	if a.IsSignal(list) {
		t.Fatalf("collect signalled: %s", a.Format(list))
	}
	items, ok := a.ListItems(list)
	if !ok {
		t.Fatalf("collect did not produce a list: %s", a.Format(list))
	}
	out := make([]int64, len(items))
	for i, item := range items {
		v, isInt := a.IntValue(item)
		if !isInt {
			t.Fatalf("item %d is %s, want Int", i, a.Format(item))
		}
		out[i] = v
	}
	return out
}

func assertInts(t *testing.T, got []int64, want ...int64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestSourceIterators(t *testing.T) {
	a := NewArena()

	t.Run("empty produces nothing", func(t *testing.T) {
		assertInts(t, collectInts(t, a, a.EmptyIterator()))
		if n, ok := a.SizeHint(a.EmptyIterator()); !ok || n != 0 {
			t.Errorf("size hint = %d, %v", n, ok)
		}
	})

	t.Run("once produces a single item", func(t *testing.T) {
		assertInts(t, collectInts(t, a, a.OnceIterator(a.Int(42))), 42)
	})

	t.Run("range produces consecutive ints", func(t *testing.T) {
		assertInts(t, collectInts(t, a, a.RangeIterator(3, 4)), 3, 4, 5, 6)
		if n, ok := a.SizeHint(a.RangeIterator(3, 4)); !ok || n != 4 {
			t.Errorf("size hint = %d, %v", n, ok)
		}
	})

	t.Run("repeat bounded by take", func(t *testing.T) {
		iter := a.TakeIterator(a.RepeatIterator(a.Int(9)), 3)
		assertInts(t, collectInts(t, a, iter), 9, 9, 9)
	})

	t.Run("integers bounded by take", func(t *testing.T) {
		iter := a.TakeIterator(a.IntegersIterator(), 4)
		assertInts(t, collectInts(t, a, iter), 0, 1, 2, 3)
		if _, known := a.SizeHint(a.IntegersIterator()); known {
			t.Error("an infinite source should not size-hint")
		}
	})

	t.Run("list iterates by position", func(t *testing.T) {
		assertInts(t, collectInts(t, a, a.Triple(a.Int(7), a.Int(8), a.Int(9))), 7, 8, 9)
	})

	t.Run("string iterates characters", func(t *testing.T) {
		list, _ := a.Collect(a.String("abc"), NIL)
		items, _ := a.ListItems(list)
		if len(items) != 3 {
			t.Fatalf("expected 3 characters, got %d", len(items))
		}
		if s, _ := a.StringValue(items[1]); s != "b" {
			t.Errorf("middle character = %q", s)
		}
	})
}

func TestTransformIterators(t *testing.T) {
	a := NewArena()
	source := func() Handle { return a.Triple(a.Int(1), a.Int(2), a.Int(3)) }
	addTen := a.Lambda(1, a.Application(a.Builtin(BuiltinAdd), a.Pair(a.Variable(0), a.Int(10))))

	t.Run("map stays lazy until collected strictly", func(t *testing.T) {
		iter := a.MapIterator(source(), addTen)
		lazy, _ := a.Collect(iter, NIL)
		items, _ := a.ListItems(lazy)
		if a.KindOf(items[0]) != KindApplication {
			t.Error("lazy collect should hold unevaluated applications")
		}
		assertInts(t, collectInts(t, a, iter), 11, 12, 13)
	})

	t.Run("filter keeps truthy predicate items", func(t *testing.T) {
		gtOne := a.Lambda(1, a.Application(a.Builtin(BuiltinGt), a.Pair(a.Variable(0), a.Int(1))))
		iter := a.FilterIterator(source(), gtOne)
		assertInts(t, collectInts(t, a, iter), 2, 3)
	})

	t.Run("flatten concatenates one level", func(t *testing.T) {
		nested := a.Triple(a.Pair(a.Int(1), a.Int(2)), a.Int(3), a.UnitList(a.Int(4)))
		iter := a.FlattenIterator(nested)
		assertInts(t, collectInts(t, a, iter), 1, 2, 3, 4)
	})

	t.Run("zip pairs until the shorter ends", func(t *testing.T) {
		iter := a.ZipIterator(a.RangeIterator(0, 2), a.RangeIterator(10, 5))
		list, _ := a.CollectStrict(iter, NIL)
		items, _ := a.ListItems(list)
		if len(items) != 2 {
			t.Fatalf("expected 2 pairs, got %d", len(items))
		}
		pair, _ := a.ListItems(items[1])
		if v, _ := a.IntValue(pair[0]); v != 1 {
			t.Errorf("second pair left = %d", v)
		}
		if v, _ := a.IntValue(pair[1]); v != 11 {
			t.Errorf("second pair right = %d", v)
		}
	})

	t.Run("skip drops a prefix", func(t *testing.T) {
		iter := a.SkipIterator(a.RangeIterator(0, 5), 2)
		assertInts(t, collectInts(t, a, iter), 2, 3, 4)
		if n, ok := a.SizeHint(iter); !ok || n != 3 {
			t.Errorf("size hint = %d, %v", n, ok)
		}
	})

	t.Run("skip past the end is empty", func(t *testing.T) {
		iter := a.SkipIterator(a.RangeIterator(0, 2), 5)
		assertInts(t, collectInts(t, a, iter))
	})

	t.Run("take truncates", func(t *testing.T) {
		iter := a.TakeIterator(a.RangeIterator(0, 5), 2)
		assertInts(t, collectInts(t, a, iter), 0, 1)
		if n, ok := a.SizeHint(iter); !ok || n != 2 {
			t.Errorf("size hint = %d, %v", n, ok)
		}
	})

	t.Run("intersperse separates items", func(t *testing.T) {
		iter := a.IntersperseIterator(source(), a.Int(0))
		assertInts(t, collectInts(t, a, iter), 1, 0, 2, 0, 3)
		if n, ok := a.SizeHint(iter); !ok || n != 5 {
			t.Errorf("size hint = %d, %v", n, ok)
		}
	})

	t.Run("evaluate forces items against the state", func(t *testing.T) {
		condition := a.CustomCondition(a.Symbol(5), a.Nil(), a.Symbol(0))
		state := a.Hashmap([]KV{{Key: condition, Value: a.Int(77)}})
		iter := a.EvaluateIterator(a.UnitList(a.Effect(condition)))

		list, deps := a.Collect(iter, state)
		items, _ := a.ListItems(list)
		if v, _ := a.IntValue(items[0]); v != 77 {
			t.Errorf("evaluated item = %s", a.Format(items[0]))
		}
		depList := a.StateDependencies(deps)
		if len(depList) != 1 || !a.Equal(depList[0], condition) {
			t.Error("iteration should accumulate the effect dependency")
		}
	})
}

func TestIndexedAccessor(t *testing.T) {
	a := NewArena()

	t.Run("explicit keys against a hashmap", func(t *testing.T) {
		m := a.Hashmap([]KV{
			{Key: a.String("x"), Value: a.Int(1)},
			{Key: a.String("y"), Value: a.Int(2)},
		})
		keys := a.Pair(a.String("y"), a.String("missing"))
		iter := a.IndexedAccessorIterator(m, keys)

		list, _ := a.CollectStrict(iter, NIL)
		items, _ := a.ListItems(list)
		if v, _ := a.IntValue(items[0]); v != 2 {
			t.Errorf("lookup y = %s", a.Format(items[0]))
		}
		if a.KindOf(items[1]) != KindNil {
			t.Errorf("missing key should yield Nil, got %s", a.Format(items[1]))
		}
	})

	t.Run("explicit indices against a list", func(t *testing.T) {
		subject := a.Triple(a.Int(10), a.Int(20), a.Int(30))
		iter := a.IndexedAccessorIterator(subject, a.Pair(a.Int(2), a.Int(0)))
		assertInts(t, collectInts(t, a, iter), 30, 10)
	})
}

func TestHashmapIterators(t *testing.T) {
	a := NewArena()
	m := a.Hashmap([]KV{
		{Key: a.String("a"), Value: a.Int(1)},
		{Key: a.String("b"), Value: a.Int(2)},
	})

	t.Run("keys and values align", func(t *testing.T) {
		keysList, _ := a.CollectStrict(a.HashmapKeysIterator(m), NIL)
		valuesList, _ := a.CollectStrict(a.HashmapValuesIterator(m), NIL)
		keys, _ := a.ListItems(keysList)
		values, _ := a.ListItems(valuesList)
		if len(keys) != 2 || len(values) != 2 {
			t.Fatalf("expected 2 keys and 2 values, got %d and %d", len(keys), len(values))
		}
		for i, key := range keys {
			expected, _ := a.HashmapGet(m, key)
			if !a.Equal(values[i], expected) {
				t.Error("values iterator should align with keys iterator")
			}
		}
	})

	t.Run("size hints", func(t *testing.T) {
		if n, ok := a.SizeHint(a.HashmapKeysIterator(m)); !ok || n != 2 {
			t.Errorf("keys size hint = %d, %v", n, ok)
		}
	})

	t.Run("hashset iterates its members", func(t *testing.T) {
		set := a.Hashset(a.Int(100), a.Int(200))
		list, _ := a.CollectStrict(a.Iterate(set), NIL)
		if n, _ := a.ListLen(list); n != 2 {
			t.Errorf("hashset iteration produced %d items", n)
		}
	})
}

func TestCollects(t *testing.T) {
	a := NewArena()

	t.Run("collect string concatenates", func(t *testing.T) {
		source := a.Triple(a.String("a"), a.String("b"), a.String("c"))
		iter := a.IntersperseIterator(source, a.String(","))
		s := &session{a: a}
		value, _ := s.collectString(iter)
		if str, _ := a.StringValue(value); str != "a,b,c" {
			t.Errorf("collected string = %q", str)
		}
	})

	t.Run("collect string rejects non-strings", func(t *testing.T) {
		s := &session{a: a}
		value, _ := s.collectString(a.Pair(a.String("a"), a.Int(1)))
		if !a.IsSignal(value) {
			t.Error("expected a TypeError signal")
		}
	})

	t.Run("collect hashmap builds from pairs", func(t *testing.T) {
		entries := a.Pair(
			a.Pair(a.String("x"), a.Int(1)),
			a.Pair(a.String("y"), a.Int(2)),
		)
		s := &session{a: a}
		value, _ := s.collectHashmap(entries)
		if v, _ := a.HashmapGet(value, a.String("y")); !a.Equal(v, a.Int(2)) {
			t.Errorf("collected hashmap = %s", a.Format(value))
		}
	})

	t.Run("collect record preserves order", func(t *testing.T) {
		entries := a.Pair(
			a.Pair(a.String("first"), a.Int(1)),
			a.Pair(a.String("second"), a.Int(2)),
		)
		s := &session{a: a}
		value, _ := s.collectRecord(entries)
		keys, _, _ := a.RecordFields(value)
		if k, _ := a.ListGet(keys, 0); !a.Equal(k, a.String("first")) {
			t.Error("record keys should preserve encounter order")
		}
	})

	t.Run("strict collect unions parallel signals", func(t *testing.T) {
		bad := a.Pair(
			a.Application(a.Builtin(BuiltinDivide), a.Pair(a.Int(1), a.Int(0))),
			a.Application(a.Builtin(BuiltinAdd), a.Pair(a.Int(1), a.Boolean(true))),
		)
		value, _ := a.CollectStrict(bad, NIL)
		if !a.IsSignal(value) {
			t.Fatal("expected a signal")
		}
		conditions, _ := a.SignalConditions(value)
		if len(conditions) != 2 {
			t.Errorf("both failures should surface, got %d", len(conditions))
		}
	})

	t.Run("collect on a non-iterable signals", func(t *testing.T) {
		value, _ := a.Collect(a.Int(1), NIL)
		if !a.IsSignal(value) {
			t.Error("expected a TypeError signal")
		}
	})

	t.Run("protocol walk through Next", func(t *testing.T) {
		iter := a.RangeIterator(5, 2)
		item, st, _, ok := a.Next(iter, NIL, NIL)
		if !ok {
			t.Fatal("expected a first item")
		}
		if v, _ := a.IntValue(item); v != 5 {
			t.Errorf("first = %s", a.Format(item))
		}
		item, st, _, ok = a.Next(iter, st, NIL)
		if v, _ := a.IntValue(item); !ok || v != 6 {
			t.Errorf("second = %s, %v", a.Format(item), ok)
		}
		if _, _, _, ok = a.Next(iter, st, NIL); ok {
			t.Error("expected exhaustion")
		}
	})
}
