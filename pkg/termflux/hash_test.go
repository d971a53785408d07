package termflux

import (
	"math"
	"testing"
)

// TestHashEqualityContract verifies that structural equality implies
// hash equality across the variant zoo.
func TestHashEqualityContract(t *testing.T) {
	a := NewArena()

	pairs := [][2]Handle{
		{a.Nil(), a.Nil()},
		{a.Boolean(true), a.Boolean(true)},
		{a.Int(42), a.Int(42)},
		{a.Int(1000), a.Int(1000)},
		{a.Float(2.5), a.Float(2.5)},
		{a.String("abc"), a.String("abc")},
		{a.Symbol(9), a.Symbol(9)},
		{a.Timestamp(123), a.Timestamp(123)},
		{a.Date(456), a.Date(456)},
		{a.Pair(a.Int(1), a.Int(2)), a.Pair(a.Int(1), a.Int(2))},
		{a.Tree(a.Int(1), a.Int(2)), a.Tree(a.Int(1), a.Int(2))},
		{
			a.Record(a.Pair(a.String("x"), a.String("y")), a.Pair(a.Int(1), a.Int(2))),
			a.Record(a.Pair(a.String("x"), a.String("y")), a.Pair(a.Int(1), a.Int(2))),
		},
		{a.Lambda(2, a.Variable(1)), a.Lambda(2, a.Variable(1))},
		{a.Builtin(BuiltinAdd), a.Builtin(BuiltinAdd)},
		{a.Compiled(3, 2), a.Compiled(3, 2)},
		{a.Effect(a.PendingCondition()), a.Effect(a.PendingCondition())},
		{a.Signal(a.PendingCondition()), a.Signal(a.PendingCondition())},
		{a.Variable(20), a.Variable(20)},
		{a.Let(a.Int(1), a.Variable(0)), a.Let(a.Int(1), a.Variable(0))},
		{a.LazyResult(a.Int(1), NIL), a.LazyResult(a.Int(1), NIL)},
		{a.RangeIterator(0, 5), a.RangeIterator(0, 5)},
		{a.OnceIterator(a.Int(1)), a.OnceIterator(a.Int(1))},
		{
			a.CustomCondition(a.Symbol(1), a.Int(2), a.Symbol(0)),
			a.CustomCondition(a.Symbol(1), a.Int(2), a.Symbol(0)),
		},
	}

	for i, pair := range pairs {
		x, y := pair[0], pair[1]
		if !a.Equal(x, y) {
			t.Errorf("case %d (%s): expected equality", i, a.Format(x))
			continue
		}
		if a.HashOf(x) != a.HashOf(y) {
			t.Errorf("case %d (%s): equal terms must hash equal", i, a.Format(x))
		}
	}
}

// TestHashReflexivity checks Equal(a, a) and hash stability.
func TestHashReflexivity(t *testing.T) {
	a := NewArena()
	terms := []Handle{
		a.Nil(), a.Int(3), a.Float(1.5), a.String("s"),
		a.Triple(a.Int(1), a.Int(2), a.Int(3)),
		a.Hashmap([]KV{{Key: a.String("k"), Value: a.Int(1)}}),
		a.Lambda(1, a.Variable(0)),
		a.Application(a.Builtin(BuiltinAdd), a.Pair(a.Int(1), a.Int(2))),
	}
	for _, h := range terms {
		if !a.Equal(h, h) {
			t.Errorf("%s: Equal(x, x) must hold", a.Format(h))
		}
		if a.HashOf(h) != a.HashOf(h) {
			t.Errorf("%s: hash must be stable", a.Format(h))
		}
	}
}

// TestFloatNaN pins the documented NaN semantics: NaN == NaN and all
// NaNs hash alike.
func TestFloatNaN(t *testing.T) {
	a := NewArena()
	x := a.Float(math.NaN())
	y := a.Float(math.Float64frombits(0x7ff8000000000001)) // different payload

	if !a.Equal(x, y) {
		t.Error("NaN should equal NaN")
	}
	if a.HashOf(x) != a.HashOf(y) {
		t.Error("all NaNs should hash alike")
	}
	if a.Equal(a.Float(1), a.Float(2)) {
		t.Error("distinct floats should differ")
	}
}

// TestTreeHash pins the approximate Tree hash: only length and depth
// contribute, so different unions of the same leaf count collide by
// design, while equality still compares structure.
func TestTreeHash(t *testing.T) {
	a := NewArena()
	left := a.Tree(a.Int(1), a.Int(2))
	right := a.Tree(a.Int(3), a.Int(4))

	if a.HashOf(left) != a.HashOf(right) {
		t.Error("trees with equal length and depth should hash alike")
	}
	if a.Equal(left, right) {
		t.Error("hash-equal trees with different leaves must not be equal")
	}

	nested := a.Tree(left, a.Int(5))
	if a.HashOf(nested) == a.HashOf(left) {
		t.Error("different length/depth should change the tree hash")
	}

	if n, _ := a.TreeLength(nested); n != 3 {
		t.Errorf("TreeLength = %d, want 3", n)
	}
	if d, _ := a.TreeDepth(nested); d != 2 {
		t.Errorf("TreeDepth = %d, want 2", d)
	}
}

// TestHashmapEquality pins the documented probabilistic semantics:
// same size plus same (order-insensitive) hash is equality, so
// insertion history does not matter.
func TestHashmapEquality(t *testing.T) {
	a := NewArena()
	k1, k2 := a.String("one"), a.String("two")

	forward := a.Hashmap([]KV{{Key: k1, Value: a.Int(1)}, {Key: k2, Value: a.Int(2)}})
	backward := a.Hashmap([]KV{{Key: k2, Value: a.Int(2)}, {Key: k1, Value: a.Int(1)}})

	if !a.Equal(forward, backward) {
		t.Error("hashmaps with different insertion order should be equal")
	}
	if a.HashOf(forward) != a.HashOf(backward) {
		t.Error("hashmaps with different insertion order should hash equal")
	}

	changed := a.Hashmap([]KV{{Key: k1, Value: a.Int(1)}, {Key: k2, Value: a.Int(3)}})
	if a.Equal(forward, changed) {
		t.Error("hashmaps with a differing value should not be equal")
	}

	smaller := a.Hashmap([]KV{{Key: k1, Value: a.Int(1)}})
	if a.Equal(forward, smaller) {
		t.Error("hashmaps of different sizes should not be equal")
	}
}

// TestHashmapDuplicateKeys checks last-write-wins collapse.
func TestHashmapDuplicateKeys(t *testing.T) {
	a := NewArena()
	k := a.String("k")
	m := a.Hashmap([]KV{{Key: k, Value: a.Int(1)}, {Key: k, Value: a.Int(2)}})

	if n, _ := a.HashmapLen(m); n != 1 {
		t.Errorf("duplicate keys should collapse, len = %d", n)
	}
	if v, _ := a.HashmapGet(m, k); !a.Equal(v, a.Int(2)) {
		t.Error("last write should win")
	}
}

// TestApplicationHashIgnoresCache verifies the memo cell stays out of
// structural identity.
func TestApplicationHashIgnoresCache(t *testing.T) {
	a := NewArena()
	app1 := a.Application(a.Builtin(BuiltinAdd), a.Pair(a.Int(1), a.Int(2)))
	app2 := a.Application(a.Builtin(BuiltinAdd), a.Pair(a.Int(1), a.Int(2)))

	before := a.HashOf(app1)
	if _, _ = a.Evaluate(app1, NIL); a.HashOf(app1) != before {
		t.Error("evaluating must not change the application hash")
	}
	if !a.Equal(app1, app2) {
		t.Error("cached and uncached applications with equal structure should be equal")
	}
}
