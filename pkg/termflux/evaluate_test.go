package termflux

import "testing"

// TestEvaluateAtoms verifies the default evaluation: values are
// already normal forms and carry no dependencies.
func TestEvaluateAtoms(t *testing.T) {
	a := NewArena()
	terms := []Handle{
		a.Nil(), a.Int(3), a.Float(1.5), a.String("s"),
		a.Boolean(true), a.Triple(a.Int(1), a.Int(2), a.Int(3)),
		a.Lambda(1, a.Variable(0)), a.Builtin(BuiltinAdd),
		a.RangeIterator(0, 3),
	}
	for _, h := range terms {
		value, deps := a.Evaluate(h, NIL)
		if value != h {
			t.Errorf("%s should evaluate to itself", a.Format(h))
		}
		if deps != NIL {
			t.Errorf("%s should have no dependencies", a.Format(h))
		}
	}
}

// TestBuiltinApplication is the first end-to-end scenario: a strict
// builtin over literal arguments.
func TestBuiltinApplication(t *testing.T) {
	a := NewArena()
	expr := a.Application(a.Builtin(BuiltinAdd), a.Pair(a.Int(3), a.Int(4)))

	value, deps := a.Evaluate(expr, NIL)
	if v, _ := a.IntValue(value); v != 7 {
		t.Errorf("Add(3, 4) = %s, want 7", a.Format(value))
	}
	if deps != NIL {
		t.Error("literal arithmetic should have no dependencies")
	}
}

// TestLambdaBeta covers β-reduction: application substitutes the
// arguments into the body, and the result matches direct substitution.
func TestLambdaBeta(t *testing.T) {
	a := NewArena()

	t.Run("record-building lambda", func(t *testing.T) {
		body := a.Hashmap([]KV{
			{Key: a.String("foo"), Value: a.Variable(2)},
			{Key: a.String("bar"), Value: a.Variable(1)},
			{Key: a.String("baz"), Value: a.Variable(0)},
		})
		expr := a.Application(a.Lambda(3, body), a.Triple(a.Int(3), a.Int(4), a.Int(5)))
		value, deps := a.Evaluate(expr, NIL)

		expected := a.Hashmap([]KV{
			{Key: a.String("foo"), Value: a.Int(3)},
			{Key: a.String("bar"), Value: a.Int(4)},
			{Key: a.String("baz"), Value: a.Int(5)},
		})
		if !a.Equal(value, expected) {
			t.Errorf("got %s, want %s", a.Format(value), a.Format(expected))
		}
		if deps != NIL {
			t.Error("no dependencies expected")
		}
	})

	t.Run("beta equals direct substitution", func(t *testing.T) {
		body := a.Application(a.Builtin(BuiltinSubtract), a.Pair(a.Variable(1), a.Variable(0)))
		args := a.Pair(a.Int(10), a.Int(4))

		viaApply, _ := a.Apply(a.Lambda(2, body), args, NIL)
		viaSubstitute, _ := a.Evaluate(a.Substitute(body, args, 0), NIL)
		if !a.Equal(viaApply, viaSubstitute) {
			t.Errorf("apply %s != substitute %s", a.Format(viaApply), a.Format(viaSubstitute))
		}
	})

	t.Run("wrong arity signals", func(t *testing.T) {
		expr := a.Application(a.Lambda(2, a.Variable(0)), a.UnitList(a.Int(1)))
		value, _ := a.Evaluate(expr, NIL)
		if !a.IsSignal(value) {
			t.Fatal("expected a signal for wrong arity")
		}
		conditions, _ := a.SignalConditions(value)
		ctype, _ := a.ConditionTypeOf(conditions[0])
		if ctype != CondInvalidFunctionArgs {
			t.Errorf("condition = %s, want InvalidFunctionArgs", ctype)
		}
	})
}

// TestLetEvaluation is the nested-binding scenario: inner offsets
// resolve innermost-first.
func TestLetEvaluation(t *testing.T) {
	a := NewArena()
	expr := a.Let(a.Int(3), a.Let(a.Int(4),
		a.Application(a.Builtin(BuiltinSubtract), a.Pair(a.Variable(1), a.Variable(0))),
	))

	value, deps := a.Evaluate(expr, NIL)
	if v, _ := a.IntValue(value); v != -1 {
		t.Errorf("let-subtract = %s, want -1", a.Format(value))
	}
	if deps != NIL {
		t.Error("no dependencies expected")
	}
}

// TestEffectEvaluation covers the state lookup scenario: the resolved
// value is applied and the consulted condition is the dependency set.
func TestEffectEvaluation(t *testing.T) {
	a := NewArena()
	condition := a.CustomCondition(a.Symbol(123), a.Int(3), a.Symbol(0))
	expr := a.Application(a.Effect(condition), a.Pair(a.Int(3), a.Int(4)))

	t.Run("hit resolves and records the dependency", func(t *testing.T) {
		state := a.Hashmap([]KV{{Key: condition, Value: a.Builtin(BuiltinAdd)}})
		value, deps := a.Evaluate(expr, state)
		if v, _ := a.IntValue(value); v != 7 {
			t.Errorf("effectful add = %s, want 7", a.Format(value))
		}
		conditions := a.StateDependencies(deps)
		if len(conditions) != 1 || !a.Equal(conditions[0], condition) {
			t.Errorf("dependencies = %v, want exactly the consulted condition", conditions)
		}
	})

	t.Run("miss signals the condition and still depends on it", func(t *testing.T) {
		value, deps := a.Evaluate(a.Effect(condition), NIL)
		if !a.IsSignal(value) {
			t.Fatal("missing state should signal")
		}
		conditions, _ := a.SignalConditions(value)
		if len(conditions) != 1 || !a.Equal(conditions[0], condition) {
			t.Error("signal should carry the unresolved condition")
		}
		depList := a.StateDependencies(deps)
		if len(depList) != 1 || !a.Equal(depList[0], condition) {
			t.Error("dependency set should contain the condition even on a miss")
		}
	})
}

// TestSignalPropagation pins the short-circuit rules for strict
// argument positions.
func TestSignalPropagation(t *testing.T) {
	a := NewArena()
	signalFoo := a.Signal(a.CustomCondition(a.Symbol(123), a.String("foo"), a.Symbol(0)))
	signalBar := a.Signal(a.CustomCondition(a.Symbol(456), a.String("bar"), a.Symbol(0)))

	t.Run("one signal argument propagates unchanged", func(t *testing.T) {
		expr := a.Application(a.Builtin(BuiltinAdd), a.Pair(a.Int(3), signalFoo))
		value, deps := a.Evaluate(expr, NIL)
		if !a.Equal(value, signalFoo) {
			t.Errorf("got %s, want the original signal", a.Format(value))
		}
		if deps != NIL {
			t.Error("no dependencies expected")
		}
	})

	t.Run("two signal arguments union", func(t *testing.T) {
		expr := a.Application(a.Builtin(BuiltinAdd), a.Pair(signalFoo, signalBar))
		value, _ := a.Evaluate(expr, NIL)
		if !a.IsSignal(value) {
			t.Fatal("expected a signal")
		}
		conditions, _ := a.SignalConditions(value)
		if len(conditions) != 2 {
			t.Errorf("expected both conditions to surface, got %d", len(conditions))
		}
	})

	t.Run("signal target absorbs the application", func(t *testing.T) {
		expr := a.Application(signalFoo, a.Pair(a.Int(1), a.Int(2)))
		value, deps := a.Evaluate(expr, NIL)
		if !a.Equal(value, signalFoo) {
			t.Errorf("got %s, want the target signal", a.Format(value))
		}
		if deps != NIL {
			t.Error("no dependencies expected")
		}
	})

	t.Run("non-callable target signals", func(t *testing.T) {
		expr := a.Application(a.Int(3), a.UnitList(a.Int(1)))
		value, _ := a.Evaluate(expr, NIL)
		conditions, _ := a.SignalConditions(value)
		ctype, _ := a.ConditionTypeOf(conditions[0])
		if ctype != CondInvalidFunctionTarget {
			t.Errorf("condition = %s, want InvalidFunctionTarget", ctype)
		}
	})
}

// TestPartial covers partial application and arity arithmetic.
func TestPartial(t *testing.T) {
	a := NewArena()
	partial := a.Partial(a.Builtin(BuiltinSubtract), a.Int(10))

	value, _ := a.Apply(partial, a.UnitList(a.Int(4)), NIL)
	if v, _ := a.IntValue(value); v != 6 {
		t.Errorf("Partial(Subtract, 10)(4) = %s, want 6", a.Format(value))
	}
}

// TestConstructor covers record construction and its arity check.
func TestConstructor(t *testing.T) {
	a := NewArena()
	keys := a.Pair(a.String("x"), a.String("y"))
	ctor := a.Constructor(keys)

	t.Run("matching arity builds a record", func(t *testing.T) {
		value, _ := a.Apply(ctor, a.Pair(a.Int(1), a.Int(2)), NIL)
		if a.KindOf(value) != KindRecord {
			t.Fatalf("got %s, want a record", a.Format(value))
		}
		if v, _ := a.RecordGet(value, a.String("y")); !a.Equal(v, a.Int(2)) {
			t.Error("record field y should be 2")
		}
	})

	t.Run("wrong arity signals", func(t *testing.T) {
		value, _ := a.Apply(ctor, a.UnitList(a.Int(1)), NIL)
		if !a.IsSignal(value) {
			t.Error("expected InvalidFunctionArgs signal")
		}
	})
}

// TestCompiled covers the host-linked function registry.
func TestCompiled(t *testing.T) {
	a := NewArena()
	const target = 9001
	err := RegisterCompiled(target, 2, func(a *Arena, args []Handle, state Handle) (Handle, Handle) {
		x, _ := a.IntValue(args[0])
		y, _ := a.IntValue(args[1])
		return a.Int(x * y), NIL
	})
	if err != nil {
		t.Fatalf("RegisterCompiled failed: %v", err)
	}
	defer UnregisterCompiled(target)

	t.Run("linked target applies", func(t *testing.T) {
		expr := a.Application(a.Compiled(target, 2), a.Pair(a.Int(6), a.Int(7)))
		value, _ := a.Evaluate(expr, NIL)
		if v, _ := a.IntValue(value); v != 42 {
			t.Errorf("compiled multiply = %s, want 42", a.Format(value))
		}
	})

	t.Run("unlinked target signals", func(t *testing.T) {
		expr := a.Application(a.Compiled(55555, 1), a.UnitList(a.Int(1)))
		value, _ := a.Evaluate(expr, NIL)
		conditions, _ := a.SignalConditions(value)
		ctype, _ := a.ConditionTypeOf(conditions[0])
		if ctype != CondInvalidFunctionTarget {
			t.Errorf("condition = %s, want InvalidFunctionTarget", ctype)
		}
	})

	t.Run("duplicate registration fails", func(t *testing.T) {
		if err := RegisterCompiled(target, 2, func(a *Arena, args []Handle, state Handle) (Handle, Handle) {
			return a.Nil(), NIL
		}); err == nil {
			t.Error("expected duplicate registration to fail")
		}
	})
}

// TestLazyResult verifies the precomputed pair passes through
// evaluation untouched.
func TestLazyResult(t *testing.T) {
	a := NewArena()
	condition := a.CustomCondition(a.Symbol(1), a.Nil(), a.Symbol(0))
	wrapped := a.LazyResult(a.Int(9), condition)

	value, deps := a.Evaluate(wrapped, NIL)
	if v, _ := a.IntValue(value); v != 9 {
		t.Errorf("lazy result value = %s", a.Format(value))
	}
	if !a.Equal(deps, condition) {
		t.Error("lazy result should return its stored dependencies")
	}
}

// TestDependencyUnion pins the union algebra on dependency sets.
func TestDependencyUnion(t *testing.T) {
	a := NewArena()
	c1 := a.CustomCondition(a.Symbol(1), a.Nil(), a.Symbol(0))
	c2 := a.CustomCondition(a.Symbol(2), a.Nil(), a.Symbol(0))
	c3 := a.CustomCondition(a.Symbol(3), a.Nil(), a.Symbol(0))

	t.Run("identity", func(t *testing.T) {
		if a.Union(c1, NIL) != c1 || a.Union(NIL, c1) != c1 {
			t.Error("union with the empty set should be identity")
		}
	})

	t.Run("associativity modulo duplication", func(t *testing.T) {
		left := a.Union(a.Union(c1, c2), c3)
		right := a.Union(c1, a.Union(c2, c3))

		leftConditions := a.StateDependencies(left)
		rightConditions := a.StateDependencies(right)
		if len(leftConditions) != 3 || len(rightConditions) != 3 {
			t.Fatalf("expected 3 conditions each, got %d and %d",
				len(leftConditions), len(rightConditions))
		}
		seen := map[uint64]bool{}
		for _, c := range leftConditions {
			seen[a.HashOf(c)] = true
		}
		for _, c := range rightConditions {
			if !seen[a.HashOf(c)] {
				t.Error("associated unions should contain the same conditions")
			}
		}
	})

	t.Run("duplicates deduplicate at enumeration", func(t *testing.T) {
		dup := a.Union(a.Union(c1, c2), c1)
		conditions := a.StateDependencies(dup)
		if len(conditions) != 2 {
			t.Errorf("expected deduplicated enumeration, got %d", len(conditions))
		}
	})
}
