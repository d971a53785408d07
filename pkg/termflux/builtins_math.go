package termflux

import "math"

// Arithmetic, comparison and logic builtins. The arithmetic set
// dispatches on the Int/Float kind pair of its strict arguments and
// promotes mixed operands to Float; Add additionally concatenates
// Strings. Division and remainder by zero raise an in-band Error
// signal.

// numericValue widens an Int or Float argument to float64.
func numericValue(a *Arena, h Handle) (float64, bool) {
	if v, ok := a.IntValue(h); ok {
		return float64(v), true
	}
	if v, ok := a.FloatValue(h); ok {
		return v, true
	}
	return 0, false
}

// numericKinds are the overload patterns covered by a binary numeric
// builtin.
func numericKinds() [][]Kind {
	return [][]Kind{
		{KindInt, KindInt},
		{KindInt, KindFloat},
		{KindFloat, KindInt},
		{KindFloat, KindFloat},
	}
}

// numericOverloads builds the four Int/Float overloads around a pair
// of implementations: exact integers when both operands are Ints,
// float math otherwise.
func numericOverloads(intFn func(s *session, self Handle, x, y int64) (Handle, Handle), floatFn func(s *session, self Handle, x, y float64) (Handle, Handle)) []overload {
	impl := func(s *session, self Handle, args []Handle) (Handle, Handle) {
		a := s.a
		if x, ok := a.IntValue(args[0]); ok {
			if y, ok := a.IntValue(args[1]); ok {
				return intFn(s, self, x, y)
			}
		}
		x, _ := numericValue(a, args[0])
		y, _ := numericValue(a, args[1])
		return floatFn(s, self, x, y)
	}
	var out []overload
	for _, kinds := range numericKinds() {
		out = append(out, overload{kinds: kinds, impl: impl})
	}
	return out
}

// numericTypeError is the fallback for numeric builtins: a TypeError
// signal for every non-numeric strict argument, unioned so parallel
// mistakes surface together.
func numericTypeError(s *session, self Handle, args []Handle) (Handle, Handle) {
	a := s.a
	var combined Handle
	for _, arg := range args {
		if _, ok := numericValue(a, arg); !ok {
			combined = a.SignalUnion(combined, a.Signal(a.TypeErrorCondition(KindInt, arg)))
		}
	}
	if combined == NIL {
		combined = a.Signal(a.InvalidFunctionArgsCondition(self, a.List(args...)))
	}
	return combined, NIL
}

func divisionByZero(s *session) (Handle, Handle) {
	return s.a.Signal(s.a.ErrorCondition(s.a.String("division by zero"))), NIL
}

func compareImpl(intFn func(x, y int64) bool, floatFn func(x, y float64) bool, stringFn func(x, y string) bool) builtinImpl {
	return func(s *session, self Handle, args []Handle) (Handle, Handle) {
		a := s.a
		if x, ok := a.IntValue(args[0]); ok {
			if y, ok := a.IntValue(args[1]); ok {
				return a.Boolean(intFn(x, y)), NIL
			}
		}
		if x, ok := a.StringValue(args[0]); ok {
			if y, ok := a.StringValue(args[1]); ok {
				return a.Boolean(stringFn(x, y)), NIL
			}
		}
		x, xok := numericValue(a, args[0])
		y, yok := numericValue(a, args[1])
		if !xok || !yok {
			return numericTypeError(s, self, args)
		}
		return a.Boolean(floatFn(x, y)), NIL
	}
}

func compareOverloads(impl builtinImpl) []overload {
	out := append([]overload{}, overload{kinds: []Kind{KindString, KindString}, impl: impl})
	for _, kinds := range numericKinds() {
		out = append(out, overload{kinds: kinds, impl: impl})
	}
	return out
}

func init() {
	registerBuiltin(BuiltinAdd, &builtinDef{
		name:  "Add",
		modes: []argMode{argStrict, argStrict},
		overloads: append(numericOverloads(
			func(s *session, self Handle, x, y int64) (Handle, Handle) {
				return s.a.Int(x + y), NIL
			},
			func(s *session, self Handle, x, y float64) (Handle, Handle) {
				return s.a.Float(x + y), NIL
			},
		), overload{
			kinds: []Kind{KindString, KindString},
			impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				x, _ := s.a.StringValue(args[0])
				y, _ := s.a.StringValue(args[1])
				return s.a.String(x + y), NIL
			},
		}),
		fallback: numericTypeError,
	})

	registerBuiltin(BuiltinSubtract, &builtinDef{
		name:  "Subtract",
		modes: []argMode{argStrict, argStrict},
		overloads: numericOverloads(
			func(s *session, self Handle, x, y int64) (Handle, Handle) {
				return s.a.Int(x - y), NIL
			},
			func(s *session, self Handle, x, y float64) (Handle, Handle) {
				return s.a.Float(x - y), NIL
			},
		),
		fallback: numericTypeError,
	})

	registerBuiltin(BuiltinMultiply, &builtinDef{
		name:  "Multiply",
		modes: []argMode{argStrict, argStrict},
		overloads: numericOverloads(
			func(s *session, self Handle, x, y int64) (Handle, Handle) {
				return s.a.Int(x * y), NIL
			},
			func(s *session, self Handle, x, y float64) (Handle, Handle) {
				return s.a.Float(x * y), NIL
			},
		),
		fallback: numericTypeError,
	})

	registerBuiltin(BuiltinDivide, &builtinDef{
		name:  "Divide",
		modes: []argMode{argStrict, argStrict},
		overloads: numericOverloads(
			func(s *session, self Handle, x, y int64) (Handle, Handle) {
				if y == 0 {
					return divisionByZero(s)
				}
				return s.a.Int(x / y), NIL
			},
			func(s *session, self Handle, x, y float64) (Handle, Handle) {
				if y == 0 {
					return divisionByZero(s)
				}
				return s.a.Float(x / y), NIL
			},
		),
		fallback: numericTypeError,
	})

	registerBuiltin(BuiltinRemainder, &builtinDef{
		name:  "Remainder",
		modes: []argMode{argStrict, argStrict},
		overloads: numericOverloads(
			func(s *session, self Handle, x, y int64) (Handle, Handle) {
				if y == 0 {
					return divisionByZero(s)
				}
				return s.a.Int(x % y), NIL
			},
			func(s *session, self Handle, x, y float64) (Handle, Handle) {
				if y == 0 {
					return divisionByZero(s)
				}
				return s.a.Float(math.Mod(x, y)), NIL
			},
		),
		fallback: numericTypeError,
	})

	registerBuiltin(BuiltinPow, &builtinDef{
		name:  "Pow",
		modes: []argMode{argStrict, argStrict},
		overloads: numericOverloads(
			func(s *session, self Handle, x, y int64) (Handle, Handle) {
				if y < 0 {
					return s.a.Float(math.Pow(float64(x), float64(y))), NIL
				}
				result := int64(1)
				for i := int64(0); i < y; i++ {
					result *= x
				}
				return s.a.Int(result), NIL
			},
			func(s *session, self Handle, x, y float64) (Handle, Handle) {
				return s.a.Float(math.Pow(x, y)), NIL
			},
		),
		fallback: numericTypeError,
	})

	registerBuiltin(BuiltinAbs, &builtinDef{
		name:  "Abs",
		modes: []argMode{argStrict},
		overloads: []overload{
			{kinds: []Kind{KindInt}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				v, _ := s.a.IntValue(args[0])
				if v < 0 {
					v = -v
				}
				return s.a.Int(v), NIL
			}},
			{kinds: []Kind{KindFloat}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				v, _ := s.a.FloatValue(args[0])
				return s.a.Float(math.Abs(v)), NIL
			}},
		},
		fallback: numericTypeError,
	})

	registerBuiltin(BuiltinMin, &builtinDef{
		name:  "Min",
		modes: []argMode{argStrict, argStrict},
		overloads: numericOverloads(
			func(s *session, self Handle, x, y int64) (Handle, Handle) {
				if y < x {
					x = y
				}
				return s.a.Int(x), NIL
			},
			func(s *session, self Handle, x, y float64) (Handle, Handle) {
				return s.a.Float(math.Min(x, y)), NIL
			},
		),
		fallback: numericTypeError,
	})

	registerBuiltin(BuiltinMax, &builtinDef{
		name:  "Max",
		modes: []argMode{argStrict, argStrict},
		overloads: numericOverloads(
			func(s *session, self Handle, x, y int64) (Handle, Handle) {
				if y > x {
					x = y
				}
				return s.a.Int(x), NIL
			},
			func(s *session, self Handle, x, y float64) (Handle, Handle) {
				return s.a.Float(math.Max(x, y)), NIL
			},
		),
		fallback: numericTypeError,
	})

	registerBuiltin(BuiltinFloor, &builtinDef{
		name:      "Floor",
		modes:     []argMode{argStrict},
		overloads: roundingOverloads(math.Floor),
		fallback:  numericTypeError,
	})

	registerBuiltin(BuiltinCeil, &builtinDef{
		name:      "Ceil",
		modes:     []argMode{argStrict},
		overloads: roundingOverloads(math.Ceil),
		fallback:  numericTypeError,
	})

	registerBuiltin(BuiltinRound, &builtinDef{
		name:      "Round",
		modes:     []argMode{argStrict},
		overloads: roundingOverloads(math.Round),
		fallback:  numericTypeError,
	})

	registerBuiltin(BuiltinEqual, &builtinDef{
		name:  "Equal",
		modes: []argMode{argStrict, argStrict},
		overloads: []overload{
			{kinds: []Kind{kindAny, kindAny}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				return s.a.Boolean(s.a.Equal(args[0], args[1])), NIL
			}},
		},
	})

	registerBuiltin(BuiltinLt, &builtinDef{
		name:  "Lt",
		modes: []argMode{argStrict, argStrict},
		overloads: compareOverloads(compareImpl(
			func(x, y int64) bool { return x < y },
			func(x, y float64) bool { return x < y },
			func(x, y string) bool { return x < y },
		)),
		fallback: numericTypeError,
	})

	registerBuiltin(BuiltinLte, &builtinDef{
		name:  "Lte",
		modes: []argMode{argStrict, argStrict},
		overloads: compareOverloads(compareImpl(
			func(x, y int64) bool { return x <= y },
			func(x, y float64) bool { return x <= y },
			func(x, y string) bool { return x <= y },
		)),
		fallback: numericTypeError,
	})

	registerBuiltin(BuiltinGt, &builtinDef{
		name:  "Gt",
		modes: []argMode{argStrict, argStrict},
		overloads: compareOverloads(compareImpl(
			func(x, y int64) bool { return x > y },
			func(x, y float64) bool { return x > y },
			func(x, y string) bool { return x > y },
		)),
		fallback: numericTypeError,
	})

	registerBuiltin(BuiltinGte, &builtinDef{
		name:  "Gte",
		modes: []argMode{argStrict, argStrict},
		overloads: compareOverloads(compareImpl(
			func(x, y int64) bool { return x >= y },
			func(x, y float64) bool { return x >= y },
			func(x, y string) bool { return x >= y },
		)),
		fallback: numericTypeError,
	})

	registerBuiltin(BuiltinNot, &builtinDef{
		name:  "Not",
		modes: []argMode{argStrict},
		overloads: []overload{
			{kinds: []Kind{kindAny}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				return s.a.Boolean(!s.a.IsTruthy(args[0])), NIL
			}},
		},
	})

	// And and Or keep their second argument lazy: the unevaluated
	// branch is returned for the caller to force only when reached.
	registerBuiltin(BuiltinAnd, &builtinDef{
		name:  "And",
		modes: []argMode{argStrict, argLazy},
		overloads: []overload{
			{kinds: []Kind{kindAny}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				if !s.a.IsTruthy(args[0]) {
					return s.a.Boolean(false), NIL
				}
				return args[1], NIL
			}},
		},
	})

	registerBuiltin(BuiltinOr, &builtinDef{
		name:  "Or",
		modes: []argMode{argStrict, argLazy},
		overloads: []overload{
			{kinds: []Kind{kindAny}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				if s.a.IsTruthy(args[0]) {
					return args[0], NIL
				}
				return args[1], NIL
			}},
		},
	})

	registerBuiltin(BuiltinIf, &builtinDef{
		name:  "If",
		modes: []argMode{argStrict, argLazy, argLazy},
		overloads: []overload{
			{kinds: []Kind{kindAny}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				if s.a.IsTruthy(args[0]) {
					return args[1], NIL
				}
				return args[2], NIL
			}},
		},
	})
}

// roundingOverloads covers Floor/Ceil/Round: identity on Ints, the
// float function otherwise.
func roundingOverloads(fn func(float64) float64) []overload {
	return []overload{
		{kinds: []Kind{KindInt}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
			return args[0], NIL
		}},
		{kinds: []Kind{KindFloat}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
			v, _ := s.a.FloatValue(args[0])
			return s.a.Float(fn(v)), NIL
		}},
	}
}
