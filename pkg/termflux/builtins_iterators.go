package termflux

// Iterator builtins. The constructors (Map, Filter, Take, Skip, Zip,
// Flatten, Range, Repeat, Once, Intersperse) stay lazy — they return
// iterator terms without walking anything. The Collect family
// materializes: CollectList strictly evaluates every item, the keyed
// variants build the corresponding collection kind.

func init() {
	registerBuiltin(BuiltinMap, &builtinDef{
		name:  "Map",
		modes: []argMode{argStrict, argEager},
		overloads: []overload{
			{kinds: []Kind{kindAny}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				return s.a.MapIterator(args[0], args[1]), NIL
			}},
		},
	})

	registerBuiltin(BuiltinFilter, &builtinDef{
		name:  "Filter",
		modes: []argMode{argStrict, argEager},
		overloads: []overload{
			{kinds: []Kind{kindAny}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				return s.a.FilterIterator(args[0], args[1]), NIL
			}},
		},
	})

	// Reduce is necessarily eager: each accumulator step feeds the
	// next, so the walk happens here rather than in a collect.
	registerBuiltin(BuiltinReduce, &builtinDef{
		name:  "Reduce",
		modes: []argMode{argStrict, argEager, argEager},
		overloads: []overload{
			{kinds: []Kind{kindAny}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				a := s.a
				iter, it, ok := s.resolveIterator(args[0])
				if !ok {
					return a.Signal(a.TypeErrorCondition(KindEmptyIterator, args[0])), NIL
				}
				fn, acc := args[1], args[2]
				var deps Handle
				st := NIL
				for {
					item, nextState, d, more := it.next(s, iter, st)
					deps = a.Union(deps, d)
					if !more {
						return acc, deps
					}
					step, sd := s.applyTarget(fn, a.Pair(acc, item))
					value, vd := s.evaluate(step)
					deps = a.Union(a.Union(deps, sd), vd)
					if a.IsSignal(value) {
						return value, deps
					}
					acc = value
					st = nextState
				}
			}},
		},
	})

	registerBuiltin(BuiltinTake, &builtinDef{
		name:  "Take",
		modes: []argMode{argStrict, argStrict},
		overloads: []overload{
			{kinds: []Kind{kindAny, KindInt}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				n, _ := s.a.IntValue(args[1])
				return s.a.TakeIterator(args[0], n), NIL
			}},
		},
		fallback: subjectTypeError(KindInt),
	})

	registerBuiltin(BuiltinSkip, &builtinDef{
		name:  "Skip",
		modes: []argMode{argStrict, argStrict},
		overloads: []overload{
			{kinds: []Kind{kindAny, KindInt}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				n, _ := s.a.IntValue(args[1])
				return s.a.SkipIterator(args[0], n), NIL
			}},
		},
		fallback: subjectTypeError(KindInt),
	})

	registerBuiltin(BuiltinZip, &builtinDef{
		name:  "Zip",
		modes: []argMode{argStrict, argStrict},
		overloads: []overload{
			{kinds: []Kind{kindAny, kindAny}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				return s.a.ZipIterator(args[0], args[1]), NIL
			}},
		},
	})

	registerBuiltin(BuiltinFlatten, &builtinDef{
		name:  "Flatten",
		modes: []argMode{argStrict},
		overloads: []overload{
			{kinds: []Kind{kindAny}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				return s.a.FlattenIterator(args[0]), NIL
			}},
		},
	})

	registerBuiltin(BuiltinRange, &builtinDef{
		name:  "Range",
		modes: []argMode{argStrict, argStrict},
		overloads: []overload{
			{kinds: []Kind{KindInt, KindInt}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				start, _ := s.a.IntValue(args[0])
				length, _ := s.a.IntValue(args[1])
				return s.a.RangeIterator(start, length), NIL
			}},
		},
		fallback: numericTypeError,
	})

	registerBuiltin(BuiltinRepeat, &builtinDef{
		name:  "Repeat",
		modes: []argMode{argEager},
		overloads: []overload{
			{kinds: []Kind{}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				return s.a.RepeatIterator(args[0]), NIL
			}},
		},
	})

	registerBuiltin(BuiltinOnce, &builtinDef{
		name:  "Once",
		modes: []argMode{argLazy},
		overloads: []overload{
			{kinds: []Kind{}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				return s.a.OnceIterator(args[0]), NIL
			}},
		},
	})

	registerBuiltin(BuiltinIntersperse, &builtinDef{
		name:  "Intersperse",
		modes: []argMode{argStrict, argEager},
		overloads: []overload{
			{kinds: []Kind{kindAny}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				return s.a.IntersperseIterator(args[0], args[1]), NIL
			}},
		},
	})

	registerBuiltin(BuiltinCollectList, &builtinDef{
		name:  "CollectList",
		modes: []argMode{argStrict},
		overloads: []overload{
			{kinds: []Kind{kindAny}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				return s.collectStrict(args[0])
			}},
		},
	})

	registerBuiltin(BuiltinCollectHashmap, &builtinDef{
		name:  "CollectHashmap",
		modes: []argMode{argStrict},
		overloads: []overload{
			{kinds: []Kind{kindAny}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				return s.collectHashmap(args[0])
			}},
		},
	})

	registerBuiltin(BuiltinCollectHashset, &builtinDef{
		name:  "CollectHashset",
		modes: []argMode{argStrict},
		overloads: []overload{
			{kinds: []Kind{kindAny}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				return s.collectHashset(args[0])
			}},
		},
	})

	registerBuiltin(BuiltinCollectString, &builtinDef{
		name:  "CollectString",
		modes: []argMode{argStrict},
		overloads: []overload{
			{kinds: []Kind{kindAny}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				return s.collectString(args[0])
			}},
		},
	})

	registerBuiltin(BuiltinCollectRecord, &builtinDef{
		name:  "CollectRecord",
		modes: []argMode{argStrict},
		overloads: []overload{
			{kinds: []Kind{kindAny}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				return s.collectRecord(args[0])
			}},
		},
	})
}
