package termflux

// Collection builtins: length, access, membership, construction and
// the list-surgery trio Car/Cdr/Cons. Where a builtin spans several
// collection kinds, each kind gets its own overload entry; the
// fallback reports a TypeError against the subject argument.

func subjectTypeError(expected Kind) builtinImpl {
	return func(s *session, self Handle, args []Handle) (Handle, Handle) {
		return s.a.Signal(s.a.TypeErrorCondition(expected, args[0])), NIL
	}
}

func init() {
	registerBuiltin(BuiltinLength, &builtinDef{
		name:  "Length",
		modes: []argMode{argStrict},
		overloads: []overload{
			{kinds: []Kind{KindList}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				n, _ := s.a.ListLen(args[0])
				return s.a.Int(int64(n)), NIL
			}},
			{kinds: []Kind{KindString}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				str, _ := s.a.StringValue(args[0])
				return s.a.Int(int64(len(str))), NIL
			}},
			{kinds: []Kind{KindHashmap}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				n, _ := s.a.HashmapLen(args[0])
				return s.a.Int(int64(n)), NIL
			}},
			{kinds: []Kind{KindHashset}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				n, _ := s.a.HashsetLen(args[0])
				return s.a.Int(int64(n)), NIL
			}},
			{kinds: []Kind{KindRecord}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				keys, _, _ := s.a.RecordFields(args[0])
				n, _ := s.a.ListLen(keys)
				return s.a.Int(int64(n)), NIL
			}},
			{kinds: []Kind{KindTree}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				n, _ := s.a.TreeLength(args[0])
				return s.a.Int(int64(n)), NIL
			}},
		},
		fallback: subjectTypeError(KindList),
	})

	registerBuiltin(BuiltinGet, &builtinDef{
		name:  "Get",
		modes: []argMode{argStrict, argStrict},
		overloads: []overload{
			{kinds: []Kind{kindAny, kindAny}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				return s.a.accessorGet(args[0], args[1]), NIL
			}},
		},
	})

	registerBuiltin(BuiltinHas, &builtinDef{
		name:  "Has",
		modes: []argMode{argStrict, argStrict},
		overloads: []overload{
			{kinds: []Kind{KindHashmap, kindAny}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				return s.a.Boolean(s.a.HashmapHas(args[0], args[1])), NIL
			}},
			{kinds: []Kind{KindHashset, kindAny}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				return s.a.Boolean(s.a.HashsetHas(args[0], args[1])), NIL
			}},
			{kinds: []Kind{KindRecord, kindAny}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				_, found := s.a.RecordGet(args[0], args[1])
				return s.a.Boolean(found), NIL
			}},
			{kinds: []Kind{KindList, KindInt}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				n, _ := s.a.ListLen(args[0])
				i, _ := s.a.IntValue(args[1])
				return s.a.Boolean(i >= 0 && i < int64(n)), NIL
			}},
		},
		fallback: subjectTypeError(KindHashmap),
	})

	registerBuiltin(BuiltinKeys, &builtinDef{
		name:  "Keys",
		modes: []argMode{argStrict},
		overloads: []overload{
			{kinds: []Kind{KindHashmap}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				return s.a.HashmapKeysIterator(args[0]), NIL
			}},
			{kinds: []Kind{KindHashset}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				items, _ := s.a.HashsetItems(args[0])
				return s.a.List(items...), NIL
			}},
			{kinds: []Kind{KindRecord}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				keys, _, _ := s.a.RecordFields(args[0])
				return keys, NIL
			}},
		},
		fallback: subjectTypeError(KindHashmap),
	})

	registerBuiltin(BuiltinValues, &builtinDef{
		name:  "Values",
		modes: []argMode{argStrict},
		overloads: []overload{
			{kinds: []Kind{KindHashmap}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				return s.a.HashmapValuesIterator(args[0]), NIL
			}},
			{kinds: []Kind{KindRecord}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				_, values, _ := s.a.RecordFields(args[0])
				return values, NIL
			}},
			{kinds: []Kind{KindList}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				return args[0], NIL
			}},
		},
		fallback: subjectTypeError(KindHashmap),
	})

	registerBuiltin(BuiltinPush, &builtinDef{
		name:  "Push",
		modes: []argMode{argStrict, argEager},
		overloads: []overload{
			{kinds: []Kind{KindList}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				items, _ := s.a.listItems(args[0])
				out := make([]Handle, 0, len(items)+1)
				out = append(out, items...)
				out = append(out, args[1])
				return s.a.List(out...), NIL
			}},
			{kinds: []Kind{KindHashset}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				items, _ := s.a.HashsetItems(args[0])
				return s.a.Hashset(append(items, args[1])...), NIL
			}},
		},
		fallback: subjectTypeError(KindList),
	})

	registerBuiltin(BuiltinConcat, &builtinDef{
		name:         "Concat",
		modes:        []argMode{argStrict, argStrict},
		variadic:     true,
		variadicMode: argStrict,
		overloads:    nil,
		fallback:     concatImpl,
	})

	registerBuiltin(BuiltinSlice, &builtinDef{
		name:  "Slice",
		modes: []argMode{argStrict, argStrict, argStrict},
		overloads: []overload{
			{kinds: []Kind{KindList, KindInt, KindInt}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				items, _ := s.a.listItems(args[0])
				lo, hi := sliceBounds(s.a, args[1], args[2], len(items))
				return s.a.List(items[lo:hi]...), NIL
			}},
			{kinds: []Kind{KindString, KindInt, KindInt}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				str, _ := s.a.StringValue(args[0])
				lo, hi := sliceBounds(s.a, args[1], args[2], len(str))
				return s.a.String(str[lo:hi]), NIL
			}},
		},
		fallback: subjectTypeError(KindList),
	})

	registerBuiltin(BuiltinMerge, &builtinDef{
		name:  "Merge",
		modes: []argMode{argStrict, argStrict},
		overloads: []overload{
			{kinds: []Kind{KindHashmap, KindHashmap}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				left, _ := s.a.HashmapEntries(args[0])
				right, _ := s.a.HashmapEntries(args[1])
				return s.a.Hashmap(append(left, right...)), NIL
			}},
		},
		fallback: subjectTypeError(KindHashmap),
	})

	registerBuiltin(BuiltinIsEmpty, &builtinDef{
		name:  "IsEmpty",
		modes: []argMode{argStrict},
		overloads: []overload{
			{kinds: []Kind{kindAny}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				a := s.a
				switch a.KindOf(args[0]) {
				case KindNil:
					return a.Boolean(true), NIL
				case KindList:
					n, _ := a.ListLen(args[0])
					return a.Boolean(n == 0), NIL
				case KindString:
					str, _ := a.StringValue(args[0])
					return a.Boolean(str == ""), NIL
				case KindHashmap:
					n, _ := a.HashmapLen(args[0])
					return a.Boolean(n == 0), NIL
				case KindHashset:
					n, _ := a.HashsetLen(args[0])
					return a.Boolean(n == 0), NIL
				default:
					return a.Boolean(false), NIL
				}
			}},
		},
	})

	registerBuiltin(BuiltinCar, &builtinDef{
		name:  "Car",
		modes: []argMode{argStrict},
		overloads: []overload{
			{kinds: []Kind{KindTree}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				left, _, _ := s.a.TreeBranches(args[0])
				return left, NIL
			}},
			{kinds: []Kind{KindList}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				if item, ok := s.a.ListGet(args[0], 0); ok {
					return item, NIL
				}
				return s.a.Nil(), NIL
			}},
		},
		fallback: subjectTypeError(KindTree),
	})

	registerBuiltin(BuiltinCdr, &builtinDef{
		name:  "Cdr",
		modes: []argMode{argStrict},
		overloads: []overload{
			{kinds: []Kind{KindTree}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				_, right, _ := s.a.TreeBranches(args[0])
				return right, NIL
			}},
			{kinds: []Kind{KindList}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				items, _ := s.a.listItems(args[0])
				if len(items) == 0 {
					return s.a.EmptyList(), NIL
				}
				return s.a.List(items[1:]...), NIL
			}},
		},
		fallback: subjectTypeError(KindTree),
	})

	registerBuiltin(BuiltinCons, &builtinDef{
		name:  "Cons",
		modes: []argMode{argEager, argEager},
		overloads: []overload{
			{kinds: []Kind{}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				return s.a.Tree(args[0], args[1]), NIL
			}},
		},
	})
}

// concatImpl joins Lists with Lists and Strings with Strings; the
// variadic tail extends the join. A mixed call reports a TypeError
// per offending argument.
func concatImpl(s *session, self Handle, args []Handle) (Handle, Handle) {
	a := s.a
	if len(args) == 0 {
		return a.EmptyList(), NIL
	}
	if _, isString := a.StringValue(args[0]); isString {
		var builder StringBuilder
		var combined Handle
		for _, arg := range args {
			str, ok := a.StringValue(arg)
			if !ok {
				combined = a.SignalUnion(combined, a.Signal(a.TypeErrorCondition(KindString, arg)))
				continue
			}
			builder.WriteString(str)
		}
		if combined != NIL {
			return combined, NIL
		}
		return builder.Build(a), NIL
	}
	var builder ListBuilder
	var combined Handle
	for _, arg := range args {
		items, ok := a.listItems(arg)
		if !ok {
			combined = a.SignalUnion(combined, a.Signal(a.TypeErrorCondition(KindList, arg)))
			continue
		}
		for _, item := range items {
			builder.Append(item)
		}
	}
	if combined != NIL {
		return combined, NIL
	}
	return builder.Build(a), NIL
}

// sliceBounds clamps [lo, hi) to the subject length.
func sliceBounds(a *Arena, loH, hiH Handle, n int) (int, int) {
	lo64, _ := a.IntValue(loH)
	hi64, _ := a.IntValue(hiH)
	lo, hi := int(lo64), int(hi64)
	if lo < 0 {
		lo = 0
	}
	if lo > n {
		lo = n
	}
	if hi > n {
		hi = n
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}
