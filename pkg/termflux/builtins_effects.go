package termflux

import "strings"

// Effect, error-handling, dispatch and string builtins.

func init() {
	registerBuiltin(BuiltinRaise, &builtinDef{
		name:  "Raise",
		modes: []argMode{argEager},
		overloads: []overload{
			{kinds: []Kind{}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				return s.a.Signal(s.a.ErrorCondition(args[0])), NIL
			}},
		},
	})

	// IfError accepts signal arguments: the first argument evaluates
	// here, and when it signals with Error conditions the handler runs
	// over the list of payloads. Non-error signals (pending effects,
	// type errors) pass through untouched.
	registerBuiltin(BuiltinIfError, &builtinDef{
		name:           "IfError",
		modes:          []argMode{argEager, argLazy},
		acceptsSignals: true,
		overloads: []overload{
			{kinds: []Kind{}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				a := s.a
				value, handler := args[0], args[1]
				if !a.IsSignal(value) {
					return value, NIL
				}
				conditions, _ := a.SignalConditions(value)
				var payloads ListBuilder
				for _, c := range conditions {
					payload, isError := a.ErrorConditionPayload(c)
					if !isError {
						return value, NIL
					}
					payloads.Append(payload)
				}
				return a.Application(handler, a.UnitList(payloads.Build(a))), NIL
			}},
		},
	})

	// Sequence forces its first argument for effect and yields the
	// second unevaluated.
	registerBuiltin(BuiltinSequence, &builtinDef{
		name:  "Sequence",
		modes: []argMode{argEager, argLazy},
		overloads: []overload{
			{kinds: []Kind{}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				return args[1], NIL
			}},
		},
	})

	registerBuiltin(BuiltinEffect, &builtinDef{
		name:  "Effect",
		modes: []argMode{argStrict, argEager, argEager},
		overloads: []overload{
			{kinds: []Kind{KindSymbol}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				return s.a.Effect(s.a.CustomCondition(args[0], args[1], args[2])), NIL
			}},
		},
		fallback: subjectTypeError(KindSymbol),
	})

	registerBuiltin(BuiltinResolveDeep, &builtinDef{
		name:  "ResolveDeep",
		modes: []argMode{argStrict},
		overloads: []overload{
			{kinds: []Kind{kindAny}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				return s.resolveDeep(args[0])
			}},
		},
	})

	registerBuiltin(BuiltinApply, &builtinDef{
		name:  "Apply",
		modes: []argMode{argStrict, argStrict},
		overloads: []overload{
			{kinds: []Kind{kindAny, KindList}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				intermediate, d1 := s.applyTarget(args[0], args[1])
				value, d2 := s.evaluate(intermediate)
				return value, s.a.Union(d1, d2)
			}},
		},
		fallback: subjectTypeError(KindList),
	})

	registerBuiltin(BuiltinIdentity, &builtinDef{
		name:  "Identity",
		modes: []argMode{argEager},
		overloads: []overload{
			{kinds: []Kind{}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				return args[0], NIL
			}},
		},
	})

	registerBuiltin(BuiltinHash, &builtinDef{
		name:  "Hash",
		modes: []argMode{argStrict},
		overloads: []overload{
			{kinds: []Kind{kindAny}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				return s.a.Int(int64(s.a.HashOf(args[0]))), NIL
			}},
		},
	})

	// Log is a pass-through tap: the argument value flows out
	// unchanged after being written to the structured log.
	registerBuiltin(BuiltinLog, &builtinDef{
		name:  "Log",
		modes: []argMode{argStrict},
		overloads: []overload{
			{kinds: []Kind{kindAny}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				log.WithField("value", s.a.Format(args[0])).Info("expression log")
				return args[0], NIL
			}},
		},
	})

	registerBuiltin(BuiltinStartsWith, &builtinDef{
		name:  "StartsWith",
		modes: []argMode{argStrict, argStrict},
		overloads: []overload{
			{kinds: []Kind{KindString, KindString}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				str, _ := s.a.StringValue(args[0])
				prefix, _ := s.a.StringValue(args[1])
				return s.a.Boolean(strings.HasPrefix(str, prefix)), NIL
			}},
		},
		fallback: subjectTypeError(KindString),
	})

	registerBuiltin(BuiltinEndsWith, &builtinDef{
		name:  "EndsWith",
		modes: []argMode{argStrict, argStrict},
		overloads: []overload{
			{kinds: []Kind{KindString, KindString}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				str, _ := s.a.StringValue(args[0])
				suffix, _ := s.a.StringValue(args[1])
				return s.a.Boolean(strings.HasSuffix(str, suffix)), NIL
			}},
		},
		fallback: subjectTypeError(KindString),
	})

	registerBuiltin(BuiltinSplit, &builtinDef{
		name:  "Split",
		modes: []argMode{argStrict, argStrict},
		overloads: []overload{
			{kinds: []Kind{KindString, KindString}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				str, _ := s.a.StringValue(args[0])
				sep, _ := s.a.StringValue(args[1])
				parts := strings.Split(str, sep)
				out := make([]Handle, len(parts))
				for i, part := range parts {
					out[i] = s.a.String(part)
				}
				return s.a.List(out...), NIL
			}},
		},
		fallback: subjectTypeError(KindString),
	})

	registerBuiltin(BuiltinReplace, &builtinDef{
		name:  "Replace",
		modes: []argMode{argStrict, argStrict, argStrict},
		overloads: []overload{
			{kinds: []Kind{KindString, KindString, KindString}, impl: func(s *session, self Handle, args []Handle) (Handle, Handle) {
				str, _ := s.a.StringValue(args[0])
				old, _ := s.a.StringValue(args[1])
				replacement, _ := s.a.StringValue(args[2])
				return s.a.String(strings.ReplaceAll(str, old, replacement)), NIL
			}},
		},
		fallback: subjectTypeError(KindString),
	})
}

// resolveDeep recursively forces nested values: iterators collect into
// lists, list and record elements evaluate and resolve in place, and
// signals bubble out with the usual union discipline.
func (s *session) resolveDeep(h Handle) (Handle, Handle) {
	a := s.a
	value, deps := s.evaluate(h)
	if a.IsSignal(value) {
		return value, deps
	}
	switch t := a.term(value).(type) {
	case *listTerm:
		resolved := make([]Handle, len(t.items))
		var combined Handle
		changed := false
		for i, item := range t.items {
			r, d := s.resolveDeep(item)
			deps = a.Union(deps, d)
			if a.IsSignal(r) {
				combined = a.SignalUnion(combined, r)
			}
			if r != item {
				changed = true
			}
			resolved[i] = r
		}
		if combined != NIL {
			return combined, deps
		}
		if !changed {
			return value, deps
		}
		return a.List(resolved...), deps
	case *recordTerm:
		values, d := s.resolveDeep(t.values)
		deps = a.Union(deps, d)
		if a.IsSignal(values) {
			return values, deps
		}
		if values == t.values {
			return value, deps
		}
		return a.Record(t.keys, values), deps
	default:
		if a.IsIterator(value) {
			collected, d := s.collectStrict(value)
			deps = a.Union(deps, d)
			if a.IsSignal(collected) {
				return collected, deps
			}
			return s.resolveDeep(collected)
		}
		return value, deps
	}
}
