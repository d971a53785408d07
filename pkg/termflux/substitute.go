package termflux

// Substitution walks a subtree replacing Variable terms. The walk is
// parameterized by a substitution record with two modes:
//
//   - Scope shift (vars == NIL): free variables at or beyond the
//     cutoff in scope have their offset increased by delta. Binders
//     widen the cutoff, so their own bound variables stay put.
//   - Scope instantiation (vars is a List): variables with offset <
//     scope are untouched (they are bound inside the subtree), offsets
//     inside the window [scope, scope+len(vars)) are replaced by vars
//     in reversed order, and offsets beyond the window shrink by
//     len(vars). A replacement spliced under scope > 0 is itself
//     shifted by scope so its own free variables keep pointing
//     outward.
//
// Every substitute implementation returns NIL when no change would be
// made, so unchanged subtrees keep their structural sharing. Binders
// widen the scope for their bodies: a Lambda body substitutes at
// scope+numArgs, a Let body at scope+1.
type substitution struct {
	vars  Handle // List of replacement values; NIL selects shift mode
	delta uint32 // shift amount (shift mode only)
	scope uint32 // instantiation window start, or shift cutoff
}

// widen moves the substitution under n binders.
func (sub substitution) widen(n uint32) substitution {
	sub.scope += n
	return sub
}

// Substitute applies the substitution contract to any term: a List of
// replacement values instantiates the window starting at scope, while
// vars == NIL shifts free variables up by scope. It returns NIL when
// the term is unchanged (including for variants that cannot contain
// variables).
func (a *Arena) Substitute(h, vars Handle, scope uint32) Handle {
	if vars == NIL {
		return a.substituteTerm(h, substitution{delta: scope})
	}
	return a.substituteTerm(h, substitution{vars: vars, scope: scope})
}

// substituteTerm dispatches to the variant's substitute capability.
// Variants without it (atoms, builtins, compiled references) never
// change.
func (a *Arena) substituteTerm(h Handle, sub substitution) Handle {
	t, ok := a.term(h).(substitutable)
	if !ok {
		return NIL
	}
	return t.substitute(a, sub)
}

// substituteAll substitutes a slice of children, reporting whether any
// changed. The returned slice aliases the input when nothing changed.
func (a *Arena) substituteAll(items []Handle, sub substitution) ([]Handle, bool) {
	changed := false
	out := items
	for i, item := range items {
		next := a.substituteTerm(item, sub)
		if next == NIL {
			continue
		}
		if !changed {
			out = make([]Handle, len(items))
			copy(out, items)
			changed = true
		}
		out[i] = next
	}
	return out, changed
}

// substitutePair substitutes two children at a shared scope, returning
// the effective handles and whether either changed.
func (a *Arena) substitutePair(x, y Handle, sub substitution) (Handle, Handle, bool) {
	sx := a.substituteTerm(x, sub)
	sy := a.substituteTerm(y, sub)
	if sx == NIL && sy == NIL {
		return x, y, false
	}
	if sx == NIL {
		sx = x
	}
	if sy == NIL {
		sy = y
	}
	return sx, sy, true
}
