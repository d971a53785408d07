package termflux

import "strings"

// Display returns the user-facing rendering of a term: strings
// unquoted, collections in literal syntax.
func (a *Arena) Display(h Handle) string {
	var sb strings.Builder
	a.formatInto(h, &sb, false)
	return sb.String()
}

// Format returns the debug rendering of a term: strings quoted,
// structural wrappers named.
func (a *Arena) Format(h Handle) string {
	var sb strings.Builder
	a.formatInto(h, &sb, true)
	return sb.String()
}

func (a *Arena) formatInto(h Handle, sb *strings.Builder, debug bool) {
	t := a.term(h)
	if t == nil {
		sb.WriteString("NIL")
		return
	}
	t.format(a, sb, debug)
}
