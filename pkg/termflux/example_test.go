package termflux_test

import (
	"fmt"

	"github.com/gitrdm/termflux/pkg/termflux"
)

// ExampleArena_Evaluate builds and reduces a small arithmetic graph.
func ExampleArena_Evaluate() {
	a := termflux.NewArena()
	expr := a.Application(a.Builtin(termflux.BuiltinAdd), a.Pair(a.Int(3), a.Int(4)))

	value, _ := a.Evaluate(expr, termflux.NIL)
	fmt.Println(a.Display(value))
	// Output: 7
}

// ExampleArena_Evaluate_effects reads an operator out of the state and
// reports the dependency that was consumed.
func ExampleArena_Evaluate_effects() {
	a := termflux.NewArena()
	condition := a.CustomCondition(a.Symbol(123), a.Int(3), a.Symbol(0))
	expr := a.Application(a.Effect(condition), a.Pair(a.Int(3), a.Int(4)))
	state := a.Hashmap([]termflux.KV{{Key: condition, Value: a.Builtin(termflux.BuiltinAdd)}})

	value, deps := a.Evaluate(expr, state)
	fmt.Println(a.Display(value), len(a.StateDependencies(deps)))
	// Output: 7 1
}

// ExampleArena_Substitute shows the de Bruijn window: variable 0 takes
// the last replacement value.
func ExampleArena_Substitute() {
	a := termflux.NewArena()
	pair := a.Pair(a.Variable(0), a.Variable(1))

	got := a.Substitute(pair, a.Pair(a.Int(10), a.Int(20)), 0)
	fmt.Println(a.Display(got))
	// Output: [20, 10]
}

// ExampleArena_ToJSON serializes an evaluated result.
func ExampleArena_ToJSON() {
	a := termflux.NewArena()
	record := a.Record(
		a.Pair(a.String("x"), a.String("y")),
		a.Pair(a.Int(1), a.Int(2)),
	)

	out, _ := a.ToJSON(record)
	fmt.Println(out)
	// Output: {"x":1,"y":2}
}
