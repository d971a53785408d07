// Package main demonstrates basic termflux usage patterns.
//
// This example shows how to build expression graphs, evaluate them
// against state snapshots and re-evaluate incrementally when state
// changes.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"github.com/gitrdm/termflux/pkg/termflux"
)

func main() {
	app := &cli.App{
		Name:    "termflux-example",
		Usage:   "demonstrates the termflux expression runtime",
		Version: termflux.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "logging level (trace, debug, info, warn, error)",
				Value: "info",
			},
		},
		Before: func(c *cli.Context) error {
			level, err := logrus.ParseLevel(c.String("log-level"))
			if err != nil {
				return err
			}
			logrus.SetLevel(level)
			logrus.SetFormatter(new(prefixed.TextFormatter))
			return nil
		},
		Action: func(c *cli.Context) error {
			basicEvaluation()
			lambdaApplication()
			effectfulEvaluation()
			incrementalReevaluation()
			return nil
		},
	}
	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("example failed")
	}
}

// basicEvaluation evaluates a builtin application with no state.
func basicEvaluation() {
	fmt.Println("1. Basic evaluation:")

	a := termflux.NewArena()
	expr := a.Application(a.Builtin(termflux.BuiltinAdd), a.Pair(a.Int(3), a.Int(4)))
	value, _ := a.Evaluate(expr, termflux.NIL)

	fmt.Printf("   Add(3, 4) => %s\n", a.Display(value))
}

// lambdaApplication applies a three-argument lambda that builds a
// record from its parameters.
func lambdaApplication() {
	fmt.Println("2. Lambda application:")

	a := termflux.NewArena()
	body := a.Hashmap([]termflux.KV{
		{Key: a.String("foo"), Value: a.Variable(2)},
		{Key: a.String("bar"), Value: a.Variable(1)},
		{Key: a.String("baz"), Value: a.Variable(0)},
	})
	expr := a.Application(a.Lambda(3, body), a.Triple(a.Int(3), a.Int(4), a.Int(5)))
	value, _ := a.Evaluate(expr, termflux.NIL)

	out, _ := a.ToJSON(value)
	fmt.Printf("   Lambda(3, {foo: v2, bar: v1, baz: v0})(3, 4, 5) => %s\n", out)
}

// effectfulEvaluation reads a function out of the state through an
// Effect term and tracks the dependency.
func effectfulEvaluation() {
	fmt.Println("3. Effectful evaluation:")

	a := termflux.NewArena()
	condition := a.CustomCondition(a.Symbol(123), a.Int(3), a.Symbol(0))
	expr := a.Application(a.Effect(condition), a.Pair(a.Int(3), a.Int(4)))
	state := a.Hashmap([]termflux.KV{{Key: condition, Value: a.Builtin(termflux.BuiltinAdd)}})

	value, deps := a.Evaluate(expr, state)
	fmt.Printf("   Effect(op)(3, 4) => %s, %d dependency\n",
		a.Display(value), len(a.StateDependencies(deps)))
}

// incrementalReevaluation shows the application cache at work: the
// second evaluation under an equal state is a pure cache hit, and a
// changed input discards the memo.
func incrementalReevaluation() {
	fmt.Println("4. Incremental re-evaluation:")

	a := termflux.NewArena()
	price := a.CustomCondition(a.Symbol(1), a.Nil(), a.Symbol(0))
	quantity := a.CustomCondition(a.Symbol(2), a.Nil(), a.Symbol(0))
	total := a.Application(
		a.Builtin(termflux.BuiltinMultiply),
		a.Pair(a.Effect(price), a.Effect(quantity)),
	)

	state := a.Hashmap([]termflux.KV{
		{Key: price, Value: a.Int(25)},
		{Key: quantity, Value: a.Int(4)},
	})
	value, _ := a.Evaluate(total, state)
	fmt.Printf("   total under {price: 25, quantity: 4} => %s\n", a.Display(value))

	value, _ = a.Evaluate(total, state)
	fmt.Printf("   unchanged state (cache hit)          => %s\n", a.Display(value))

	updated := a.Hashmap([]termflux.KV{
		{Key: price, Value: a.Int(30)},
		{Key: quantity, Value: a.Int(4)},
	})
	value, _ = a.Evaluate(total, updated)
	fmt.Printf("   after price change to 30             => %s\n", a.Display(value))
}
