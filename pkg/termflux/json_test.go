package termflux

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToJSON(t *testing.T) {
	a := NewArena()

	t.Run("atoms", func(t *testing.T) {
		cases := []struct {
			name string
			term Handle
			want string
		}{
			{"nil", a.Nil(), "null"},
			{"true", a.Boolean(true), "true"},
			{"int", a.Int(42), "42"},
			{"float", a.Float(2.5), "2.5"},
			{"string", a.String("hi"), `"hi"`},
			{"nan", a.Float(math.NaN()), "null"},
			{"positive infinity", a.Float(math.Inf(1)), "null"},
			{"timestamp", a.Timestamp(0), `"1970-01-01T00:00:00Z"`},
			{"date", a.Date(0), `"1970-01-01"`},
		}
		for _, c := range cases {
			got, ok := a.ToJSON(c.term)
			require.True(t, ok, c.name)
			require.Equal(t, c.want, got, c.name)
		}
	})

	t.Run("collections", func(t *testing.T) {
		list := a.Triple(a.Int(1), a.Nil(), a.String("x"))
		got, ok := a.ToJSON(list)
		require.True(t, ok)
		require.Equal(t, `[1,null,"x"]`, got)

		record := a.Record(
			a.Pair(a.String("a"), a.String("b")),
			a.Pair(a.Int(1), a.Int(2)),
		)
		got, ok = a.ToJSON(record)
		require.True(t, ok)
		require.JSONEq(t, `{"a":1,"b":2}`, got)

		m := a.Hashmap([]KV{{Key: a.String("k"), Value: a.UnitList(a.Int(9))}})
		got, ok = a.ToJSON(m)
		require.True(t, ok)
		require.JSONEq(t, `{"k":[9]}`, got)
	})

	t.Run("non-jsonable variants fail", func(t *testing.T) {
		for _, h := range []Handle{
			a.Lambda(1, a.Variable(0)),
			a.Builtin(BuiltinAdd),
			a.Symbol(1),
			a.Signal(a.PendingCondition()),
			a.RangeIterator(0, 3),
			a.Tree(a.Int(1), a.Int(2)),
			NIL,
		} {
			_, ok := a.ToJSON(h)
			require.False(t, ok, a.Format(h))
		}
	})

	t.Run("non-string hashmap keys fail", func(t *testing.T) {
		m := a.Hashmap([]KV{{Key: a.Int(1), Value: a.Int(2)}})
		_, ok := a.ToJSON(m)
		require.False(t, ok)
	})

	t.Run("nested failure propagates", func(t *testing.T) {
		list := a.UnitList(a.Lambda(1, a.Variable(0)))
		_, ok := a.ToJSON(list)
		require.False(t, ok)
	})

	t.Run("evaluated lambda result serializes", func(t *testing.T) {
		body := a.Hashmap([]KV{
			{Key: a.String("foo"), Value: a.Variable(2)},
			{Key: a.String("bar"), Value: a.Variable(1)},
			{Key: a.String("baz"), Value: a.Variable(0)},
		})
		expr := a.Application(a.Lambda(3, body), a.Triple(a.Int(3), a.Int(4), a.Int(5)))
		value, _ := a.Evaluate(expr, NIL)

		got, ok := a.ToJSON(value)
		require.True(t, ok)
		require.JSONEq(t, `{"foo":3,"bar":4,"baz":5}`, got)
	})
}
