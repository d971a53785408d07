package termflux

import jsoniter "github.com/json-iterator/go"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ToJSON serializes a term to JSON. The JSONable variants are Nil,
// Boolean, Int, Float (NaN and the infinities emit null), String,
// Timestamp and Date (RFC 3339 forms), List, Record and Hashmap with
// String keys. ok is false for everything else — callers treat that
// as "no JSON form", not as an evaluation error.
func (a *Arena) ToJSON(h Handle) (string, bool) {
	value, ok := a.jsonValueOf(h)
	if !ok {
		return "", false
	}
	out, err := json.Marshal(value)
	if err != nil {
		return "", false
	}
	return string(out), true
}

// jsonValueOf builds the Go-native value tree for the marshal step.
func (a *Arena) jsonValueOf(h Handle) (interface{}, bool) {
	t, ok := a.term(h).(jsonable)
	if !ok {
		return nil, false
	}
	return t.jsonValue(a)
}
