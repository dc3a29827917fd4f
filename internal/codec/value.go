// Package codec renders response payloads as JSON. Payloads are built from
// a closed set of value types so the encoder can switch over them
// exhaustively.
package codec

import "time"

// Value is sealed: only the types in this file implement it.
type Value interface {
	value()
}

type Null struct{}

func (Null) value() {}

type String string

func (String) value() {}

// Number is a real. It is written with at most six fractional digits and
// trailing zeros removed.
type Number float64

func (Number) value() {}

type Int int64

func (Int) value() {}

type Bool bool

func (Bool) value() {}

type Array []Value

func (Array) value() {}

// Member is one key of an Object.
type Member struct {
	Key   string
	Value Value
}

// Object keeps its members in insertion order.
type Object []Member

func (Object) value() {}

// M builds an object member.
func M(key string, v Value) Member {
	return Member{Key: key, Value: v}
}

func Obj(members ...Member) Object {
	return Object(members)
}

func Arr(values ...Value) Array {
	if values == nil {
		return Array{}
	}
	return Array(values)
}

// Strings wraps each message as a String.
func Strings(ss []string) Array {
	arr := make(Array, len(ss))
	for i, s := range ss {
		arr[i] = String(s)
	}
	return arr
}

// Time renders t in UTC as RFC 3339 with nanoseconds.
func Time(t time.Time) String {
	return String(t.UTC().Format(time.RFC3339Nano))
}

// Get returns the value stored under key.
func (o Object) Get(key string) (Value, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}
