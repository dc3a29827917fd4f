package codec

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeScalars(t *testing.T) {
	tests := []struct {
		name  string
		input Value
		want  string
	}{
		{"null", Null{}, "null"},
		{"nil", nil, "null"},
		{"true", Bool(true), "true"},
		{"false", Bool(false), "false"},
		{"int", Int(-42), "-42"},
		{"integral real", Number(3), "3"},
		{"real", Number(1.5), "1.5"},
		{"negative real", Number(-2.25), "-2.25"},
		{"six digits", Number(0.123456), "0.123456"},
		{"rounded past six digits", Number(0.1234567), "0.123457"},
		{"negative zero", Number(math.Copysign(0, -1)), "0"},
		{"tiny negative", Number(-0.0000001), "0"},
		{"empty string", String(""), `""`},
		{"empty array", Arr(), "[]"},
		{"empty object", Obj(), "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestEncodeEscapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"quote", `say "hi"`, `"say \"hi\""`},
		{"backslash", `a\b`, `"a\\b"`},
		{"backspace", "\b", `"\b"`},
		{"form feed", "\f", `"\f"`},
		{"newline", "a\nb", `"a\nb"`},
		{"carriage return", "\r", `"\r"`},
		{"tab", "\t", `"\t"`},
		{"nul", "\x00", `"\u0000"`},
		{"unit separator", "\x1f", `"\u001f"`},
		{"escape char", "\x1b[0m", `"\u001b[0m"`},
		{"html untouched", "<a&b>", `"<a&b>"`},
		{"unicode untouched", "Параметр 'x'", `"Параметр 'x'"`},
		{"invalid utf8", "a\xffb", `"a` + "�" + `b"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(String(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestEncodeKeepsMemberOrder(t *testing.T) {
	v := Obj(
		M("zebra", Int(1)),
		M("alpha", Arr(Int(3), Int(2), Int(1))),
		M("mid", Obj(M("b", Null{}), M("a", Bool(true)))),
	)

	got, err := Encode(v)
	require.NoError(t, err)
	assert.Equal(t, `{"zebra":1,"alpha":[3,2,1],"mid":{"b":null,"a":true}}`, string(got))
}

func TestEncodeRejectsNonFinite(t *testing.T) {
	_, err := Encode(Obj(M("point", Arr(Number(math.NaN())))))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `object["point"]`)
	assert.Contains(t, err.Error(), "array[0]")

	_, err = Encode(Number(math.Inf(1)))
	assert.Error(t, err)
}

func TestEncodeRoundTrip(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 30, 0, 123000000, time.UTC)
	v := Obj(
		M("now", Time(now)),
		M("elapsedMicros", Int(87)),
		M("hit", Bool(true)),
		M("point", Obj(M("x", Number(-3)), M("y", Number(1.25)), M("r", Number(2.5)))),
		M("history", Arr(
			Obj(M("hit", Bool(false))),
			Obj(M("hit", Bool(true))),
		)),
		M("note", String("line\nbreak \"quoted\" \x01")),
	)

	encoded, err := Encode(v)
	require.NoError(t, err)

	var decoded struct {
		Now           string  `json:"now"`
		ElapsedMicros int64   `json:"elapsedMicros"`
		Hit           bool    `json:"hit"`
		Point         struct {
			X, Y, R float64
		} `json:"point"`
		History []struct {
			Hit bool `json:"hit"`
		} `json:"history"`
		Note string `json:"note"`
	}
	require.NoError(t, json.Unmarshal(encoded, &decoded))

	assert.Equal(t, "2026-10-19T12:30:00.123Z", decoded.Now)
	assert.Equal(t, int64(87), decoded.ElapsedMicros)
	assert.True(t, decoded.Hit)
	assert.Equal(t, -3.0, decoded.Point.X)
	assert.Equal(t, 1.25, decoded.Point.Y)
	assert.Equal(t, 2.5, decoded.Point.R)
	require.Len(t, decoded.History, 2)
	assert.False(t, decoded.History[0].Hit)
	assert.True(t, decoded.History[1].Hit)
	assert.Equal(t, "line\nbreak \"quoted\" \x01", decoded.Note)
}

func TestObjectGet(t *testing.T) {
	o := Obj(M("a", Int(1)), M("b", Int(2)))

	v, ok := o.Get("b")
	require.True(t, ok)
	assert.Equal(t, Int(2), v)

	_, ok = o.Get("c")
	assert.False(t, ok)
}
