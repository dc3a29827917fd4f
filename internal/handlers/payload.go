package handlers

import (
	"net/http"
	"time"

	"github.com/sdko-org/areacheck/internal/codec"
	"github.com/sdko-org/areacheck/internal/geometry"
	"github.com/sdko-org/areacheck/internal/models"
)

const internalErrorMessage = "Internal server error"

func pointValue(p geometry.Point) codec.Object {
	return codec.Obj(
		codec.M("x", codec.Number(p.X)),
		codec.M("y", codec.Number(p.Y)),
		codec.M("r", codec.Number(p.R)),
	)
}

func entryValue(r models.CheckResult) codec.Object {
	return codec.Obj(
		codec.M("now", codec.Time(r.Time)),
		codec.M("elapsedMicros", codec.Int(r.Elapsed.Microseconds())),
		codec.M("hit", codec.Bool(r.Hit)),
		codec.M("point", pointValue(r.Point)),
	)
}

func successPayload(current models.CheckResult, history []models.CheckResult) codec.Object {
	entries := make(codec.Array, len(history))
	for i, h := range history {
		entries[i] = entryValue(h)
	}
	return codec.Obj(
		codec.M("ok", codec.Bool(true)),
		codec.M("now", codec.Time(current.Time)),
		codec.M("elapsedMicros", codec.Int(current.Elapsed.Microseconds())),
		codec.M("hit", codec.Bool(current.Hit)),
		codec.M("point", pointValue(current.Point)),
		codec.M("history", entries),
	)
}

func errorPayload(now time.Time, messages []string) codec.Object {
	return codec.Obj(
		codec.M("ok", codec.Bool(false)),
		codec.M("now", codec.Time(now)),
		codec.M("errors", codec.Strings(messages)),
	)
}

func regionPayload(region geometry.Region) codec.Object {
	shapes := make(codec.Array, len(region.Shapes))
	for i, s := range region.Shapes {
		constraints := make([]string, len(s.Constraints))
		for j, c := range s.Constraints {
			constraints[j] = c.String()
		}
		shapes[i] = codec.Obj(
			codec.M("name", codec.String(s.Name)),
			codec.M("constraints", codec.Strings(constraints)),
		)
	}
	return codec.Obj(
		codec.M("name", codec.String(region.Name)),
		codec.M("shapes", shapes),
	)
}

func jsonHeader() http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Cache-Control", "no-store, no-cache, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
	return h
}

// jsonResponse encodes payload. Encoding only fails on non-finite numbers,
// which validated input cannot produce; the fallback is a fixed 500 body.
func jsonResponse(status int, payload codec.Value) *Response {
	body, err := codec.Encode(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"ok":false,"errors":["` + internalErrorMessage + `"]}`)
	}
	return &Response{Status: status, Header: jsonHeader(), Body: body}
}

func errorResponse(status int, now time.Time, messages ...string) *Response {
	return jsonResponse(status, errorPayload(now, messages))
}
