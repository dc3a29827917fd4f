package validate

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sdko-org/areacheck/internal/geometry"
)

// DefaultTolerance is the absolute tolerance used when matching a value
// against an enumerated set.
const DefaultTolerance = 1e-6

type Mode int

const (
	// CollectAll reports every failing field.
	CollectAll Mode = iota
	// FirstError stops at the first failing field, in x, y, r order.
	FirstError
)

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "collect", "all":
		return CollectAll, nil
	case "first":
		return FirstError, nil
	}
	return 0, fmt.Errorf("unknown validation mode %q", s)
}

func (m Mode) String() string {
	if m == FirstError {
		return "first"
	}
	return "collect"
}

// FieldRule describes how one raw parameter becomes a number.
type FieldRule struct {
	Name string
	// Integer fields reject fractional input.
	Integer bool
	// Positive requires the value to be strictly greater than zero.
	Positive bool
	// Min and Max bound a closed range when HasRange is set.
	HasRange bool
	Min      float64
	Max      float64
	// Allowed, when non-empty, restricts the value to one of these within
	// Tolerance.
	Allowed   []float64
	Tolerance float64
}

// Rules holds the rule for each coordinate.
type Rules struct {
	X FieldRule
	Y FieldRule
	R FieldRule
}

// FieldError is a single rejected parameter.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("Parameter '%s' %s", e.Field, e.Reason)
}

// Errors is every field error collected for one request.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := e.Messages()
	return strings.Join(msgs, "; ")
}

func (e Errors) Messages() []string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return msgs
}

type Validator struct {
	rules Rules
	mode  Mode
}

func New(rules Rules, mode Mode) *Validator {
	return &Validator{rules: rules, mode: mode}
}

func (v *Validator) Mode() Mode {
	return v.mode
}

// Validate parses x, y and r out of params. On failure the error is an
// Errors value.
func (v *Validator) Validate(params map[string]string) (geometry.Point, error) {
	var errs Errors
	values := [3]float64{}

	for i, rule := range []FieldRule{v.rules.X, v.rules.Y, v.rules.R} {
		raw, ok := params[rule.Name]
		value, fe := rule.check(raw, ok)
		if fe != nil {
			errs = append(errs, *fe)
			if v.mode == FirstError {
				return geometry.Point{}, errs
			}
			continue
		}
		values[i] = value
	}

	if len(errs) > 0 {
		return geometry.Point{}, errs
	}
	return geometry.Point{X: values[0], Y: values[1], R: values[2]}, nil
}

func (r FieldRule) check(raw string, present bool) (float64, *FieldError) {
	raw = strings.TrimSpace(raw)
	if !present || raw == "" {
		return 0, r.fail("is required")
	}

	var value float64
	if r.Integer {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, r.fail("must be an integer")
		}
		value = float64(n)
	} else {
		f, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, r.fail("must be a real number")
		}
		value = f
	}

	if r.Positive && value <= 0 {
		return 0, r.fail("must be positive")
	}
	if r.HasRange && (value < r.Min || value > r.Max) {
		return 0, r.fail(r.rangeReason())
	}
	if len(r.Allowed) > 0 && !r.allowed(value) {
		return 0, r.fail("must be one of {" + joinNumbers(r.Allowed) + "}")
	}
	return value, nil
}

func (r FieldRule) allowed(value float64) bool {
	tol := r.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}
	for _, a := range r.Allowed {
		if math.Abs(value-a) < tol {
			return true
		}
	}
	return false
}

func (r FieldRule) rangeReason() string {
	if r.Integer {
		var set []float64
		for n := math.Ceil(r.Min); n <= r.Max; n++ {
			set = append(set, n)
		}
		if len(set) <= 16 {
			return "must be in {" + joinNumbers(set) + "}"
		}
	}
	if r.Positive {
		return "must not be greater than " + formatNumber(r.Max)
	}
	return fmt.Sprintf("must be in range [%s, %s]", formatNumber(r.Min), formatNumber(r.Max))
}

func (r FieldRule) fail(reason string) *FieldError {
	return &FieldError{Field: r.Name, Reason: reason}
}

func joinNumbers(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatNumber(v)
	}
	return strings.Join(parts, ",")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
