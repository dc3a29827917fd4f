package geometry

import (
	"fmt"
	"strconv"
	"strings"
)

// Point is a validated (x, y, r) triple.
type Point struct {
	X float64
	Y float64
	R float64
}

type ConstraintKind int

const (
	// Linear is A*x + B*y <= C*r.
	Linear ConstraintKind = iota
	// Disk is x*x + y*y <= (C*r)^2.
	Disk
)

// Constraint is a single closed inequality over x, y scaled by r.
type Constraint struct {
	Kind ConstraintKind
	A    float64
	B    float64
	C    float64
}

func (c Constraint) Holds(p Point) bool {
	switch c.Kind {
	case Disk:
		rr := c.C * p.R
		return p.X*p.X+p.Y*p.Y <= rr*rr
	default:
		return c.A*p.X+c.B*p.Y <= c.C*p.R
	}
}

func (c Constraint) String() string {
	if c.Kind == Disk {
		return "x*x + y*y <= " + square(term(c.C, "r"))
	}
	var lhs []string
	if c.A != 0 {
		lhs = append(lhs, term(c.A, "x"))
	}
	if c.B != 0 {
		lhs = append(lhs, term(c.B, "y"))
	}
	left := "0"
	if len(lhs) > 0 {
		left = strings.Join(lhs, " + ")
		left = strings.ReplaceAll(left, "+ -", "- ")
	}
	right := "0"
	if c.C != 0 {
		right = term(c.C, "r")
	}
	return left + " <= " + right
}

func term(k float64, v string) string {
	switch k {
	case 1:
		return v
	case -1:
		return "-" + v
	}
	return strconv.FormatFloat(k, 'g', -1, 64) + "*" + v
}

func square(s string) string {
	if s == "r" {
		return "r*r"
	}
	return fmt.Sprintf("(%s)^2", s)
}

// XAtMost is x <= k*r.
func XAtMost(k float64) Constraint { return Constraint{Kind: Linear, A: 1, C: k} }

// XAtLeast is x >= k*r.
func XAtLeast(k float64) Constraint { return Constraint{Kind: Linear, A: -1, C: -k} }

// YAtMost is y <= k*r.
func YAtMost(k float64) Constraint { return Constraint{Kind: Linear, B: 1, C: k} }

// YAtLeast is y >= k*r.
func YAtLeast(k float64) Constraint { return Constraint{Kind: Linear, B: -1, C: -k} }

// HalfPlane is a*x + b*y <= c*r.
func HalfPlane(a, b, c float64) Constraint { return Constraint{Kind: Linear, A: a, B: b, C: c} }

// WithinRadius is x*x + y*y <= (k*r)^2.
func WithinRadius(k float64) Constraint { return Constraint{Kind: Disk, C: k} }

// Shape is the intersection of its constraints.
type Shape struct {
	Name        string
	Constraints []Constraint
}

func (s Shape) Contains(p Point) bool {
	for _, c := range s.Constraints {
		if !c.Holds(p) {
			return false
		}
	}
	return true
}

// Region is the union of its shapes. Every comparison is inclusive, so
// boundary points are inside.
type Region struct {
	Name   string
	Shapes []Shape
}

func (r Region) Contains(p Point) bool {
	for _, s := range r.Shapes {
		if s.Contains(p) {
			return true
		}
	}
	return false
}

// Hit reports whether (x, y) lies in the region scaled by r.
func (r Region) Hit(x, y, radius float64) bool {
	return r.Contains(Point{X: x, Y: y, R: radius})
}
