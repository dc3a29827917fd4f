package models

import (
	"time"

	"github.com/sdko-org/areacheck/internal/geometry"
)

// CheckResult is the outcome of one accepted hit check. It is never
// modified after creation.
type CheckResult struct {
	Point   geometry.Point
	Hit     bool
	Time    time.Time
	Elapsed time.Duration
	Client  string
}
