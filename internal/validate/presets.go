package validate

// LabRules accepts an integer x in {-5..3}, a real y in [-5, 3] and an r
// from the radius selector.
func LabRules() Rules {
	return Rules{
		X: FieldRule{Name: "x", Integer: true, HasRange: true, Min: -5, Max: 3},
		Y: FieldRule{Name: "y", HasRange: true, Min: -5, Max: 3},
		R: FieldRule{Name: "r", Allowed: []float64{1, 1.5, 2, 2.5, 3}, Tolerance: DefaultTolerance},
	}
}

// QuadrantRules accepts real x and y in [-5, 5] and a positive r up to 5.
func QuadrantRules() Rules {
	return Rules{
		X: FieldRule{Name: "x", HasRange: true, Min: -5, Max: 5},
		Y: FieldRule{Name: "y", HasRange: true, Min: -5, Max: 5},
		R: FieldRule{Name: "r", Positive: true, HasRange: true, Min: 0, Max: 5},
	}
}
