package geometry

// LabRegion is a rectangle in the second quadrant, a quarter disk in the
// third and a triangle in the fourth.
func LabRegion() Region {
	return Region{
		Name: "lab",
		Shapes: []Shape{
			{
				Name: "rectangle",
				Constraints: []Constraint{
					XAtMost(0), YAtLeast(0), XAtLeast(-0.5), YAtMost(1),
				},
			},
			{
				Name: "sector",
				Constraints: []Constraint{
					XAtMost(0), YAtMost(0), WithinRadius(1),
				},
			},
			{
				Name: "triangle",
				// y >= x/2 - r/2
				Constraints: []Constraint{
					XAtLeast(0), XAtMost(1), YAtMost(0), HalfPlane(0.5, -1, 0.5),
				},
			},
		},
	}
}

// QuadrantRegion is a quarter disk in the second quadrant, an r x r/2
// rectangle in the first and a triangle in the fourth.
func QuadrantRegion() Region {
	return Region{
		Name: "quadrant",
		Shapes: []Shape{
			{
				Name: "sector",
				Constraints: []Constraint{
					XAtMost(0), YAtLeast(0), WithinRadius(1),
				},
			},
			{
				Name: "rectangle",
				Constraints: []Constraint{
					XAtLeast(0), YAtLeast(0), XAtMost(1), YAtMost(0.5),
				},
			},
			{
				Name: "triangle",
				// y >= x - r
				Constraints: []Constraint{
					XAtLeast(0), YAtMost(0), HalfPlane(1, -1, 1),
				},
			},
		},
	}
}
