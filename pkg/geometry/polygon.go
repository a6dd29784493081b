package geometry

import "math"

// PolygonArea returns the unsigned area of a closed polygon using the shoelace formula.
func PolygonArea(polygon []Point2D) float64 {
	n := len(polygon)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += polygon[i].X*polygon[j].Y - polygon[j].X*polygon[i].Y
	}
	return math.Abs(sum) / 2
}

// IsDegenerate reports whether the points cannot form a usable closed region:
// fewer than three vertices, or a bounding box with no width or no height.
func IsDegenerate(polygon []Point2D) bool {
	if len(polygon) < 3 {
		return true
	}
	return BoundingBox(polygon).IsEmpty()
}

// ContainsPoint reports whether p lies inside the polygon (even-odd rule).
func ContainsPoint(polygon []Point2D, p Point2D) bool {
	n := len(polygon)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := polygon[i], polygon[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) &&
			p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
	}
	return inside
}

// TransformPoints applies t to every point and returns a new slice.
func TransformPoints(points []Point2D, t AffineTransform) []Point2D {
	out := make([]Point2D, len(points))
	for i, p := range points {
		out[i] = t.Apply(p)
	}
	return out
}

// TranslatePoints returns the points shifted by d.
func TranslatePoints(points []Point2D, d Point2D) []Point2D {
	return TransformPoints(points, Translation(d.X, d.Y))
}
