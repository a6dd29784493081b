package geometry

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAffineInverseRoundTrip(t *testing.T) {
	tr := Translation(30, -12).Compose(Rotation(0.7)).Compose(Scale(2.5, 2.5))
	inv, ok := tr.Inverse()
	require.True(t, ok)

	for _, p := range []Point2D{{0, 0}, {10, 20}, {-300, 42.5}, {2048, 2048}} {
		got := inv.Apply(tr.Apply(p))
		assert.InDelta(t, p.X, got.X, 1e-9)
		assert.InDelta(t, p.Y, got.Y, 1e-9)
	}
}

func TestInverseSingular(t *testing.T) {
	_, ok := Scale(0, 1).Inverse()
	assert.False(t, ok)
}

func TestRectFromPoints(t *testing.T) {
	r := RectFromPoints(Point2D{50, 60}, Point2D{10, 20})
	assert.Equal(t, Rect{X: 10, Y: 20, Width: 40, Height: 40}, r)
	assert.Equal(t, image.Rect(10, 20, 50, 60), r.ImageRect())
}

func TestImageRectCoversFractions(t *testing.T) {
	r := NewRect(1.5, 2.2, 3, 3)
	assert.Equal(t, image.Rect(1, 2, 5, 6), r.ImageRect())
}

func TestPointRotate(t *testing.T) {
	p := Point2D{1, 0}.Rotate(90)
	assert.True(t, p.ApproxEqual(Point2D{0, 1}, 1e-12), "got %+v", p)
}

func TestPolygonHelpers(t *testing.T) {
	square := []Point2D{{0, 0}, {10, 0}, {10, 10}, {0, 10}}

	assert.InDelta(t, 100, PolygonArea(square), 1e-9)
	assert.False(t, IsDegenerate(square))
	assert.True(t, ContainsPoint(square, Point2D{5, 5}))
	assert.False(t, ContainsPoint(square, Point2D{15, 5}))

	tests := []struct {
		name string
		pts  []Point2D
	}{
		{"empty", nil},
		{"two points", []Point2D{{0, 0}, {5, 5}}},
		{"collinear horizontal", []Point2D{{0, 0}, {5, 0}, {9, 0}}},
		{"collinear vertical", []Point2D{{3, 0}, {3, 5}, {3, 9}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, IsDegenerate(tt.pts))
		})
	}
}

func TestBoundingBox(t *testing.T) {
	bb := BoundingBox([]Point2D{{3, 7}, {-1, 2}, {5, -4}})
	assert.Equal(t, Rect{X: -1, Y: -4, Width: 6, Height: 11}, bb)
	assert.Equal(t, Rect{}, BoundingBox(nil))
}

func TestTranslatePoints(t *testing.T) {
	got := TranslatePoints([]Point2D{{1, 1}, {2, 3}}, Point2D{10, -1})
	assert.Equal(t, []Point2D{{11, 0}, {12, 2}}, got)
	assert.False(t, math.IsNaN(Centroid(got).X))
}
