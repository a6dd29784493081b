package viewport

import (
	"testing"

	"sketch-critic/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitPinchRecoversSimilarity(t *testing.T) {
	from := []geometry.Point2D{{X: 100, Y: 100}, {X: 200, Y: 100}}
	to := []geometry.Point2D{{X: 50, Y: 50}, {X: 50, Y: 250}}

	p, err := FitPinch(from, to)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, p.Scale, 1e-9)
	assert.InDelta(t, 90.0, p.Rotation, 1e-9)
}

func TestFitPinchErrors(t *testing.T) {
	_, err := FitPinch([]geometry.Point2D{{X: 1, Y: 1}}, []geometry.Point2D{{X: 1, Y: 1}})
	assert.Error(t, err)
	_, err = FitPinch(make([]geometry.Point2D, 2), make([]geometry.Point2D, 3))
	assert.Error(t, err)
}

func TestApplyPinchAnchorsCentroid(t *testing.T) {
	tr := New(geometry.NewSize(2048, 2048), geometry.NewSize(800, 600))
	start := tr.View()
	from := []geometry.Point2D{{X: 300, Y: 300}, {X: 400, Y: 300}}
	to := []geometry.Point2D{{X: 320, Y: 310}, {X: 470, Y: 310}}

	doc := tr.ScreenToDocument(geometry.Centroid(from))
	require.NoError(t, tr.ApplyPinch(start, from, to, false))

	assert.InDelta(t, 1.5, tr.Scale(), 1e-9)
	assert.InDelta(t, 0, tr.Rotation(), 1e-9)
	got := tr.DocumentToScreen(doc)
	want := geometry.Centroid(to)
	assert.InDelta(t, want.X, got.X, 1e-6)
	assert.InDelta(t, want.Y, got.Y, 1e-6)
}

func TestApplyPinchIsRelativeToStart(t *testing.T) {
	tr := New(geometry.NewSize(2048, 2048), geometry.NewSize(800, 600))
	start := tr.View()
	from := []geometry.Point2D{{X: 300, Y: 300}, {X: 400, Y: 300}}
	to := []geometry.Point2D{{X: 300, Y: 300}, {X: 500, Y: 300}}

	// Repeated updates with the same touches must not compound.
	for i := 0; i < 3; i++ {
		require.NoError(t, tr.ApplyPinch(start, from, to, false))
	}
	assert.InDelta(t, 2.0, tr.Scale(), 1e-9)
}
