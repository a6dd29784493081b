package viewport

import (
	"math/rand"
	"testing"

	"sketch-critic/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-6

func newTransformer() *Transformer {
	return New(geometry.NewSize(2048, 2048), geometry.NewSize(800, 600))
}

func assertPoint(t *testing.T, want, got geometry.Point2D) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, tol, "x")
	assert.InDelta(t, want.Y, got.Y, tol, "y")
}

func TestDefaultMapsDocumentCentreToScreenCentre(t *testing.T) {
	tr := newTransformer()
	assertPoint(t, geometry.Point2D{X: 400, Y: 300}, tr.DocumentToScreen(geometry.Point2D{X: 1024, Y: 1024}))
	assertPoint(t, geometry.Point2D{X: 1024, Y: 1024}, tr.ScreenToDocument(geometry.Point2D{X: 400, Y: 300}))
}

func TestRoundTripProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tr := newTransformer()
	for i := 0; i < 500; i++ {
		tr.SetView(View{
			Scale:    MinZoom + rng.Float64()*(MaxZoom-MinZoom),
			Offset:   geometry.Point2D{X: rng.NormFloat64() * 1000, Y: rng.NormFloat64() * 1000},
			Rotation: rng.Float64() * 360,
		})
		p := geometry.Point2D{X: rng.Float64()*4000 - 1000, Y: rng.Float64()*4000 - 1000}

		assertPoint(t, p, tr.DocumentToScreen(tr.ScreenToDocument(p)))
		assertPoint(t, p, tr.ScreenToDocument(tr.DocumentToScreen(p)))
	}
}

func TestZoomKeepsAnchor(t *testing.T) {
	tr := newTransformer()
	center := geometry.Point2D{X: 100, Y: 100}
	before := tr.ScreenToDocument(center)

	tr.Zoom(2.0, center)

	assert.Equal(t, 2.0, tr.Scale())
	assertPoint(t, center, tr.DocumentToScreen(before))
}

func TestZoomAnchorProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tr := newTransformer()
	for i := 0; i < 200; i++ {
		tr.SetView(View{Scale: 0.5 + rng.Float64()*3, Rotation: rng.Float64() * 360,
			Offset: geometry.Point2D{X: rng.Float64() * 200, Y: -rng.Float64() * 200}})
		center := geometry.Point2D{X: rng.Float64() * 800, Y: rng.Float64() * 600}
		doc := tr.ScreenToDocument(center)

		tr.Zoom(rng.Float64()*12, center)
		assertPoint(t, center, tr.DocumentToScreen(doc))
	}
}

func TestZoomClamps(t *testing.T) {
	tr := newTransformer()
	tr.Zoom(50, geometry.Point2D{})
	assert.Equal(t, MaxZoom, tr.Scale())
	tr.Zoom(0.001, geometry.Point2D{})
	assert.Equal(t, MinZoom, tr.Scale())

	tr.Reset()
	tr.ZoomIn(geometry.Point2D{X: 400, Y: 300})
	assert.InDelta(t, ZoomStep, tr.Scale(), 1e-12)
	tr.ZoomOut(geometry.Point2D{X: 400, Y: 300})
	assert.InDelta(t, 1.0, tr.Scale(), 1e-12)
}

func TestPanIsUnconditional(t *testing.T) {
	tr := newTransformer()
	tr.Pan(geometry.Point2D{X: 10, Y: -5})
	tr.Pan(geometry.Point2D{X: 1e6, Y: 0})
	assert.Equal(t, geometry.Point2D{X: 1e6 + 10, Y: -5}, tr.Offset())
}

func TestRotate(t *testing.T) {
	tests := []struct {
		name    string
		start   float64
		delta   float64
		snap    bool
		want    float64
		changed bool
	}{
		{"tiny delta ignored", 10, 0.05, false, 10, false},
		{"adds", 10, 20, false, 30, true},
		{"wraps past 360", 350, 20, false, 10, true},
		{"wraps negative", 10, -30, false, 340, true},
		{"snaps down", 0, 7, true, 0, false},
		{"snaps up", 0, 8, true, 15, true},
		{"snap wraps to zero", 350, 9, true, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTransformer()
			tr.SetView(View{Scale: 1, Rotation: tt.start})
			changed := tr.Rotate(tt.delta, tt.snap)
			assert.InDelta(t, tt.want, tr.Rotation(), 1e-9)
			assert.Equal(t, tt.changed, changed)
		})
	}
}

func TestDocumentRectToScreenIsBoundingBox(t *testing.T) {
	tr := newTransformer()
	r := geometry.NewRect(1000, 1000, 48, 48)

	got := tr.DocumentRectToScreen(r)
	assert.InDelta(t, 48, got.Width, tol)

	tr.SetView(View{Scale: 1, Rotation: 45})
	got = tr.DocumentRectToScreen(r)
	assert.InDelta(t, 48*1.41421356, got.Width, 1e-3)
	assert.InDelta(t, got.Width, got.Height, tol)

	corners := r.Corners()
	quad := tr.DocumentPathToScreen(corners[:])
	require.Len(t, quad, 4)
	assert.InDelta(t, 48, quad[0].Distance(quad[1]), tol, "true quad keeps edge length")
}

func TestFitToScreen(t *testing.T) {
	tr := newTransformer()
	tr.SetView(View{Scale: 3, Rotation: 90, Offset: geometry.Point2D{X: 5}})
	tr.FitToScreen()
	assert.InDelta(t, 600.0/2048, tr.Scale(), 1e-12)
	assert.Zero(t, tr.Rotation())
	assert.Equal(t, geometry.Point2D{}, tr.Offset())
}

func TestSetScreenSizeKeepsInverse(t *testing.T) {
	tr := newTransformer()
	tr.SetScreenSize(geometry.NewSize(1024, 1366))
	p := geometry.Point2D{X: 12, Y: 900}
	assertPoint(t, p, tr.DocumentToScreen(tr.ScreenToDocument(p)))
}
