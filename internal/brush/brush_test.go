package brush

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"sketch-critic/internal/raster"
	"sketch-critic/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var black = color.NRGBA{A: 255}

func TestDabHardAndSoft(t *testing.T) {
	hard := Dab(8, 1, 1, black)
	assert.Equal(t, image.Rect(0, 0, 8, 8), hard.Rect)
	assert.Equal(t, uint8(255), hard.NRGBAAt(4, 4).A)
	assert.Equal(t, uint8(0), hard.NRGBAAt(0, 0).A, "corners are outside the disc")

	soft := Dab(8, 0, 1, black)
	centre := soft.NRGBAAt(4, 4).A
	edge := soft.NRGBAAt(7, 4).A
	assert.Greater(t, centre, edge)

	half := Dab(8, 1, 0.5, black)
	assert.Equal(t, uint8(128), half.NRGBAAt(4, 4).A)

	assert.Equal(t, image.Rect(0, 0, 1, 1), Dab(0.2, 1, 1, black).Rect)
}

func TestSpacerEvenIntervals(t *testing.T) {
	s := Spacer{Step: 2}
	assert.Equal(t, []geometry.Point2D{{X: 0, Y: 0}}, s.To(geometry.Point2D{}))

	pts := s.To(geometry.Point2D{X: 5})
	assert.Equal(t, []geometry.Point2D{{X: 2}, {X: 4}}, pts)

	// One unit left over from the previous segment.
	pts = s.To(geometry.Point2D{X: 5.5})
	assert.Empty(t, pts)
	pts = s.To(geometry.Point2D{X: 9})
	assert.Equal(t, []geometry.Point2D{{X: 6}, {X: 8}}, pts)

	assert.Empty(t, s.To(geometry.Point2D{X: 9}))

	s.Reset()
	assert.Len(t, s.To(geometry.Point2D{X: 100}), 1)
}

func newSurface(t *testing.T, b *raster.Software, w, h int) (raster.Surface, *image.RGBA) {
	t.Helper()
	s, err := b.Allocate(w, h)
	require.NoError(t, err)
	img, ok := raster.SurfaceImage(s)
	require.True(t, ok)
	return s, img
}

func TestPainterDrawsAlongStroke(t *testing.T) {
	b := raster.NewSoftware()
	s, img := newSurface(t, b, 32, 16)

	p := NewPainter(b, s, Settings{Size: 4, Opacity: 1, Hardness: 1, Spacing: 0.25, Color: black}, false)
	require.NoError(t, p.To(geometry.Point2D{X: 4, Y: 8}, 1))
	require.NoError(t, p.To(geometry.Point2D{X: 28, Y: 8}, 1))

	for x := 4; x < 28; x += 3 {
		assert.Equal(t, uint8(255), img.RGBAAt(x, 8).A, "x=%d", x)
	}
	assert.Zero(t, img.RGBAAt(16, 1).A)
	assert.Zero(t, img.RGBAAt(31, 8).A)
}

func TestPainterUsesPressure(t *testing.T) {
	b := raster.NewSoftware()
	s, img := newSurface(t, b, 32, 32)

	settings := Settings{Size: 20, Opacity: 1, Hardness: 1, Spacing: 1, Color: black,
		SizeAt: func(p float64) float64 { return 20 * p }}
	p := NewPainter(b, s, settings, false)
	require.NoError(t, p.To(geometry.Point2D{X: 16, Y: 16}, 0.2))

	assert.Equal(t, uint8(255), img.RGBAAt(16, 16).A)
	assert.Zero(t, img.RGBAAt(16, 22).A, "a 4px dab does not reach 6px away")
}

func TestEraser(t *testing.T) {
	b := raster.NewSoftware()
	s, img := newSurface(t, b, 16, 16)
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 255, A: 255}), image.Point{}, draw.Src)

	p := NewPainter(b, s, Settings{Size: 6, Spacing: 0.1}, true)
	require.NoError(t, p.To(geometry.Point2D{X: 8, Y: 8}, 1))
	require.NoError(t, p.To(geometry.Point2D{X: 100, Y: 100}, 1), "dabs off the surface are ignored")

	assert.Zero(t, img.RGBAAt(8, 8).A)
	assert.Equal(t, uint8(255), img.RGBAAt(1, 14).A)
}

func TestFloodMask(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	// A vertical wall at x=4 splits the image.
	for y := 0; y < 8; y++ {
		img.SetRGBA(4, y, color.RGBA{A: 255})
	}
	img.SetRGBA(1, 1, color.RGBA{R: 10, A: 10}) // within tolerance

	mask, err := FloodMask(img, image.Pt(0, 0), FillTolerance)
	require.NoError(t, err)
	assert.Equal(t, uint8(0xff), mask.AlphaAt(3, 7).A)
	assert.Equal(t, uint8(0xff), mask.AlphaAt(1, 1).A)
	assert.Zero(t, mask.AlphaAt(4, 0).A)
	assert.Zero(t, mask.AlphaAt(6, 3).A)

	_, err = FloodMask(img, image.Pt(9, 0), FillTolerance)
	assert.ErrorIs(t, err, ErrOutside)
}

func TestFill(t *testing.T) {
	b := raster.NewSoftware()
	s, img := newSurface(t, b, 8, 8)
	for y := 0; y < 8; y++ {
		img.SetRGBA(4, y, color.RGBA{A: 255})
	}

	blue := color.NRGBA{B: 255, A: 255}
	require.NoError(t, Fill(b, s, image.Pt(6, 6), Settings{Opacity: 1, Color: blue}))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, img.RGBAAt(7, 0))
	assert.Equal(t, color.RGBA{A: 255}, img.RGBAAt(4, 3))
	assert.Zero(t, img.RGBAAt(0, 0).A)
}

func TestCircle(t *testing.T) {
	pts := Circle(geometry.Point2D{X: 5, Y: 5}, 2, 4)
	require.Len(t, pts, 4)
	assert.InDelta(t, 7, pts[0].X, 1e-9)
	assert.InDelta(t, 7, pts[1].Y, 1e-9)
	assert.Len(t, Circle(geometry.Point2D{}, 1, 1), 3)
}
