package selection

import (
	"image"
	"image/color"
	"testing"

	"sketch-critic/internal/raster"
	"sketch-critic/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var red = color.RGBA{R: 255, A: 255}

// setup returns a 10x10 surface with a red square covering [2,6)x[2,6).
func setup(t *testing.T) (*raster.Software, raster.Surface, *Engine) {
	t.Helper()
	b := raster.NewSoftware()
	s, err := b.Allocate(10, 10)
	require.NoError(t, err)
	img, ok := raster.SurfaceImage(s)
	require.True(t, ok)
	for y := 2; y < 6; y++ {
		for x := 2; x < 6; x++ {
			img.SetRGBA(x, y, red)
		}
	}
	return b, s, NewEngine(b)
}

func pixel(t *testing.T, s raster.Surface, x, y int) color.RGBA {
	t.Helper()
	img, ok := raster.SurfaceImage(s)
	require.True(t, ok)
	return img.RGBAAt(x, y)
}

func snapshot(t *testing.T, b *raster.Software, s raster.Surface) raster.Snapshot {
	t.Helper()
	snap, err := b.Snapshot(s)
	require.NoError(t, err)
	return snap
}

func TestExtractLeavesHole(t *testing.T) {
	_, s, e := setup(t)
	require.NoError(t, e.SelectRect(geometry.NewRect(2, 2, 4, 4)))
	require.NoError(t, e.Extract(s))

	assert.True(t, e.Lifted())
	assert.Equal(t, color.RGBA{}, pixel(t, s, 3, 3))
	assert.Equal(t, geometry.NewRect(2, 2, 4, 4), e.Placement())
	assert.Same(t, s, e.Surface())
}

func TestDragAndCommit(t *testing.T) {
	b, s, e := setup(t)
	original := snapshot(t, b, s)

	require.NoError(t, e.SelectRect(geometry.NewRect(2, 2, 4, 4)))
	require.NoError(t, e.Extract(s))
	e.Translate(geometry.Point2D{X: 3})
	require.NoError(t, e.RenderLive())

	assert.Equal(t, color.RGBA{}, pixel(t, s, 3, 3))
	assert.Equal(t, red, pixel(t, s, 7, 3))

	before, after, err := e.Commit()
	require.NoError(t, err)
	assert.False(t, e.Active())
	assert.False(t, e.Lifted())
	assert.Equal(t, original.Bytes(), before.Bytes())
	assert.Equal(t, snapshot(t, b, s).Bytes(), after.Bytes())

	// Restoring the before snapshot is what undo does.
	require.NoError(t, b.Restore(s, before))
	assert.Equal(t, red, pixel(t, s, 3, 3))
	assert.Equal(t, color.RGBA{}, pixel(t, s, 7, 3))
}

func TestRenderLiveDoesNotAccumulate(t *testing.T) {
	b, s, e := setup(t)
	require.NoError(t, e.SelectRect(geometry.NewRect(2, 2, 4, 4)))
	require.NoError(t, e.Extract(s))

	e.SetOffset(geometry.Point2D{X: 1, Y: 1})
	require.NoError(t, e.RenderLive())
	once := snapshot(t, b, s)

	e.SetOffset(geometry.Point2D{X: 4, Y: 0})
	require.NoError(t, e.RenderLive())
	e.SetOffset(geometry.Point2D{X: 1, Y: 1})
	require.NoError(t, e.RenderLive())

	assert.Equal(t, once.Bytes(), snapshot(t, b, s).Bytes())
}

func TestCommitWithoutRenderPlacesPixels(t *testing.T) {
	_, s, e := setup(t)
	require.NoError(t, e.SelectRect(geometry.NewRect(2, 2, 4, 4)))
	require.NoError(t, e.Extract(s))
	e.SetOffset(geometry.Point2D{Y: 4})

	_, _, err := e.Commit()
	require.NoError(t, err)
	assert.Equal(t, red, pixel(t, s, 3, 7))
	assert.Equal(t, color.RGBA{}, pixel(t, s, 3, 3))
}

func TestCancelRestoresPixels(t *testing.T) {
	b, s, e := setup(t)
	original := snapshot(t, b, s)

	require.NoError(t, e.SelectRect(geometry.NewRect(2, 2, 4, 4)))
	require.NoError(t, e.Extract(s))
	e.Translate(geometry.Point2D{X: 2, Y: 2})
	require.NoError(t, e.RenderLive())

	require.NoError(t, e.Cancel())
	assert.False(t, e.Active())
	assert.Equal(t, original.Bytes(), snapshot(t, b, s).Bytes())
}

func TestCancelWithoutLiftOnlyClears(t *testing.T) {
	b, s, e := setup(t)
	original := snapshot(t, b, s)
	require.NoError(t, e.SelectRect(geometry.NewRect(0, 0, 5, 5)))
	require.NoError(t, e.Cancel())
	assert.False(t, e.Active())
	assert.Equal(t, original.Bytes(), snapshot(t, b, s).Bytes())
}

func TestDegenerateLassoClearsWithoutTouchingPixels(t *testing.T) {
	b, s, e := setup(t)
	original := snapshot(t, b, s)

	require.NoError(t, e.SelectLasso([]geometry.Point2D{{X: 1, Y: 1}, {X: 8, Y: 8}}))
	assert.True(t, e.Active())

	err := e.Extract(s)
	assert.ErrorIs(t, err, ErrInvalidSelection)
	assert.False(t, e.Active())
	assert.False(t, e.Lifted())
	assert.Equal(t, original.Bytes(), snapshot(t, b, s).Bytes())
}

func TestLassoExtractKeepsOutsidePixels(t *testing.T) {
	_, s, e := setup(t)
	// Triangle covering the top-left half of the red square.
	require.NoError(t, e.SelectLasso([]geometry.Point2D{{X: 2, Y: 2}, {X: 6, Y: 2}, {X: 2, Y: 6}}))
	require.NoError(t, e.Extract(s))

	assert.Equal(t, color.RGBA{}, pixel(t, s, 2, 2))
	assert.Equal(t, red, pixel(t, s, 5, 5))
}

func TestExtractPreconditions(t *testing.T) {
	_, s, e := setup(t)
	assert.ErrorIs(t, e.Extract(s), ErrNoSelection)

	require.NoError(t, e.SelectRect(geometry.NewRect(0, 0, 3, 3)))
	assert.ErrorIs(t, e.Extract(nil), ErrNoSurface)
	assert.True(t, e.Active(), "missing surface keeps the selection")

	require.NoError(t, e.Extract(s))
	assert.ErrorIs(t, e.Extract(s), ErrAlreadyLifted)
	assert.ErrorIs(t, e.SelectRect(geometry.NewRect(0, 0, 1, 1)), ErrAlreadyLifted)
}

func TestExtractOutsideSurfaceFails(t *testing.T) {
	b, s, e := setup(t)
	original := snapshot(t, b, s)
	require.NoError(t, e.SelectRect(geometry.NewRect(20, 20, 5, 5)))

	err := e.Extract(s)
	assert.ErrorIs(t, err, ErrExtractFailed)
	assert.False(t, e.Active())
	assert.Equal(t, original.Bytes(), snapshot(t, b, s).Bytes())
}

func TestEmptyRectIsInvalid(t *testing.T) {
	_, _, e := setup(t)
	assert.ErrorIs(t, e.SelectRect(geometry.NewRect(3, 3, 0, 4)), ErrInvalidSelection)
	assert.False(t, e.Active())
}

func TestSelectRectNormalizes(t *testing.T) {
	_, _, e := setup(t)
	require.NoError(t, e.SelectRect(geometry.RectFromPoints(geometry.Point2D{X: 6, Y: 6}, geometry.Point2D{X: 2, Y: 3})))
	assert.Equal(t, geometry.NewRect(2, 3, 4, 3), e.Selection().Rect)
}

func TestCommitWithoutLiftFails(t *testing.T) {
	_, _, e := setup(t)
	require.NoError(t, e.SelectRect(geometry.NewRect(0, 0, 3, 3)))
	_, _, err := e.Commit()
	assert.ErrorIs(t, err, ErrMissingSnapshot)
	assert.True(t, e.Active())
}

func TestDeleteSelected(t *testing.T) {
	b, s, e := setup(t)
	original := snapshot(t, b, s)
	require.NoError(t, e.SelectRect(geometry.NewRect(2, 2, 2, 2)))

	before, after, err := e.DeleteSelected(s)
	require.NoError(t, err)
	assert.False(t, e.Active())
	assert.Equal(t, original.Bytes(), before.Bytes())
	assert.Equal(t, color.RGBA{}, pixel(t, s, 2, 2))
	assert.Equal(t, red, pixel(t, s, 5, 5))
	assert.Equal(t, snapshot(t, b, s).Bytes(), after.Bytes())
}

func TestDeleteLiftedUsesHole(t *testing.T) {
	b, s, e := setup(t)
	original := snapshot(t, b, s)
	require.NoError(t, e.SelectRect(geometry.NewRect(2, 2, 4, 4)))
	require.NoError(t, e.Extract(s))
	e.Translate(geometry.Point2D{X: 3})
	require.NoError(t, e.RenderLive())

	before, _, err := e.DeleteSelected(s)
	require.NoError(t, err)
	assert.Equal(t, original.Bytes(), before.Bytes())
	assert.Equal(t, color.RGBA{}, pixel(t, s, 7, 3), "moved pixels are gone")
	assert.Equal(t, color.RGBA{}, pixel(t, s, 3, 3))
}

func TestDeleteWithoutSelection(t *testing.T) {
	_, s, e := setup(t)
	_, _, err := e.DeleteSelected(s)
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestScaleClampsAndPlacement(t *testing.T) {
	_, s, e := setup(t)
	require.NoError(t, e.SelectRect(geometry.NewRect(2, 2, 4, 4)))
	require.NoError(t, e.Extract(s))

	e.SetScale(100)
	assert.Equal(t, MaxScale, e.Scale())
	e.SetScale(0)
	assert.Equal(t, MinScale, e.Scale())

	e.SetScale(2)
	e.SetOffset(geometry.Point2D{X: 1, Y: -1})
	assert.Equal(t, geometry.NewRect(3, 1, 8, 8), e.Placement())
}

func TestOutlineFollowsLiftedPixels(t *testing.T) {
	_, s, e := setup(t)
	require.NoError(t, e.SelectRect(geometry.NewRect(2, 2, 4, 4)))
	assert.Equal(t, geometry.Point2D{X: 2, Y: 2}, e.Outline()[0])

	require.NoError(t, e.Extract(s))
	e.Translate(geometry.Point2D{X: 3, Y: 1})
	out := e.Outline()
	require.Len(t, out, 4)
	assert.InDelta(t, 5, out[0].X, 1e-9)
	assert.InDelta(t, 3, out[0].Y, 1e-9)
}

func TestLiftedImpliesHole(t *testing.T) {
	_, s, e := setup(t)
	require.NoError(t, e.SelectRect(geometry.NewRect(2, 2, 4, 4)))
	require.NoError(t, e.Extract(s))
	assert.Equal(t, e.extracted != nil, !e.hole.IsZero())
	assert.Equal(t, image.Pt(4, 4), e.extracted.Bounds().Size())

	e.Clear()
	assert.Equal(t, e.extracted != nil, !e.hole.IsZero())
	assert.Equal(t, 1.0, e.Scale())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "Rectangle", KindRect.String())
	assert.Equal(t, "Lasso", KindLasso.String())
	assert.Equal(t, "None", KindNone.String())
}
