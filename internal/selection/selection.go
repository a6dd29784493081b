// Package selection implements pixel selections on a layer: choosing a
// rectangle or lasso region, lifting its pixels, transforming them live and
// committing or cancelling the result.
package selection

import (
	"errors"
	"fmt"
	"image"

	"sketch-critic/internal/raster"
	"sketch-critic/pkg/geometry"
)

const (
	MinScale = 0.1
	MaxScale = 5.0
)

var (
	ErrNoSelection      = errors.New("no active selection")
	ErrNoSurface        = errors.New("layer has no raster surface")
	ErrInvalidSelection = errors.New("selection region is degenerate")
	ErrExtractFailed    = errors.New("could not extract selection pixels")
	ErrMissingSnapshot  = errors.New("selection has no snapshot")
	ErrAlreadyLifted    = errors.New("selection pixels already lifted")
	ErrNotLifted        = errors.New("selection pixels not lifted")
)

// Kind distinguishes the selection shapes.
type Kind int

const (
	KindNone Kind = iota
	KindRect
	KindLasso
)

func (k Kind) String() string {
	switch k {
	case KindRect:
		return "Rectangle"
	case KindLasso:
		return "Lasso"
	default:
		return "None"
	}
}

// Selection is a region in document space: a rectangle or a closed polygon, never both.
type Selection struct {
	Kind Kind
	Rect geometry.Rect
	Path []geometry.Point2D
}

// Bounds returns the axis-aligned bounds of the region.
func (s Selection) Bounds() geometry.Rect {
	switch s.Kind {
	case KindRect:
		return s.Rect
	case KindLasso:
		return geometry.BoundingBox(s.Path)
	}
	return geometry.Rect{}
}

// Outline returns the region as a closed polygon.
func (s Selection) Outline() []geometry.Point2D {
	switch s.Kind {
	case KindRect:
		c := s.Rect.Corners()
		return c[:]
	case KindLasso:
		return append([]geometry.Point2D(nil), s.Path...)
	}
	return nil
}

// Engine holds the single selection of a canvas and its lifted-pixel state.
// All fields are reset together by Clear.
//
// Engine is not safe for concurrent use.
type Engine struct {
	backend raster.Backend

	sel Selection

	surface   raster.Surface
	extracted image.Image
	origin    geometry.Rect
	offset    geometry.Point2D
	scale     float64
	rotation  float64
	before    raster.Snapshot
	hole      raster.Snapshot
}

// NewEngine creates an engine that issues raster commands to backend.
func NewEngine(backend raster.Backend) *Engine {
	return &Engine{backend: backend, scale: 1}
}

// Active reports whether a selection exists.
func (e *Engine) Active() bool { return e.sel.Kind != KindNone }

// Lifted reports whether the selection's pixels have been extracted.
func (e *Engine) Lifted() bool { return e.extracted != nil }

// Selection returns the current region.
func (e *Engine) Selection() Selection { return e.sel }

// Offset returns the cumulative drag offset of lifted pixels.
func (e *Engine) Offset() geometry.Point2D { return e.offset }

// Scale returns the scale applied to lifted pixels.
func (e *Engine) Scale() float64 { return e.scale }

// Rotation returns the rotation in degrees applied to lifted pixels.
func (e *Engine) Rotation() float64 { return e.rotation }

// Surface returns the surface the pixels were lifted from, if any.
func (e *Engine) Surface() raster.Surface { return e.surface }

// SelectRect replaces the selection with a rectangle.
func (e *Engine) SelectRect(r geometry.Rect) error {
	if e.Lifted() {
		return ErrAlreadyLifted
	}
	r = geometry.RectFromPoints(r.TopLeft(), r.BottomRight())
	if r.IsEmpty() {
		e.Clear()
		return ErrInvalidSelection
	}
	e.Clear()
	e.sel = Selection{Kind: KindRect, Rect: r}
	return nil
}

// SelectLasso replaces the selection with a closed polygon. The path is
// validated when pixels are extracted or deleted.
func (e *Engine) SelectLasso(path []geometry.Point2D) error {
	if e.Lifted() {
		return ErrAlreadyLifted
	}
	e.Clear()
	e.sel = Selection{Kind: KindLasso, Path: append([]geometry.Point2D(nil), path...)}
	return nil
}

// Extract lifts the selected pixels off surface: it snapshots the surface,
// copies the pixels under the selection, clears them, and snapshots the
// result as the hole used while dragging. Any failure restores the surface
// and clears the selection.
func (e *Engine) Extract(surface raster.Surface) error {
	if !e.Active() {
		return ErrNoSelection
	}
	if e.Lifted() {
		return ErrAlreadyLifted
	}
	if surface == nil {
		return ErrNoSurface
	}
	if e.sel.Kind == KindLasso && geometry.IsDegenerate(e.sel.Path) {
		e.Clear()
		return ErrInvalidSelection
	}

	before, err := e.backend.Snapshot(surface)
	if err != nil {
		e.Clear()
		return fmt.Errorf("%w: %v", ErrExtractFailed, err)
	}

	pixels, origin, err := e.extract(surface)
	if err != nil || pixels == nil {
		e.Clear()
		return fmt.Errorf("%w: %v", ErrExtractFailed, err)
	}

	if err := e.clearRegion(surface); err != nil {
		e.rollback(surface, before)
		return fmt.Errorf("%w: %v", ErrExtractFailed, err)
	}

	hole, err := e.backend.Snapshot(surface)
	if err != nil {
		e.rollback(surface, before)
		return fmt.Errorf("%w: %v", ErrExtractFailed, err)
	}

	e.surface = surface
	e.extracted = pixels
	e.origin = origin
	e.offset = geometry.Point2D{}
	e.scale = 1
	e.rotation = 0
	e.before = before
	e.hole = hole
	return nil
}

// SetOffset sets the cumulative drag offset of the lifted pixels.
func (e *Engine) SetOffset(p geometry.Point2D) { e.offset = p }

// Translate adds delta to the drag offset.
func (e *Engine) Translate(delta geometry.Point2D) { e.offset = e.offset.Add(delta) }

// SetScale sets the scale of the lifted pixels, clamped to [MinScale, MaxScale].
func (e *Engine) SetScale(s float64) {
	if s < MinScale {
		s = MinScale
	}
	if s > MaxScale {
		s = MaxScale
	}
	e.scale = s
}

// SetRotation sets the rotation of the lifted pixels in degrees.
func (e *Engine) SetRotation(deg float64) { e.rotation = deg }

// Placement returns where the lifted pixels are drawn: the original bounds
// moved by the drag offset, with width and height multiplied by the scale.
func (e *Engine) Placement() geometry.Rect {
	return geometry.Rect{
		X:      e.origin.X + e.offset.X,
		Y:      e.origin.Y + e.offset.Y,
		Width:  e.origin.Width * e.scale,
		Height: e.origin.Height * e.scale,
	}
}

// Outline returns the selection outline in document space, following the
// lifted pixels when they have been moved or scaled.
func (e *Engine) Outline() []geometry.Point2D {
	pts := e.sel.Outline()
	if !e.Lifted() || len(pts) == 0 {
		return pts
	}
	p := e.Placement()
	t := geometry.Translation(p.X, p.Y).
		Compose(geometry.Scale(e.scale, e.scale)).
		Compose(geometry.Translation(-e.origin.X, -e.origin.Y))
	return geometry.TransformPoints(pts, t)
}

// RenderLive recomposites the surface from the hole snapshot and draws the
// lifted pixels at the current placement. Every call starts from the same
// snapshot, so repeated calls never accumulate error.
func (e *Engine) RenderLive() error {
	if !e.Lifted() {
		return ErrNotLifted
	}
	if e.hole.IsZero() {
		return ErrMissingSnapshot
	}
	if err := e.backend.Restore(e.surface, e.hole); err != nil {
		return err
	}
	return e.backend.DrawImage(e.surface, e.extracted, e.Placement(), e.rotation)
}

// Commit places the lifted pixels and returns the snapshots before the
// extraction and after placement, then clears the selection.
func (e *Engine) Commit() (before, after raster.Snapshot, err error) {
	if e.before.IsZero() || e.surface == nil {
		return raster.Snapshot{}, raster.Snapshot{}, ErrMissingSnapshot
	}
	if err := e.RenderLive(); err != nil {
		return raster.Snapshot{}, raster.Snapshot{}, err
	}
	after, err = e.backend.Snapshot(e.surface)
	if err != nil {
		return raster.Snapshot{}, raster.Snapshot{}, err
	}
	before = e.before
	e.Clear()
	return before, after, nil
}

// Cancel discards the selection. Lifted pixels are put back by restoring the
// pre-extraction snapshot; if that fails the selection is kept.
func (e *Engine) Cancel() error {
	if e.Lifted() {
		if err := e.backend.Restore(e.surface, e.before); err != nil {
			return err
		}
	}
	e.Clear()
	return nil
}

// DeleteSelected erases the selected pixels from surface without lifting them
// and returns before/after snapshots for history. When the pixels are
// already lifted the hole becomes the result.
func (e *Engine) DeleteSelected(surface raster.Surface) (before, after raster.Snapshot, err error) {
	if !e.Active() {
		return raster.Snapshot{}, raster.Snapshot{}, ErrNoSelection
	}
	if e.Lifted() {
		if err := e.backend.Restore(e.surface, e.hole); err != nil {
			return raster.Snapshot{}, raster.Snapshot{}, err
		}
		before, after = e.before, e.hole
		e.Clear()
		return before, after, nil
	}
	if surface == nil {
		return raster.Snapshot{}, raster.Snapshot{}, ErrNoSurface
	}
	if e.sel.Kind == KindLasso && geometry.IsDegenerate(e.sel.Path) {
		e.Clear()
		return raster.Snapshot{}, raster.Snapshot{}, ErrInvalidSelection
	}

	before, err = e.backend.Snapshot(surface)
	if err != nil {
		return raster.Snapshot{}, raster.Snapshot{}, err
	}
	if err := e.clearRegion(surface); err != nil {
		return raster.Snapshot{}, raster.Snapshot{}, err
	}
	after, err = e.backend.Snapshot(surface)
	if err != nil {
		_ = e.backend.Restore(surface, before)
		return raster.Snapshot{}, raster.Snapshot{}, err
	}
	e.Clear()
	return before, after, nil
}

// Clear resets the selection and every piece of lifted state. It does not
// touch any surface.
func (e *Engine) Clear() {
	e.sel = Selection{}
	e.surface = nil
	e.extracted = nil
	e.origin = geometry.Rect{}
	e.offset = geometry.Point2D{}
	e.scale = 1
	e.rotation = 0
	e.before = raster.Snapshot{}
	e.hole = raster.Snapshot{}
}

func (e *Engine) extract(surface raster.Surface) (image.Image, geometry.Rect, error) {
	bounds := image.Rectangle{Max: surface.Size()}
	switch e.sel.Kind {
	case KindRect:
		r := e.sel.Rect.ImageRect().Intersect(bounds)
		img, err := e.backend.ExtractRect(surface, r)
		return img, toRect(r), err
	case KindLasso:
		r := geometry.BoundingBox(e.sel.Path).ImageRect().Intersect(bounds)
		img, err := e.backend.ExtractPolygon(surface, e.sel.Path)
		return img, toRect(r), err
	}
	return nil, geometry.Rect{}, ErrNoSelection
}

func (e *Engine) clearRegion(surface raster.Surface) error {
	switch e.sel.Kind {
	case KindRect:
		return e.backend.ClearRect(surface, e.sel.Rect.ImageRect())
	case KindLasso:
		return e.backend.ClearPolygon(surface, e.sel.Path)
	}
	return ErrNoSelection
}

func (e *Engine) rollback(surface raster.Surface, before raster.Snapshot) {
	_ = e.backend.Restore(surface, before)
	e.Clear()
}

func toRect(r image.Rectangle) geometry.Rect {
	return geometry.NewRect(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
}
