// Package viewport maps between the fixed document space of a canvas and the
// zoomed, panned and rotated screen space it is displayed in.
package viewport

import (
	"math"

	"sketch-critic/pkg/geometry"
)

const (
	MinZoom  = 0.1
	MaxZoom  = 10.0
	ZoomStep = 1.25

	// SnapIncrement is the rotation step in degrees when snapping is on.
	SnapIncrement = 15.0
	// MinRotationDelta is the smallest rotation change, in degrees, that is applied.
	MinRotationDelta = 0.1

	DefaultDocumentSize = 2048
)

// View is the mutable part of the transform.
type View struct {
	Scale    float64          `json:"scale"`
	Offset   geometry.Point2D `json:"offset"`
	Rotation float64          `json:"rotation"`
}

// Transformer converts points between document and screen space.
// The zero value is not usable; call New.
type Transformer struct {
	document geometry.Size
	screen   geometry.Size
	view     View
}

// New creates a transformer for a document of the given size shown in a
// screen of the given size, at scale 1 with no pan or rotation.
func New(document, screen geometry.Size) *Transformer {
	return &Transformer{
		document: document,
		screen:   screen,
		view:     View{Scale: 1},
	}
}

// DocumentSize returns the fixed document size.
func (t *Transformer) DocumentSize() geometry.Size { return t.document }

// ScreenSize returns the current viewport size.
func (t *Transformer) ScreenSize() geometry.Size { return t.screen }

// SetScreenSize updates the viewport size, e.g. after a window resize.
func (t *Transformer) SetScreenSize(s geometry.Size) { t.screen = s }

// View returns the current zoom, pan and rotation.
func (t *Transformer) View() View { return t.view }

// SetView replaces the zoom, pan and rotation, clamping and normalizing them.
func (t *Transformer) SetView(v View) {
	t.view = View{
		Scale:    ClampZoom(v.Scale),
		Offset:   v.Offset,
		Rotation: NormalizeDegrees(v.Rotation),
	}
}

// Scale returns the zoom factor.
func (t *Transformer) Scale() float64 { return t.view.Scale }

// Offset returns the pan offset in screen units.
func (t *Transformer) Offset() geometry.Point2D { return t.view.Offset }

// Rotation returns the rotation in degrees, in [0,360).
func (t *Transformer) Rotation() float64 { return t.view.Rotation }

// Reset restores scale 1 with no pan or rotation.
func (t *Transformer) Reset() { t.view = View{Scale: 1} }

// DocumentToScreenTransform returns the affine map from document to screen space:
// move the document centre to the origin, scale, rotate, move to the screen
// centre, then apply the pan offset.
func (t *Transformer) DocumentToScreenTransform() geometry.AffineTransform {
	dc := t.document.Center()
	sc := t.screen.Center()
	return geometry.Translation(t.view.Offset.X, t.view.Offset.Y).
		Compose(geometry.Translation(sc.X, sc.Y)).
		Compose(geometry.Rotation(radians(t.view.Rotation))).
		Compose(geometry.Scale(t.view.Scale, t.view.Scale)).
		Compose(geometry.Translation(-dc.X, -dc.Y))
}

// ScreenToDocumentTransform returns the exact inverse of DocumentToScreenTransform,
// built from the same parameters in reverse order rather than by matrix inversion.
func (t *Transformer) ScreenToDocumentTransform() geometry.AffineTransform {
	dc := t.document.Center()
	sc := t.screen.Center()
	inv := 1 / t.view.Scale
	return geometry.Translation(dc.X, dc.Y).
		Compose(geometry.Scale(inv, inv)).
		Compose(geometry.Rotation(-radians(t.view.Rotation))).
		Compose(geometry.Translation(-sc.X, -sc.Y)).
		Compose(geometry.Translation(-t.view.Offset.X, -t.view.Offset.Y))
}

// ScreenToDocument converts a screen point to document space.
func (t *Transformer) ScreenToDocument(p geometry.Point2D) geometry.Point2D {
	return t.ScreenToDocumentTransform().Apply(p)
}

// DocumentToScreen converts a document point to screen space.
func (t *Transformer) DocumentToScreen(p geometry.Point2D) geometry.Point2D {
	return t.DocumentToScreenTransform().Apply(p)
}

// DocumentRectToScreen returns the axis-aligned bounding box of the rectangle's
// transformed corners. Under rotation this is larger than the rectangle; use
// DocumentPathToScreen on the corners for the true quadrilateral.
func (t *Transformer) DocumentRectToScreen(r geometry.Rect) geometry.Rect {
	corners := r.Corners()
	return geometry.BoundingBox(t.DocumentPathToScreen(corners[:]))
}

// DocumentPathToScreen transforms every point of a path.
func (t *Transformer) DocumentPathToScreen(path []geometry.Point2D) []geometry.Point2D {
	return geometry.TransformPoints(path, t.DocumentToScreenTransform())
}

// ScreenPathToDocument transforms every point of a screen-space path, e.g. a lasso gesture.
func (t *Transformer) ScreenPathToDocument(path []geometry.Point2D) []geometry.Point2D {
	return geometry.TransformPoints(path, t.ScreenToDocumentTransform())
}

// Zoom sets the scale, clamped to [MinZoom, MaxZoom], keeping the document
// point under center fixed on screen.
func (t *Transformer) Zoom(newScale float64, center geometry.Point2D) {
	anchor := t.ScreenToDocument(center)
	t.view.Scale = ClampZoom(newScale)
	t.anchor(anchor, center)
}

// ZoomIn zooms one step around center.
func (t *Transformer) ZoomIn(center geometry.Point2D) {
	t.Zoom(t.view.Scale*ZoomStep, center)
}

// ZoomOut zooms out one step around center.
func (t *Transformer) ZoomOut(center geometry.Point2D) {
	t.Zoom(t.view.Scale/ZoomStep, center)
}

// Pan adds a screen-space delta to the pan offset.
func (t *Transformer) Pan(delta geometry.Point2D) {
	t.view.Offset = t.view.Offset.Add(delta)
}

// Rotate adds delta degrees. Changes smaller than MinRotationDelta are ignored.
// With snap, the result is rounded to the nearest SnapIncrement.
// It reports whether the rotation changed.
func (t *Transformer) Rotate(delta float64, snap bool) bool {
	if math.Abs(delta) < MinRotationDelta {
		return false
	}
	before := t.view.Rotation
	r := NormalizeDegrees(before + delta)
	if snap {
		r = SnapDegrees(r)
	}
	t.view.Rotation = r
	return r != before
}

// FitToScreen resets pan and rotation and picks the largest scale at which the
// whole document is visible.
func (t *Transformer) FitToScreen() {
	t.view = View{Scale: 1}
	if t.document.Width <= 0 || t.document.Height <= 0 || t.screen.Width <= 0 || t.screen.Height <= 0 {
		return
	}
	t.view.Scale = ClampZoom(math.Min(t.screen.Width/t.document.Width, t.screen.Height/t.document.Height))
}

// anchor adjusts the pan so doc projects onto screen.
func (t *Transformer) anchor(doc, screen geometry.Point2D) {
	t.view.Offset = t.view.Offset.Add(screen.Sub(t.DocumentToScreen(doc)))
}

// ClampZoom limits a scale to [MinZoom, MaxZoom].
func ClampZoom(s float64) float64 {
	if math.IsNaN(s) {
		return 1
	}
	return math.Max(MinZoom, math.Min(MaxZoom, s))
}

// NormalizeDegrees maps an angle into [0,360).
func NormalizeDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d -= 360
	}
	return d
}

// SnapDegrees rounds to the nearest SnapIncrement and normalizes.
func SnapDegrees(d float64) float64 {
	return NormalizeDegrees(math.Round(d/SnapIncrement) * SnapIncrement)
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
