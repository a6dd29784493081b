// Package raster defines the contract between the canvas engine and a raster
// backend, and provides a software implementation of it.
package raster

import (
	"errors"
	"image"

	"sketch-critic/pkg/geometry"
)

var (
	// ErrEmptyRegion is returned when a clear/extract region has no pixels on the surface.
	ErrEmptyRegion = errors.New("raster: region is empty")
	// ErrForeignSurface is returned when a surface was not allocated by this backend or was freed.
	ErrForeignSurface = errors.New("raster: surface not owned by backend")
	// ErrSnapshotMismatch is returned when restoring a snapshot taken from a surface of another size.
	ErrSnapshotMismatch = errors.New("raster: snapshot does not match surface")
	// ErrInvalidSize is returned for non-positive allocation sizes.
	ErrInvalidSize = errors.New("raster: invalid surface size")
)

// Surface is an opaque handle to a backend-owned raster (a "texture").
type Surface interface {
	Size() image.Point
}

// Snapshot is an opaque copy of a surface's pixels. The engine only checks
// whether a snapshot is present; backends interpret the bytes.
type Snapshot struct {
	size image.Point
	data []byte
}

// NewSnapshot wraps backend-produced bytes. The slice is retained, not copied.
func NewSnapshot(size image.Point, data []byte) Snapshot {
	return Snapshot{size: size, data: data}
}

// IsZero reports whether the snapshot is absent.
func (s Snapshot) IsZero() bool { return s.data == nil }

// Size returns the dimensions of the surface the snapshot was taken from.
func (s Snapshot) Size() image.Point { return s.size }

// Bytes returns the raw snapshot bytes. Callers must not modify them.
func (s Snapshot) Bytes() []byte { return s.data }

// Len returns the snapshot size in bytes.
func (s Snapshot) Len() int { return len(s.data) }

// CompositeLayer is one input to Backend.Composite, bottom-most first.
type CompositeLayer struct {
	Surface Surface
	Opacity float64
	Blend   BlendMode
	Visible bool
}

// Thumbnailer produces a downscaled preview from a snapshot. Implementations
// must be safe to call from a background goroutine.
type Thumbnailer interface {
	Thumbnail(snap Snapshot, maxDim int) (image.Image, error)
}

// Backend is the narrow set of raster commands the canvas engine issues.
type Backend interface {
	Thumbnailer

	Allocate(width, height int) (Surface, error)
	Free(s Surface)

	Snapshot(s Surface) (Snapshot, error)
	Restore(s Surface, snap Snapshot) error

	ClearRect(s Surface, r image.Rectangle) error
	ClearPolygon(s Surface, pts []geometry.Point2D) error

	ExtractRect(s Surface, r image.Rectangle) (image.Image, error)
	ExtractPolygon(s Surface, pts []geometry.Point2D) (image.Image, error)

	// DrawImage draws img scaled into dst and rotated by rotation degrees
	// about the centre of dst, compositing over the existing pixels.
	DrawImage(s Surface, img image.Image, dst geometry.Rect, rotation float64) error

	// Composite flattens the visible layers, bottom-most first.
	Composite(layers []CompositeLayer, width, height int) (image.Image, error)
}
