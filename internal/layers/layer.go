// Package layers provides the ordered layer collection of a canvas.
package layers

import (
	"fmt"
	"image"

	"sketch-critic/internal/raster"

	"github.com/google/uuid"
)

// ID identifies a layer for its whole lifetime, including while it only
// exists inside undo history.
type ID string

// NewID returns a fresh random layer id.
func NewID() ID {
	return ID(uuid.New().String())
}

// Layer is a single raster layer.
type Layer struct {
	ID      ID
	Name    string
	Opacity float64
	Visible bool
	Locked  bool
	Blend   raster.BlendMode

	// Texture is shared with the raster backend, which allocates and frees it.
	// It is nil until the layer is first drawn on.
	Texture raster.Surface

	Thumbnail image.Image
	Export    image.Image
}

// New creates a visible, fully opaque layer with a fresh id.
func New(name string) Layer {
	return Layer{
		ID:      NewID(),
		Name:    name,
		Opacity: 1.0,
		Visible: true,
		Blend:   raster.BlendNormal,
	}
}

// DefaultName returns the sequential name for the n-th layer ("Layer n").
func DefaultName(n int) string {
	return fmt.Sprintf("Layer %d", n)
}

// Property tags a layer attribute that can be changed through history.
type Property int

const (
	PropOpacity Property = iota
	PropName
	PropBlendMode
	PropVisibility
)

func (p Property) String() string {
	switch p {
	case PropOpacity:
		return "Opacity"
	case PropName:
		return "Name"
	case PropBlendMode:
		return "Blend Mode"
	case PropVisibility:
		return "Visibility"
	default:
		return "Unknown"
	}
}

// PropertyValue holds the value of one Property. Only the field matching the
// property is meaningful.
type PropertyValue struct {
	Opacity float64
	Name    string
	Blend   raster.BlendMode
	Visible bool
}

// Value reads property p from the layer.
func (l *Layer) Value(p Property) PropertyValue {
	switch p {
	case PropOpacity:
		return PropertyValue{Opacity: l.Opacity}
	case PropName:
		return PropertyValue{Name: l.Name}
	case PropBlendMode:
		return PropertyValue{Blend: l.Blend}
	case PropVisibility:
		return PropertyValue{Visible: l.Visible}
	}
	return PropertyValue{}
}

// Apply writes property p from v into the layer. Opacity is clamped to [0,1].
func (l *Layer) Apply(p Property, v PropertyValue) {
	switch p {
	case PropOpacity:
		l.Opacity = clampUnit(v.Opacity)
	case PropName:
		l.Name = v.Name
	case PropBlendMode:
		l.Blend = v.Blend
	case PropVisibility:
		l.Visible = v.Visible
	}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
