// Package history provides a linear undo/redo stack of reversible canvas actions.
package history

import (
	"fmt"

	"sketch-critic/internal/layers"
	"sketch-critic/internal/raster"
)

// Action is one reversible canvas mutation. The set of implementations is closed:
// Stroke, LayerAdded, LayerRemoved, LayerMoved and LayerPropertyChanged.
type Action interface {
	// Describe returns a short label suitable for an undo menu item.
	Describe() string
	action()
}

// Stroke records a raster change on one layer as before/after snapshots.
type Stroke struct {
	LayerID layers.ID
	Before  raster.Snapshot
	After   raster.Snapshot
}

// LayerAdded records a layer appended to the stack.
type LayerAdded struct {
	Layer layers.Layer
}

// LayerRemoved records a layer removed from Index.
type LayerRemoved struct {
	Layer layers.Layer
	Index int
}

// LayerMoved records a reorder from one index to another. Selected is the
// layer that was selected before the move, restored on undo.
type LayerMoved struct {
	From     int
	To       int
	Selected layers.ID
}

// LayerPropertyChanged records a single property edit.
type LayerPropertyChanged struct {
	LayerID  layers.ID
	Property layers.Property
	Old      layers.PropertyValue
	New      layers.PropertyValue
}

func (Stroke) action()               {}
func (LayerAdded) action()           {}
func (LayerRemoved) action()         {}
func (LayerMoved) action()           {}
func (LayerPropertyChanged) action() {}

func (a Stroke) Describe() string { return "Stroke" }

func (a LayerAdded) Describe() string { return fmt.Sprintf("Add %s", a.Layer.Name) }

func (a LayerRemoved) Describe() string { return fmt.Sprintf("Delete %s", a.Layer.Name) }

func (a LayerMoved) Describe() string { return "Move Layer" }

func (a LayerPropertyChanged) Describe() string {
	return fmt.Sprintf("Change %s", a.Property)
}
