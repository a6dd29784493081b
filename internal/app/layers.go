package app

import (
	"image"

	"sketch-critic/internal/history"
	"sketch-critic/internal/layers"
	"sketch-critic/internal/raster"
)

// Layers returns a copy of the layer stack, bottom first.
func (s *State) Layers() []layers.Layer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layers.Layers()
}

// LayerCount returns the number of layers.
func (s *State) LayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layers.Len()
}

// SelectedLayerIndex returns the index of the layer tools act on.
func (s *State) SelectedLayerIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layers.SelectedIndex()
}

// SelectedLayer returns the layer tools act on.
func (s *State) SelectedLayer() (layers.Layer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layers.Selected()
}

// AddLayer appends a new empty layer on top, selects it and records it.
func (s *State) AddLayer() (layers.ID, error) {
	var id layers.ID
	err := s.update("add layer", func() error {
		if err := s.settleSelectionLocked(); err != nil {
			return err
		}
		l := layers.New(layers.DefaultName(s.layers.Len() + 1))
		idx, err := s.layers.Add(l)
		if err != nil {
			return err
		}
		s.layers.Select(idx)
		s.recordLocked(history.LayerAdded{Layer: l})
		id = l.ID

		s.logger.Debug("layer added", "layer", l.ID, "name", l.Name)
		s.queue(EventLayersChanged, nil)
		return nil
	})
	return id, err
}

// DeleteLayer removes the layer at index and records it. Deleting the only
// layer does nothing.
func (s *State) DeleteLayer(index int) error {
	return s.update("delete layer", func() error {
		l, ok := s.layers.At(index)
		if !ok {
			return ErrNoLayer
		}
		if s.layers.Len() <= 1 {
			s.logger.Debug("refusing to delete the last layer")
			return nil
		}
		if err := s.settleSelectionLocked(); err != nil {
			return err
		}
		if s.stroke != nil && s.stroke.layer == l.ID {
			return ErrStrokeInProgress
		}

		removed, idx, _ := s.layers.Remove(l.ID)
		s.parkLocked(removed)
		s.recordLocked(history.LayerRemoved{Layer: removed, Index: idx})

		s.logger.Debug("layer deleted", "layer", removed.ID, "index", idx)
		s.queue(EventLayersChanged, nil)
		return nil
	})
}

// MoveLayer reorders a layer and records the move. The selection follows the
// moved layer.
func (s *State) MoveLayer(from, to int) error {
	return s.update("move layer", func() error {
		if from == to {
			return nil
		}
		var selected layers.ID
		if l, ok := s.layers.Selected(); ok {
			selected = l.ID
		}
		if err := s.layers.Move(from, to); err != nil {
			return ErrNoLayer
		}
		s.layers.Select(to)
		s.recordLocked(history.LayerMoved{From: from, To: to, Selected: selected})
		s.queue(EventLayersChanged, nil)
		return nil
	})
}

// SelectLayer makes the layer at index the target of tools. A lifted
// selection on the previous layer is committed first.
func (s *State) SelectLayer(index int) error {
	return s.update("select layer", func() error {
		if _, ok := s.layers.At(index); !ok {
			return ErrNoLayer
		}
		if index == s.layers.SelectedIndex() {
			return nil
		}
		if err := s.settleSelectionLocked(); err != nil {
			return err
		}
		s.layers.Select(index)
		s.queue(EventLayersChanged, nil)
		return nil
	})
}

// SetLayerOpacity changes a layer's opacity, clamped to [0,1].
func (s *State) SetLayerOpacity(index int, opacity float64) error {
	return s.setProperty("set layer opacity", index, layers.PropOpacity, layers.PropertyValue{Opacity: clamp(opacity, 0, 1)})
}

// RenameLayer changes a layer's name. Empty names are ignored.
func (s *State) RenameLayer(index int, name string) error {
	if name == "" {
		return nil
	}
	return s.setProperty("rename layer", index, layers.PropName, layers.PropertyValue{Name: name})
}

// SetLayerBlendMode changes how a layer composites onto those below it.
func (s *State) SetLayerBlendMode(index int, mode raster.BlendMode) error {
	return s.setProperty("set blend mode", index, layers.PropBlendMode, layers.PropertyValue{Blend: mode})
}

// SetLayerVisibility shows or hides a layer.
func (s *State) SetLayerVisibility(index int, visible bool) error {
	return s.setProperty("set layer visibility", index, layers.PropVisibility, layers.PropertyValue{Visible: visible})
}

// SetLayerLocked protects a layer from drawing and selection edits. Locking
// is not recorded in history.
func (s *State) SetLayerLocked(index int, locked bool) error {
	return s.update("lock layer", func() error {
		l, ok := s.layers.At(index)
		if !ok {
			return ErrNoLayer
		}
		if l.Locked == locked {
			return nil
		}
		s.layers.Update(l.ID, func(l *layers.Layer) { l.Locked = locked })
		s.queue(EventLayersChanged, nil)
		return nil
	})
}

func (s *State) setProperty(op string, index int, p layers.Property, v layers.PropertyValue) error {
	return s.update(op, func() error {
		l, ok := s.layers.At(index)
		if !ok {
			return ErrNoLayer
		}
		old := l.Value(p)
		if old == v {
			return nil
		}
		s.layers.Update(l.ID, func(l *layers.Layer) { l.Apply(p, v) })
		s.recordLocked(history.LayerPropertyChanged{LayerID: l.ID, Property: p, Old: old, New: v})
		s.queue(EventLayersChanged, nil)
		return nil
	})
}

// LayerImage returns the full-resolution pixels of the layer at index. The
// result is cached until the layer's pixels change. Layers that were never
// drawn on return a transparent image.
func (s *State) LayerImage(index int) (image.Image, error) {
	var img image.Image
	err := s.update("export layer", func() error {
		l, ok := s.layers.At(index)
		if !ok {
			return ErrNoLayer
		}
		if l.Export != nil {
			img = l.Export
			return nil
		}
		if l.Texture == nil {
			img = image.NewRGBA(image.Rectangle{Max: s.docSize})
			return nil
		}
		snap, err := s.backend.Snapshot(l.Texture)
		if err != nil {
			return err
		}
		rgba, err := raster.SnapshotImage(snap)
		if err != nil {
			return err
		}
		s.layers.Update(l.ID, func(l *layers.Layer) { l.Export = rgba })
		img = rgba
		return nil
	})
	return img, err
}

// LoadImage draws img into the bottom layer, scaled to fit the document and
// centred, and records it as a stroke.
func (s *State) LoadImage(img image.Image) error {
	return s.update("load image", func() error {
		if img == nil || img.Bounds().Empty() {
			return raster.ErrEmptyRegion
		}
		if err := s.settleSelectionLocked(); err != nil {
			return err
		}
		l, ok := s.layers.At(0)
		if !ok {
			return ErrNoLayer
		}
		if l.Locked {
			return ErrLayerLocked
		}
		tex, err := s.ensureTextureLocked(l.ID)
		if err != nil {
			return err
		}
		before, err := s.backend.Snapshot(tex)
		if err != nil {
			return err
		}
		if err := s.backend.DrawImage(tex, img, fitRect(img.Bounds().Size(), s.docSize), 0); err != nil {
			_ = s.backend.Restore(tex, before)
			return err
		}
		after, err := s.backend.Snapshot(tex)
		if err != nil {
			_ = s.backend.Restore(tex, before)
			return err
		}
		s.recordLocked(history.Stroke{LayerID: l.ID, Before: before, After: after})
		s.loadedImage = true
		s.layerChangedLocked(l.ID)

		s.logger.Info("image loaded", "size", img.Bounds().Size())
		s.queue(EventLayersChanged, nil)
		return nil
	})
}
