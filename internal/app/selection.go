package app

import (
	"sketch-critic/internal/history"
	"sketch-critic/internal/layers"
	"sketch-critic/internal/raster"
	"sketch-critic/internal/selection"
	"sketch-critic/pkg/geometry"
)

// HasSelection reports whether a selection exists.
func (s *State) HasSelection() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Active()
}

// IsLifted reports whether the selected pixels have been extracted and are
// being transformed.
func (s *State) IsLifted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Lifted()
}

// Selection returns the current selection region in document space.
func (s *State) Selection() selection.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Selection()
}

// SelectionOutline returns the selection outline in document space,
// following lifted pixels.
func (s *State) SelectionOutline() []geometry.Point2D {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Outline()
}

// SelectRect replaces the selection with a document-space rectangle.
// A lifted selection is committed first.
func (s *State) SelectRect(r geometry.Rect) error {
	return s.update("select rectangle", func() error {
		if err := s.settleSelectionLocked(); err != nil {
			return err
		}
		err := s.sel.SelectRect(r)
		s.queue(EventSelectionChanged, nil)
		return err
	})
}

// SelectLasso replaces the selection with a document-space polygon.
func (s *State) SelectLasso(path []geometry.Point2D) error {
	return s.update("select lasso", func() error {
		if err := s.settleSelectionLocked(); err != nil {
			return err
		}
		err := s.sel.SelectLasso(path)
		s.queue(EventSelectionChanged, nil)
		return err
	})
}

// ExtractSelection lifts the selected pixels of the selected layer so they
// can be moved, scaled and rotated.
func (s *State) ExtractSelection() error {
	return s.update("extract selection", func() error {
		if !s.sel.Active() {
			return selection.ErrNoSelection
		}
		if s.sel.Lifted() {
			return nil
		}
		l, err := s.selectedLocked()
		if err != nil {
			return err
		}
		if l.Locked {
			return ErrLayerLocked
		}
		if s.stroke != nil {
			return ErrStrokeInProgress
		}
		if l.Texture == nil {
			return selection.ErrNoSurface
		}
		err = s.sel.Extract(l.Texture)
		s.queue(EventSelectionChanged, nil)
		if err != nil {
			return err
		}
		s.selOn = l.ID
		return nil
	})
}

// MoveSelection drags lifted pixels by a document-space delta and renders
// them at their new place.
func (s *State) MoveSelection(delta geometry.Point2D) error {
	return s.transformSelection("move selection", func() { s.sel.Translate(delta) })
}

// SetSelectionOffset places lifted pixels at an absolute offset from where
// they were lifted.
func (s *State) SetSelectionOffset(offset geometry.Point2D) error {
	return s.transformSelection("move selection", func() { s.sel.SetOffset(offset) })
}

// ScaleSelection sets the scale of lifted pixels, clamped to [0.1, 5].
func (s *State) ScaleSelection(scale float64) error {
	return s.transformSelection("scale selection", func() { s.sel.SetScale(scale) })
}

// RotateSelection sets the rotation of lifted pixels in degrees.
func (s *State) RotateSelection(degrees float64) error {
	return s.transformSelection("rotate selection", func() { s.sel.SetRotation(degrees) })
}

// RenderSelection redraws lifted pixels at their current placement.
func (s *State) RenderSelection() error {
	return s.transformSelection("render selection", func() {})
}

func (s *State) transformSelection(op string, fn func()) error {
	return s.update(op, func() error {
		if !s.sel.Lifted() {
			return selection.ErrNotLifted
		}
		fn()
		if err := s.sel.RenderLive(); err != nil {
			return err
		}
		s.queue(EventSelectionChanged, nil)
		return nil
	})
}

// CommitSelection places lifted pixels and records the whole
// extract-transform-place sequence as one stroke.
func (s *State) CommitSelection() error {
	return s.update("commit selection", s.commitSelectionLocked)
}

// CancelSelection drops the selection. Lifted pixels return to where they
// were taken from and nothing is recorded.
func (s *State) CancelSelection() error {
	return s.update("cancel selection", func() error {
		if !s.sel.Active() {
			return nil
		}
		return s.abandonSelectionLocked()
	})
}

// DeleteSelection erases the selected pixels of the selected layer and
// records it as a stroke.
func (s *State) DeleteSelection() error {
	return s.update("delete selection", func() error {
		if !s.sel.Active() {
			return selection.ErrNoSelection
		}
		id := s.selOn
		if !s.sel.Lifted() {
			l, err := s.selectedLocked()
			if err != nil {
				return err
			}
			if l.Locked {
				return ErrLayerLocked
			}
			if l.Texture == nil {
				// Nothing drawn yet, so nothing to erase.
				s.sel.Clear()
				s.queue(EventSelectionChanged, nil)
				return nil
			}
			id = l.ID
		}
		tex := s.textureLocked(id)
		before, after, err := s.sel.DeleteSelected(tex)
		s.queue(EventSelectionChanged, nil)
		if err != nil {
			return err
		}
		s.selOn = ""
		s.recordLocked(history.Stroke{LayerID: id, Before: before, After: after})
		s.layerChangedLocked(id)
		return nil
	})
}

func (s *State) commitSelectionLocked() error {
	if !s.sel.Lifted() {
		return selection.ErrNotLifted
	}
	id := s.selOn
	before, after, err := s.sel.Commit()
	if err != nil {
		return err
	}
	s.selOn = ""
	s.recordLocked(history.Stroke{LayerID: id, Before: before, After: after})
	s.layerChangedLocked(id)
	s.queue(EventSelectionChanged, nil)
	return nil
}

// settleSelectionLocked commits lifted pixels and drops any remaining
// selection, so a new operation starts from a clean state.
func (s *State) settleSelectionLocked() error {
	if s.sel.Lifted() {
		if err := s.commitSelectionLocked(); err != nil {
			return err
		}
	}
	if s.sel.Active() {
		s.sel.Clear()
		s.queue(EventSelectionChanged, nil)
	}
	return nil
}

// abandonSelectionLocked cancels lifted pixels back into place and drops
// the selection without recording anything.
func (s *State) abandonSelectionLocked() error {
	if !s.sel.Active() {
		return nil
	}
	if err := s.sel.Cancel(); err != nil {
		return err
	}
	s.selOn = ""
	s.queue(EventSelectionChanged, nil)
	return nil
}

func (s *State) textureLocked(id layers.ID) raster.Surface {
	if l, ok := s.layers.Get(id); ok {
		return l.Texture
	}
	return nil
}
