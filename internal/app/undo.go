package app

import (
	"fmt"

	"sketch-critic/internal/history"
	"sketch-critic/internal/layers"
	"sketch-critic/internal/raster"
)

// CanUndo reports whether Undo has anything to do.
func (s *State) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

// CanRedo reports whether Redo has anything to do.
func (s *State) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// UndoLabel describes the action Undo would revert, or "" when there is none.
func (s *State) UndoLabel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.history.Peek(); ok {
		return a.Describe()
	}
	return ""
}

// Undo reverts the most recent action. A lifted selection is cancelled
// first. If the action cannot be reverted it stays on the undo stack.
// Undo is refused while a stroke is open.
func (s *State) Undo() error {
	return s.update("undo", func() error {
		if s.stroke != nil {
			return ErrStrokeInProgress
		}
		if !s.history.CanUndo() {
			return nil
		}
		if err := s.abandonSelectionLocked(); err != nil {
			return err
		}
		a, _ := s.history.Undo()
		if err := s.revertLocked(a); err != nil {
			s.history.RevertUndo()
			return fmt.Errorf("%s: %w", a.Describe(), err)
		}
		s.logger.Debug("undo", "action", a.Describe())
		return nil
	})
}

// Redo reapplies the most recently undone action.
func (s *State) Redo() error {
	return s.update("redo", func() error {
		if s.stroke != nil {
			return ErrStrokeInProgress
		}
		if !s.history.CanRedo() {
			return nil
		}
		if err := s.abandonSelectionLocked(); err != nil {
			return err
		}
		a, _ := s.history.Redo()
		if err := s.applyLocked(a); err != nil {
			s.history.RevertRedo()
			return fmt.Errorf("%s: %w", a.Describe(), err)
		}
		s.logger.Debug("redo", "action", a.Describe())
		return nil
	})
}

// revertLocked applies the inverse of a.
func (s *State) revertLocked(a history.Action) error {
	switch a := a.(type) {
	case history.Stroke:
		return s.restoreStrokeLocked(a.LayerID, a.Before)
	case history.LayerAdded:
		return s.removeLayerLocked(a.Layer.ID)
	case history.LayerRemoved:
		return s.insertLayerLocked(a.Layer, a.Index)
	case history.LayerMoved:
		if err := s.moveLayerLocked(a.To, a.From); err != nil {
			return err
		}
		if i := s.layers.IndexOf(a.Selected); i >= 0 {
			s.layers.Select(i)
		}
		return nil
	case history.LayerPropertyChanged:
		return s.applyPropertyLocked(a.LayerID, a.Property, a.Old)
	}
	return fmt.Errorf("unknown action %T", a)
}

// applyLocked performs a again.
func (s *State) applyLocked(a history.Action) error {
	switch a := a.(type) {
	case history.Stroke:
		return s.restoreStrokeLocked(a.LayerID, a.After)
	case history.LayerAdded:
		return s.insertLayerLocked(a.Layer, s.layers.Len())
	case history.LayerRemoved:
		return s.removeLayerLocked(a.Layer.ID)
	case history.LayerMoved:
		return s.moveLayerLocked(a.From, a.To)
	case history.LayerPropertyChanged:
		return s.applyPropertyLocked(a.LayerID, a.Property, a.New)
	}
	return fmt.Errorf("unknown action %T", a)
}

func (s *State) restoreStrokeLocked(id layers.ID, snap raster.Snapshot) error {
	l, ok := s.layers.Get(id)
	if !ok {
		return ErrNoLayer
	}
	if l.Texture == nil {
		return ErrNoTexture
	}
	if err := s.backend.Restore(l.Texture, snap); err != nil {
		return err
	}
	s.layerChangedLocked(id)
	s.queue(EventLayersChanged, nil)
	return nil
}

// removeLayerLocked takes a layer out of the stack and parks it. The last
// layer is never removed.
func (s *State) removeLayerLocked(id layers.ID) error {
	if s.layers.IndexOf(id) < 0 {
		return ErrNoLayer
	}
	if s.layers.Len() <= 1 {
		return fmt.Errorf("cannot remove the last layer")
	}
	removed, _, _ := s.layers.Remove(id)
	s.parkLocked(removed)
	s.queue(EventLayersChanged, nil)
	return nil
}

// insertLayerLocked puts a layer back at index, preferring the parked copy
// that still owns its texture.
func (s *State) insertLayerLocked(l layers.Layer, index int) error {
	l = s.unparkLocked(l)
	if err := s.layers.Insert(l, index); err != nil {
		s.parkLocked(l)
		return err
	}
	s.layers.Select(s.layers.IndexOf(l.ID))
	s.layerChangedLocked(l.ID)
	s.queue(EventLayersChanged, nil)
	return nil
}

func (s *State) moveLayerLocked(from, to int) error {
	if err := s.layers.Move(from, to); err != nil {
		return ErrNoLayer
	}
	s.layers.Select(to)
	s.queue(EventLayersChanged, nil)
	return nil
}

func (s *State) applyPropertyLocked(id layers.ID, p layers.Property, v layers.PropertyValue) error {
	if !s.layers.Update(id, func(l *layers.Layer) { l.Apply(p, v) }) {
		return ErrNoLayer
	}
	s.queue(EventLayersChanged, nil)
	return nil
}
