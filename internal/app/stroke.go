package app

import (
	"sketch-critic/internal/history"
	"sketch-critic/internal/raster"
)

// BeginStroke snapshots the selected layer and returns its texture for the
// caller to paint on. The texture is allocated on first use. A lifted
// selection is committed first.
func (s *State) BeginStroke() (raster.Surface, error) {
	var tex raster.Surface
	err := s.update("begin stroke", func() error {
		if s.stroke != nil {
			return ErrStrokeInProgress
		}
		if err := s.settleSelectionLocked(); err != nil {
			return err
		}
		l, err := s.selectedLocked()
		if err != nil {
			return err
		}
		if l.Locked {
			return ErrLayerLocked
		}
		t, err := s.ensureTextureLocked(l.ID)
		if err != nil {
			return err
		}
		before, err := s.backend.Snapshot(t)
		if err != nil {
			return err
		}
		s.stroke = &strokeState{layer: l.ID, before: before}
		tex = t
		return nil
	})
	return tex, err
}

// StrokeActive reports whether a stroke is in progress.
func (s *State) StrokeActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stroke != nil
}

// EndStroke records the pixels painted since BeginStroke as one undoable step.
func (s *State) EndStroke() error {
	return s.update("end stroke", func() error {
		st := s.stroke
		if st == nil {
			return ErrNoStroke
		}
		s.stroke = nil
		l, ok := s.layers.Get(st.layer)
		if !ok || l.Texture == nil {
			return ErrNoLayer
		}
		after, err := s.backend.Snapshot(l.Texture)
		if err != nil {
			_ = s.backend.Restore(l.Texture, st.before)
			return err
		}
		s.recordLocked(history.Stroke{LayerID: st.layer, Before: st.before, After: after})
		s.layerChangedLocked(st.layer)
		return nil
	})
}

// CancelStroke puts back the pixels the layer had at BeginStroke.
func (s *State) CancelStroke() error {
	return s.update("cancel stroke", func() error {
		st := s.stroke
		if st == nil {
			return ErrNoStroke
		}
		s.stroke = nil
		l, ok := s.layers.Get(st.layer)
		if !ok || l.Texture == nil {
			return ErrNoLayer
		}
		return s.backend.Restore(l.Texture, st.before)
	})
}
