package app

import (
	"sketch-critic/internal/viewport"
	"sketch-critic/pkg/geometry"
)

// View returns the current zoom, pan and rotation.
func (s *State) View() viewport.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.View()
}

// ScreenSize returns the viewport size.
func (s *State) ScreenSize() geometry.Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.ScreenSize()
}

// SetScreenSize updates the viewport size after a resize.
func (s *State) SetScreenSize(size geometry.Size) {
	s.changeView(func() bool {
		if s.view.ScreenSize() == size {
			return false
		}
		s.view.SetScreenSize(size)
		return true
	})
}

// Zoom sets the scale, keeping the document point under center in place.
func (s *State) Zoom(scale float64, center geometry.Point2D) {
	s.changeView(func() bool {
		before := s.view.Scale()
		s.view.Zoom(scale, center)
		return s.view.Scale() != before
	})
}

// ZoomIn zooms one step around center.
func (s *State) ZoomIn(center geometry.Point2D) {
	s.changeView(func() bool { s.view.ZoomIn(center); return true })
}

// ZoomOut zooms out one step around center.
func (s *State) ZoomOut(center geometry.Point2D) {
	s.changeView(func() bool { s.view.ZoomOut(center); return true })
}

// Pan moves the view by a screen-space delta.
func (s *State) Pan(delta geometry.Point2D) {
	s.changeView(func() bool {
		if delta == (geometry.Point2D{}) {
			return false
		}
		s.view.Pan(delta)
		return true
	})
}

// Rotate turns the view by delta degrees, optionally snapping to 15°.
func (s *State) Rotate(delta float64, snap bool) {
	s.changeView(func() bool { return s.view.Rotate(delta, snap) })
}

// ResetView returns to scale 1 with no pan or rotation.
func (s *State) ResetView() {
	s.changeView(func() bool { s.view.Reset(); return true })
}

// FitToScreen shows the whole document.
func (s *State) FitToScreen() {
	s.changeView(func() bool { s.view.FitToScreen(); return true })
}

// BeginPinch starts a multi-touch gesture at the given screen points.
func (s *State) BeginPinch(touches []geometry.Point2D) {
	s.mu.Lock()
	s.pinch = &pinchState{
		start: s.view.View(),
		from:  append([]geometry.Point2D(nil), touches...),
	}
	s.mu.Unlock()
}

// UpdatePinch moves the gesture's touches. The view is recomputed from its
// state at BeginPinch, so updates never compound.
func (s *State) UpdatePinch(touches []geometry.Point2D, snap bool) error {
	return s.update("pinch", func() error {
		if s.pinch == nil {
			return ErrNoPinch
		}
		if err := s.view.ApplyPinch(s.pinch.start, s.pinch.from, touches, snap); err != nil {
			return err
		}
		s.queue(EventViewportChanged, s.view.View())
		return nil
	})
}

// EndPinch finishes the gesture.
func (s *State) EndPinch() {
	s.mu.Lock()
	s.pinch = nil
	s.mu.Unlock()
}

// ScreenToDocument converts a screen point to document space.
func (s *State) ScreenToDocument(p geometry.Point2D) geometry.Point2D {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.ScreenToDocument(p)
}

// DocumentToScreen converts a document point to screen space.
func (s *State) DocumentToScreen(p geometry.Point2D) geometry.Point2D {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.DocumentToScreen(p)
}

// DocumentRectToScreen returns the screen bounding box of a document rectangle.
func (s *State) DocumentRectToScreen(r geometry.Rect) geometry.Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.DocumentRectToScreen(r)
}

// DocumentPathToScreen converts a document-space path to screen space.
func (s *State) DocumentPathToScreen(path []geometry.Point2D) []geometry.Point2D {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.DocumentPathToScreen(path)
}

// ScreenPathToDocument converts a screen-space path, such as a lasso
// gesture, to document space.
func (s *State) ScreenPathToDocument(path []geometry.Point2D) []geometry.Point2D {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.ScreenPathToDocument(path)
}

// DocumentToScreenTransform returns the current document→screen mapping.
func (s *State) DocumentToScreenTransform() geometry.AffineTransform {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.DocumentToScreenTransform()
}

func (s *State) changeView(fn func() bool) {
	s.mu.Lock()
	var events []event
	if !s.closed && fn() {
		events = []event{{typ: EventViewportChanged, data: s.view.View()}}
	}
	s.mu.Unlock()
	s.dispatch(events)
}
