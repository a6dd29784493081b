package app

// EventType identifies different canvas events.
type EventType int

const (
	EventLayersChanged EventType = iota
	EventSelectionChanged
	EventHistoryChanged
	EventViewportChanged
	EventToolChanged
	EventBrushChanged
	EventThumbnailUpdated
	EventFeedbackReceived
	EventFeedbackPending
	EventError
	EventCanvasCleared
)

// EventListener is called when an event occurs. Listeners run on the
// goroutine that caused the event, after the state lock has been released,
// so they may call back into State.
//
// Event data by type:
//
//	EventHistoryChanged    HistoryStatus
//	EventViewportChanged   viewport.View
//	EventToolChanged       Tool
//	EventBrushChanged      BrushSettings
//	EventThumbnailUpdated  layers.ID
//	EventFeedbackReceived  string
//	EventFeedbackPending   bool
//	EventError             error
//	others                 nil
type EventListener func(data interface{})

// HistoryStatus is the payload of EventHistoryChanged.
type HistoryStatus struct {
	CanUndo bool
	CanRedo bool
}

type event struct {
	typ  EventType
	data interface{}
}

// On registers an event listener for the specified event type.
func (s *State) On(e EventType, listener EventListener) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners[e] = append(s.listeners[e], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(e EventType, data interface{}) {
	s.listenersMu.RLock()
	listeners := s.listeners[e]
	s.listenersMu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// queue records an event to be emitted once the state lock is released.
// Callers must hold s.mu.
func (s *State) queue(e EventType, data interface{}) {
	s.pending = append(s.pending, event{typ: e, data: data})
}

// takePending returns and clears the queued events. Callers must hold s.mu.
func (s *State) takePending() []event {
	out := s.pending
	s.pending = nil
	return out
}

func (s *State) dispatch(events []event) {
	for _, ev := range events {
		s.Emit(ev.typ, ev.data)
	}
}
