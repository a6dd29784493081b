package history

// MaxUndo is the default number of undo entries kept before the oldest is discarded.
const MaxUndo = 50

// ChangeListener is called after every stack mutation with the new availability flags.
type ChangeListener func(canUndo, canRedo bool)

// Manager is a linear undo/redo history. It only does stack bookkeeping;
// interpreting an action is the caller's job.
//
// Manager is not safe for concurrent use; the owning canvas serializes access.
type Manager struct {
	undo  []Action
	redo  []Action
	limit int

	listeners []ChangeListener
}

// NewManager creates a history capped at MaxUndo entries.
func NewManager() *Manager {
	return NewManagerWithLimit(MaxUndo)
}

// NewManagerWithLimit creates a history capped at limit entries (minimum 1).
func NewManagerWithLimit(limit int) *Manager {
	if limit < 1 {
		limit = 1
	}
	return &Manager{limit: limit}
}

// OnChange registers a listener for canUndo/canRedo changes.
func (m *Manager) OnChange(l ChangeListener) {
	m.listeners = append(m.listeners, l)
}

// Record pushes a new action, clears the redo stack and trims the oldest
// entries beyond the limit.
func (m *Manager) Record(a Action) {
	if a == nil {
		return
	}
	m.undo = append(m.undo, a)
	if over := len(m.undo) - m.limit; over > 0 {
		// Copy so the discarded snapshots are not pinned by the backing array.
		m.undo = append([]Action(nil), m.undo[over:]...)
	}
	m.redo = nil
	m.notify()
}

// Undo pops the most recent action and moves it to the redo stack.
// It returns false when there is nothing to undo.
func (m *Manager) Undo() (Action, bool) {
	n := len(m.undo)
	if n == 0 {
		return nil, false
	}
	a := m.undo[n-1]
	m.undo[n-1] = nil
	m.undo = m.undo[:n-1]
	m.redo = append(m.redo, a)
	m.notify()
	return a, true
}

// Redo pops the most recently undone action and moves it back to the undo stack.
func (m *Manager) Redo() (Action, bool) {
	n := len(m.redo)
	if n == 0 {
		return nil, false
	}
	a := m.redo[n-1]
	m.redo[n-1] = nil
	m.redo = m.redo[:n-1]
	m.undo = append(m.undo, a)
	m.notify()
	return a, true
}

// RevertUndo reverses the most recent Undo. It must be called before any
// other mutation, when the inverse of the popped action could not be applied.
func (m *Manager) RevertUndo() {
	n := len(m.redo)
	if n == 0 {
		return
	}
	a := m.redo[n-1]
	m.redo = m.redo[:n-1]
	m.undo = append(m.undo, a)
	m.notify()
}

// RevertRedo reverses the most recent Redo under the same rules as RevertUndo.
func (m *Manager) RevertRedo() {
	n := len(m.undo)
	if n == 0 {
		return
	}
	a := m.undo[n-1]
	m.undo = m.undo[:n-1]
	m.redo = append(m.redo, a)
	m.notify()
}

// Clear empties both stacks.
func (m *Manager) Clear() {
	m.undo = nil
	m.redo = nil
	m.notify()
}

// CanUndo reports whether Undo would return an action.
func (m *Manager) CanUndo() bool { return len(m.undo) > 0 }

// CanRedo reports whether Redo would return an action.
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }

// UndoLen returns the number of undoable actions.
func (m *Manager) UndoLen() int { return len(m.undo) }

// RedoLen returns the number of redoable actions.
func (m *Manager) RedoLen() int { return len(m.redo) }

// Peek returns the action Undo would return without popping it.
func (m *Manager) Peek() (Action, bool) {
	if len(m.undo) == 0 {
		return nil, false
	}
	return m.undo[len(m.undo)-1], true
}

// Actions returns every action still reachable through undo or redo,
// oldest undo entry first.
func (m *Manager) Actions() []Action {
	out := make([]Action, 0, len(m.undo)+len(m.redo))
	out = append(out, m.undo...)
	for i := len(m.redo) - 1; i >= 0; i-- {
		out = append(out, m.redo[i])
	}
	return out
}

func (m *Manager) notify() {
	canUndo, canRedo := m.CanUndo(), m.CanRedo()
	for _, l := range m.listeners {
		l(canUndo, canRedo)
	}
}
