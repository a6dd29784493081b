package layers

import (
	"errors"
	"image"
)

var (
	// ErrNotFound is returned when an id or index does not name a layer.
	ErrNotFound = errors.New("layer not found")
	// ErrDuplicate is returned when inserting a layer whose id is already stored.
	ErrDuplicate = errors.New("layer already present")
)

// Store is an ordered arena of layers keyed by ID. Index 0 is the bottom layer.
// Values are stored by id so undo can reinsert exactly the layer that was removed.
//
// Store is not safe for concurrent use.
type Store struct {
	order    []ID
	byID     map[ID]*Layer
	selected int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{byID: make(map[ID]*Layer)}
}

// Len returns the number of layers.
func (s *Store) Len() int { return len(s.order) }

// Layers returns copies of the layers, bottom first.
func (s *Store) Layers() []Layer {
	out := make([]Layer, len(s.order))
	for i, id := range s.order {
		out[i] = *s.byID[id]
	}
	return out
}

// At returns the layer at index i.
func (s *Store) At(i int) (Layer, bool) {
	if i < 0 || i >= len(s.order) {
		return Layer{}, false
	}
	return *s.byID[s.order[i]], true
}

// Get returns the layer with the given id.
func (s *Store) Get(id ID) (Layer, bool) {
	l, ok := s.byID[id]
	if !ok {
		return Layer{}, false
	}
	return *l, true
}

// IndexOf returns the index of id, or -1.
func (s *Store) IndexOf(id ID) int {
	for i, v := range s.order {
		if v == id {
			return i
		}
	}
	return -1
}

// Add appends a layer on top and returns its index.
func (s *Store) Add(l Layer) (int, error) {
	idx := len(s.order)
	if err := s.Insert(l, idx); err != nil {
		return -1, err
	}
	return idx, nil
}

// Insert places a layer at index, clamped to [0, Len()].
func (s *Store) Insert(l Layer, index int) error {
	if _, exists := s.byID[l.ID]; exists {
		return ErrDuplicate
	}
	if index < 0 {
		index = 0
	}
	if index > len(s.order) {
		index = len(s.order)
	}
	v := l
	s.byID[l.ID] = &v
	s.order = append(s.order, "")
	copy(s.order[index+1:], s.order[index:])
	s.order[index] = l.ID
	return nil
}

// Remove deletes the layer with id and returns it with its former index.
// The selection is re-clamped into range.
func (s *Store) Remove(id ID) (Layer, int, bool) {
	idx := s.IndexOf(id)
	if idx < 0 {
		return Layer{}, -1, false
	}
	l := *s.byID[id]
	delete(s.byID, id)
	s.order = append(s.order[:idx], s.order[idx+1:]...)
	s.ClampSelection()
	return l, idx, true
}

// Move reorders a layer from one index to another.
func (s *Store) Move(from, to int) error {
	n := len(s.order)
	if from < 0 || from >= n || to < 0 || to >= n {
		return ErrNotFound
	}
	if from == to {
		return nil
	}
	id := s.order[from]
	s.order = append(s.order[:from], s.order[from+1:]...)
	s.order = append(s.order, "")
	copy(s.order[to+1:], s.order[to:])
	s.order[to] = id
	return nil
}

// Update mutates the stored layer in place.
func (s *Store) Update(id ID, fn func(*Layer)) bool {
	l, ok := s.byID[id]
	if !ok {
		return false
	}
	fn(l)
	return true
}

// SetThumbnail stores a preview for id. It returns false, and does nothing,
// when the layer no longer exists.
func (s *Store) SetThumbnail(id ID, img image.Image) bool {
	return s.Update(id, func(l *Layer) { l.Thumbnail = img })
}

// SelectedIndex returns the index of the selected layer.
func (s *Store) SelectedIndex() int { return s.selected }

// Selected returns the selected layer.
func (s *Store) Selected() (Layer, bool) {
	return s.At(s.selected)
}

// Select sets the selected index, clamped into range.
func (s *Store) Select(i int) {
	s.selected = i
	s.ClampSelection()
}

// ClampSelection keeps the selected index within [0, Len()-1].
func (s *Store) ClampSelection() {
	if s.selected >= len(s.order) {
		s.selected = len(s.order) - 1
	}
	if s.selected < 0 {
		s.selected = 0
	}
}

// EnsureOne inserts l when the store is empty and reports whether it did.
func (s *Store) EnsureOne(l Layer) bool {
	if len(s.order) > 0 {
		return false
	}
	_, _ = s.Add(l)
	s.selected = 0
	return true
}

// Reset removes every layer and returns them, bottom first.
func (s *Store) Reset() []Layer {
	out := s.Layers()
	s.order = nil
	s.byID = make(map[ID]*Layer)
	s.selected = 0
	return out
}
