// Package app provides the canvas state: layers, history, selection, viewport,
// tools and the critique result, behind a single lock with change events.
package app

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"sketch-critic/internal/history"
	"sketch-critic/internal/layers"
	"sketch-critic/internal/raster"
	"sketch-critic/internal/selection"
	"sketch-critic/internal/viewport"
	"sketch-critic/pkg/geometry"

	"github.com/hashicorp/go-hclog"
)

var (
	ErrNoLayer          = errors.New("no such layer")
	ErrLayerLocked      = errors.New("layer is locked")
	ErrNoTexture        = errors.New("layer has no pixels yet")
	ErrStrokeInProgress = errors.New("a stroke is already in progress")
	ErrNoStroke         = errors.New("no stroke in progress")
	ErrNoPinch          = errors.New("no pinch gesture in progress")
	ErrFeedbackPending  = errors.New("feedback request already in progress")
	ErrOutOfBounds      = errors.New("point is outside the document")
	ErrClosed           = errors.New("canvas is closed")
)

// State holds the canvas: the layer stack and its textures, undo history,
// the active selection, the viewport, tool settings and the latest critique.
//
// Every method is safe for concurrent use. Mutations are serialized by one
// lock; events are delivered after it is released.
type State struct {
	mu sync.Mutex

	backend     raster.Backend
	thumbnailer raster.Thumbnailer
	logger      hclog.Logger
	docSize     image.Point
	background  color.Color
	thumbSize   int

	tool  Tool
	brush BrushSettings

	view    *viewport.Transformer
	sel     *selection.Engine
	selOn   layers.ID
	layers  *layers.Store
	history *history.Manager

	// parked holds layers removed from the stack that history may bring back,
	// with their current textures and thumbnails.
	parked map[layers.ID]layers.Layer

	stroke *strokeState
	pinch  *pinchState

	loadedImage     bool
	feedback        string
	feedbackPending bool
	lastErr         error

	pending     []event
	listenersMu sync.RWMutex
	listeners   map[EventType][]EventListener

	thumbs *thumbnailWorker
	closed bool
}

type strokeState struct {
	layer  layers.ID
	before raster.Snapshot
}

type pinchState struct {
	start viewport.View
	from  []geometry.Point2D
}

// Option configures a State.
type Option func(*State)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l hclog.Logger) Option {
	return func(s *State) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithThumbnailer replaces the backend's own thumbnailer.
func WithThumbnailer(t raster.Thumbnailer) Option {
	return func(s *State) {
		if t != nil {
			s.thumbnailer = t
		}
	}
}

// WithDocumentSize sets the square document edge in pixels.
func WithDocumentSize(px int) Option {
	return func(s *State) {
		if px > 0 {
			s.docSize = image.Pt(px, px)
		}
	}
}

// WithScreenSize sets the initial viewport size.
func WithScreenSize(size geometry.Size) Option {
	return func(s *State) { s.view.SetScreenSize(size) }
}

// WithBackground sets the color exported images are flattened onto.
// A nil color keeps transparency.
func WithBackground(c color.Color) Option {
	return func(s *State) { s.background = c }
}

// WithThumbnailSize sets the longest edge of layer thumbnails.
func WithThumbnailSize(px int) Option {
	return func(s *State) {
		if px > 0 {
			s.thumbSize = px
		}
	}
}

// NewState creates a canvas with one empty layer.
func NewState(backend raster.Backend, opts ...Option) *State {
	s := &State{
		backend:     backend,
		thumbnailer: backend,
		logger:      hclog.NewNullLogger(),
		docSize:     image.Pt(viewport.DefaultDocumentSize, viewport.DefaultDocumentSize),
		background:  color.White,
		thumbSize:   raster.DefaultThumbnailSize,
		tool:        ToolBrush,
		brush:       DefaultBrush(),
		view:        viewport.New(geometry.Size{}, geometry.Size{}),
		sel:         selection.NewEngine(backend),
		layers:      layers.NewStore(),
		history:     history.NewManager(),
		parked:      make(map[layers.ID]layers.Layer),
		listeners:   make(map[EventType][]EventListener),
	}
	for _, opt := range opts {
		opt(s)
	}
	screen := s.view.ScreenSize()
	s.view = viewport.New(geometry.NewSize(float64(s.docSize.X), float64(s.docSize.Y)), screen)

	s.history.OnChange(func(canUndo, canRedo bool) {
		s.queue(EventHistoryChanged, HistoryStatus{CanUndo: canUndo, CanRedo: canRedo})
	})
	s.layers.EnsureOne(layers.New(layers.DefaultName(1)))
	s.thumbs = startThumbnailWorker(s)

	s.logger.Debug("canvas created", "size", s.docSize)
	return s
}

// update runs fn under the lock. A returned error is logged, stored as the
// last error and emitted as EventError. Queued events are delivered after
// the lock is released.
func (s *State) update(op string, fn func() error) error {
	s.mu.Lock()
	var err error
	if s.closed {
		err = ErrClosed
	} else {
		err = fn()
	}
	if err != nil {
		s.failLocked(op, err)
	}
	events := s.takePending()
	s.mu.Unlock()

	s.dispatch(events)
	return err
}

func (s *State) failLocked(op string, err error) {
	s.logger.Warn("canvas operation failed", "op", op, "error", err)
	s.lastErr = fmt.Errorf("%s: %w", op, err)
	s.queue(EventError, s.lastErr)
}

// Backend returns the raster backend, for drawing stroke pixels between
// BeginStroke and EndStroke.
func (s *State) Backend() raster.Backend { return s.backend }

// DocumentSize returns the document dimensions in pixels.
func (s *State) DocumentSize() image.Point { return s.docSize }

// LastError returns the most recent failure, or nil.
func (s *State) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ClearError resets LastError.
func (s *State) ClearError() {
	s.mu.Lock()
	s.lastErr = nil
	s.mu.Unlock()
}

// IsEmpty reports whether there is nothing worth critiquing: no image has
// been loaded, nothing can be undone and no layer has pixels.
func (s *State) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.layers.Len() == 0 {
		return true
	}
	if s.loadedImage || s.history.CanUndo() {
		return false
	}
	for _, l := range s.layers.Layers() {
		if l.Texture != nil {
			return false
		}
	}
	return true
}

// ClearCanvas discards every layer, the history, the selection and the
// critique, leaving one empty layer. It cannot be undone.
func (s *State) ClearCanvas() error {
	return s.update("clear canvas", func() error {
		s.sel.Clear()
		s.selOn = ""
		s.stroke = nil
		s.freeAllLocked()
		s.layers.EnsureOne(layers.New(layers.DefaultName(1)))
		s.history.Clear()
		s.loadedImage = false
		s.feedback = ""
		s.lastErr = nil

		s.logger.Info("canvas cleared")
		s.queue(EventCanvasCleared, nil)
		s.queue(EventSelectionChanged, nil)
		s.queue(EventLayersChanged, nil)
		return nil
	})
}

// Close stops background work and frees every texture. The state must not
// be used afterwards.
func (s *State) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.thumbs.stop()

	s.mu.Lock()
	s.sel.Clear()
	s.freeAllLocked()
	s.history.Clear()
	s.pending = nil
	s.mu.Unlock()
}

func (s *State) freeAllLocked() {
	for _, l := range s.layers.Reset() {
		if l.Texture != nil {
			s.backend.Free(l.Texture)
		}
	}
	for id, l := range s.parked {
		if l.Texture != nil {
			s.backend.Free(l.Texture)
		}
		delete(s.parked, id)
	}
}

// ensureTextureLocked allocates the layer's texture on first use.
func (s *State) ensureTextureLocked(id layers.ID) (raster.Surface, error) {
	l, ok := s.layers.Get(id)
	if !ok {
		return nil, ErrNoLayer
	}
	if l.Texture != nil {
		return l.Texture, nil
	}
	tex, err := s.backend.Allocate(s.docSize.X, s.docSize.Y)
	if err != nil {
		return nil, fmt.Errorf("allocate texture: %w", err)
	}
	s.layers.Update(id, func(l *layers.Layer) { l.Texture = tex })
	s.logger.Debug("texture allocated", "layer", id)
	return tex, nil
}

// selectedLocked returns the selected layer.
func (s *State) selectedLocked() (layers.Layer, error) {
	l, ok := s.layers.Selected()
	if !ok {
		return layers.Layer{}, ErrNoLayer
	}
	return l, nil
}

// layerChangedLocked invalidates cached images of a layer whose pixels
// changed and schedules a new thumbnail.
func (s *State) layerChangedLocked(id layers.ID) {
	l, ok := s.layers.Get(id)
	if !ok {
		return
	}
	s.layers.Update(id, func(l *layers.Layer) { l.Export = nil })
	if l.Texture == nil {
		if s.layers.SetThumbnail(id, nil) {
			s.queue(EventThumbnailUpdated, id)
		}
		return
	}
	snap, err := s.backend.Snapshot(l.Texture)
	if err != nil {
		s.logger.Warn("thumbnail snapshot failed", "layer", id, "error", err)
		return
	}
	s.thumbs.enqueue(id, snap)
}

// park moves a removed layer aside so history can restore it with its pixels.
func (s *State) parkLocked(l layers.Layer) {
	s.parked[l.ID] = l
}

// unparkLocked returns the parked version of l when there is one.
func (s *State) unparkLocked(l layers.Layer) layers.Layer {
	if p, ok := s.parked[l.ID]; ok {
		delete(s.parked, l.ID)
		return p
	}
	return l
}

// pruneParkedLocked frees parked layers that no history entry refers to.
func (s *State) pruneParkedLocked() {
	if len(s.parked) == 0 {
		return
	}
	referenced := make(map[layers.ID]bool)
	for _, a := range s.history.Actions() {
		switch a := a.(type) {
		case history.LayerAdded:
			referenced[a.Layer.ID] = true
		case history.LayerRemoved:
			referenced[a.Layer.ID] = true
		}
	}
	for id, l := range s.parked {
		if referenced[id] {
			continue
		}
		if l.Texture != nil {
			s.backend.Free(l.Texture)
		}
		delete(s.parked, id)
		s.logger.Debug("released parked layer", "layer", id)
	}
}

// recordLocked pushes an action and releases layers it made unreachable.
func (s *State) recordLocked(a history.Action) {
	s.history.Record(a)
	s.pruneParkedLocked()
}
