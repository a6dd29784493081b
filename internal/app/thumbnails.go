package app

import (
	"sync"

	"sketch-critic/internal/layers"
	"sketch-critic/internal/raster"
)

// thumbnailWorker renders layer thumbnails off the caller's goroutine.
// Requests are keyed by layer id; a newer snapshot for a layer replaces one
// that has not been picked up yet. Results for layers that no longer exist
// are dropped.
type thumbnailWorker struct {
	state *State

	mu      sync.Mutex
	pending map[layers.ID]raster.Snapshot
	order   []layers.ID

	wake     chan struct{}
	quit     chan struct{}
	done     chan struct{}
	inflight sync.WaitGroup
	stopOnce sync.Once
}

func startThumbnailWorker(s *State) *thumbnailWorker {
	w := &thumbnailWorker{
		state:   s,
		pending: make(map[layers.ID]raster.Snapshot),
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

// enqueue never blocks, so it is safe to call with the state lock held.
func (w *thumbnailWorker) enqueue(id layers.ID, snap raster.Snapshot) {
	w.mu.Lock()
	if _, queued := w.pending[id]; !queued {
		w.order = append(w.order, id)
		w.inflight.Add(1)
	}
	w.pending[id] = snap
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *thumbnailWorker) next() (layers.ID, raster.Snapshot, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.order) == 0 {
		return "", raster.Snapshot{}, false
	}
	id := w.order[0]
	w.order = w.order[1:]
	snap := w.pending[id]
	delete(w.pending, id)
	return id, snap, true
}

func (w *thumbnailWorker) run() {
	defer close(w.done)
	for {
		select {
		case <-w.quit:
			w.drain()
			return
		case <-w.wake:
		}
		for {
			id, snap, ok := w.next()
			if !ok {
				break
			}
			w.render(id, snap)
		}
	}
}

func (w *thumbnailWorker) render(id layers.ID, snap raster.Snapshot) {
	defer w.inflight.Done()
	s := w.state

	img, err := s.thumbnailer.Thumbnail(snap, s.thumbSize)
	if err != nil {
		s.logger.Warn("thumbnail failed", "layer", id, "error", err)
		return
	}

	s.mu.Lock()
	var events []event
	if !s.closed && s.layers.SetThumbnail(id, img) {
		events = append(events, event{typ: EventThumbnailUpdated, data: id})
	}
	s.mu.Unlock()
	s.dispatch(events)
}

// drain discards queued work so waiters are released.
func (w *thumbnailWorker) drain() {
	for {
		if _, _, ok := w.next(); !ok {
			return
		}
		w.inflight.Done()
	}
}

// wait blocks until every queued thumbnail has been applied or dropped.
func (w *thumbnailWorker) wait() { w.inflight.Wait() }

func (w *thumbnailWorker) stop() {
	w.stopOnce.Do(func() {
		close(w.quit)
		<-w.done
	})
}

// WaitThumbnails blocks until all scheduled thumbnails have been rendered.
func (s *State) WaitThumbnails() { s.thumbs.wait() }
