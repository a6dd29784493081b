package gallery

import (
	"os"
	"sync"
	"time"
)

// Watcher polls the gallery index and reloads the store when another
// process, such as the CLI, changes it.
type Watcher struct {
	store    *Store
	interval time.Duration
	onChange func()

	mu       sync.Mutex
	baseline time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewWatcher creates a watcher for store. onChange is called from a
// background goroutine after the store has been reloaded.
func NewWatcher(store *Store, interval time.Duration, onChange func()) *Watcher {
	w := &Watcher{store: store, interval: interval, onChange: onChange}
	w.baseline, _ = w.modTime()
	return w
}

// Start begins polling in a background goroutine.
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopCh != nil {
		return
	}
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	go w.loop(w.stopCh, w.doneCh)
}

// Stop ends polling and waits for the goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	stop, done := w.stopCh, w.doneCh
	w.stopCh, w.doneCh = nil, nil
	w.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (w *Watcher) loop(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			w.Check()
		}
	}
}

// Check reloads the store if the index changed since the last check and
// reports whether it did.
func (w *Watcher) Check() bool {
	mod, err := w.modTime()
	if err != nil {
		return false
	}
	w.mu.Lock()
	changed := !mod.Equal(w.baseline)
	w.baseline = mod
	w.mu.Unlock()
	if !changed {
		return false
	}

	if err := w.store.Reload(); err != nil {
		w.store.logger.Warn("gallery reload failed", "error", err)
		return false
	}
	w.store.logger.Debug("gallery reloaded", "modified", mod)
	if w.onChange != nil {
		w.onChange()
	}
	return true
}

// ResetBaseline treats the current index as seen, so changes this process
// made itself are not reported.
func (w *Watcher) ResetBaseline() {
	if mod, err := w.modTime(); err == nil {
		w.mu.Lock()
		w.baseline = mod
		w.mu.Unlock()
	}
}

func (w *Watcher) modTime() (time.Time, error) {
	info, err := os.Stat(w.store.IndexPath())
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
