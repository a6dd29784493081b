// Package gallery stores saved drawings and the critiques they received.
package gallery

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"sketch-critic/internal/feedback"
	"sketch-critic/internal/raster"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// IndexFile is the name of the gallery index inside the gallery directory.
const IndexFile = "gallery.json"

const indexVersion = 1

var (
	ErrNotFound   = errors.New("drawing not found")
	ErrEmptyText  = errors.New("feedback text is empty")
	ErrNoImage    = errors.New("no image to save")
	ErrBadVersion = errors.New("unsupported gallery version")
)

// Entry is one critique of a drawing.
type Entry struct {
	Text    string    `json:"text"`
	Created time.Time `json:"created"`
}

// Drawing is a saved drawing.
type Drawing struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Created  time.Time        `json:"created"`
	Modified time.Time        `json:"modified"`
	Image    string           `json:"image"` // relative to the gallery directory
	Context  feedback.Context `json:"context,omitempty"`
	Feedback []Entry          `json:"feedback,omitempty"`
}

// Latest returns the most recent critique, or "".
func (d *Drawing) Latest() string {
	if len(d.Feedback) == 0 {
		return ""
	}
	return d.Feedback[len(d.Feedback)-1].Text
}

type index struct {
	Version  int        `json:"version"`
	Modified time.Time  `json:"modified"`
	Drawings []*Drawing `json:"drawings"`
}

// Store is a gallery directory: an index file plus one PNG per drawing.
type Store struct {
	mu     sync.Mutex
	dir    string
	index  index
	logger hclog.Logger
	now    func() time.Time
}

// Open loads the gallery in dir, creating the directory if needed.
func Open(dir string, logger hclog.Logger) (*Store, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create gallery: %w", err)
	}
	s := &Store{
		dir:    dir,
		index:  index{Version: indexVersion},
		logger: logger,
		now:    time.Now,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	logger.Debug("gallery opened", "dir", dir, "drawings", len(s.index.Drawings))
	return s, nil
}

// Dir returns the gallery directory.
func (s *Store) Dir() string { return s.dir }

// IndexPath returns the path of the index file.
func (s *Store) IndexPath() string { return filepath.Join(s.dir, IndexFile) }

func (s *Store) load() error {
	data, err := os.ReadFile(s.IndexPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var idx index
	if err := json.Unmarshal(data, &idx); err != nil {
		return fmt.Errorf("read %s: %w", IndexFile, err)
	}
	if idx.Version > indexVersion {
		return fmt.Errorf("%w: %d", ErrBadVersion, idx.Version)
	}
	idx.Version = indexVersion
	s.index = idx
	return nil
}

// Reload rereads the index from disk, picking up changes made by another
// process.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) saveLocked() error {
	s.index.Modified = s.now().UTC()
	data, err := json.MarshalIndent(&s.index, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(s.IndexPath(), data)
}

// writeFile replaces path atomically.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Save adds a drawing with its PNG. A blank title becomes "Untitled".
func (s *Store) Save(title string, img image.Image, fc feedback.Context) (*Drawing, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrNoImage
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Untitled"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	d := &Drawing{
		ID:       uuid.NewString(),
		Title:    title,
		Created:  now,
		Modified: now,
		Context:  fc,
	}
	d.Image = d.ID + ".png"

	if err := writePNG(filepath.Join(s.dir, d.Image), img); err != nil {
		return nil, fmt.Errorf("save image: %w", err)
	}
	s.index.Drawings = append(s.index.Drawings, d)
	if err := s.saveLocked(); err != nil {
		s.index.Drawings = s.index.Drawings[:len(s.index.Drawings)-1]
		os.Remove(filepath.Join(s.dir, d.Image))
		return nil, err
	}

	s.logger.Info("drawing saved", "id", d.ID, "title", title)
	return copyDrawing(d), nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// AddFeedback appends a critique to a drawing.
func (s *Store) AddFeedback(id, text string) (*Drawing, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.findLocked(id)
	if d == nil {
		return nil, ErrNotFound
	}
	prevModified := d.Modified
	now := s.now().UTC()
	d.Feedback = append(d.Feedback, Entry{Text: text, Created: now})
	d.Modified = now
	if err := s.saveLocked(); err != nil {
		d.Feedback = d.Feedback[:len(d.Feedback)-1]
		d.Modified = prevModified
		return nil, err
	}
	return copyDrawing(d), nil
}

// Rename changes a drawing's title.
func (s *Store) Rename(id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.findLocked(id)
	if d == nil {
		return ErrNotFound
	}
	d.Title = title
	d.Modified = s.now().UTC()
	return s.saveLocked()
}

// Get returns a copy of a drawing.
func (s *Store) Get(id string) (*Drawing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.findLocked(id)
	if d == nil {
		return nil, ErrNotFound
	}
	return copyDrawing(d), nil
}

// List returns every drawing, most recently modified first.
func (s *Store) List() []*Drawing {
	s.mu.Lock()
	out := make([]*Drawing, 0, len(s.index.Drawings))
	for _, d := range s.index.Drawings {
		out = append(out, copyDrawing(d))
	}
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Modified.After(out[j].Modified) })
	return out
}

// Delete removes a drawing and its image.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, d := range s.index.Drawings {
		if d.ID != id {
			continue
		}
		prev := s.index.Drawings
		s.index.Drawings = append(append([]*Drawing(nil), prev[:i]...), prev[i+1:]...)
		if err := s.saveLocked(); err != nil {
			s.index.Drawings = prev
			return err
		}
		if err := os.Remove(s.ImagePath(d)); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("could not remove drawing image", "id", id, "error", err)
		}
		s.logger.Info("drawing deleted", "id", id)
		return nil
	}
	return ErrNotFound
}

// ImagePath returns the absolute path of a drawing's PNG.
func (s *Store) ImagePath(d *Drawing) string {
	if filepath.IsAbs(d.Image) {
		return d.Image
	}
	return filepath.Join(s.dir, d.Image)
}

// LoadImage decodes a drawing's image.
func (s *Store) LoadImage(id string) (image.Image, error) {
	d, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return raster.Load(s.ImagePath(d))
}

func (s *Store) findLocked(id string) *Drawing {
	for _, d := range s.index.Drawings {
		if d.ID == id {
			return d
		}
	}
	return nil
}

func copyDrawing(d *Drawing) *Drawing {
	c := *d
	c.Feedback = append([]Entry(nil), d.Feedback...)
	return &c
}
