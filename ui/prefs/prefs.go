// Package prefs provides JSON-based user preferences for the preview window.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"sketch-critic/internal/app"
	"sketch-critic/internal/feedback"
)

const prefsFile = "preferences.json"

// Values is the persisted preference set.
type Values struct {
	WindowWidth  float32           `json:"window_width,omitempty"`
	WindowHeight float32           `json:"window_height,omitempty"`
	Tool         string            `json:"tool,omitempty"`
	Brush        app.BrushSettings `json:"brush"`
	Context      feedback.Context  `json:"context"`
	LastOpenDir  string            `json:"last_open_dir,omitempty"`
	PinchSnap    bool              `json:"pinch_snap"`
}

// Defaults returns the preferences used before anything is saved.
func Defaults() Values {
	return Values{
		WindowWidth:  1200,
		WindowHeight: 800,
		Tool:         app.ToolBrush.String(),
		Brush:        app.DefaultBrush(),
		PinchSnap:    true,
	}
}

// Prefs guards a preference set and its file.
type Prefs struct {
	mu     sync.RWMutex
	values Values
	path   string
}

// DefaultPath returns ~/.config/sketch-critic/preferences.json or the
// platform equivalent.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "sketch-critic", prefsFile)
}

// Load reads preferences from the default path.
func Load() *Prefs {
	return LoadFrom(DefaultPath())
}

// LoadFrom reads preferences from path. A missing or unreadable file yields
// the defaults; fields absent from the file keep their default values.
func LoadFrom(path string) *Prefs {
	p := &Prefs{values: Defaults(), path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		return p
	}
	v := Defaults()
	if err := json.Unmarshal(data, &v); err != nil {
		return p
	}
	v.Brush = v.Brush.Clamped()
	p.values = v
	return p
}

// Path returns the preference file path.
func (p *Prefs) Path() string { return p.path }

// Save writes preferences to disk.
func (p *Prefs) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p.values, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return err
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}

// Values returns a copy of the preferences.
func (p *Prefs) Values() Values {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.values
}

// Update changes preferences in place.
func (p *Prefs) Update(fn func(*Values)) {
	p.mu.Lock()
	fn(&p.values)
	p.mu.Unlock()
}

// Tool returns the saved tool, falling back to the brush.
func (p *Prefs) Tool() app.Tool {
	t, _ := app.ParseTool(p.Values().Tool)
	return t
}

// Apply restores the saved tool and brush onto a canvas.
func (p *Prefs) Apply(s *app.State) error {
	v := p.Values()
	s.SetBrush(v.Brush)
	return s.SetTool(p.Tool())
}

// Capture records the canvas's current tool and brush.
func (p *Prefs) Capture(s *app.State) {
	tool, brush := s.Tool(), s.Brush()
	p.Update(func(v *Values) {
		v.Tool = tool.String()
		v.Brush = brush
	})
}
