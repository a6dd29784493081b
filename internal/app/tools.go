package app

import (
	"image/color"
	"math"
	"strings"
)

// Tool is the active canvas tool.
type Tool int

const (
	ToolBrush Tool = iota
	ToolEraser
	ToolFill
	ToolEyedropper
	ToolSelectRect
	ToolSelectLasso
)

// Tools lists every tool in toolbar order.
var Tools = []Tool{ToolBrush, ToolEraser, ToolFill, ToolEyedropper, ToolSelectRect, ToolSelectLasso}

func (t Tool) String() string {
	switch t {
	case ToolBrush:
		return "Brush"
	case ToolEraser:
		return "Eraser"
	case ToolFill:
		return "Fill"
	case ToolEyedropper:
		return "Eyedropper"
	case ToolSelectRect:
		return "Rectangle Select"
	case ToolSelectLasso:
		return "Lasso Select"
	default:
		return "Unknown"
	}
}

// IsSelection reports whether the tool creates selections.
func (t Tool) IsSelection() bool {
	return t == ToolSelectRect || t == ToolSelectLasso
}

// ParseTool looks a tool up by its String form, ignoring case.
func ParseTool(s string) (Tool, bool) {
	for _, t := range Tools {
		if strings.EqualFold(t.String(), s) {
			return t, true
		}
	}
	return ToolBrush, false
}

// Brush limits.
const (
	MinBrushSize    = 1.0
	MaxBrushSize    = 500.0
	MinBrushSpacing = 0.01
	MaxBrushSpacing = 1.0
)

// BrushSettings configures the brush and eraser. Pressure sizes are fractions
// of Size.
type BrushSettings struct {
	Size            float64     `json:"size"`
	Opacity         float64     `json:"opacity"`
	Hardness        float64     `json:"hardness"`
	Spacing         float64     `json:"spacing"`
	PressureEnabled bool        `json:"pressure_enabled"`
	PressureMinSize float64     `json:"pressure_min_size"`
	PressureMaxSize float64     `json:"pressure_max_size"`
	Color           color.NRGBA `json:"color"`
}

// DefaultBrush returns a medium, opaque black brush.
func DefaultBrush() BrushSettings {
	return BrushSettings{
		Size:            10,
		Opacity:         1,
		Hardness:        0.8,
		Spacing:         0.1,
		PressureEnabled: true,
		PressureMinSize: 0.3,
		PressureMaxSize: 1,
		Color:           color.NRGBA{A: 0xff},
	}
}

// Clamped returns b with every field forced into range.
func (b BrushSettings) Clamped() BrushSettings {
	b.Size = clamp(b.Size, MinBrushSize, MaxBrushSize)
	b.Opacity = clamp(b.Opacity, 0, 1)
	b.Hardness = clamp(b.Hardness, 0, 1)
	b.Spacing = clamp(b.Spacing, MinBrushSpacing, MaxBrushSpacing)
	b.PressureMinSize = clamp(b.PressureMinSize, 0, 1)
	b.PressureMaxSize = clamp(b.PressureMaxSize, 0, 1)
	if b.PressureMinSize > b.PressureMaxSize {
		b.PressureMinSize, b.PressureMaxSize = b.PressureMaxSize, b.PressureMinSize
	}
	return b
}

// SizeForPressure returns the brush diameter for a stylus pressure in [0,1].
// Without pressure sensitivity it is always Size.
func (b BrushSettings) SizeForPressure(p float64) float64 {
	if !b.PressureEnabled {
		return b.Size
	}
	p = clamp(p, 0, 1)
	frac := b.PressureMinSize + (b.PressureMaxSize-b.PressureMinSize)*p
	return math.Max(MinBrushSize, b.Size*frac)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// Tool returns the active tool.
func (s *State) Tool() Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tool
}

// SetTool switches tools. Leaving the selection tools commits lifted pixels
// and drops the selection.
func (s *State) SetTool(t Tool) error {
	return s.update("set tool", func() error {
		if t == s.tool {
			return nil
		}
		if s.tool.IsSelection() && !t.IsSelection() {
			if err := s.settleSelectionLocked(); err != nil {
				return err
			}
		}
		s.tool = t
		s.queue(EventToolChanged, t)
		return nil
	})
}

// Brush returns the brush settings.
func (s *State) Brush() BrushSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.brush
}

// SetBrush replaces the brush settings, clamping every field.
func (s *State) SetBrush(b BrushSettings) {
	s.changeBrush(func(cur *BrushSettings) { *cur = b })
}

// SetBrushSize sets the brush diameter in pixels.
func (s *State) SetBrushSize(size float64) {
	s.changeBrush(func(b *BrushSettings) { b.Size = size })
}

// SetBrushOpacity sets the brush opacity.
func (s *State) SetBrushOpacity(opacity float64) {
	s.changeBrush(func(b *BrushSettings) { b.Opacity = opacity })
}

// SetBrushHardness sets the edge hardness.
func (s *State) SetBrushHardness(hardness float64) {
	s.changeBrush(func(b *BrushSettings) { b.Hardness = hardness })
}

// SetBrushColor sets the paint color.
func (s *State) SetBrushColor(c color.Color) {
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	s.changeBrush(func(b *BrushSettings) { b.Color = nc })
}

// SetPressure configures stylus pressure sensitivity.
func (s *State) SetPressure(enabled bool, minSize, maxSize float64) {
	s.changeBrush(func(b *BrushSettings) {
		b.PressureEnabled = enabled
		b.PressureMinSize = minSize
		b.PressureMaxSize = maxSize
	})
}

func (s *State) changeBrush(fn func(*BrushSettings)) {
	s.mu.Lock()
	before := s.brush
	fn(&s.brush)
	s.brush = s.brush.Clamped()
	changed := s.brush != before
	b := s.brush
	s.mu.Unlock()

	if changed {
		s.Emit(EventBrushChanged, b)
	}
}
