package app

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTool(t *testing.T) {
	for _, tool := range Tools {
		got, ok := ParseTool(tool.String())
		assert.True(t, ok, tool.String())
		assert.Equal(t, tool, got)
	}
	got, ok := ParseTool("lasso select")
	assert.True(t, ok)
	assert.Equal(t, ToolSelectLasso, got)

	_, ok = ParseTool("smudge")
	assert.False(t, ok)
}

func TestBrushClamped(t *testing.T) {
	b := BrushSettings{
		Size:            900,
		Opacity:         -1,
		Hardness:        math.NaN(),
		Spacing:         0,
		PressureMinSize: 0.9,
		PressureMaxSize: 0.2,
	}.Clamped()

	assert.Equal(t, MaxBrushSize, b.Size)
	assert.Equal(t, 0.0, b.Opacity)
	assert.Equal(t, 0.0, b.Hardness)
	assert.Equal(t, MinBrushSpacing, b.Spacing)
	assert.Equal(t, 0.2, b.PressureMinSize)
	assert.Equal(t, 0.9, b.PressureMaxSize)
}

func TestSizeForPressure(t *testing.T) {
	b := DefaultBrush()
	b.Size = 20

	assert.InDelta(t, 6, b.SizeForPressure(0), 1e-9)
	assert.InDelta(t, 20, b.SizeForPressure(1), 1e-9)
	assert.InDelta(t, 20, b.SizeForPressure(4), 1e-9)

	b.Size = 2
	assert.Equal(t, MinBrushSize, b.SizeForPressure(0))

	b.PressureEnabled = false
	assert.Equal(t, 2.0, b.SizeForPressure(0))
}

func TestBrushChangesEmitOnce(t *testing.T) {
	s := newState(t)
	var events int
	s.On(EventBrushChanged, func(interface{}) { events++ })

	s.SetBrushSize(25)
	s.SetBrushSize(25)
	s.SetBrushColor(color.RGBA{R: 10, G: 20, B: 30, A: 255})
	s.SetBrushOpacity(2)

	assert.Equal(t, 3, events)
	b := s.Brush()
	assert.Equal(t, 25.0, b.Size)
	assert.Equal(t, 1.0, b.Opacity)
	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 255}, b.Color)
}

func TestSetToolEmits(t *testing.T) {
	s := newState(t)
	var got []Tool
	s.On(EventToolChanged, func(data interface{}) { got = append(got, data.(Tool)) })

	assert.NoError(t, s.SetTool(ToolEraser))
	assert.NoError(t, s.SetTool(ToolEraser))
	assert.Equal(t, []Tool{ToolEraser}, got)
	assert.Equal(t, "Eyedropper", ToolEyedropper.String())
	assert.True(t, ToolSelectRect.IsSelection())
	assert.False(t, ToolFill.IsSelection())
}
