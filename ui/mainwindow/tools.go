package mainwindow

import (
	"fmt"
	"image/color"

	"sketch-critic/internal/app"
	"sketch-critic/pkg/colorutil"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// toolPanel holds the tool picker and the brush settings.
type toolPanel struct {
	mw *MainWindow

	picker   *widget.Select
	size     *widget.Slider
	opacity  *widget.Slider
	hardness *widget.Slider
	value    *widget.Slider
	pressure *widget.Check
	hex      *widget.Entry
	swatch   *fynecanvas.Rectangle
	sizeText *widget.Label

	syncing bool
}

func newToolPanel(mw *MainWindow) *toolPanel {
	p := &toolPanel{mw: mw}

	names := make([]string, len(app.Tools))
	for i, t := range app.Tools {
		names[i] = t.String()
	}
	p.picker = widget.NewSelect(names, func(name string) {
		if p.syncing {
			return
		}
		if t, ok := app.ParseTool(name); ok {
			mw.report(mw.state.SetTool(t))
		}
	})

	p.size = widget.NewSlider(app.MinBrushSize, 200)
	p.size.OnChanged = func(v float64) {
		p.sizeText.SetText(fmt.Sprintf("%.0f px", v))
		if !p.syncing {
			mw.state.SetBrushSize(v)
		}
	}
	p.sizeText = widget.NewLabel("")

	p.opacity = unitSlider(func(v float64) {
		if !p.syncing {
			mw.state.SetBrushOpacity(v)
		}
	})
	p.hardness = unitSlider(func(v float64) {
		if !p.syncing {
			mw.state.SetBrushHardness(v)
		}
	})
	p.value = unitSlider(func(v float64) {
		if !p.syncing {
			mw.state.SetBrushColor(colorutil.WithValue(mw.state.Brush().Color, v))
		}
	})

	p.pressure = widget.NewCheck("Pressure sensitivity", func(on bool) {
		if !p.syncing {
			b := mw.state.Brush()
			mw.state.SetPressure(on, b.PressureMinSize, b.PressureMaxSize)
		}
	})

	p.swatch = fynecanvas.NewRectangle(color.Black)
	p.swatch.SetMinSize(fyne.NewSize(28, 28))
	p.hex = widget.NewEntry()
	p.hex.SetPlaceHolder("#000000")
	p.hex.OnSubmitted = func(s string) {
		c, err := colorutil.ParseHex(s)
		if err != nil {
			mw.updateStatus(err.Error())
			return
		}
		mw.state.SetBrushColor(c)
	}

	mw.state.On(app.EventBrushChanged, func(interface{}) { p.sync() })
	mw.state.On(app.EventToolChanged, func(interface{}) { p.sync() })
	p.sync()
	return p
}

func unitSlider(onChange func(float64)) *widget.Slider {
	s := widget.NewSlider(0, 1)
	s.Step = 0.01
	s.OnChanged = onChange
	return s
}

func (p *toolPanel) sync() {
	b := p.mw.state.Brush()
	p.syncing = true
	defer func() { p.syncing = false }()

	p.picker.SetSelected(p.mw.state.Tool().String())
	p.size.SetValue(b.Size)
	p.opacity.SetValue(b.Opacity)
	p.hardness.SetValue(b.Hardness)
	_, _, v := colorutil.RGBToHSV(float64(b.Color.R), float64(b.Color.G), float64(b.Color.B))
	p.value.SetValue(v)
	p.pressure.SetChecked(b.PressureEnabled)
	p.hex.SetText(colorutil.Hex(b.Color))
	p.swatch.FillColor = b.Color
	p.swatch.Refresh()
}

// ToolPicker returns the toolbar tool selector.
func (p *toolPanel) ToolPicker() fyne.CanvasObject {
	return p.picker
}

// BrushContainer returns the brush settings layout.
func (p *toolPanel) BrushContainer() fyne.CanvasObject {
	swatches := container.NewGridWithColumns(4)
	for _, c := range colorutil.Palette {
		c := c
		rect := fynecanvas.NewRectangle(c)
		rect.SetMinSize(fyne.NewSize(24, 24))
		btn := widget.NewButton("", func() { p.mw.state.SetBrushColor(c) })
		swatches.Add(container.NewStack(btn, container.NewPadded(rect)))
	}

	form := widget.NewForm(
		widget.NewFormItem("Size", container.NewBorder(nil, nil, nil, p.sizeText, p.size)),
		widget.NewFormItem("Opacity", p.opacity),
		widget.NewFormItem("Hardness", p.hardness),
		widget.NewFormItem("Lightness", p.value),
		widget.NewFormItem("Color", container.NewBorder(nil, nil, p.swatch, nil, p.hex)),
	)
	return container.NewVBox(form, p.pressure, swatches)
}
