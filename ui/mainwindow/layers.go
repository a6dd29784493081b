package mainwindow

import (
	"fmt"

	"sketch-critic/internal/app"
	"sketch-critic/internal/layers"
	"sketch-critic/internal/raster"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const thumbSize = 48

// layerPanel lists layers top first with their thumbnails, and edits the
// selected layer's properties.
type layerPanel struct {
	mw   *MainWindow
	list *widget.List

	// snapshot of the stack, top first, refreshed on every change
	rows []layers.Layer

	opacity *widget.Slider
	blend   *widget.Select
	locked  *widget.Check
	name    *widget.Entry

	syncing bool
}

func newLayerPanel(mw *MainWindow) *layerPanel {
	p := &layerPanel{mw: mw}

	p.list = widget.NewList(
		func() int { return len(p.rows) },
		func() fyne.CanvasObject {
			thumb := fynecanvas.NewImageFromImage(nil)
			thumb.FillMode = fynecanvas.ImageFillContain
			thumb.SetMinSize(fyne.NewSize(thumbSize, thumbSize))
			return container.NewHBox(widget.NewCheck("", nil), thumb, widget.NewLabel(""))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id >= len(p.rows) {
				return
			}
			l := p.rows[id]
			index := p.stackIndex(id)
			row := obj.(*fyne.Container)

			visible := row.Objects[0].(*widget.Check)
			visible.OnChanged = nil
			visible.SetChecked(l.Visible)
			visible.OnChanged = func(on bool) { mw.report(mw.state.SetLayerVisibility(index, on)) }

			thumb := row.Objects[1].(*fynecanvas.Image)
			thumb.Image = l.Thumbnail
			thumb.Refresh()

			label := l.Name
			if l.Locked {
				label += " (locked)"
			}
			row.Objects[2].(*widget.Label).SetText(label)
		},
	)
	p.list.OnSelected = func(id widget.ListItemID) {
		if p.syncing {
			return
		}
		mw.report(mw.state.SelectLayer(p.stackIndex(id)))
	}

	p.opacity = widget.NewSlider(0, 1)
	p.opacity.Step = 0.01
	p.opacity.OnChangeEnded = func(v float64) {
		if !p.syncing {
			mw.report(mw.state.SetLayerOpacity(mw.state.SelectedLayerIndex(), v))
		}
	}

	var modes []string
	for _, m := range raster.BlendModes {
		modes = append(modes, m.String())
	}
	p.blend = widget.NewSelect(modes, func(name string) {
		if p.syncing {
			return
		}
		if m, ok := raster.ParseBlendMode(name); ok {
			mw.report(mw.state.SetLayerBlendMode(mw.state.SelectedLayerIndex(), m))
		}
	})

	p.locked = widget.NewCheck("Locked", func(on bool) {
		if !p.syncing {
			mw.report(mw.state.SetLayerLocked(mw.state.SelectedLayerIndex(), on))
		}
	})

	p.name = widget.NewEntry()
	p.name.OnSubmitted = func(name string) {
		mw.report(mw.state.RenameLayer(mw.state.SelectedLayerIndex(), name))
	}

	refresh := func(interface{}) { p.sync() }
	mw.state.On(app.EventLayersChanged, refresh)
	mw.state.On(app.EventThumbnailUpdated, refresh)
	mw.state.On(app.EventCanvasCleared, refresh)
	p.sync()
	return p
}

// stackIndex maps a list row to a layer index; the list shows the top layer
// first.
func (p *layerPanel) stackIndex(row int) int {
	return len(p.rows) - 1 - row
}

func (p *layerPanel) sync() {
	ls := p.mw.state.Layers()
	rows := make([]layers.Layer, len(ls))
	for i, l := range ls {
		rows[len(ls)-1-i] = l
	}
	p.rows = rows

	p.syncing = true
	defer func() { p.syncing = false }()

	selected := p.mw.state.SelectedLayerIndex()
	p.list.Refresh()
	if selected >= 0 && selected < len(ls) {
		p.list.Select(len(ls) - 1 - selected)
		l := ls[selected]
		p.opacity.SetValue(l.Opacity)
		p.blend.SetSelected(l.Blend.String())
		p.locked.SetChecked(l.Locked)
		p.name.SetText(l.Name)
	}
}

// Container returns the panel layout.
func (p *layerPanel) Container() fyne.CanvasObject {
	mw := p.mw
	buttons := container.NewGridWithColumns(4,
		widget.NewButton("Add", func() {
			_, err := mw.state.AddLayer()
			mw.report(err)
		}),
		widget.NewButton("Delete", func() {
			mw.report(mw.state.DeleteLayer(mw.state.SelectedLayerIndex()))
		}),
		widget.NewButton("Up", func() { p.move(1) }),
		widget.NewButton("Down", func() { p.move(-1) }),
	)
	props := widget.NewForm(
		widget.NewFormItem("Name", p.name),
		widget.NewFormItem("Opacity", p.opacity),
		widget.NewFormItem("Blend", p.blend),
		widget.NewFormItem("", p.locked),
	)
	return container.NewBorder(buttons, props, nil, nil, p.list)
}

func (p *layerPanel) move(delta int) {
	mw := p.mw
	from := mw.state.SelectedLayerIndex()
	to := from + delta
	if to < 0 || to >= mw.state.LayerCount() {
		return
	}
	if err := mw.state.MoveLayer(from, to); err != nil {
		mw.updateStatus(fmt.Sprintf("Move layer: %v", err))
	}
}
