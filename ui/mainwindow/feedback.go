package mainwindow

import (
	"strings"

	"sketch-critic/internal/app"
	"sketch-critic/internal/feedback"
	"sketch-critic/internal/gallery"
	"sketch-critic/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// critiquePanel requests critiques and browses the gallery.
type critiquePanel struct {
	mw *MainWindow

	style   *widget.Entry
	subject *widget.Entry
	focus   *widget.Entry
	button  *widget.Button
	busy    *widget.ProgressBarInfinite
	text    *widget.RichText

	drawings []*gallery.Drawing
	list     *widget.List
	current  string // gallery id of the drawing the critique belongs to
}

func newCritiquePanel(mw *MainWindow) *critiquePanel {
	p := &critiquePanel{mw: mw}

	saved := mw.prefs.Values().Context
	p.style = entry("e.g. ink sketch", saved.Style)
	p.subject = entry("e.g. portrait", saved.Subject)
	p.focus = entry("e.g. proportions", saved.Focus)

	p.button = widget.NewButton("Critique", p.request)
	p.button.Importance = widget.HighImportance
	if mw.critic == nil {
		p.button.Disable()
	}
	p.busy = widget.NewProgressBarInfinite()
	p.busy.Hide()

	p.text = widget.NewRichTextFromMarkdown("")
	p.text.Wrapping = fyne.TextWrapWord

	p.list = widget.NewList(
		func() int { return len(p.drawings) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < len(p.drawings) {
				d := p.drawings[id]
				obj.(*widget.Label).SetText(d.Title + "  " + d.Modified.Local().Format("Jan 2 15:04"))
			}
		},
	)
	p.list.OnSelected = p.open

	mw.state.On(app.EventFeedbackPending, func(data interface{}) {
		if pending, _ := data.(bool); pending {
			p.button.Disable()
			p.busy.Show()
		} else {
			p.busy.Hide()
			if mw.critic != nil {
				p.button.Enable()
			}
		}
	})
	mw.state.On(app.EventFeedbackReceived, func(data interface{}) {
		if text, ok := data.(string); ok {
			p.text.ParseMarkdown(text)
		}
	})
	mw.state.On(app.EventCanvasCleared, func(interface{}) {
		p.current = ""
		p.text.ParseMarkdown("")
	})

	p.reload()
	return p
}

func entry(placeholder, value string) *widget.Entry {
	e := widget.NewEntry()
	e.SetPlaceHolder(placeholder)
	e.SetText(value)
	return e
}

func (p *critiquePanel) context() feedback.Context {
	return feedback.Context{
		Style:   strings.TrimSpace(p.style.Text),
		Subject: strings.TrimSpace(p.subject.Text),
		Focus:   strings.TrimSpace(p.focus.Text),
	}
}

// capture stores the critique context in the preferences.
func (p *critiquePanel) capture() {
	fc := p.context()
	p.mw.prefs.Update(func(v *prefs.Values) { v.Context = fc })
}

// request asks for a critique in the background. The result arrives through
// EventFeedbackReceived; failures are reported in the status bar and leave
// the previous critique in place.
func (p *critiquePanel) request() {
	mw := p.mw
	if mw.state.IsEmpty() {
		mw.updateStatus("Draw something first")
		return
	}
	fc := p.context()
	go func() {
		text, err := mw.state.RequestFeedback(mw.ctx, mw.critic, fc)
		if err != nil {
			if !isCancelled(err) {
				mw.logger.Warn("critique failed", "error", err)
			}
			return
		}
		mw.updateStatus("Critique received")
		if p.current != "" && mw.store != nil {
			if _, err := mw.store.AddFeedback(p.current, text); err != nil {
				mw.logger.Warn("could not record critique", "error", err)
			}
			p.reload()
		}
	}()
}

// saveToGallery stores the drawing and its latest critique.
func (p *critiquePanel) saveToGallery() {
	mw := p.mw
	if mw.store == nil {
		mw.updateStatus("Gallery is not available")
		return
	}
	title := widget.NewEntry()
	title.SetPlaceHolder("Untitled")
	dialog.ShowForm("Save to Gallery", "Save", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Title", title)},
		func(ok bool) {
			if !ok {
				return
			}
			img, err := mw.state.ExportImage()
			if err != nil {
				dialog.ShowError(err, mw.Window)
				return
			}
			d, err := mw.store.Save(title.Text, img, p.context())
			if err != nil {
				dialog.ShowError(err, mw.Window)
				return
			}
			if text := mw.state.Feedback(); text != "" {
				_, _ = mw.store.AddFeedback(d.ID, text)
			}
			p.current = d.ID
			p.reload()
			mw.updateStatus("Saved " + d.Title)
		}, mw.Window)
}

// open loads a gallery drawing onto a cleared canvas.
func (p *critiquePanel) open(id widget.ListItemID) {
	mw := p.mw
	if id >= len(p.drawings) || mw.store == nil {
		return
	}
	d := p.drawings[id]
	load := func() {
		img, err := mw.store.LoadImage(d.ID)
		if err == nil {
			err = mw.state.ClearCanvas()
		}
		if err == nil {
			err = mw.state.LoadImage(img)
		}
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		p.current = d.ID
		p.style.SetText(d.Context.Style)
		p.subject.SetText(d.Context.Subject)
		p.focus.SetText(d.Context.Focus)
		p.text.ParseMarkdown(d.Latest())
		mw.updateStatus("Opened " + d.Title)
	}
	p.list.UnselectAll()
	if mw.state.IsEmpty() {
		load()
		return
	}
	dialog.ShowConfirm("Open Drawing", "Replace the current canvas with \""+d.Title+"\"?", func(ok bool) {
		if ok {
			load()
		}
	}, mw.Window)
}

func (p *critiquePanel) remove() {
	mw := p.mw
	if mw.store == nil || p.current == "" {
		return
	}
	id := p.current
	dialog.ShowConfirm("Delete Drawing", "Remove this drawing from the gallery?", func(ok bool) {
		if !ok {
			return
		}
		if err := mw.store.Delete(id); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		p.current = ""
		p.reload()
	}, mw.Window)
}

// reload refreshes the gallery list from the store.
func (p *critiquePanel) reload() {
	if p.mw.store == nil {
		return
	}
	p.drawings = p.mw.store.List()
	p.list.Refresh()
}

// Container returns the panel layout.
func (p *critiquePanel) Container() fyne.CanvasObject {
	form := widget.NewForm(
		widget.NewFormItem("Style", p.style),
		widget.NewFormItem("Subject", p.subject),
		widget.NewFormItem("Focus", p.focus),
	)
	top := container.NewVBox(form, p.button, p.busy)
	critique := container.NewBorder(top, nil, nil, nil, container.NewVScroll(p.text))

	if p.mw.store == nil {
		return critique
	}
	galleryButtons := container.NewGridWithColumns(2,
		widget.NewButton("Save", p.saveToGallery),
		widget.NewButton("Delete", p.remove),
	)
	galleryTab := container.NewBorder(nil, galleryButtons, nil, nil, p.list)
	return container.NewAppTabs(
		container.NewTabItem("Critique", critique),
		container.NewTabItem("Gallery", galleryTab),
	)
}

// GalleryChanged reloads the gallery list after another process changed it.
func (mw *MainWindow) GalleryChanged() {
	mw.critique.reload()
}
