// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"path/filepath"

	"sketch-critic/internal/app"
	"sketch-critic/internal/feedback"
	"sketch-critic/internal/gallery"
	"sketch-critic/internal/raster"
	"sketch-critic/internal/version"
	"sketch-critic/ui/canvas"
	"sketch-critic/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/hashicorp/go-hclog"
)

const appTitle = "Sketch Critic"

// Deps are the collaborators the window drives.
type Deps struct {
	State   *app.State
	Critic  feedback.Critic // nil when no critique service is configured
	Gallery *gallery.Store  // nil disables the gallery tab
	Prefs   *prefs.Prefs
	Logger  hclog.Logger
}

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app    fyne.App
	state  *app.State
	critic feedback.Critic
	store  *gallery.Store
	prefs  *prefs.Prefs
	logger hclog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	canvas    *canvas.Canvas
	statusBar *widget.Label

	undoBtn *widget.Button
	redoBtn *widget.Button

	layers   *layerPanel
	tools    *toolPanel
	critique *critiquePanel
}

// New creates the main window.
func New(fyneApp fyne.App, d Deps) *MainWindow {
	if d.Logger == nil {
		d.Logger = hclog.NewNullLogger()
	}
	if d.Prefs == nil {
		d.Prefs = prefs.Load()
	}
	win := fyneApp.NewWindow(appTitle)
	ctx, cancel := context.WithCancel(context.Background())

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  d.State,
		critic: d.Critic,
		store:  d.Gallery,
		prefs:  d.Prefs,
		logger: d.Logger.Named("ui"),
		ctx:    ctx,
		cancel: cancel,
	}

	if err := mw.prefs.Apply(mw.state); err != nil {
		mw.logger.Warn("could not restore tool", "error", err)
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupShortcuts()
	mw.setupEventHandlers()

	v := mw.prefs.Values()
	mw.Resize(fyne.NewSize(v.WindowWidth, v.WindowHeight))
	mw.SetCloseIntercept(mw.onClose)
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.New(mw.state, mw.logger.Named("canvas"))
	mw.canvas.OnStatus(mw.updateStatus)
	mw.statusBar = widget.NewLabel("Ready")

	mw.layers = newLayerPanel(mw)
	mw.tools = newToolPanel(mw)
	mw.critique = newCritiquePanel(mw)

	left := container.NewAppTabs(
		container.NewTabItem("Layers", mw.layers.Container()),
		container.NewTabItem("Brush", mw.tools.BrushContainer()),
	)
	right := mw.critique.Container()

	canvasArea := container.NewBorder(
		mw.createToolbar(), // top
		nil,                // bottom
		nil,                // left
		nil,                // right
		mw.canvas,          // center
	)

	inner := container.NewHSplit(canvasArea, right)
	inner.SetOffset(0.72)
	split := container.NewHSplit(left, inner)
	split.SetOffset(0.2)

	content := container.NewBorder(
		nil,                               // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		split,                             // center
	)
	mw.SetContent(content)
	mw.refreshHistory(app.HistoryStatus{CanUndo: mw.state.CanUndo(), CanRedo: mw.state.CanRedo()})
}

// createToolbar creates the tool picker plus history and view controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	mw.undoBtn = widget.NewButton("Undo", mw.onUndo)
	mw.redoBtn = widget.NewButton("Redo", mw.onRedo)

	return container.NewHBox(
		mw.tools.ToolPicker(),
		widget.NewSeparator(),
		mw.undoBtn,
		mw.redoBtn,
		widget.NewSeparator(),
		widget.NewLabel("Zoom:"),
		widget.NewButton("-", func() { mw.state.ZoomOut(mw.state.ScreenSize().Center()) }),
		widget.NewButton("+", func() { mw.state.ZoomIn(mw.state.ScreenSize().Center()) }),
		widget.NewButton("Fit", mw.state.FitToScreen),
		widget.NewButton("1:1", mw.state.ResetView),
		widget.NewCheck("Pan", mw.canvas.SetPanMode),
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", mw.onOpenImage),
		fyne.NewMenuItem("Export PNG...", mw.onExport),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save to Gallery", mw.critique.saveToGallery),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Clear Canvas", mw.onClearCanvas),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", mw.onUndo),
		fyne.NewMenuItem("Redo", mw.onRedo),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Commit Selection", func() { mw.report(mw.state.CommitSelection()) }),
		fyne.NewMenuItem("Cancel Selection", func() { mw.report(mw.state.CancelSelection()) }),
		fyne.NewMenuItem("Delete Selection", func() { mw.report(mw.state.DeleteSelection()) }),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", func() { mw.state.ZoomIn(mw.state.ScreenSize().Center()) }),
		fyne.NewMenuItem("Zoom Out", func() { mw.state.ZoomOut(mw.state.ScreenSize().Center()) }),
		fyne.NewMenuItem("Fit to Window", mw.state.FitToScreen),
		fyne.NewMenuItem("Actual Size", mw.state.ResetView),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Rotate Left", func() { mw.state.Rotate(-15, true) }),
		fyne.NewMenuItem("Rotate Right", func() { mw.state.Rotate(15, true) }),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu, helpMenu))
}

func (mw *MainWindow) setupShortcuts() {
	c := mw.Canvas()
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault},
		func(fyne.Shortcut) { mw.onUndo() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault | fyne.KeyModifierShift},
		func(fyne.Shortcut) { mw.onRedo() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierShortcutDefault},
		func(fyne.Shortcut) { mw.onRedo() })
}

// setupEventHandlers registers for canvas events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventHistoryChanged, func(data interface{}) {
		if st, ok := data.(app.HistoryStatus); ok {
			mw.refreshHistory(st)
		}
	})
	mw.state.On(app.EventError, func(data interface{}) {
		if err, ok := data.(error); ok {
			mw.updateStatus(err.Error())
		}
	})
	mw.state.On(app.EventCanvasCleared, func(interface{}) {
		mw.updateStatus("Canvas cleared")
	})
}

func (mw *MainWindow) refreshHistory(st app.HistoryStatus) {
	setEnabled(mw.undoBtn, st.CanUndo)
	setEnabled(mw.redoBtn, st.CanRedo)
	if st.CanUndo {
		mw.undoBtn.SetText("Undo " + mw.state.UndoLabel())
	} else {
		mw.undoBtn.SetText("Undo")
	}
}

func setEnabled(w fyne.Disableable, on bool) {
	if on {
		w.Enable()
	} else {
		w.Disable()
	}
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// report shows err in the status bar. Expected no-op conditions are silent.
func (mw *MainWindow) report(err error) {
	if err != nil {
		mw.updateStatus(err.Error())
	}
}

func (mw *MainWindow) onUndo() { mw.report(mw.state.Undo()) }

func (mw *MainWindow) onRedo() { mw.report(mw.state.Redo()) }

// lastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) lastDir() fyne.ListableURI {
	path := mw.prefs.Values().LastOpenDir
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

func (mw *MainWindow) saveLastDir(filePath string) {
	dir := filepath.Dir(filePath)
	mw.prefs.Update(func(v *prefs.Values) { v.LastOpenDir = dir })
}

func (mw *MainWindow) onOpenImage() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		mw.saveLastDir(reader.URI().Path())

		img, err := raster.Decode(reader)
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		if err := mw.state.LoadImage(img); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus("Loaded " + reader.URI().Name())
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(raster.SupportedFormats()))
	if loc := mw.lastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onExport() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		mw.saveLastDir(writer.URI().Path())

		img, err := mw.state.ExportImage()
		if err == nil {
			err = png.Encode(writer, img)
		}
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus("Exported " + writer.URI().Name())
	}, mw.Window)
	fd.SetFileName("sketch.png")
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".png"}))
	if loc := mw.lastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onClearCanvas() {
	if mw.state.IsEmpty() {
		mw.report(mw.state.ClearCanvas())
		return
	}
	dialog.ShowConfirm("Clear Canvas", "Discard every layer and the undo history?", func(ok bool) {
		if ok {
			mw.report(mw.state.ClearCanvas())
		}
	}, mw.Window)
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s %s\n\nDraw, then ask for a critique.", appTitle, version.String()),
		mw.Window)
}

// onClose saves preferences, stops background work and closes the window.
func (mw *MainWindow) onClose() {
	mw.cancel()
	mw.prefs.Capture(mw.state)
	mw.critique.capture()
	size := mw.Canvas().Size()
	mw.prefs.Update(func(v *prefs.Values) {
		v.WindowWidth, v.WindowHeight = size.Width, size.Height
	})
	if err := mw.prefs.Save(); err != nil {
		mw.logger.Warn("could not save preferences", "error", err)
	}
	mw.Close()
}

// isCancelled reports whether err comes from the window closing.
func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
