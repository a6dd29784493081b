// Package canvas provides the drawing surface widget: it shows the composited
// layers through the viewport and turns pointer input into canvas operations.
package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"sketch-critic/internal/app"
	"sketch-critic/internal/brush"
	"sketch-critic/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/hashicorp/go-hclog"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

var (
	workspaceColor = color.RGBA{R: 0x5a, G: 0x5a, B: 0x5e, A: 0xff}
	paperColor     = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

type dragKind int

const (
	dragNone dragKind = iota
	dragIgnored
	dragPan
	dragPaint
	dragRect
	dragLasso
	dragMove
)

// Canvas is the drawing surface widget.
type Canvas struct {
	widget.BaseWidget

	state  *app.State
	logger hclog.Logger
	raster *fynecanvas.Raster

	// pixels per fyne unit, updated on every draw
	scale float64

	panMode bool

	drag     dragKind
	last     geometry.Point2D // previous pointer position, screen pixels
	painter  *brush.Painter
	anchor   geometry.Point2D // rubber band start, document space
	rubber   geometry.Point2D // rubber band end, document space
	lasso    []geometry.Point2D
	onStatus func(string)
}

var (
	_ fyne.Draggable    = (*Canvas)(nil)
	_ fyne.Tappable     = (*Canvas)(nil)
	_ fyne.Scrollable   = (*Canvas)(nil)
	_ fyne.Focusable    = (*Canvas)(nil)
	_ desktop.Hoverable = (*Canvas)(nil)
)

// New creates a canvas widget showing state.
func New(state *app.State, logger hclog.Logger) *Canvas {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	c := &Canvas{state: state, logger: logger, scale: 1}
	c.raster = fynecanvas.NewRaster(c.draw)
	c.raster.ScaleMode = fynecanvas.ImageScalePixels

	refresh := func(interface{}) { c.Refresh() }
	for _, ev := range []app.EventType{
		app.EventLayersChanged,
		app.EventSelectionChanged,
		app.EventViewportChanged,
		app.EventHistoryChanged,
		app.EventCanvasCleared,
	} {
		state.On(ev, refresh)
	}

	c.ExtendBaseWidget(c)
	return c
}

// SetPanMode makes drags pan the view regardless of the tool.
func (c *Canvas) SetPanMode(on bool) { c.panMode = on }

// PanMode reports whether drags pan the view.
func (c *Canvas) PanMode() bool { return c.panMode }

// OnStatus sets a callback for short status messages.
func (c *Canvas) OnStatus(fn func(string)) { c.onStatus = fn }

func (c *Canvas) status(msg string) {
	if c.onStatus != nil {
		c.onStatus(msg)
	}
}

// Refresh redraws the canvas.
func (c *Canvas) Refresh() {
	c.raster.Refresh()
}

// CreateRenderer implements fyne.Widget.
func (c *Canvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(c.raster)
}

// MinSize implements fyne.CanvasObject.
func (c *Canvas) MinSize() fyne.Size {
	return fyne.NewSize(200, 200)
}

// draw renders the document through the current view plus the selection
// overlay.
func (c *Canvas) draw(w, h int) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), image.NewUniform(workspaceColor), image.Point{}, draw.Src)
	if w <= 0 || h <= 0 {
		return out
	}
	if size := c.Size(); size.Width > 0 {
		c.scale = float64(w) / float64(size.Width)
	}
	c.state.SetScreenSize(geometry.NewSize(float64(w), float64(h)))

	m := c.state.DocumentToScreenTransform()
	s2d := f64.Aff3{m.A, m.B, m.TX, m.C, m.D, m.TY}
	doc := image.Rectangle{Max: c.state.DocumentSize()}

	xdraw.NearestNeighbor.Transform(out, s2d, image.NewUniform(paperColor), doc, xdraw.Src, nil)
	if img, err := c.state.Composite(); err == nil {
		xdraw.NearestNeighbor.Transform(out, s2d, img, img.Bounds(), xdraw.Over, nil)
	} else {
		c.logger.Warn("composite failed", "error", err)
	}

	c.drawOverlay(out)
	return out
}

func (c *Canvas) drawOverlay(out *image.RGBA) {
	if outline := c.state.SelectionOutline(); len(outline) > 2 {
		drawDashedPath(out, c.state.DocumentPathToScreen(outline), true)
	}
	switch c.drag {
	case dragRect:
		r := geometry.RectFromPoints(c.anchor, c.rubber)
		corners := r.Corners()
		drawDashedPath(out, c.state.DocumentPathToScreen(corners[:]), true)
	case dragLasso:
		drawDashedPath(out, c.state.DocumentPathToScreen(c.lasso), false)
	}
}

// screen converts a widget position to screen pixels.
func (c *Canvas) screen(p fyne.Position) geometry.Point2D {
	return geometry.Point2D{X: float64(p.X) * c.scale, Y: float64(p.Y) * c.scale}
}

func (c *Canvas) doc(p fyne.Position) geometry.Point2D {
	return c.state.ScreenToDocument(c.screen(p))
}

func (c *Canvas) brushSettings() brush.Settings {
	b := c.state.Brush()
	return brush.Settings{
		Size:     b.Size,
		Opacity:  b.Opacity,
		Hardness: b.Hardness,
		Spacing:  b.Spacing,
		Color:    b.Color,
		SizeAt:   b.SizeForPressure,
	}
}

// Dragged implements fyne.Draggable.
func (c *Canvas) Dragged(ev *fyne.DragEvent) {
	pos := c.screen(ev.Position)
	if c.drag == dragNone {
		start := ev.Position.Subtract(ev.Dragged)
		c.last = c.screen(start)
		c.beginDrag(start)
	}

	switch c.drag {
	case dragPan:
		c.state.Pan(pos.Sub(c.last))
	case dragPaint:
		if err := c.painter.To(c.state.ScreenToDocument(pos), 1); err != nil {
			c.logger.Warn("paint failed", "error", err)
		}
		c.Refresh()
	case dragRect:
		c.rubber = c.state.ScreenToDocument(pos)
		c.Refresh()
	case dragLasso:
		c.lasso = append(c.lasso, c.state.ScreenToDocument(pos))
		c.Refresh()
	case dragMove:
		delta := c.state.ScreenToDocument(pos).Sub(c.state.ScreenToDocument(c.last))
		_ = c.state.MoveSelection(delta)
	}
	c.last = pos
}

func (c *Canvas) beginDrag(start fyne.Position) {
	c.drag = dragIgnored
	if c.panMode {
		c.drag = dragPan
		return
	}
	p := c.doc(start)

	switch tool := c.state.Tool(); tool {
	case app.ToolBrush, app.ToolEraser:
		surf, err := c.state.BeginStroke()
		if err != nil {
			c.status(err.Error())
			return
		}
		c.painter = brush.NewPainter(c.state.Backend(), surf, c.brushSettings(), tool == app.ToolEraser)
		if err := c.painter.To(p, 1); err != nil {
			c.logger.Warn("paint failed", "error", err)
		}
		c.drag = dragPaint

	case app.ToolSelectRect, app.ToolSelectLasso:
		if c.state.HasSelection() && geometry.ContainsPoint(c.state.SelectionOutline(), p) {
			if !c.state.IsLifted() {
				if err := c.state.ExtractSelection(); err != nil {
					c.status(err.Error())
					return
				}
			}
			c.drag = dragMove
			return
		}
		if tool == app.ToolSelectRect {
			c.anchor, c.rubber = p, p
			c.drag = dragRect
		} else {
			c.lasso = []geometry.Point2D{p}
			c.drag = dragLasso
		}
	}
}

// DragEnd implements fyne.Draggable.
func (c *Canvas) DragEnd() {
	kind := c.drag
	c.drag = dragNone

	switch kind {
	case dragPaint:
		c.painter = nil
		if err := c.state.EndStroke(); err != nil {
			c.status(err.Error())
		}
	case dragRect:
		if err := c.state.SelectRect(geometry.RectFromPoints(c.anchor, c.rubber)); err != nil {
			c.status(err.Error())
		}
	case dragLasso:
		path := c.lasso
		c.lasso = nil
		if err := c.state.SelectLasso(path); err != nil {
			c.status(err.Error())
		}
	}
	c.Refresh()
}

// Tapped implements fyne.Tappable.
func (c *Canvas) Tapped(ev *fyne.PointEvent) {
	if cv := fyne.CurrentApp().Driver().CanvasForObject(c); cv != nil {
		cv.Focus(c)
	}
	if c.panMode {
		return
	}
	p := c.doc(ev.Position)

	switch c.state.Tool() {
	case app.ToolBrush, app.ToolEraser:
		c.dab(p)
	case app.ToolFill:
		c.fill(p)
	case app.ToolEyedropper:
		if _, err := c.state.PickColor(p); err != nil {
			c.status(err.Error())
		}
	case app.ToolSelectRect, app.ToolSelectLasso:
		if !c.state.HasSelection() || geometry.ContainsPoint(c.state.SelectionOutline(), p) {
			return
		}
		if c.state.IsLifted() {
			_ = c.state.CommitSelection()
		} else {
			_ = c.state.CancelSelection()
		}
	}
}

func (c *Canvas) dab(p geometry.Point2D) {
	surf, err := c.state.BeginStroke()
	if err != nil {
		c.status(err.Error())
		return
	}
	painter := brush.NewPainter(c.state.Backend(), surf, c.brushSettings(), c.state.Tool() == app.ToolEraser)
	if err := painter.To(p, 1); err != nil {
		_ = c.state.CancelStroke()
		return
	}
	_ = c.state.EndStroke()
}

func (c *Canvas) fill(p geometry.Point2D) {
	surf, err := c.state.BeginStroke()
	if err != nil {
		c.status(err.Error())
		return
	}
	seed := image.Pt(int(math.Floor(p.X)), int(math.Floor(p.Y)))
	if err := brush.Fill(c.state.Backend(), surf, seed, c.brushSettings()); err != nil {
		_ = c.state.CancelStroke()
		c.status(err.Error())
		return
	}
	_ = c.state.EndStroke()
}

// Scrolled implements fyne.Scrollable: the wheel zooms around the pointer.
func (c *Canvas) Scrolled(ev *fyne.ScrollEvent) {
	at := c.screen(ev.Position)
	if ev.Scrolled.DY > 0 {
		c.state.ZoomIn(at)
	} else if ev.Scrolled.DY < 0 {
		c.state.ZoomOut(at)
	}
}

// MouseIn implements desktop.Hoverable.
func (c *Canvas) MouseIn(*desktop.MouseEvent) {}

// MouseMoved implements desktop.Hoverable.
func (c *Canvas) MouseMoved(*desktop.MouseEvent) {}

// MouseOut implements desktop.Hoverable.
func (c *Canvas) MouseOut() {}

// FocusGained implements fyne.Focusable.
func (c *Canvas) FocusGained() {}

// FocusLost implements fyne.Focusable.
func (c *Canvas) FocusLost() {}

// TypedRune implements fyne.Focusable.
func (c *Canvas) TypedRune(r rune) {
	switch r {
	case '+', '=':
		c.state.ZoomIn(c.centre())
	case '-':
		c.state.ZoomOut(c.centre())
	case '0':
		c.state.FitToScreen()
	}
}

// TypedKey implements fyne.Focusable: Return commits the selection, Escape
// cancels it and Delete clears the selected pixels.
func (c *Canvas) TypedKey(ev *fyne.KeyEvent) {
	if !c.state.HasSelection() {
		return
	}
	var err error
	switch ev.Name {
	case fyne.KeyReturn, fyne.KeyEnter:
		if c.state.IsLifted() {
			err = c.state.CommitSelection()
		}
	case fyne.KeyEscape:
		err = c.state.CancelSelection()
	case fyne.KeyDelete, fyne.KeyBackspace:
		err = c.state.DeleteSelection()
	}
	if err != nil {
		c.status(err.Error())
	}
}

func (c *Canvas) centre() geometry.Point2D {
	return c.state.ScreenSize().Center()
}
