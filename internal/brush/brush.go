// Package brush turns pointer input into pixels on a layer texture: spaced
// brush dabs, the eraser and flood fill, all through a raster.Backend.
package brush

import (
	"errors"
	"image"
	"image/color"
	"math"

	"sketch-critic/internal/raster"
	"sketch-critic/pkg/geometry"
)

// FillTolerance is the per-channel difference flood fill still treats as the
// same color.
const FillTolerance = 32

// circleSegments is the polygon resolution of eraser dabs.
const circleSegments = 24

var ErrOutside = errors.New("point is outside the surface")

// Settings is the subset of brush configuration the painter needs.
type Settings struct {
	Size     float64
	Opacity  float64
	Hardness float64
	Spacing  float64
	Color    color.NRGBA
	// SizeAt maps stylus pressure to a diameter. Nil means Size.
	SizeAt func(pressure float64) float64
}

func (s Settings) size(pressure float64) float64 {
	if s.SizeAt != nil {
		return s.SizeAt(pressure)
	}
	return s.Size
}

// step is the distance between dab centres.
func (s Settings) step() float64 {
	return math.Max(1, s.Size*s.Spacing)
}

// Dab renders one brush stamp: a disc of the given diameter whose edge fades
// out over the outer (1-hardness) of its radius.
func Dab(diameter, hardness, opacity float64, c color.NRGBA) *image.NRGBA {
	n := int(math.Ceil(diameter))
	if n < 1 {
		n = 1
	}
	img := image.NewNRGBA(image.Rect(0, 0, n, n))
	radius := diameter / 2
	inner := radius * math.Max(0, math.Min(1, hardness))
	centre := float64(n) / 2
	base := float64(c.A) * math.Max(0, math.Min(1, opacity))

	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			r := math.Hypot(float64(x)+0.5-centre, float64(y)+0.5-centre)
			var f float64
			switch {
			case r <= inner:
				f = 1
			case r >= radius:
				f = 0
			default:
				f = 1 - (r-inner)/(radius-inner)
			}
			if f == 0 {
				continue
			}
			img.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(base * f))})
		}
	}
	return img
}

// Spacer places dabs at even intervals along a polyline.
type Spacer struct {
	Step float64

	last    geometry.Point2D
	started bool
	since   float64 // distance travelled since the last dab
}

// To extends the line to p and returns the dab centres it crosses. The first
// point always gets a dab.
func (s *Spacer) To(p geometry.Point2D) []geometry.Point2D {
	if !s.started {
		s.started = true
		s.last = p
		s.since = 0
		return []geometry.Point2D{p}
	}
	step := math.Max(s.Step, 0.5)
	d := s.last.Distance(p)
	if d == 0 {
		return nil
	}

	var out []geometry.Point2D
	lastAt := -1.0
	for t := step - s.since; t <= d; t += step {
		f := t / d
		out = append(out, geometry.Point2D{
			X: s.last.X + (p.X-s.last.X)*f,
			Y: s.last.Y + (p.Y-s.last.Y)*f,
		})
		lastAt = t
	}
	if lastAt >= 0 {
		s.since = d - lastAt
	} else {
		s.since += d
	}
	s.last = p
	return out
}

// Reset forgets the line so the next point starts a new one.
func (s *Spacer) Reset() { *s = Spacer{Step: s.Step} }

// Painter draws one stroke onto a surface.
type Painter struct {
	backend  raster.Backend
	surface  raster.Surface
	settings Settings
	erase    bool
	spacer   Spacer
	dabs     map[int]*image.NRGBA
}

// NewPainter starts a stroke. With erase set, dabs clear pixels instead of
// painting them.
func NewPainter(b raster.Backend, s raster.Surface, settings Settings, erase bool) *Painter {
	return &Painter{
		backend:  b,
		surface:  s,
		settings: settings,
		erase:    erase,
		spacer:   Spacer{Step: settings.step()},
		dabs:     make(map[int]*image.NRGBA),
	}
}

// To continues the stroke to a document point.
func (p *Painter) To(pt geometry.Point2D, pressure float64) error {
	for _, c := range p.spacer.To(pt) {
		if err := p.stamp(c, p.settings.size(pressure)); err != nil {
			return err
		}
	}
	return nil
}

func (p *Painter) stamp(c geometry.Point2D, diameter float64) error {
	if p.erase {
		err := p.backend.ClearPolygon(p.surface, Circle(c, diameter/2, circleSegments))
		if errors.Is(err, raster.ErrEmptyRegion) {
			return nil
		}
		return err
	}
	key := int(math.Round(diameter * 4))
	dab, ok := p.dabs[key]
	if !ok {
		dab = Dab(diameter, p.settings.Hardness, p.settings.Opacity, p.settings.Color)
		p.dabs[key] = dab
	}
	n := float64(dab.Rect.Dx())
	return p.backend.DrawImage(p.surface, dab, geometry.NewRect(c.X-n/2, c.Y-n/2, n, n), 0)
}

// Circle approximates a circle as a polygon.
func Circle(c geometry.Point2D, radius float64, segments int) []geometry.Point2D {
	if segments < 3 {
		segments = 3
	}
	pts := make([]geometry.Point2D, segments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(segments)
		pts[i] = geometry.Point2D{X: c.X + radius*math.Cos(a), Y: c.Y + radius*math.Sin(a)}
	}
	return pts
}

// FloodMask returns the 4-connected region around seed whose pixels are within
// tolerance of the seed's color on every channel.
func FloodMask(img *image.RGBA, seed image.Point, tolerance uint8) (*image.Alpha, error) {
	b := img.Bounds()
	if !seed.In(b) {
		return nil, ErrOutside
	}
	mask := image.NewAlpha(b)
	target := img.RGBAAt(seed.X, seed.Y)
	match := func(x, y int) bool {
		if mask.AlphaAt(x, y).A != 0 {
			return false
		}
		c := img.RGBAAt(x, y)
		return near(c.R, target.R, tolerance) && near(c.G, target.G, tolerance) &&
			near(c.B, target.B, tolerance) && near(c.A, target.A, tolerance)
	}

	stack := []image.Point{seed}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !match(p.X, p.Y) {
			continue
		}
		// Scan the run containing p, then queue the rows above and below.
		x0 := p.X
		for x0 > b.Min.X && match(x0-1, p.Y) {
			x0--
		}
		x1 := p.X
		for x1+1 < b.Max.X && match(x1+1, p.Y) {
			x1++
		}
		for x := x0; x <= x1; x++ {
			mask.SetAlpha(x, p.Y, color.Alpha{A: 0xff})
			if p.Y > b.Min.Y {
				stack = append(stack, image.Pt(x, p.Y-1))
			}
			if p.Y+1 < b.Max.Y {
				stack = append(stack, image.Pt(x, p.Y+1))
			}
		}
	}
	return mask, nil
}

func near(a, b, tol uint8) bool {
	if a > b {
		return a-b <= tol
	}
	return b-a <= tol
}

// Fill floods the region of surface around seed with the brush color.
func Fill(b raster.Backend, s raster.Surface, seed image.Point, settings Settings) error {
	snap, err := b.Snapshot(s)
	if err != nil {
		return err
	}
	img, err := raster.SnapshotImage(snap)
	if err != nil {
		return err
	}
	mask, err := FloodMask(img, seed, FillTolerance)
	if err != nil {
		return err
	}

	a := uint8(math.Round(float64(settings.Color.A) * math.Max(0, math.Min(1, settings.Opacity))))
	c := settings.Color
	c.A = a
	fill := image.NewNRGBA(mask.Rect)
	for y := mask.Rect.Min.Y; y < mask.Rect.Max.Y; y++ {
		for x := mask.Rect.Min.X; x < mask.Rect.Max.X; x++ {
			if mask.AlphaAt(x, y).A != 0 {
				fill.SetNRGBA(x, y, c)
			}
		}
	}
	size := mask.Rect.Size()
	return b.DrawImage(s, fill, geometry.NewRect(0, 0, float64(size.X), float64(size.Y)), 0)
}
