package raster

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	"sketch-critic/pkg/geometry"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"
)

// softSurface is a CPU-resident RGBA surface.
type softSurface struct {
	img   *image.RGBA
	owner *Software
}

func (s *softSurface) Size() image.Point { return s.img.Rect.Size() }

// Software is a Backend that keeps every surface in memory as *image.RGBA.
// Scaled and rotated draws use golang.org/x/image/draw; lasso masks are
// rasterized with golang.org/x/image/vector.
type Software struct {
	// Interpolator is used for scaled or rotated draws. Defaults to ApproxBiLinear,
	// which is cheap enough for per-frame selection previews.
	Interpolator xdraw.Interpolator
	// ThumbnailInterpolator is used when downscaling thumbnails.
	ThumbnailInterpolator xdraw.Interpolator
}

var _ Backend = (*Software)(nil)

// NewSoftware creates a software backend with default interpolators.
func NewSoftware() *Software {
	return &Software{
		Interpolator:          xdraw.ApproxBiLinear,
		ThumbnailInterpolator: xdraw.CatmullRom,
	}
}

// SurfaceImage returns the pixels behind a surface allocated by a Software backend.
func SurfaceImage(s Surface) (*image.RGBA, bool) {
	ss, ok := s.(*softSurface)
	if !ok || ss.img == nil {
		return nil, false
	}
	return ss.img, true
}

func (b *Software) surface(s Surface) (*softSurface, error) {
	ss, ok := s.(*softSurface)
	if !ok || ss.owner != b || ss.img == nil {
		return nil, ErrForeignSurface
	}
	return ss, nil
}

// Allocate creates a transparent surface.
func (b *Software) Allocate(width, height int) (Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return &softSurface{img: image.NewRGBA(image.Rect(0, 0, width, height)), owner: b}, nil
}

// Free releases a surface. Freeing twice is harmless.
func (b *Software) Free(s Surface) {
	if ss, err := b.surface(s); err == nil {
		ss.img = nil
	}
}

// Snapshot copies the surface pixels.
func (b *Software) Snapshot(s Surface) (Snapshot, error) {
	ss, err := b.surface(s)
	if err != nil {
		return Snapshot{}, err
	}
	data := make([]byte, len(ss.img.Pix))
	copy(data, ss.img.Pix)
	return NewSnapshot(ss.img.Rect.Size(), data), nil
}

// Restore overwrites the surface with a snapshot of the same size.
func (b *Software) Restore(s Surface, snap Snapshot) error {
	ss, err := b.surface(s)
	if err != nil {
		return err
	}
	if snap.IsZero() || snap.Size() != ss.img.Rect.Size() || snap.Len() != len(ss.img.Pix) {
		return ErrSnapshotMismatch
	}
	copy(ss.img.Pix, snap.Bytes())
	return nil
}

// ClearRect makes every pixel in r transparent.
func (b *Software) ClearRect(s Surface, r image.Rectangle) error {
	ss, err := b.surface(s)
	if err != nil {
		return err
	}
	r = r.Intersect(ss.img.Rect)
	if r.Empty() {
		return ErrEmptyRegion
	}
	draw.Draw(ss.img, r, image.Transparent, image.Point{}, draw.Src)
	return nil
}

// ClearPolygon makes the pixels inside the closed polygon transparent,
// with anti-aliased edges.
func (b *Software) ClearPolygon(s Surface, pts []geometry.Point2D) error {
	ss, err := b.surface(s)
	if err != nil {
		return err
	}
	bounds, mask, err := polygonMask(ss.img.Rect, pts)
	if err != nil {
		return err
	}
	eraseMasked(ss.img, bounds, mask)
	return nil
}

// ExtractRect copies the pixels in r into a new image whose origin is (0,0).
func (b *Software) ExtractRect(s Surface, r image.Rectangle) (image.Image, error) {
	ss, err := b.surface(s)
	if err != nil {
		return nil, err
	}
	r = r.Intersect(ss.img.Rect)
	if r.Empty() {
		return nil, ErrEmptyRegion
	}
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), ss.img, r.Min, draw.Src)
	return out, nil
}

// ExtractPolygon copies the pixels inside the polygon into a new image sized
// to the polygon's bounding box; pixels outside the polygon are transparent.
func (b *Software) ExtractPolygon(s Surface, pts []geometry.Point2D) (image.Image, error) {
	ss, err := b.surface(s)
	if err != nil {
		return nil, err
	}
	bounds, mask, err := polygonMask(ss.img.Rect, pts)
	if err != nil {
		return nil, err
	}
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.DrawMask(out, out.Bounds(), ss.img, bounds.Min, mask, image.Point{}, draw.Src)
	return out, nil
}

// DrawImage composites img over the surface, scaled into dst and rotated
// about the centre of dst.
func (b *Software) DrawImage(s Surface, img image.Image, dst geometry.Rect, rotation float64) error {
	ss, err := b.surface(s)
	if err != nil {
		return err
	}
	if img == nil || dst.IsEmpty() {
		return ErrEmptyRegion
	}
	src := img.Bounds()
	if src.Empty() {
		return ErrEmptyRegion
	}

	// Integer placement at natural size needs no resampling.
	if rotation == 0 && isIntegral(dst.X) && isIntegral(dst.Y) &&
		dst.Width == float64(src.Dx()) && dst.Height == float64(src.Dy()) {
		at := image.Pt(int(dst.X), int(dst.Y))
		draw.Draw(ss.img, image.Rectangle{Min: at, Max: at.Add(src.Size())}, img, src.Min, draw.Over)
		return nil
	}

	m := placementTransform(src, dst, rotation)
	interp := b.Interpolator
	if interp == nil {
		interp = xdraw.ApproxBiLinear
	}
	interp.Transform(ss.img, f64.Aff3{m.A, m.B, m.TX, m.C, m.D, m.TY}, img, src, draw.Over, nil)
	return nil
}

// Composite flattens the visible layers onto a transparent image, applying
// each layer's opacity and blend mode.
func (b *Software) Composite(layers []CompositeLayer, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	for _, cl := range layers {
		if !cl.Visible || cl.Opacity <= 0 || cl.Surface == nil {
			continue
		}
		ss, err := b.surface(cl.Surface)
		if err != nil {
			return nil, err
		}
		compositeInto(out, ss.img, cl.Blend, math.Min(cl.Opacity, 1))
	}
	return out, nil
}

// Thumbnail decodes a snapshot and scales it to fit maxDim.
func (b *Software) Thumbnail(snap Snapshot, maxDim int) (image.Image, error) {
	interp := b.ThumbnailInterpolator
	if interp == nil {
		interp = xdraw.CatmullRom
	}
	return ScaleSnapshot(snap, maxDim, interp)
}

// compositeInto blends src over dst where both share the same origin.
func compositeInto(dst, src *image.RGBA, mode BlendMode, opacity float64) {
	r := dst.Rect.Intersect(src.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		di := dst.PixOffset(r.Min.X, y)
		si := src.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			if src.Pix[si+3] != 0 {
				blendPixel(dst.Pix[di:di+4], src.Pix[si:si+4], mode, opacity)
			}
			di += 4
			si += 4
		}
	}
}

// eraseMasked scales every pixel in r by the inverse of the mask coverage
// (destination-out), leaving pixels outside the mask untouched.
func eraseMasked(dst *image.RGBA, r image.Rectangle, mask *image.Alpha) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		di := dst.PixOffset(r.Min.X, y)
		mi := mask.PixOffset(0, y-r.Min.Y)
		for x := r.Min.X; x < r.Max.X; x++ {
			switch m := mask.Pix[mi]; m {
			case 0:
			case 0xff:
				dst.Pix[di+0], dst.Pix[di+1], dst.Pix[di+2], dst.Pix[di+3] = 0, 0, 0, 0
			default:
				keep := uint32(0xff - m)
				for c := 0; c < 4; c++ {
					dst.Pix[di+c] = uint8((uint32(dst.Pix[di+c])*keep + 0x7f) / 0xff)
				}
			}
			di += 4
			mi++
		}
	}
}

// placementTransform maps src pixel space onto dst, scaling to fit and
// rotating by degrees about the centre of dst.
func placementTransform(src image.Rectangle, dst geometry.Rect, degrees float64) geometry.AffineTransform {
	sx := dst.Width / float64(src.Dx())
	sy := dst.Height / float64(src.Dy())
	c := dst.Center()
	return geometry.Translation(c.X, c.Y).
		Compose(geometry.Rotation(degrees * math.Pi / 180)).
		Compose(geometry.Translation(-dst.Width/2, -dst.Height/2)).
		Compose(geometry.Scale(sx, sy)).
		Compose(geometry.Translation(-float64(src.Min.X), -float64(src.Min.Y)))
}

// polygonMask rasterizes a closed polygon clipped to bounds. The returned mask
// has its origin at the top-left of the returned rectangle.
func polygonMask(bounds image.Rectangle, pts []geometry.Point2D) (image.Rectangle, *image.Alpha, error) {
	if geometry.IsDegenerate(pts) {
		return image.Rectangle{}, nil, ErrEmptyRegion
	}
	r := geometry.BoundingBox(pts).ImageRect().Intersect(bounds)
	if r.Empty() {
		return image.Rectangle{}, nil, ErrEmptyRegion
	}

	z := vector.NewRasterizer(r.Dx(), r.Dy())
	ox, oy := float64(r.Min.X), float64(r.Min.Y)
	z.MoveTo(float32(pts[0].X-ox), float32(pts[0].Y-oy))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X-ox), float32(p.Y-oy))
	}
	z.ClosePath()

	mask := image.NewAlpha(image.Rect(0, 0, r.Dx(), r.Dy()))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return r, mask, nil
}

func isIntegral(v float64) bool {
	return v == math.Trunc(v)
}
