package raster

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// DefaultThumbnailSize is the longest edge of layer panel previews.
const DefaultThumbnailSize = 128

// SnapshotImage rebuilds an RGBA image from a snapshot produced by a backend
// that stores RGBA rows (the software backend does).
func SnapshotImage(snap Snapshot) (*image.RGBA, error) {
	size := snap.Size()
	if snap.IsZero() || size.X <= 0 || size.Y <= 0 || snap.Len() != size.X*size.Y*4 {
		return nil, ErrSnapshotMismatch
	}
	return &image.RGBA{
		Pix:    snap.Bytes(),
		Stride: size.X * 4,
		Rect:   image.Rect(0, 0, size.X, size.Y),
	}, nil
}

// ThumbnailSize returns the size that fits src inside a maxDim square while
// keeping its aspect ratio. Neither edge is smaller than one pixel.
func ThumbnailSize(src image.Point, maxDim int) image.Point {
	if maxDim <= 0 {
		maxDim = DefaultThumbnailSize
	}
	if src.X <= maxDim && src.Y <= maxDim {
		return src
	}
	w, h := maxDim, maxDim
	if src.X > src.Y {
		h = src.Y * maxDim / src.X
	} else {
		w = src.X * maxDim / src.Y
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return image.Pt(w, h)
}

// ScaleSnapshot downscales a snapshot to fit maxDim using interp.
// It reads the snapshot without modifying it, so it is safe off the owner goroutine.
func ScaleSnapshot(snap Snapshot, maxDim int, interp xdraw.Interpolator) (image.Image, error) {
	src, err := SnapshotImage(snap)
	if err != nil {
		return nil, err
	}
	return ScaleImage(src, maxDim, interp), nil
}

// ScaleImage downscales img to fit maxDim.
func ScaleImage(img image.Image, maxDim int, interp xdraw.Interpolator) image.Image {
	size := ThumbnailSize(img.Bounds().Size(), maxDim)
	dst := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	interp.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
