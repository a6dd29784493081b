//go:build gocv

package raster

import (
	"image"

	"gocv.io/x/gocv"
)

// CVThumbnailer downsizes snapshots with OpenCV area interpolation, which
// avoids the moiré that kernel resamplers leave on hatching at large ratios.
// Build with -tags gocv to enable it.
type CVThumbnailer struct{}

var _ Thumbnailer = CVThumbnailer{}

// Thumbnail implements Thumbnailer.
func (CVThumbnailer) Thumbnail(snap Snapshot, maxDim int) (image.Image, error) {
	size := snap.Size()
	if snap.IsZero() || snap.Len() != size.X*size.Y*4 {
		return nil, ErrSnapshotMismatch
	}

	mat, err := gocv.NewMatFromBytes(size.Y, size.X, gocv.MatTypeCV8UC4, snap.Bytes())
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	target := ThumbnailSize(size, maxDim)
	small := gocv.NewMat()
	defer small.Close()
	gocv.Resize(mat, &small, target, 0, 0, gocv.InterpolationArea)

	out := image.NewRGBA(image.Rect(0, 0, target.X, target.Y))
	copy(out.Pix, small.ToBytes())
	return out, nil
}

// PreferredThumbnailer returns the OpenCV thumbnailer.
func PreferredThumbnailer(Backend) Thumbnailer { return CVThumbnailer{} }
