//go:build !gocv

package raster

// PreferredThumbnailer returns the backend's own thumbnailer. Builds tagged
// gocv use OpenCV instead.
func PreferredThumbnailer(b Backend) Thumbnailer { return b }
