package main

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"

	"sketch-critic/internal/raster"

	"github.com/spf13/cobra"
)

func newThumbnailCmd(e *env) *cobra.Command {
	var size int
	cmd := &cobra.Command{
		Use:   "thumbnail <in> <out.png>",
		Short: "Write a downscaled PNG preview of an image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := raster.Load(args[0])
			if err != nil {
				return err
			}
			b := img.Bounds()
			rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
			draw.Draw(rgba, rgba.Rect, img, b.Min, draw.Src)

			thumbnailer := raster.PreferredThumbnailer(raster.NewSoftware())
			thumb, err := thumbnailer.Thumbnail(raster.NewSnapshot(rgba.Rect.Size(), rgba.Pix), size)
			if err != nil {
				return err
			}

			f, err := os.Create(args[1])
			if err != nil {
				return err
			}
			if err := png.Encode(f, thumb); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			ts := thumb.Bounds().Size()
			fmt.Fprintf(e.out, "%s: %dx%d\n", args[1], ts.X, ts.Y)
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "size", raster.DefaultThumbnailSize, "Longest edge in pixels")
	return cmd
}
