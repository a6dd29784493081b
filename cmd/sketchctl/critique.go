package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os/signal"
	"syscall"
	"time"

	"sketch-critic/internal/feedback"
	"sketch-critic/internal/gallery"
	"sketch-critic/internal/raster"

	"github.com/spf13/cobra"
)

func newCritiqueCmd(e *env) *cobra.Command {
	var (
		fc      feedback.Context
		save    bool
		title   string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "critique <image>",
		Short: "Ask for a critique of an image file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := raster.Load(args[0])
			if err != nil {
				return err
			}
			critic, err := e.cfg.Critic(feedback.WithLogger(e.logger.Named("feedback")))
			if err != nil {
				return err
			}
			data, err := feedback.EncodePNG(flatten(img))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			e.logger.Debug("requesting critique", "path", args[0], "bytes", len(data))
			text, err := critic.Critique(ctx, data, fc)
			if err != nil {
				return err
			}
			fmt.Fprintln(e.out, text)

			if !save {
				return nil
			}
			store, err := gallery.Open(e.cfg.GalleryDir, e.logger.Named("gallery"))
			if err != nil {
				return err
			}
			d, err := store.Save(title, img, fc)
			if err != nil {
				return err
			}
			if _, err := store.AddFeedback(d.ID, text); err != nil {
				return err
			}
			e.logger.Info("saved to gallery", "id", d.ID, "title", d.Title)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&fc.Style, "style", "", "Drawing style, e.g. \"ink sketch\"")
	f.StringVar(&fc.Subject, "subject", "", "What the drawing shows")
	f.StringVar(&fc.Focus, "focus", "", "What the critique should focus on")
	f.BoolVar(&save, "save", false, "Store the image and critique in the gallery")
	f.StringVar(&title, "title", "", "Gallery title when saving")
	f.DurationVar(&timeout, "timeout", 2*time.Minute, "Give up after this long (0 waits forever)")
	return cmd
}

// flatten puts img on white so transparent areas read as paper.
func flatten(img image.Image) image.Image {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Rect, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, out.Rect, img, b.Min, draw.Over)
	return out
}
