package app

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"math"

	"sketch-critic/internal/feedback"
	"sketch-critic/internal/raster"
	"sketch-critic/pkg/geometry"
)

// Composite flattens the visible layers onto a transparent image.
func (s *State) Composite() (image.Image, error) {
	var img image.Image
	err := s.update("composite", func() error {
		var err error
		img, err = s.compositeLocked()
		return err
	})
	return img, err
}

// ExportImage flattens the visible layers onto the background color.
func (s *State) ExportImage() (image.Image, error) {
	var img image.Image
	err := s.update("export", func() error {
		var err error
		img, err = s.exportLocked()
		return err
	})
	return img, err
}

func (s *State) compositeLocked() (image.Image, error) {
	ls := s.layers.Layers()
	in := make([]raster.CompositeLayer, 0, len(ls))
	for _, l := range ls {
		in = append(in, raster.CompositeLayer{
			Surface: l.Texture,
			Opacity: l.Opacity,
			Blend:   l.Blend,
			Visible: l.Visible,
		})
	}
	return s.backend.Composite(in, s.docSize.X, s.docSize.Y)
}

func (s *State) exportLocked() (image.Image, error) {
	img, err := s.compositeLocked()
	if err != nil || s.background == nil {
		return img, err
	}
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), image.NewUniform(s.background), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Over)
	return out, nil
}

// PickColor sets the brush color to the composited color at a document
// point. Transparent pixels pick the background color.
func (s *State) PickColor(p geometry.Point2D) (color.NRGBA, error) {
	var picked color.NRGBA
	err := s.update("pick color", func() error {
		x, y := int(math.Floor(p.X)), int(math.Floor(p.Y))
		if !image.Pt(x, y).In(image.Rectangle{Max: s.docSize}) {
			return ErrOutOfBounds
		}
		img, err := s.exportLocked()
		if err != nil {
			return err
		}
		picked = color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
		picked.A = 0xff
		s.brush.Color = picked
		s.queue(EventBrushChanged, s.brush)
		return nil
	})
	return picked, err
}

// Feedback returns the latest critique text.
func (s *State) Feedback() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feedback
}

// FeedbackPending reports whether a critique request is in flight.
func (s *State) FeedbackPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feedbackPending
}

// RequestFeedback exports the drawing and asks critic for a critique. The
// lock is not held while waiting, so the canvas stays usable; the drawing
// sent is the one at the time of the call. The stored critique only changes
// on success.
func (s *State) RequestFeedback(ctx context.Context, critic feedback.Critic, fc feedback.Context) (string, error) {
	var img image.Image
	err := s.update("request feedback", func() error {
		if s.feedbackPending {
			return ErrFeedbackPending
		}
		var err error
		if img, err = s.exportLocked(); err != nil {
			return err
		}
		s.feedbackPending = true
		s.queue(EventFeedbackPending, true)
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("requesting feedback", "style", fc.Style, "subject", fc.Subject)
	text, err := critique(ctx, critic, img, fc)

	s.mu.Lock()
	s.feedbackPending = false
	s.queue(EventFeedbackPending, false)
	if err != nil {
		s.failLocked("request feedback", err)
	} else {
		s.feedback = text
		s.lastErr = nil
		s.queue(EventFeedbackReceived, text)
	}
	events := s.takePending()
	s.mu.Unlock()

	s.dispatch(events)
	return text, err
}

func critique(ctx context.Context, critic feedback.Critic, img image.Image, fc feedback.Context) (string, error) {
	if critic == nil {
		return "", &feedback.Error{Kind: feedback.KindMissingCredentials}
	}
	data, err := feedback.EncodePNG(img)
	if err != nil {
		return "", err
	}
	return critic.Critique(ctx, data, fc)
}

// fitRect centres a rectangle of size src inside dst, scaled down to fit
// while keeping its aspect ratio. Images that already fit keep their size.
func fitRect(src, dst image.Point) geometry.Rect {
	scale := math.Min(1, math.Min(float64(dst.X)/float64(src.X), float64(dst.Y)/float64(src.Y)))
	w, h := math.Round(float64(src.X)*scale), math.Round(float64(src.Y)*scale)
	return geometry.NewRect(math.Floor((float64(dst.X)-w)/2), math.Floor((float64(dst.Y)-h)/2), w, h)
}
