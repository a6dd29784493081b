// Package colorutil provides brush color helpers: the swatch palette, hex
// notation and HSV conversion.
package colorutil

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Swatch colors offered next to the brush color picker.
var (
	Black   = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	White   = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	Red     = color.NRGBA{R: 220, G: 40, B: 40, A: 255}
	Orange  = color.NRGBA{R: 240, G: 140, B: 30, A: 255}
	Yellow  = color.NRGBA{R: 250, G: 215, B: 40, A: 255}
	Green   = color.NRGBA{R: 50, G: 160, B: 70, A: 255}
	Blue    = color.NRGBA{R: 40, G: 90, B: 210, A: 255}
	Magenta = color.NRGBA{R: 200, G: 50, B: 170, A: 255}
)

// Palette lists the swatches in display order.
var Palette = []color.NRGBA{Black, White, Red, Orange, Yellow, Green, Blue, Magenta}

var ErrBadHex = errors.New("invalid hex color")

// ParseHex parses #RGB, #RRGGBB or #RRGGBBAA, with or without the '#'.
func ParseHex(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]}) + "ff"
	case 6:
		s += "ff"
	case 8:
	default:
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrBadHex, s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrBadHex, s)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// Hex formats c as #RRGGBB, or #RRGGBBAA when it is not opaque.
func Hex(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A)
}

// RGBToHSV converts RGB (0-255) to HSV with H in [0,360) and S, V in [0,1].
func RGBToHSV(r, g, b float64) (h, s, v float64) {
	r /= 255.0
	g /= 255.0
	b /= 255.0

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	diff := maxC - minC

	v = maxC
	if maxC > 0 {
		s = diff / maxC
	}

	switch {
	case diff == 0:
		h = 0
	case maxC == r:
		h = 60 * math.Mod((g-b)/diff, 6)
	case maxC == g:
		h = 60 * ((b-r)/diff + 2)
	default:
		h = 60 * ((r-g)/diff + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}

// HSVToRGB is the inverse of RGBToHSV. Out-of-range inputs are wrapped (hue)
// or clamped (saturation, value).
func HSVToRGB(h, s, v float64) (r, g, b uint8) {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	s = math.Max(0, math.Min(1, s))
	v = math.Max(0, math.Min(1, v))

	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var rf, gf, bf float64
	switch {
	case h < 60:
		rf, gf, bf = c, x, 0
	case h < 120:
		rf, gf, bf = x, c, 0
	case h < 180:
		rf, gf, bf = 0, c, x
	case h < 240:
		rf, gf, bf = 0, x, c
	case h < 300:
		rf, gf, bf = x, 0, c
	default:
		rf, gf, bf = c, 0, x
	}
	return to8(rf + m), to8(gf + m), to8(bf + m)
}

func to8(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// WithValue returns c with its HSV value replaced, keeping hue, saturation
// and alpha. The brush panel uses it for the lightness slider.
func WithValue(c color.NRGBA, v float64) color.NRGBA {
	h, s, _ := RGBToHSV(float64(c.R), float64(c.G), float64(c.B))
	r, g, b := HSVToRGB(h, s, v)
	return color.NRGBA{R: r, G: g, B: b, A: c.A}
}
