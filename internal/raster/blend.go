package raster

import "math"

// BlendMode specifies how a layer is composited onto the layers beneath it.
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendAdd
)

// BlendModes lists every mode in menu order.
var BlendModes = []BlendMode{BlendNormal, BlendMultiply, BlendScreen, BlendOverlay, BlendAdd}

func (m BlendMode) String() string {
	switch m {
	case BlendNormal:
		return "Normal"
	case BlendMultiply:
		return "Multiply"
	case BlendScreen:
		return "Screen"
	case BlendOverlay:
		return "Overlay"
	case BlendAdd:
		return "Add"
	default:
		return "Unknown"
	}
}

// ParseBlendMode returns the mode whose String matches name.
func ParseBlendMode(name string) (BlendMode, bool) {
	for _, m := range BlendModes {
		if m.String() == name {
			return m, true
		}
	}
	return BlendNormal, false
}

// blendChannel applies the separable blend function to non-premultiplied
// channel values in [0,1]: b is the backdrop, s the source.
func blendChannel(mode BlendMode, b, s float64) float64 {
	switch mode {
	case BlendMultiply:
		return b * s
	case BlendScreen:
		return b + s - b*s
	case BlendOverlay:
		if b <= 0.5 {
			return 2 * b * s
		}
		return 1 - 2*(1-b)*(1-s)
	case BlendAdd:
		return math.Min(1, b+s)
	default:
		return s
	}
}

// blendPixel composites one premultiplied RGBA source pixel over a premultiplied
// backdrop pixel in place. opacity scales the source alpha.
func blendPixel(dst, src []uint8, mode BlendMode, opacity float64) {
	as := float64(src[3]) / 255 * opacity
	if as <= 0 {
		return
	}
	ab := float64(dst[3]) / 255
	ao := as + ab*(1-as)

	for c := 0; c < 3; c++ {
		// Un-premultiply to apply the blend function.
		var cs, cb float64
		if src[3] > 0 {
			cs = float64(src[c]) / float64(src[3])
		}
		if dst[3] > 0 {
			cb = float64(dst[c]) / float64(dst[3])
		}
		mixed := (1-ab)*cs + ab*blendChannel(mode, cb, cs)
		co := as*mixed + (1-as)*ab*cb
		dst[c] = clamp8(co * 255)
	}
	dst[3] = clamp8(ao * 255)
}

func clamp8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
