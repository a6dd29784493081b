package canvas

import (
	"image"
	"image/color"
	"math"

	"sketch-critic/pkg/geometry"
)

// dashLength is the length in pixels of each marching-ants dash.
const dashLength = 4

var (
	dashLight = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	dashDark  = color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff}
)

// drawDashedPath draws a path in alternating light and dark dashes so it
// stays visible on any background.
func drawDashedPath(out *image.RGBA, pts []geometry.Point2D, closed bool) {
	if len(pts) < 2 {
		return
	}
	n := len(pts) - 1
	if closed {
		n = len(pts)
	}
	step := 0
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%len(pts)]
		step = drawLine(out, round(a.X), round(a.Y), round(b.X), round(b.Y), step)
	}
}

func round(v float64) int { return int(math.Round(v)) }

// drawLine draws a one-pixel line between two points using Bresenham's
// algorithm. step carries the dash phase across segments.
func drawLine(out *image.RGBA, x1, y1, x2, y2, step int) int {
	bounds := out.Bounds()

	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy
	for {
		if image.Pt(x1, y1).In(bounds) {
			col := dashLight
			if (step/dashLength)%2 == 1 {
				col = dashDark
			}
			out.SetRGBA(x1, y1, col)
		}
		step++

		if x1 == x2 && y1 == y2 {
			return step
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}
