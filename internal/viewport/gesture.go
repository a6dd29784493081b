package viewport

import (
	"fmt"
	"math"

	"sketch-critic/pkg/geometry"

	"gonum.org/v1/gonum/mat"
)

// Pinch is the similarity transform (uniform scale, rotation, translation)
// that best maps a set of starting touch points onto their current positions.
type Pinch struct {
	Scale       float64
	Rotation    float64 // degrees
	Translation geometry.Point2D
}

// FitPinch computes the least-squares similarity transform mapping from onto to.
// Two touches determine it exactly; more are fitted in the least-squares sense.
func FitPinch(from, to []geometry.Point2D) (Pinch, error) {
	n := len(from)
	if n != len(to) {
		return Pinch{}, fmt.Errorf("touch count mismatch: %d vs %d", n, len(to))
	}
	if n < 2 {
		return Pinch{}, fmt.Errorf("need at least 2 touches, got %d", n)
	}

	// x' = a*x - b*y + tx
	// y' = b*x + a*y + ty
	A := mat.NewDense(n*2, 4, nil)
	B := mat.NewVecDense(n*2, nil)
	for i := 0; i < n; i++ {
		x, y := from[i].X, from[i].Y
		A.Set(i*2, 0, x)
		A.Set(i*2, 1, -y)
		A.Set(i*2, 2, 1)
		B.SetVec(i*2, to[i].X)

		A.Set(i*2+1, 0, y)
		A.Set(i*2+1, 1, x)
		A.Set(i*2+1, 3, 1)
		B.SetVec(i*2+1, to[i].Y)
	}

	var qr mat.QR
	qr.Factorize(A)

	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, B); err != nil {
		return Pinch{}, fmt.Errorf("degenerate touches: %w", err)
	}

	a, b := params.AtVec(0), params.AtVec(1)
	scale := math.Hypot(a, b)
	if scale < 1e-9 || math.IsNaN(scale) {
		return Pinch{}, fmt.Errorf("degenerate touches")
	}
	return Pinch{
		Scale:       scale,
		Rotation:    math.Atan2(b, a) * 180 / math.Pi,
		Translation: geometry.Point2D{X: params.AtVec(2), Y: params.AtVec(3)},
	}, nil
}

// ApplyPinch sets the view to start composed with the gesture from→to: the
// scale is multiplied (and clamped), the rotation added (and optionally
// snapped), and the pan chosen so the document point under the starting touch
// centroid sits under the current centroid.
func (t *Transformer) ApplyPinch(start View, from, to []geometry.Point2D, snap bool) error {
	p, err := FitPinch(from, to)
	if err != nil {
		return err
	}

	t.SetView(start)
	anchor := t.ScreenToDocument(geometry.Centroid(from))

	t.view.Scale = ClampZoom(start.Scale * p.Scale)
	if math.Abs(p.Rotation) >= MinRotationDelta {
		r := NormalizeDegrees(start.Rotation + p.Rotation)
		if snap {
			r = SnapDegrees(r)
		}
		t.view.Rotation = r
	}
	t.anchor(anchor, geometry.Centroid(to))
	return nil
}
