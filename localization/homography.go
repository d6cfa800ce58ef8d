// Package localization turns camera-plane points from LH2 sweeps into
// positions on a calibrated reference plane.
package localization

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// Point is a 2D point on the camera or reference plane.
type Point [2]float64

var errDegenerate = errors.New("localization: degenerate point configuration")

// Homography estimates the 3x3 projective transform mapping src
// points onto dst points with a direct linear transform, solved as
// the smallest right singular vector of the stacked constraint
// matrix. At least 4 correspondences are required.
func Homography(src, dst []Point) (*mat.Dense, error) {
	if len(src) != len(dst) || len(src) < 4 {
		return nil, errors.New("localization: homography needs at least 4 point pairs")
	}

	a := mat.NewDense(2*len(src), 9, nil)
	for i := range src {
		x, y := src[i][0], src[i][1]
		u, v := dst[i][0], dst[i][1]
		a.SetRow(2*i, []float64{-x, -y, -1, 0, 0, 0, u * x, u * y, u})
		a.SetRow(2*i+1, []float64{0, 0, 0, -x, -y, -1, v * x, v * y, v})
	}

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDFull) {
		return nil, errors.New("localization: SVD of homography system failed")
	}
	var v mat.Dense
	svd.VTo(&v)

	h := mat.NewDense(3, 3, nil)
	for i := 0; i < 9; i++ {
		h.Set(i/3, i%3, v.At(i, 8))
	}
	if scale := h.At(2, 2); scale != 0 {
		h.Scale(1/scale, h)
	}
	return h, nil
}

// PerspectiveTransform maps pt through the homography m.
func PerspectiveTransform(m mat.Matrix, pt Point) Point {
	x, y := pt[0], pt[1]
	w := m.At(2, 0)*x + m.At(2, 1)*y + m.At(2, 2)
	return Point{
		(m.At(0, 0)*x + m.At(0, 1)*y + m.At(0, 2)) / w,
		(m.At(1, 0)*x + m.At(1, 1)*y + m.At(1, 2)) / w,
	}
}
