package stem

import (
	"errors"
	"math"

	"gonum.org/v2/gonum/mat"
)

// ErrSingularMatrix is returned when a 4x4 transform cannot be inverted,
// which should only happen for a degenerate accumulated transform.
var ErrSingularMatrix = errors.New("stem: singular transform matrix")

// Invert4 inverts a 4x4 homogeneous transform using gonum's dense LU
// solve, matching the teacher's InvertMatrix contract but generalized
// from 2D affine to 3D homogeneous matrices.
func Invert4(m Transform4) (Transform4, error) {
	d := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			d.Set(i, j, m[i][j])
		}
	}
	var inv mat.Dense
	if err := inv.Inverse(d); err != nil {
		return Transform4{}, ErrSingularMatrix
	}
	var out Transform4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i][j] = inv.At(i, j)
		}
	}
	return out, nil
}

// distance returns the Euclidean distance between two stems' coordinates.
func distance(a, b Stem) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// centroid returns the average position of a StemGroup, mirroring the
// upstream GetCentroid helper.
func centroid(g StemGroup) [3]float64 {
	var c [3]float64
	for _, s := range g {
		c[0] += s.X
		c[1] += s.Y
		c[2] += s.Z
	}
	n := float64(len(g))
	c[0] /= n
	c[1] /= n
	c[2] /= n
	return c
}

// covariance3 builds the standard 3x3 point-cloud covariance matrix of a
// triplet's three stems: mean-center each axis over the three points,
// then accumulate the per-axis outer product. This is the corrected
// reading of the descriptor (see the open-question note in DESIGN.md):
// the covariance couples axes against each other, not triplet members
// against each other.
func covariance3(g StemGroup) *mat.Dense {
	pts := make([][3]float64, len(g))
	var mean [3]float64
	for i, s := range g {
		pts[i] = [3]float64{s.X, s.Y, s.Z}
		mean[0] += s.X
		mean[1] += s.Y
		mean[2] += s.Z
	}
	n := float64(len(g))
	mean[0] /= n
	mean[1] /= n
	mean[2] /= n

	cov := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var sum float64
			for _, p := range pts {
				sum += (p[i] - mean[i]) * (p[j] - mean[j])
			}
			cov.Set(i, j, sum)
		}
	}
	return cov
}

// eigenvaluesAscending returns the real parts of the eigenvalues of a
// symmetric 3x3 matrix, sorted ascending.
func eigenvaluesAscending(m *mat.Dense) [3]float64 {
	sym := mat.NewSymDense(3, nil)
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			sym.SetSym(i, j, m.At(i, j))
		}
	}
	var eig mat.EigenSym
	if ok := eig.Factorize(sym, false); !ok {
		return [3]float64{0, 0, 0}
	}
	vals := eig.Values(nil)
	// gonum returns ascending already for EigenSym, but sort defensively.
	if vals[0] > vals[1] {
		vals[0], vals[1] = vals[1], vals[0]
	}
	if vals[1] > vals[2] {
		vals[1], vals[2] = vals[2], vals[1]
	}
	if vals[0] > vals[1] {
		vals[0], vals[1] = vals[1], vals[0]
	}
	return [3]float64{vals[0], vals[1], vals[2]}
}
