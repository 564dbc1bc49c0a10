package stem

import (
	"errors"

	"gonum.org/v2/gonum/mat"
)

// ErrNumericInstability signals that the Procrustes solver could not
// extract a reliable singular value decomposition for the given point
// sets (e.g. a near-colinear or otherwise ill-conditioned triplet). The
// solver never panics; callers treat this as a normal, rankable outcome
// per the driver's error handling design.
var ErrNumericInstability = errors.New("stem: numeric instability in SVD solve")

// SolveRigidTransform computes the closed-form Kabsch/Procrustes rigid
// transform that best maps source onto target, both ordered sequences
// of equal length k >= 3 assumed already in matched order.
//
// Steps (Kabsch / Arun et al.):
//  1. centroids pbar = mean(source), qbar = mean(target)
//  2. center both point sets
//  3. cross-covariance S = X * Yt
//  4. full SVD: S = U * Sigma * Vt
//  5. D = diag(1, 1, det(V*Ut)) — sign correction for a proper rotation
//  6. R = V * D * Ut
//  7. t = qbar - R*pbar
//  8. assemble the 4x4 homogeneous transform
func SolveRigidTransform(source, target StemGroup) (Transform4, error) {
	k := len(source)
	if k != len(target) || k < 3 {
		return Transform4{}, errors.New("stem: source and target groups must be equal length and >= 3")
	}

	pbar := centroid(source)
	qbar := centroid(target)

	x := mat.NewDense(3, k, nil)
	yt := mat.NewDense(k, 3, nil)
	for i := 0; i < k; i++ {
		x.Set(0, i, source[i].X-pbar[0])
		x.Set(1, i, source[i].Y-pbar[1])
		x.Set(2, i, source[i].Z-pbar[2])
		yt.Set(i, 0, target[i].X-qbar[0])
		yt.Set(i, 1, target[i].Y-qbar[1])
		yt.Set(i, 2, target[i].Z-qbar[2])
	}

	var s mat.Dense
	s.Mul(x, yt)

	var svd mat.SVD
	if ok := svd.Factorize(&s, mat.SVDFull); !ok {
		return Transform4{}, ErrNumericInstability
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	var vut mat.Dense
	vut.Mul(&v, u.T())
	det := determinant3(&vut)

	d := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, det,
	})

	var vd, r mat.Dense
	vd.Mul(&v, d)
	r.Mul(&vd, u.T())

	if hasNonFinite(&r) {
		return Transform4{}, ErrNumericInstability
	}

	var rp mat.VecDense
	rp.MulVec(&r, mat.NewVecDense(3, []float64{pbar[0], pbar[1], pbar[2]}))

	t := [3]float64{
		qbar[0] - rp.AtVec(0),
		qbar[1] - rp.AtVec(1),
		qbar[2] - rp.AtVec(2),
	}

	var out Transform4
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = r.At(i, j)
		}
		out[i][3] = t[i]
	}
	out[3] = [4]float64{0, 0, 0, 1}
	return out, nil
}

func determinant3(m *mat.Dense) float64 {
	a, b, c := m.At(0, 0), m.At(0, 1), m.At(0, 2)
	d, e, f := m.At(1, 0), m.At(1, 1), m.At(1, 2)
	g, h, i := m.At(2, 0), m.At(2, 1), m.At(2, 2)
	return a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
}

func hasNonFinite(m *mat.Dense) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if v != v || v > 1e300 || v < -1e300 {
				return true
			}
		}
	}
	return false
}
