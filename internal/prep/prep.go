// Package prep supplies the preparation-cost estimator: a black box that
// manufactures a per-order preparation duration.
package prep

import (
	"math/rand"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Estimator returns the simulated cost of preparing one order. It is an
// interface so tests can inject a deterministic duration.
type Estimator interface {
	Estimate() time.Duration
}

// Fixed always estimates the same duration.
type Fixed time.Duration

func (f Fixed) Estimate() time.Duration { return time.Duration(f) }

// PseudoInverse times a Moore-Penrose pseudo-inverse of a freshly
// randomized matrix and scales the elapsed wall time into a preparation
// duration. The matrix contents do not matter, only how long the
// factorization takes on this machine.
type PseudoInverse struct {
	Rows, Cols int
	Scale      float64       // multiplier applied to the measured time
	Cap        time.Duration // upper bound on the returned duration
}

// NewPseudoInverse returns an estimator with the stock 30x40 matrix.
func NewPseudoInverse() *PseudoInverse {
	return &PseudoInverse{Rows: 30, Cols: 40, Scale: 1000, Cap: 3 * time.Second}
}

func (p *PseudoInverse) Estimate() time.Duration {
	data := make([]float64, p.Rows*p.Cols)
	for i := range data {
		data[i] = rand.Float64()
	}
	a := mat.NewDense(p.Rows, p.Cols, data)

	start := time.Now()
	pseudoInverse(a)
	elapsed := time.Duration(float64(time.Since(start)) * p.Scale)

	if p.Cap > 0 && elapsed > p.Cap {
		elapsed = p.Cap
	}
	return elapsed
}

// pseudoInverse computes V * S^+ * U^T via thin SVD.
func pseudoInverse(a *mat.Dense) *mat.Dense {
	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	values := svd.Values(nil)

	inv := mat.NewDense(len(values), len(values), nil)
	for i, sv := range values {
		if sv > 1e-12 {
			inv.Set(i, i, 1/sv)
		}
	}

	var pinv mat.Dense
	pinv.Product(&v, inv, u.T())
	return &pinv
}
