package ephemeris

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// InterpolationMode selects how a fitted polynomial is interpreted when the
// state is evaluated between samples.
type InterpolationMode int

const (
	// PolyFunction evaluates the polynomial directly at the scaled time.
	PolyFunction InterpolationMode = iota
	// PolyFunctionOverSpline evaluates the polynomial as a correction on
	// top of the cached sample spline.
	PolyFunctionOverSpline
)

func (m InterpolationMode) String() string {
	switch m {
	case PolyFunction:
		return "polynomial"
	case PolyFunctionOverSpline:
		return "polynomial-over-spline"
	}
	return fmt.Sprintf("InterpolationMode(%d)", int(m))
}

// polyFit solves the linear least-squares problem for polynomial coefficients
// c such that sum_k c[k]*u^k approximates y at the scaled times u. The returned
// slice has degree+1 entries, lowest order first.
func polyFit(u, y []float64, degree int) ([]float64, error) {
	if len(u) != len(y) {
		return nil, fmt.Errorf("sample count mismatch: %d times vs %d values", len(u), len(y))
	}
	terms := degree + 1
	if len(u) < terms {
		return nil, fmt.Errorf("need at least %d samples to fit degree %d, have %d", terms, degree, len(u))
	}

	a := mat.NewDense(len(u), terms, nil)
	b := mat.NewVecDense(len(u), nil)
	for i, ui := range u {
		p := 1.0
		for k := 0; k < terms; k++ {
			a.Set(i, k, p)
			p *= ui
		}
		b.SetVec(i, y[i])
	}

	var qr mat.QR
	qr.Factorize(a)
	var c mat.VecDense
	if err := qr.SolveVecTo(&c, false, b); err != nil {
		return nil, fmt.Errorf("polynomial fit of degree %d failed: %w", degree, err)
	}

	coeffs := make([]float64, terms)
	for k := 0; k < terms; k++ {
		coeffs[k] = c.AtVec(k)
	}
	return coeffs, nil
}

// polyEval evaluates coefficients (lowest order first) at scaled time u.
func polyEval(coeffs []float64, u float64) float64 {
	v := 0.0
	for k := len(coeffs) - 1; k >= 0; k-- {
		v = v*u + coeffs[k]
	}
	return v
}
