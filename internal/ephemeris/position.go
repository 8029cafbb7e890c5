package ephemeris

import "fmt"

// Sample is one timestamped instrument position in the body-fixed frame.
// Units are whatever the producing ephemeris uses (kilometres for spacecraft
// kernels); this package never converts them.
type Sample struct {
	Time float64
	X    float64
	Y    float64
	Z    float64
}

// Trajectory caches position samples for one instrument over one observation
// and carries the polynomial approximation fitted to them. Coefficient slices
// are ordered lowest power first.
type Trajectory struct {
	samples []Sample

	degree       int
	baseTime     float64
	timeScale    float64
	overrideBase bool

	coefX []float64
	coefY []float64
	coefZ []float64
	mode  InterpolationMode
}

// NewTrajectory builds a Trajectory over the given samples. The samples are
// expected in ascending time order; the slice is retained, not copied.
func NewTrajectory(samples []Sample) *Trajectory {
	t := &Trajectory{samples: samples, timeScale: 1}
	t.computeBaseTime()
	return t
}

func (t *Trajectory) computeBaseTime() {
	if t.overrideBase || len(t.samples) == 0 {
		return
	}
	first := t.samples[0].Time
	last := t.samples[len(t.samples)-1].Time
	t.baseTime = (first + last) / 2
	t.timeScale = (last - first) / 2
	if t.timeScale == 0 {
		t.timeScale = 1
	}
}

// SetPolynomialDegree changes the degree of the polynomial representation.
// Coefficients already present are truncated or zero-padded to the new term
// count so a lower-degree fit can seed a higher-degree solve.
func (t *Trajectory) SetPolynomialDegree(n int) {
	t.degree = n
	if t.coefX != nil {
		t.coefX = resizeTerms(t.coefX, n+1)
		t.coefY = resizeTerms(t.coefY, n+1)
		t.coefZ = resizeTerms(t.coefZ, n+1)
	}
}

// PolynomialDegree reports the current polynomial degree.
func (t *Trajectory) PolynomialDegree() int { return t.degree }

// SetOverrideBaseTime forces the scaled-time origin and span, overriding the
// values derived from the sample range. Secondary images in an observation use
// this to share the primary image's time axis.
func (t *Trajectory) SetOverrideBaseTime(base, scale float64) {
	t.baseTime = base
	t.timeScale = scale
	if t.timeScale == 0 {
		t.timeScale = 1
	}
	t.overrideBase = true
}

// BaseTime reports the scaled-time origin.
func (t *Trajectory) BaseTime() float64 { return t.baseTime }

// TimeScale reports the scaled-time span divisor.
func (t *Trajectory) TimeScale() float64 { return t.timeScale }

// InterpolationMode reports the mode installed by the last Fit or
// SetPolynomial call.
func (t *Trajectory) InterpolationMode() InterpolationMode { return t.mode }

// Polynomial returns copies of the X, Y and Z coefficient slices, each of
// length degree+1, lowest order first. Before any fit the slices are zero.
func (t *Trajectory) Polynomial() (x, y, z []float64) {
	terms := t.degree + 1
	x = resizeTerms(t.coefX, terms)
	y = resizeTerms(t.coefY, terms)
	z = resizeTerms(t.coefZ, terms)
	return x, y, z
}

// SetPolynomial installs explicit coefficient slices, each of which must have
// exactly degree+1 entries, and records the interpolation mode.
func (t *Trajectory) SetPolynomial(x, y, z []float64, mode InterpolationMode) error {
	terms := t.degree + 1
	if len(x) != terms || len(y) != terms || len(z) != terms {
		return fmt.Errorf("trajectory polynomial needs %d terms per axis, got %d/%d/%d",
			terms, len(x), len(y), len(z))
	}
	t.coefX = append([]float64(nil), x...)
	t.coefY = append([]float64(nil), y...)
	t.coefZ = append([]float64(nil), z...)
	t.mode = mode
	return nil
}

// Fit computes a least-squares polynomial of the current degree through the
// cached samples on the scaled time axis and installs it.
func (t *Trajectory) Fit(mode InterpolationMode) error {
	if len(t.samples) == 0 {
		return fmt.Errorf("trajectory has no samples to fit")
	}
	u := make([]float64, len(t.samples))
	xs := make([]float64, len(t.samples))
	ys := make([]float64, len(t.samples))
	zs := make([]float64, len(t.samples))
	for i, s := range t.samples {
		u[i] = (s.Time - t.baseTime) / t.timeScale
		xs[i] = s.X
		ys[i] = s.Y
		zs[i] = s.Z
	}

	var err error
	if t.coefX, err = polyFit(u, xs, t.degree); err != nil {
		return fmt.Errorf("trajectory X axis: %w", err)
	}
	if t.coefY, err = polyFit(u, ys, t.degree); err != nil {
		return fmt.Errorf("trajectory Y axis: %w", err)
	}
	if t.coefZ, err = polyFit(u, zs, t.degree); err != nil {
		return fmt.Errorf("trajectory Z axis: %w", err)
	}
	t.mode = mode
	return nil
}

// PositionAt evaluates the polynomial representation at the given time.
func (t *Trajectory) PositionAt(time float64) (x, y, z float64) {
	u := (time - t.baseTime) / t.timeScale
	return polyEval(t.coefX, u), polyEval(t.coefY, u), polyEval(t.coefZ, u)
}

// resizeTerms copies coeffs into a slice of exactly n entries, zero-padding or
// truncating as needed.
func resizeTerms(coeffs []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, coeffs)
	return out
}
