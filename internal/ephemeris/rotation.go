package ephemeris

import "fmt"

// RotationSample is one timestamped instrument pointing, expressed as the
// right ascension and declination of the boresight and the twist about it.
// All three angles are radians.
type RotationSample struct {
	Time  float64
	RA    float64
	Dec   float64
	Twist float64
}

// Rotation caches pointing samples for one instrument over one observation
// and carries the polynomial approximation fitted to them, plus the target
// body orientation (PCK) polynomial pushed down from the bundle target body.
// Coefficient slices are ordered lowest power first; all angles are radians.
type Rotation struct {
	samples []RotationSample

	degree       int
	baseTime     float64
	timeScale    float64
	overrideBase bool

	coefRA    []float64
	coefDec   []float64
	coefTwist []float64
	mode      InterpolationMode

	pckRA  []float64
	pckDec []float64
	pckPM  []float64
}

// NewRotation builds a Rotation over the given samples. The samples are
// expected in ascending time order; the slice is retained, not copied.
func NewRotation(samples []RotationSample) *Rotation {
	r := &Rotation{samples: samples, timeScale: 1}
	r.computeBaseTime()
	return r
}

func (r *Rotation) computeBaseTime() {
	if r.overrideBase || len(r.samples) == 0 {
		return
	}
	first := r.samples[0].Time
	last := r.samples[len(r.samples)-1].Time
	r.baseTime = (first + last) / 2
	r.timeScale = (last - first) / 2
	if r.timeScale == 0 {
		r.timeScale = 1
	}
}

// SetPolynomialDegree changes the degree of the polynomial representation,
// truncating or zero-padding any coefficients already present.
func (r *Rotation) SetPolynomialDegree(n int) {
	r.degree = n
	if r.coefRA != nil {
		r.coefRA = resizeTerms(r.coefRA, n+1)
		r.coefDec = resizeTerms(r.coefDec, n+1)
		r.coefTwist = resizeTerms(r.coefTwist, n+1)
	}
}

// PolynomialDegree reports the current polynomial degree.
func (r *Rotation) PolynomialDegree() int { return r.degree }

// SetOverrideBaseTime forces the scaled-time origin and span.
func (r *Rotation) SetOverrideBaseTime(base, scale float64) {
	r.baseTime = base
	r.timeScale = scale
	if r.timeScale == 0 {
		r.timeScale = 1
	}
	r.overrideBase = true
}

// BaseTime reports the scaled-time origin.
func (r *Rotation) BaseTime() float64 { return r.baseTime }

// TimeScale reports the scaled-time span divisor.
func (r *Rotation) TimeScale() float64 { return r.timeScale }

// InterpolationMode reports the mode installed by the last Fit or
// SetPolynomial call.
func (r *Rotation) InterpolationMode() InterpolationMode { return r.mode }

// Polynomial returns copies of the RA, Dec and twist coefficient slices, each
// of length degree+1, lowest order first. Before any fit the slices are zero.
func (r *Rotation) Polynomial() (ra, dec, twist []float64) {
	terms := r.degree + 1
	ra = resizeTerms(r.coefRA, terms)
	dec = resizeTerms(r.coefDec, terms)
	twist = resizeTerms(r.coefTwist, terms)
	return ra, dec, twist
}

// SetPolynomial installs explicit coefficient slices, each of which must have
// exactly degree+1 entries, and records the interpolation mode.
func (r *Rotation) SetPolynomial(ra, dec, twist []float64, mode InterpolationMode) error {
	terms := r.degree + 1
	if len(ra) != terms || len(dec) != terms || len(twist) != terms {
		return fmt.Errorf("rotation polynomial needs %d terms per angle, got %d/%d/%d",
			terms, len(ra), len(dec), len(twist))
	}
	r.coefRA = append([]float64(nil), ra...)
	r.coefDec = append([]float64(nil), dec...)
	r.coefTwist = append([]float64(nil), twist...)
	r.mode = mode
	return nil
}

// Fit computes a least-squares polynomial of the current degree through the
// cached samples on the scaled time axis and installs it.
func (r *Rotation) Fit(mode InterpolationMode) error {
	if len(r.samples) == 0 {
		return fmt.Errorf("rotation has no samples to fit")
	}
	u := make([]float64, len(r.samples))
	ras := make([]float64, len(r.samples))
	decs := make([]float64, len(r.samples))
	twists := make([]float64, len(r.samples))
	for i, s := range r.samples {
		u[i] = (s.Time - r.baseTime) / r.timeScale
		ras[i] = s.RA
		decs[i] = s.Dec
		twists[i] = s.Twist
	}

	var err error
	if r.coefRA, err = polyFit(u, ras, r.degree); err != nil {
		return fmt.Errorf("rotation right ascension: %w", err)
	}
	if r.coefDec, err = polyFit(u, decs, r.degree); err != nil {
		return fmt.Errorf("rotation declination: %w", err)
	}
	if r.coefTwist, err = polyFit(u, twists, r.degree); err != nil {
		return fmt.Errorf("rotation twist: %w", err)
	}
	r.mode = mode
	return nil
}

// AnglesAt evaluates the polynomial representation at the given time.
func (r *Rotation) AnglesAt(time float64) (ra, dec, twist float64) {
	u := (time - r.baseTime) / r.timeScale
	return polyEval(r.coefRA, u), polyEval(r.coefDec, u), polyEval(r.coefTwist, u)
}

// SetPckPolynomial installs the target body's pole right ascension, pole
// declination and prime meridian coefficient sets. Coefficients are radians
// and radian-rates as published in the planetary constants kernel.
func (r *Rotation) SetPckPolynomial(ra, dec, pm []float64) {
	r.pckRA = append([]float64(nil), ra...)
	r.pckDec = append([]float64(nil), dec...)
	r.pckPM = append([]float64(nil), pm...)
}

// PckPolynomial returns copies of the installed body orientation coefficient
// sets. The slices are nil if SetPckPolynomial has not been called.
func (r *Rotation) PckPolynomial() (ra, dec, pm []float64) {
	if r.pckRA == nil && r.pckDec == nil && r.pckPM == nil {
		return nil, nil, nil
	}
	return append([]float64(nil), r.pckRA...),
		append([]float64(nil), r.pckDec...),
		append([]float64(nil), r.pckPM...)
}
