package bundle

// TargetBody carries the orientation model of the body the instrument is
// imaging: pole right ascension, pole declination and prime meridian
// coefficient sets, radians and radian-rates, lowest order first. The
// observation pushes these into every image's rotation object.
type TargetBody struct {
	name         string
	poleRACoefs  []float64
	poleDecCoefs []float64
	pmCoefs      []float64
}

// NewTargetBody builds a TargetBody from its PCK coefficient sets. The
// slices are copied.
func NewTargetBody(name string, poleRA, poleDec, pm []float64) *TargetBody {
	return &TargetBody{
		name:         name,
		poleRACoefs:  append([]float64(nil), poleRA...),
		poleDecCoefs: append([]float64(nil), poleDec...),
		pmCoefs:      append([]float64(nil), pm...),
	}
}

// Name reports the body name.
func (tb *TargetBody) Name() string { return tb.name }

// PoleRACoefs reports the pole right ascension coefficients.
func (tb *TargetBody) PoleRACoefs() []float64 { return tb.poleRACoefs }

// PoleDecCoefs reports the pole declination coefficients.
func (tb *TargetBody) PoleDecCoefs() []float64 { return tb.poleDecCoefs }

// PMCoefs reports the prime meridian coefficients.
func (tb *TargetBody) PMCoefs() []float64 { return tb.pmCoefs }
