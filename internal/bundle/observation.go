package bundle

import (
	"errors"
	"fmt"
	"math"

	"github.com/peregrine-imaging/bundleadjust/internal/ephemeris"
	"gonum.org/v1/gonum/floats"
)

// Error kinds surfaced by observation operations. Match with errors.Is.
var (
	// ErrConfiguration marks a solve option that cannot be honoured with the
	// observation's current state, e.g. solving position without a trajectory.
	ErrConfiguration = errors.New("observation configuration error")
	// ErrDimension marks a correction slice whose length does not match the
	// observation's parameter count.
	ErrDimension = errors.New("correction dimension mismatch")
)

// NullSigma is the sentinel for "no a-priori sigma supplied". It renders as
// N/A in reports and must never be treated as a numeric value.
func NullSigma() float64 { return math.NaN() }

// IsNullSigma reports whether a sigma carries the null sentinel.
func IsNullSigma(s float64) bool { return math.IsNaN(s) }

// Observation groups the images that share one instrument trajectory and
// rotation during a single acquisition pass, and owns the solver-facing
// bookkeeping for them: the parameter layout, the regularization weights,
// the cumulative corrections and the a-priori/adjusted sigmas.
//
// The trajectory and rotation objects are captured from the primary (first)
// image; Append enforces that every later image refers to the same objects.
// SetSolveSettings and ApplyParameterCorrections must not run concurrently
// on the same Observation.
type Observation struct {
	observationNumber string
	instrumentID      string
	index             int

	images        []*Image
	serialNumbers []string
	imageNames    []string

	trajectory *ephemeris.Trajectory
	rotation   *ephemeris.Rotation
	targetBody *TargetBody

	settings *SolveSettings
	layout   ParameterLayout

	weights        []float64
	corrections    []float64
	aprioriSigmas  []float64
	adjustedSigmas []float64
}

// NewObservation builds an Observation around its primary image. The image's
// trajectory and rotation objects become the observation's canonical
// ephemeris state; they may be nil when the image has no camera, which only
// becomes an error if a solve option later needs them. targetBody may be nil
// for observations that do not adjust body orientation.
func NewObservation(primary *Image, observationNumber, instrumentID string, targetBody *TargetBody) *Observation {
	o := &Observation{
		observationNumber: observationNumber,
		instrumentID:      instrumentID,
		targetBody:        targetBody,
	}
	if primary != nil {
		o.images = append(o.images, primary)
		o.serialNumbers = append(o.serialNumbers, primary.SerialNumber())
		o.imageNames = append(o.imageNames, primary.FileName())
		o.trajectory = primary.Trajectory()
		o.rotation = primary.Rotation()
	}
	return o
}

// Append adds an image to the observation. The image must share the primary
// image's trajectory and rotation objects; a mismatch is a configuration
// error caught here rather than a silent divergence during the solve.
func (o *Observation) Append(image *Image) error {
	if image == nil {
		return fmt.Errorf("append nil image to observation %s: %w", o.observationNumber, ErrConfiguration)
	}
	if len(o.images) > 0 {
		if image.Trajectory() != o.trajectory {
			return fmt.Errorf("image %s does not share the trajectory of observation %s: %w",
				image.SerialNumber(), o.observationNumber, ErrConfiguration)
		}
		if image.Rotation() != o.rotation {
			return fmt.Errorf("image %s does not share the rotation of observation %s: %w",
				image.SerialNumber(), o.observationNumber, ErrConfiguration)
		}
	} else {
		o.trajectory = image.Trajectory()
		o.rotation = image.Rotation()
	}
	o.images = append(o.images, image)
	o.serialNumbers = append(o.serialNumbers, image.SerialNumber())
	o.imageNames = append(o.imageNames, image.FileName())
	return nil
}

// SetSolveSettings installs the solve configuration and reinitializes every
// per-parameter vector from scratch: weights and corrections to zero, both
// sigma vectors to the null sentinel, then the a-priori weights from the
// settings' sigma lists. Any state from a previous configuration is
// discarded.
func (o *Observation) SetSolveSettings(settings SolveSettings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("observation %s: %w", o.observationNumber, err)
	}

	s := settings
	o.settings = &s
	o.layout = newParameterLayout(s)

	n := o.layout.NumberParameters()
	o.weights = make([]float64, n)
	o.corrections = make([]float64, n)
	o.adjustedSigmas = make([]float64, n)
	o.aprioriSigmas = make([]float64, n)
	for i := range o.aprioriSigmas {
		o.aprioriSigmas[i] = NullSigma()
		o.adjustedSigmas[i] = NullSigma()
	}

	if err := o.initParameterWeights(); err != nil {
		return fmt.Errorf("observation %s: %w", o.observationNumber, err)
	}
	return nil
}

// ObservationNumber reports the observation identifier.
func (o *Observation) ObservationNumber() string { return o.observationNumber }

// InstrumentID reports the instrument identifier.
func (o *Observation) InstrumentID() string { return o.instrumentID }

// Trajectory reports the canonical trajectory object, which may be nil.
func (o *Observation) Trajectory() *ephemeris.Trajectory { return o.trajectory }

// Rotation reports the canonical rotation object, which may be nil.
func (o *Observation) Rotation() *ephemeris.Rotation { return o.rotation }

// TargetBody reports the target body, which may be nil.
func (o *Observation) TargetBody() *TargetBody { return o.targetBody }

// SolveSettings reports the installed solve settings, nil before
// SetSolveSettings.
func (o *Observation) SolveSettings() *SolveSettings { return o.settings }

// Layout reports the parameter layout derived from the solve settings.
func (o *Observation) Layout() ParameterLayout { return o.layout }

// ParameterWeights returns a copy of the regularization weight vector.
func (o *Observation) ParameterWeights() []float64 {
	return append([]float64(nil), o.weights...)
}

// ParameterCorrections returns a copy of the cumulative correction vector.
func (o *Observation) ParameterCorrections() []float64 {
	return append([]float64(nil), o.corrections...)
}

// AprioriSigmas returns a copy of the a-priori sigma vector. Null-sentinel
// entries mean no constraint was supplied.
func (o *Observation) AprioriSigmas() []float64 {
	return append([]float64(nil), o.aprioriSigmas...)
}

// AdjustedSigmas exposes the post-solve sigma vector. Unlike the other
// accessors it returns the live slice: error propagation outside this package
// writes its results through it.
func (o *Observation) AdjustedSigmas() []float64 { return o.adjustedSigmas }

// SetIndex records the observation's position in the global parameter vector.
func (o *Observation) SetIndex(n int) { o.index = n }

// Index reports the observation's position in the global parameter vector.
func (o *Observation) Index() int { return o.index }

// Size reports the number of images in the observation.
func (o *Observation) Size() int { return len(o.images) }

// Images returns the images in insertion order.
func (o *Observation) Images() []*Image { return o.images }

// SerialNumbers returns the image serial numbers in insertion order.
func (o *Observation) SerialNumbers() []string { return o.serialNumbers }

// ImageNames returns the image file names in insertion order, for the
// correlation matrix report.
func (o *Observation) ImageNames() []string { return o.imageNames }

// NumberPositionParameters reports the position parameter count.
func (o *Observation) NumberPositionParameters() int { return o.layout.NumberPositionParameters() }

// NumberPointingParameters reports the pointing parameter count.
func (o *Observation) NumberPointingParameters() int { return o.layout.NumberPointingParameters() }

// NumberParameters reports the total parameter count.
func (o *Observation) NumberParameters() int { return o.layout.NumberParameters() }

// InitializeExteriorOrientation fits the a-priori polynomials for the
// observation. The primary image is fitted at the a-priori degree, then
// re-represented at the solve degree; every later image inherits the primary
// image's base time, time scale and coefficients instead of fitting its own,
// so the whole observation starts the solve from one shared shape. Position
// and pointing are handled independently, each gated by its solve option.
func (o *Observation) InitializeExteriorOrientation() error {
	if o.settings == nil {
		return fmt.Errorf("observation %s has no solve settings: %w", o.observationNumber, ErrConfiguration)
	}
	s := o.settings

	if s.PositionOption != NoPositionFactors {
		var baseTime, timeScale float64
		var coefX, coefY, coefZ []float64

		for i, image := range o.images {
			trajectory := image.Trajectory()
			if trajectory == nil {
				return fmt.Errorf("image %s has no trajectory but position solve option is %s: %w",
					image.SerialNumber(), s.PositionOption, ErrConfiguration)
			}
			if i > 0 {
				trajectory.SetPolynomialDegree(s.SPKSolveDegree)
				trajectory.SetOverrideBaseTime(baseTime, timeScale)
				if err := trajectory.SetPolynomial(coefX, coefY, coefZ, s.PositionInterpolation); err != nil {
					return fmt.Errorf("propagate trajectory polynomial to image %s: %w",
						image.SerialNumber(), err)
				}
				continue
			}
			trajectory.SetPolynomialDegree(s.SPKDegree)
			if err := trajectory.Fit(s.PositionInterpolation); err != nil {
				return fmt.Errorf("a-priori trajectory fit for observation %s: %w",
					o.observationNumber, err)
			}
			trajectory.SetPolynomialDegree(s.SPKSolveDegree)
			baseTime = trajectory.BaseTime()
			timeScale = trajectory.TimeScale()
			coefX, coefY, coefZ = trajectory.Polynomial()
		}
	}

	if s.PointingOption != NoPointingFactors {
		var baseTime, timeScale float64
		var coefRA, coefDec, coefTwist []float64

		for i, image := range o.images {
			rotation := image.Rotation()
			if rotation == nil {
				return fmt.Errorf("image %s has no rotation but pointing solve option is %s: %w",
					image.SerialNumber(), s.PointingOption, ErrConfiguration)
			}
			if i > 0 {
				rotation.SetPolynomialDegree(s.CKSolveDegree)
				rotation.SetOverrideBaseTime(baseTime, timeScale)
				if err := rotation.SetPolynomial(coefRA, coefDec, coefTwist, s.PointingInterpolation); err != nil {
					return fmt.Errorf("propagate rotation polynomial to image %s: %w",
						image.SerialNumber(), err)
				}
				continue
			}
			rotation.SetPolynomialDegree(s.CKDegree)
			if err := rotation.Fit(s.PointingInterpolation); err != nil {
				return fmt.Errorf("a-priori rotation fit for observation %s: %w",
					o.observationNumber, err)
			}
			rotation.SetPolynomialDegree(s.CKSolveDegree)
			baseTime = rotation.BaseTime()
			timeScale = rotation.TimeScale()
			coefRA, coefDec, coefTwist = rotation.Polynomial()
		}
	}

	return nil
}

// InitializeBodyRotation pushes the target body's pole and prime meridian
// coefficient sets into every image's rotation object.
func (o *Observation) InitializeBodyRotation() error {
	return o.pushBodyRotation()
}

// UpdateBodyRotation re-pushes the target body's coefficient sets after the
// solver has adjusted them. Behaviorally identical to
// InitializeBodyRotation; callers distinguish only by intent.
func (o *Observation) UpdateBodyRotation() error {
	return o.pushBodyRotation()
}

func (o *Observation) pushBodyRotation() error {
	if o.targetBody == nil {
		return fmt.Errorf("observation %s has no target body: %w", o.observationNumber, ErrConfiguration)
	}
	raCoefs := o.targetBody.PoleRACoefs()
	decCoefs := o.targetBody.PoleDecCoefs()
	pmCoefs := o.targetBody.PMCoefs()

	for _, image := range o.images {
		rotation := image.Rotation()
		if rotation == nil {
			return fmt.Errorf("image %s has no rotation to receive body orientation: %w",
				image.SerialNumber(), ErrConfiguration)
		}
		rotation.SetPckPolynomial(raCoefs, decCoefs, pmCoefs)
	}
	return nil
}

// ApplyParameterCorrections consumes one observation-sized slice of the
// global correction vector, in strict block order, and applies it to the
// polynomial coefficients of every image in the observation. The full slice
// is then accumulated into the running correction totals. Errors propagate
// to the caller; a failed application leaves the totals untouched.
func (o *Observation) ApplyParameterCorrections(corrections []float64) error {
	if o.settings == nil {
		return fmt.Errorf("unable to apply parameter corrections to observation %s: no solve settings: %w",
			o.observationNumber, ErrConfiguration)
	}
	if len(corrections) != o.layout.NumberParameters() {
		return fmt.Errorf("unable to apply parameter corrections to observation %s: got %d corrections for %d parameters: %w",
			o.observationNumber, len(corrections), o.layout.NumberParameters(), ErrDimension)
	}

	if err := o.applyPositionCorrections(corrections); err != nil {
		return fmt.Errorf("unable to apply parameter corrections to observation %s: %w",
			o.observationNumber, err)
	}
	if err := o.applyPointingCorrections(corrections); err != nil {
		return fmt.Errorf("unable to apply parameter corrections to observation %s: %w",
			o.observationNumber, err)
	}

	floats.Add(o.corrections, corrections)
	return nil
}

func (o *Observation) applyPositionCorrections(corrections []float64) error {
	s := o.settings
	if s.PositionOption == NoPositionFactors {
		return nil
	}
	if o.trajectory == nil {
		return fmt.Errorf("instrument trajectory is nil but position solve option is %s: %w",
			s.PositionOption, ErrConfiguration)
	}

	terms := o.layout.PositionTerms()
	coefX, coefY, coefZ := o.trajectory.Polynomial()
	if len(coefX) < terms {
		return fmt.Errorf("trajectory polynomial carries %d terms but %d are solved; exterior orientation not initialized: %w",
			len(coefX), terms, ErrConfiguration)
	}

	xBlock, _ := o.layout.Block(BlockX)
	yBlock, _ := o.layout.Block(BlockY)
	zBlock, _ := o.layout.Block(BlockZ)
	for i := 0; i < terms; i++ {
		coefX[i] += corrections[xBlock.Offset+i]
		coefY[i] += corrections[yBlock.Offset+i]
		coefZ[i] += corrections[zBlock.Offset+i]
	}

	// The images share one trajectory object, but the update is pushed
	// through each image to mirror the shared-state contract.
	for _, image := range o.images {
		if err := image.Trajectory().SetPolynomial(coefX, coefY, coefZ, s.PositionInterpolation); err != nil {
			return fmt.Errorf("update trajectory polynomial for image %s: %w", image.SerialNumber(), err)
		}
	}
	return nil
}

func (o *Observation) applyPointingCorrections(corrections []float64) error {
	s := o.settings
	if s.PointingOption == NoPointingFactors {
		return nil
	}
	if o.rotation == nil {
		return fmt.Errorf("instrument rotation is nil but pointing solve option is %s: %w",
			s.PointingOption, ErrConfiguration)
	}

	terms := o.layout.AngleTerms()
	coefRA, coefDec, coefTwist := o.rotation.Polynomial()
	if len(coefRA) < terms {
		return fmt.Errorf("rotation polynomial carries %d terms but %d are solved; exterior orientation not initialized: %w",
			len(coefRA), terms, ErrConfiguration)
	}

	raBlock, _ := o.layout.Block(BlockRA)
	decBlock, _ := o.layout.Block(BlockDec)
	for i := 0; i < terms; i++ {
		coefRA[i] += corrections[raBlock.Offset+i]
		coefDec[i] += corrections[decBlock.Offset+i]
	}
	if s.SolveTwist {
		twiBlock, _ := o.layout.Block(BlockTwist)
		for i := 0; i < terms; i++ {
			coefTwist[i] += corrections[twiBlock.Offset+i]
		}
	}

	for _, image := range o.images {
		if err := image.Rotation().SetPolynomial(coefRA, coefDec, coefTwist, s.PointingInterpolation); err != nil {
			return fmt.Errorf("update rotation polynomial for image %s: %w", image.SerialNumber(), err)
		}
	}
	return nil
}
