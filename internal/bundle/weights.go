package bundle

import "math"

// Scale factors folded into the a-priori weights. Position sigmas arrive in
// metres but the normal equations carry kilometres squared, hence 1e-6.
// Pointing sigmas arrive in degrees while the corrections are radians.
const (
	positionWeightScale = 1.0e-6
	deg2Rad             = math.Pi / 180.0
	rad2Deg             = 180.0 / math.Pi
)

// sigmaWeight converts one a-priori sigma into a regularization weight.
// Absent or non-positive sigmas leave the parameter unconstrained.
func sigmaWeight(sigma, scale float64) float64 {
	if sigma <= 0 {
		return 0
	}
	return 1.0 / (sigma * sigma * scale)
}

// familySigma picks the sigma governing a term kind out of an a-priori sigma
// list (value, rate, acceleration). The second return is false when the list
// does not supply one, or the term is beyond the acceleration term.
func familySigma(sigmas []float64, kind TermKind) (float64, bool) {
	idx := -1
	switch kind {
	case TermValue:
		idx = 0
	case TermRate:
		idx = 1
	case TermAcceleration:
		idx = 2
	case TermHigherOrder:
		// Degree-3+ terms carry no a-priori constraint.
		return 0, false
	}
	if idx < 0 || idx >= len(sigmas) {
		return 0, false
	}
	return sigmas[idx], true
}

// initParameterWeights fills the weight and a-priori sigma vectors from the
// solve settings' sigma lists, broadcasting each family sigma across every
// coefficient of the matching kind in every block.
func (o *Observation) initParameterWeights() error {
	s := o.settings

	for _, block := range o.layout.Blocks() {
		sigmas := s.AprioriPositionSigmas
		scale := positionWeightScale
		if block.Angle {
			sigmas = s.AprioriPointingSigmas
			scale = deg2Rad * deg2Rad
		}

		for i := 0; i < block.Terms; i++ {
			idx := block.Offset + i
			sigma, ok := familySigma(sigmas, o.layout.Kind(idx))
			if !ok || sigma <= 0 {
				continue
			}
			o.aprioriSigmas[idx] = sigma
			o.weights[idx] = sigmaWeight(sigma, scale)
		}
	}
	return nil
}
