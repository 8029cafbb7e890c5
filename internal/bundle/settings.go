package bundle

import (
	"fmt"

	"github.com/peregrine-imaging/bundleadjust/internal/ephemeris"
)

// PositionSolveOption selects which position polynomial factors are treated
// as unknowns in the adjustment.
type PositionSolveOption int

const (
	NoPositionFactors PositionSolveOption = iota
	PositionOnly
	PositionVelocity
	PositionVelocityAcceleration
	AllPositionCoefficients
)

func (o PositionSolveOption) String() string {
	switch o {
	case NoPositionFactors:
		return "NONE"
	case PositionOnly:
		return "POSITION"
	case PositionVelocity:
		return "VELOCITIES"
	case PositionVelocityAcceleration:
		return "ACCELERATIONS"
	case AllPositionCoefficients:
		return "ALL"
	}
	return fmt.Sprintf("PositionSolveOption(%d)", int(o))
}

// ParsePositionSolveOption maps the configuration spelling of a position
// solve option onto its enum value.
func ParsePositionSolveOption(s string) (PositionSolveOption, error) {
	switch s {
	case "none", "NONE":
		return NoPositionFactors, nil
	case "position", "POSITION":
		return PositionOnly, nil
	case "velocities", "VELOCITIES":
		return PositionVelocity, nil
	case "accelerations", "ACCELERATIONS":
		return PositionVelocityAcceleration, nil
	case "all", "ALL":
		return AllPositionCoefficients, nil
	}
	return NoPositionFactors, fmt.Errorf("unknown position solve option %q", s)
}

// PointingSolveOption selects which pointing polynomial factors are treated
// as unknowns in the adjustment.
type PointingSolveOption int

const (
	NoPointingFactors PointingSolveOption = iota
	AnglesOnly
	AnglesVelocity
	AnglesVelocityAcceleration
	AllPointingCoefficients
)

func (o PointingSolveOption) String() string {
	switch o {
	case NoPointingFactors:
		return "NONE"
	case AnglesOnly:
		return "ANGLES"
	case AnglesVelocity:
		return "ANGULAR VELOCITIES"
	case AnglesVelocityAcceleration:
		return "ANGULAR ACCELERATIONS"
	case AllPointingCoefficients:
		return "ALL"
	}
	return fmt.Sprintf("PointingSolveOption(%d)", int(o))
}

// ParsePointingSolveOption maps the configuration spelling of a pointing
// solve option onto its enum value.
func ParsePointingSolveOption(s string) (PointingSolveOption, error) {
	switch s {
	case "none", "NONE":
		return NoPointingFactors, nil
	case "angles", "ANGLES":
		return AnglesOnly, nil
	case "velocities", "VELOCITIES":
		return AnglesVelocity, nil
	case "accelerations", "ACCELERATIONS":
		return AnglesVelocityAcceleration, nil
	case "all", "ALL":
		return AllPointingCoefficients, nil
	}
	return NoPointingFactors, fmt.Errorf("unknown pointing solve option %q", s)
}

// SolveSettings holds the per-observation adjustment configuration: which
// trajectory and pointing factors to solve, the polynomial degree fitted to
// the a-priori ephemeris versus the degree actually solved, and the a-priori
// sigma lists driving the regularization weights.
//
// Position sigmas are in the trajectory's native linear unit; pointing sigmas
// are degrees. Sigma lists carry up to three entries (value, rate,
// acceleration); missing or non-positive entries leave the matching
// parameters unconstrained.
type SolveSettings struct {
	PositionOption        PositionSolveOption
	SPKDegree             int
	SPKSolveDegree        int
	PositionInterpolation ephemeris.InterpolationMode
	AprioriPositionSigmas []float64

	PointingOption        PointingSolveOption
	SolveTwist            bool
	CKDegree              int
	CKSolveDegree         int
	PointingInterpolation ephemeris.InterpolationMode
	AprioriPointingSigmas []float64
}

// PositionCoefficients reports the number of position coefficients solved
// per axis.
func (s SolveSettings) PositionCoefficients() int {
	switch s.PositionOption {
	case NoPositionFactors:
		return 0
	case PositionOnly:
		return 1
	case PositionVelocity:
		return 2
	case PositionVelocityAcceleration:
		return 3
	case AllPositionCoefficients:
		return s.SPKSolveDegree + 1
	}
	return 0
}

// AngleCoefficients reports the number of pointing coefficients solved per
// angle.
func (s SolveSettings) AngleCoefficients() int {
	switch s.PointingOption {
	case NoPointingFactors:
		return 0
	case AnglesOnly:
		return 1
	case AnglesVelocity:
		return 2
	case AnglesVelocityAcceleration:
		return 3
	case AllPointingCoefficients:
		return s.CKSolveDegree + 1
	}
	return 0
}

// Validate rejects settings the parameter layout cannot express.
func (s SolveSettings) Validate() error {
	if s.SPKDegree < 0 || s.SPKSolveDegree < 0 || s.CKDegree < 0 || s.CKSolveDegree < 0 {
		return fmt.Errorf("polynomial degrees must be non-negative")
	}
	if len(s.AprioriPositionSigmas) > 3 {
		return fmt.Errorf("at most 3 a-priori position sigmas are supported, got %d",
			len(s.AprioriPositionSigmas))
	}
	if len(s.AprioriPointingSigmas) > 3 {
		return fmt.Errorf("at most 3 a-priori pointing sigmas are supported, got %d",
			len(s.AprioriPointingSigmas))
	}
	if n := s.PositionCoefficients(); n > s.SPKSolveDegree+1 {
		return fmt.Errorf("position solve option %s needs %d coefficients but solve degree %d provides %d",
			s.PositionOption, n, s.SPKSolveDegree, s.SPKSolveDegree+1)
	}
	if n := s.AngleCoefficients(); n > s.CKSolveDegree+1 {
		return fmt.Errorf("pointing solve option %s needs %d coefficients but solve degree %d provides %d",
			s.PointingOption, n, s.CKSolveDegree, s.CKSolveDegree+1)
	}
	return nil
}
