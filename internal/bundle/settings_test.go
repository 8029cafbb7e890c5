package bundle_test

import (
	"testing"

	"github.com/peregrine-imaging/bundleadjust/internal/bundle"
)

func TestParseSolveOptions(t *testing.T) {
	positionCases := map[string]bundle.PositionSolveOption{
		"none":          bundle.NoPositionFactors,
		"position":      bundle.PositionOnly,
		"velocities":    bundle.PositionVelocity,
		"accelerations": bundle.PositionVelocityAcceleration,
		"all":           bundle.AllPositionCoefficients,
	}
	for in, want := range positionCases {
		got, err := bundle.ParsePositionSolveOption(in)
		if err != nil || got != want {
			t.Errorf("ParsePositionSolveOption(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := bundle.ParsePositionSolveOption("sideways"); err == nil {
		t.Error("expected error for unknown position option")
	}

	pointingCases := map[string]bundle.PointingSolveOption{
		"none":          bundle.NoPointingFactors,
		"angles":        bundle.AnglesOnly,
		"velocities":    bundle.AnglesVelocity,
		"accelerations": bundle.AnglesVelocityAcceleration,
		"all":           bundle.AllPointingCoefficients,
	}
	for in, want := range pointingCases {
		got, err := bundle.ParsePointingSolveOption(in)
		if err != nil || got != want {
			t.Errorf("ParsePointingSolveOption(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
}

func TestCoefficientCounts(t *testing.T) {
	tests := []struct {
		settings bundle.SolveSettings
		wantPos  int
		wantAng  int
	}{
		{bundle.SolveSettings{}, 0, 0},
		{bundle.SolveSettings{PositionOption: bundle.PositionOnly}, 1, 0},
		{bundle.SolveSettings{PositionOption: bundle.PositionVelocityAcceleration, SPKSolveDegree: 2}, 3, 0},
		{bundle.SolveSettings{PositionOption: bundle.AllPositionCoefficients, SPKSolveDegree: 4}, 5, 0},
		{bundle.SolveSettings{PointingOption: bundle.AnglesVelocity, CKSolveDegree: 1}, 0, 2},
		{bundle.SolveSettings{PointingOption: bundle.AllPointingCoefficients, CKSolveDegree: 3}, 0, 4},
	}
	for _, tc := range tests {
		if got := tc.settings.PositionCoefficients(); got != tc.wantPos {
			t.Errorf("%+v PositionCoefficients = %d, want %d", tc.settings, got, tc.wantPos)
		}
		if got := tc.settings.AngleCoefficients(); got != tc.wantAng {
			t.Errorf("%+v AngleCoefficients = %d, want %d", tc.settings, got, tc.wantAng)
		}
	}
}

func TestValidateRejectsOverlongSigmaLists(t *testing.T) {
	s := bundle.SolveSettings{
		PositionOption:        bundle.PositionOnly,
		AprioriPositionSigmas: []float64{1, 2, 3, 4},
	}
	if err := s.Validate(); err == nil {
		t.Error("expected error for 4 position sigmas")
	}

	s = bundle.SolveSettings{
		PositionOption: bundle.PositionVelocityAcceleration,
		SPKSolveDegree: 0,
	}
	if err := s.Validate(); err == nil {
		t.Error("expected error when solve degree cannot hold the solved coefficients")
	}
}
