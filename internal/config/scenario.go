package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/peregrine-imaging/bundleadjust/internal/bundle"
	"github.com/peregrine-imaging/bundleadjust/internal/ephemeris"
)

// Scenario is the JSON description of one observation adjustment: the images,
// the shared ephemeris sample tables, the solve settings and, optionally, the
// target body and a recorded correction history to replay. Optional scalar
// fields use pointers so partial files are safe; omitted fields fall back to
// defaults.
type Scenario struct {
	ObservationNumber string `json:"observation_number"`
	InstrumentID      string `json:"instrument_id"`

	Images []ImageConfig `json:"images"`

	// Sample rows are [time, x, y, z] and [time, ra, dec, twist] (radians).
	// All images in the observation share these tables.
	PositionSamples [][4]float64 `json:"position_samples"`
	PointingSamples [][4]float64 `json:"pointing_samples"`

	SolveSettings SolveSettingsConfig `json:"solve_settings"`
	TargetBody    *TargetBodyConfig   `json:"target_body,omitempty"`

	// CorrectionHistory holds one observation-sized correction vector per
	// solver iteration, as produced by the external normal-equations solver.
	CorrectionHistory [][]float64 `json:"correction_history,omitempty"`
}

// ImageConfig identifies one image of the observation.
type ImageConfig struct {
	SerialNumber string `json:"serial_number"`
	FileName     string `json:"file_name"`
}

// SolveSettingsConfig mirrors bundle.SolveSettings with JSON-friendly
// spellings and pointer-field optionals.
type SolveSettingsConfig struct {
	PositionOption        string    `json:"position_option"`
	SPKDegree             *int      `json:"spk_degree,omitempty"`
	SPKSolveDegree        *int      `json:"spk_solve_degree,omitempty"`
	PositionInterpolation *string   `json:"position_interpolation,omitempty"`
	AprioriPositionSigmas []float64 `json:"apriori_position_sigmas,omitempty"`

	PointingOption        string    `json:"pointing_option"`
	SolveTwist            *bool     `json:"solve_twist,omitempty"`
	CKDegree              *int      `json:"ck_degree,omitempty"`
	CKSolveDegree         *int      `json:"ck_solve_degree,omitempty"`
	PointingInterpolation *string   `json:"pointing_interpolation,omitempty"`
	AprioriPointingSigmas []float64 `json:"apriori_pointing_sigmas,omitempty"`
}

// TargetBodyConfig carries the body orientation coefficient sets.
type TargetBodyConfig struct {
	Name         string    `json:"name"`
	PoleRACoefs  []float64 `json:"pole_ra_coefs"`
	PoleDecCoefs []float64 `json:"pole_dec_coefs"`
	PMCoefs      []float64 `json:"pm_coefs"`
}

// LoadScenario loads a Scenario from a JSON file. The file must carry a
// .json extension and stay under the size cap.
func LoadScenario(path string) (*Scenario, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("scenario file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat scenario file: %w", err)
	}
	const maxFileSize = 8 * 1024 * 1024 // 8MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("scenario file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var sc Scenario
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file: %w", err)
	}
	if err := sc.validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", cleanPath, err)
	}
	return &sc, nil
}

func (sc *Scenario) validate() error {
	if sc.ObservationNumber == "" {
		return fmt.Errorf("observation_number is required")
	}
	if len(sc.Images) == 0 {
		return fmt.Errorf("at least one image is required")
	}
	for i, im := range sc.Images {
		if im.SerialNumber == "" {
			return fmt.Errorf("images[%d] is missing serial_number", i)
		}
	}
	return nil
}

func interpolationMode(s *string) (ephemeris.InterpolationMode, error) {
	if s == nil {
		return ephemeris.PolyFunction, nil
	}
	switch *s {
	case "polynomial":
		return ephemeris.PolyFunction, nil
	case "polynomial-over-spline":
		return ephemeris.PolyFunctionOverSpline, nil
	}
	return ephemeris.PolyFunction, fmt.Errorf("unknown interpolation mode %q", *s)
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

// BuildSolveSettings converts the JSON settings into bundle.SolveSettings.
// Omitted degrees default to 2 a-priori / 0 solved, matching the common
// position-bias-only configuration.
func (sc *Scenario) BuildSolveSettings() (bundle.SolveSettings, error) {
	var s bundle.SolveSettings
	var err error

	cfg := sc.SolveSettings
	if s.PositionOption, err = bundle.ParsePositionSolveOption(cfg.PositionOption); err != nil {
		return s, err
	}
	if s.PointingOption, err = bundle.ParsePointingSolveOption(cfg.PointingOption); err != nil {
		return s, err
	}
	if s.PositionInterpolation, err = interpolationMode(cfg.PositionInterpolation); err != nil {
		return s, err
	}
	if s.PointingInterpolation, err = interpolationMode(cfg.PointingInterpolation); err != nil {
		return s, err
	}

	s.SPKDegree = intOr(cfg.SPKDegree, 2)
	s.SPKSolveDegree = intOr(cfg.SPKSolveDegree, 0)
	s.CKDegree = intOr(cfg.CKDegree, 2)
	s.CKSolveDegree = intOr(cfg.CKSolveDegree, 0)
	if cfg.SolveTwist != nil {
		s.SolveTwist = *cfg.SolveTwist
	}
	s.AprioriPositionSigmas = append([]float64(nil), cfg.AprioriPositionSigmas...)
	s.AprioriPointingSigmas = append([]float64(nil), cfg.AprioriPointingSigmas...)

	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// BuildObservation assembles the shared ephemeris objects, the images and
// the Observation itself from the scenario.
func (sc *Scenario) BuildObservation() (*bundle.Observation, error) {
	var trajectory *ephemeris.Trajectory
	if len(sc.PositionSamples) > 0 {
		samples := make([]ephemeris.Sample, len(sc.PositionSamples))
		for i, row := range sc.PositionSamples {
			samples[i] = ephemeris.Sample{Time: row[0], X: row[1], Y: row[2], Z: row[3]}
		}
		trajectory = ephemeris.NewTrajectory(samples)
	}

	var rotation *ephemeris.Rotation
	if len(sc.PointingSamples) > 0 {
		samples := make([]ephemeris.RotationSample, len(sc.PointingSamples))
		for i, row := range sc.PointingSamples {
			samples[i] = ephemeris.RotationSample{Time: row[0], RA: row[1], Dec: row[2], Twist: row[3]}
		}
		rotation = ephemeris.NewRotation(samples)
	}

	var targetBody *bundle.TargetBody
	if sc.TargetBody != nil {
		targetBody = bundle.NewTargetBody(sc.TargetBody.Name,
			sc.TargetBody.PoleRACoefs, sc.TargetBody.PoleDecCoefs, sc.TargetBody.PMCoefs)
	}

	primary := bundle.NewImage(sc.Images[0].SerialNumber, sc.Images[0].FileName, trajectory, rotation)
	obs := bundle.NewObservation(primary, sc.ObservationNumber, sc.InstrumentID, targetBody)
	for _, im := range sc.Images[1:] {
		image := bundle.NewImage(im.SerialNumber, im.FileName, trajectory, rotation)
		if err := obs.Append(image); err != nil {
			return nil, err
		}
	}

	settings, err := sc.BuildSolveSettings()
	if err != nil {
		return nil, err
	}
	if err := obs.SetSolveSettings(settings); err != nil {
		return nil, err
	}
	return obs, nil
}
