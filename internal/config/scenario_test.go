package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/peregrine-imaging/bundleadjust/internal/bundle"
)

const scenarioFixture = `{
	"observation_number": "obs-7",
	"instrument_id": "ISSNA",
	"images": [
		{"serial_number": "Cassini/ISSNA/1", "file_name": "N1234.cub"},
		{"serial_number": "Cassini/ISSNA/2", "file_name": "N1235.cub"}
	],
	"position_samples": [
		[0, 100, 200, 300],
		[5, 100, 200, 300],
		[10, 100, 200, 300]
	],
	"pointing_samples": [
		[0, 0.5, -0.25, 1.0],
		[5, 0.5, -0.25, 1.0],
		[10, 0.5, -0.25, 1.0]
	],
	"solve_settings": {
		"position_option": "position",
		"pointing_option": "angles",
		"solve_twist": true,
		"apriori_position_sigmas": [10],
		"apriori_pointing_sigmas": [2]
	},
	"target_body": {
		"name": "Enceladus",
		"pole_ra_coefs": [0.1],
		"pole_dec_coefs": [-0.2],
		"pm_coefs": [1.5, 0.02]
	},
	"correction_history": [
		[0.5, 0, 0, 0, 0, 0],
		[0.25, 0, 0, 0.1, 0, 0]
	]
}`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioFixture))
	if err != nil {
		t.Fatalf("LoadScenario failed: %v", err)
	}
	if sc.ObservationNumber != "obs-7" {
		t.Errorf("ObservationNumber = %q, want obs-7", sc.ObservationNumber)
	}
	if len(sc.Images) != 2 {
		t.Errorf("len(Images) = %d, want 2", len(sc.Images))
	}
	if len(sc.CorrectionHistory) != 2 {
		t.Errorf("len(CorrectionHistory) = %d, want 2", len(sc.CorrectionHistory))
	}
}

func TestLoadScenarioRejectsNonJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	if _, err := LoadScenario(path); err == nil {
		t.Fatal("expected extension error")
	}
}

func TestLoadScenarioValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "missing observation number",
			body: `{"instrument_id": "X", "images": [{"serial_number": "a"}], "solve_settings": {"position_option": "none", "pointing_option": "none"}}`,
			want: "observation_number",
		},
		{
			name: "no images",
			body: `{"observation_number": "o", "images": [], "solve_settings": {"position_option": "none", "pointing_option": "none"}}`,
			want: "image",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tc.body))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error = %v, want mention of %q", err, tc.want)
			}
		})
	}
}

func TestBuildSolveSettingsDefaults(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioFixture))
	if err != nil {
		t.Fatalf("LoadScenario failed: %v", err)
	}
	settings, err := sc.BuildSolveSettings()
	if err != nil {
		t.Fatalf("BuildSolveSettings failed: %v", err)
	}
	if settings.PositionOption != bundle.PositionOnly {
		t.Errorf("PositionOption = %v, want PositionOnly", settings.PositionOption)
	}
	if settings.SPKDegree != 2 || settings.SPKSolveDegree != 0 {
		t.Errorf("degrees = %d/%d, want defaults 2/0", settings.SPKDegree, settings.SPKSolveDegree)
	}
	if !settings.SolveTwist {
		t.Error("SolveTwist should be true")
	}
}

func TestBuildSolveSettingsBadOption(t *testing.T) {
	sc := &Scenario{SolveSettings: SolveSettingsConfig{
		PositionOption: "sideways",
		PointingOption: "none",
	}}
	if _, err := sc.BuildSolveSettings(); err == nil {
		t.Fatal("expected error for unknown position option")
	}
}

func TestBuildObservation(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioFixture))
	if err != nil {
		t.Fatalf("LoadScenario failed: %v", err)
	}
	obs, err := sc.BuildObservation()
	if err != nil {
		t.Fatalf("BuildObservation failed: %v", err)
	}

	if obs.Size() != 2 {
		t.Errorf("Size = %d, want 2", obs.Size())
	}
	// position + angles with twist on one coefficient each.
	if obs.NumberParameters() != 6 {
		t.Errorf("NumberParameters = %d, want 6", obs.NumberParameters())
	}
	if obs.Trajectory() == nil || obs.Rotation() == nil {
		t.Fatal("shared ephemeris objects missing")
	}
	// Both images must share the canonical objects.
	for _, im := range obs.Images() {
		if im.Trajectory() != obs.Trajectory() || im.Rotation() != obs.Rotation() {
			t.Errorf("image %s does not share observation ephemeris", im.SerialNumber())
		}
	}
	if obs.TargetBody() == nil || obs.TargetBody().Name() != "Enceladus" {
		t.Error("target body not built")
	}
}
