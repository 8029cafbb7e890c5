package bundle_test

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/peregrine-imaging/bundleadjust/internal/bundle"
)

// parseRow splits one report row into its label and numeric/text fields.
func parseRow(t *testing.T, row string) (label string, fields []string) {
	t.Helper()
	if len(row) < 9 {
		t.Fatalf("row too short: %q", row)
	}
	return row[:9], strings.Fields(row[9:])
}

func TestFormatBundleOutputStringPositionRows(t *testing.T) {
	traj := constantTrajectory(100, 200, 300)
	obs := bundle.NewObservation(bundle.NewImage("SN1", "img1.cub", traj, nil), "obs1", "CAM", nil)
	if err := obs.SetSolveSettings(positionOnlySettings(10)); err != nil {
		t.Fatalf("SetSolveSettings failed: %v", err)
	}
	if err := obs.InitializeExteriorOrientation(); err != nil {
		t.Fatalf("InitializeExteriorOrientation failed: %v", err)
	}
	if err := obs.ApplyParameterCorrections([]float64{0.5, 0, 0}); err != nil {
		t.Fatalf("ApplyParameterCorrections failed: %v", err)
	}

	out := obs.FormatBundleOutputString(false)
	rows := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d:\n%s", len(rows), out)
	}

	label, fields := parseRow(t, rows[0])
	if label != "  X  (t0)" {
		t.Errorf("row label = %q, want %q", label, "  X  (t0)")
	}
	if len(fields) != 5 {
		t.Fatalf("expected 5 fields after label, got %d: %v", len(fields), fields)
	}

	before, _ := strconv.ParseFloat(fields[0], 64)
	correction, _ := strconv.ParseFloat(fields[1], 64)
	final, _ := strconv.ParseFloat(fields[2], 64)
	if math.Abs(before-100) > 1e-6 {
		t.Errorf("value before correction = %v, want 100", before)
	}
	if math.Abs(correction-0.5) > 1e-6 {
		t.Errorf("correction = %v, want 0.5", correction)
	}
	if math.Abs(final-100.5) > 1e-6 {
		t.Errorf("final value = %v, want 100.5", final)
	}
	if fields[3] != "10" {
		t.Errorf("a-priori sigma field = %q, want 10", fields[3])
	}
	if fields[4] != "N/A" {
		t.Errorf("adjusted sigma field = %q, want N/A without error propagation", fields[4])
	}
}

func TestFormatBundleOutputStringAngleDegrees(t *testing.T) {
	rot := constantRotation(0.5, -0.25, 0)
	obs := bundle.NewObservation(bundle.NewImage("SN1", "img1.cub", nil, rot), "obs1", "CAM", nil)
	err := obs.SetSolveSettings(bundle.SolveSettings{
		PointingOption:        bundle.AnglesOnly,
		AprioriPointingSigmas: []float64{2},
	})
	if err != nil {
		t.Fatalf("SetSolveSettings failed: %v", err)
	}
	if err := obs.InitializeExteriorOrientation(); err != nil {
		t.Fatalf("InitializeExteriorOrientation failed: %v", err)
	}

	// 0.1 radian correction on RA.
	if err := obs.ApplyParameterCorrections([]float64{0.1, 0}); err != nil {
		t.Fatalf("ApplyParameterCorrections failed: %v", err)
	}

	out := obs.FormatBundleOutputString(false)
	rows := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d:\n%s", len(rows), out)
	}

	rad2deg := 180.0 / math.Pi
	label, fields := parseRow(t, rows[0])
	if label != " RA  (t0)" {
		t.Errorf("row label = %q, want %q", label, " RA  (t0)")
	}

	before, _ := strconv.ParseFloat(fields[0], 64)
	correction, _ := strconv.ParseFloat(fields[1], 64)
	final, _ := strconv.ParseFloat(fields[2], 64)

	// All three columns are degrees; the stored state is radians.
	if math.Abs(final-0.6*rad2deg) > 1e-6 {
		t.Errorf("final RA = %v deg, want %v", final, 0.6*rad2deg)
	}
	if math.Abs(correction-0.1*rad2deg) > 1e-6 {
		t.Errorf("RA correction = %v deg, want %v", correction, 0.1*rad2deg)
	}
	if math.Abs(before-0.5*rad2deg) > 1e-6 {
		t.Errorf("RA before correction = %v deg, want %v", before, 0.5*rad2deg)
	}

	// Unit round-trip: reported/radian correction ratio is the conversion
	// factor, within the 8 decimals the report prints.
	if math.Abs(correction/0.1-rad2deg) > 1e-6 {
		t.Errorf("correction scaling = %v, want %v", correction/0.1, rad2deg)
	}
}

func TestFormatSentinelSigmas(t *testing.T) {
	traj := constantTrajectory(1, 2, 3)
	obs := bundle.NewObservation(bundle.NewImage("SN1", "img1.cub", traj, nil), "obs1", "CAM", nil)
	if err := obs.SetSolveSettings(positionOnlySettings()); err != nil {
		t.Fatalf("SetSolveSettings failed: %v", err)
	}
	if err := obs.InitializeExteriorOrientation(); err != nil {
		t.Fatalf("InitializeExteriorOrientation failed: %v", err)
	}

	for _, errorPropagation := range []bool{false, true} {
		out := obs.FormatBundleOutputString(errorPropagation)
		for _, row := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
			_, fields := parseRow(t, row)
			if fields[3] != "N/A" {
				t.Errorf("errorPropagation=%v: a-priori sigma = %q, want N/A", errorPropagation, fields[3])
			}
			if fields[4] != "N/A" {
				t.Errorf("errorPropagation=%v: adjusted sigma = %q, want N/A", errorPropagation, fields[4])
			}
		}
	}
}

func TestFormatAdjustedSigmasWithErrorPropagation(t *testing.T) {
	traj := constantTrajectory(1, 2, 3)
	obs := bundle.NewObservation(bundle.NewImage("SN1", "img1.cub", traj, nil), "obs1", "CAM", nil)
	if err := obs.SetSolveSettings(positionOnlySettings()); err != nil {
		t.Fatalf("SetSolveSettings failed: %v", err)
	}
	if err := obs.InitializeExteriorOrientation(); err != nil {
		t.Fatalf("InitializeExteriorOrientation failed: %v", err)
	}

	// Error propagation populates the adjusted sigmas in place.
	adjusted := obs.AdjustedSigmas()
	adjusted[0] = 0.125
	adjusted[1] = 0.25
	adjusted[2] = 0.5

	out := obs.FormatBundleOutputString(true)
	rows := strings.Split(strings.TrimRight(out, "\n"), "\n")
	want := []string{"0.12500000", "0.25000000", "0.50000000"}
	for i, row := range rows {
		_, fields := parseRow(t, row)
		if fields[4] != want[i] {
			t.Errorf("row %d adjusted sigma = %q, want %q", i, fields[4], want[i])
		}
	}
}

func TestFormatHeaderListsImages(t *testing.T) {
	traj := constantTrajectory(1, 2, 3)
	obs := bundle.NewObservation(bundle.NewImage("SN1", "img1.cub", traj, nil), "obs1", "ISSNA", nil)
	if err := obs.Append(bundle.NewImage("SN2", "img2.cub", traj, nil)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	header := obs.FormatHeader()
	for _, want := range []string{"obs1", "ISSNA", "SN1", "img1.cub", "SN2", "img2.cub"} {
		if !strings.Contains(header, want) {
			t.Errorf("header missing %q:\n%s", want, header)
		}
	}
}
