// Command jigsaw runs one observation's bundle-adjustment bookkeeping from a
// scenario file: it builds the observation, fits the a-priori polynomials,
// replays the correction history produced by the normal-equations solver and
// prints the adjusted-parameter report. Optionally it records the run into a
// SQLite solve database and renders convergence plots.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"

	"github.com/peregrine-imaging/bundleadjust/internal/bundle"
	"github.com/peregrine-imaging/bundleadjust/internal/config"
	"github.com/peregrine-imaging/bundleadjust/internal/convergence"
	"github.com/peregrine-imaging/bundleadjust/internal/monitoring"
	"github.com/peregrine-imaging/bundleadjust/internal/solvedb"
)

func main() {
	scenarioPath := flag.String("scenario", "", "path to the scenario JSON file")
	dbPath := flag.String("db", "", "optional SQLite solve database to record the run into")
	outDir := flag.String("out", "", "optional directory for convergence PNG plots")
	htmlChart := flag.Bool("charts", false, "write an HTML convergence chart into -out")
	errorPropagation := flag.Bool("error-propagation", false, "include adjusted sigmas in the report")
	verbose := flag.Bool("verbose", false, "log per-iteration detail")
	flag.Parse()

	if *scenarioPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	monitoring.Verbose = *verbose

	if err := run(*scenarioPath, *dbPath, *outDir, *htmlChart, *errorPropagation); err != nil {
		log.Fatalf("jigsaw: %v", err)
	}
}

func run(scenarioPath, dbPath, outDir string, htmlChart, errorPropagation bool) error {
	sc, err := config.LoadScenario(scenarioPath)
	if err != nil {
		return err
	}

	obs, err := sc.BuildObservation()
	if err != nil {
		return err
	}
	monitoring.Logf("observation %s: %d image(s), %d parameters",
		obs.ObservationNumber(), obs.Size(), obs.NumberParameters())

	if err := obs.InitializeExteriorOrientation(); err != nil {
		return err
	}
	if sc.TargetBody != nil {
		if err := obs.InitializeBodyRotation(); err != nil {
			return err
		}
	}

	var store *solvedb.Store
	var runID string
	if dbPath != "" {
		if store, err = solvedb.NewStore(dbPath); err != nil {
			return fmt.Errorf("failed to open solve database: %w", err)
		}
		defer store.Close()
		if runID, err = store.BeginRun(filepath.Base(scenarioPath)); err != nil {
			return err
		}
	}

	recorder := convergence.NewRecorder()
	if err := replayCorrections(obs, sc.CorrectionHistory, recorder, store, runID); err != nil {
		return err
	}

	fmt.Print(obs.FormatHeader())
	fmt.Print(obs.FormatBundleOutputString(errorPropagation))

	if store != nil {
		if err := store.RecordParameters(runID, obs); err != nil {
			return err
		}
	}
	if outDir != "" {
		if err := recorder.WritePlots(outDir); err != nil {
			return err
		}
		if htmlChart {
			if err := recorder.WriteHTML(filepath.Join(outDir, "convergence.html")); err != nil {
				return err
			}
		}
	}
	return nil
}

// replayCorrections applies each recorded solver iteration to the observation
// and records its correction norm.
func replayCorrections(obs *bundle.Observation, history [][]float64,
	recorder *convergence.Recorder, store *solvedb.Store, runID string) error {

	for i, corrections := range history {
		iteration := i + 1
		if err := obs.ApplyParameterCorrections(corrections); err != nil {
			return fmt.Errorf("iteration %d: %w", iteration, err)
		}

		norm := floats.Norm(corrections, 2)
		monitoring.Debugf("iteration %d: observation %s correction norm %.6g",
			iteration, obs.ObservationNumber(), norm)
		recorder.Record(obs.ObservationNumber(), iteration, norm)
		if store != nil {
			if err := store.RecordIteration(runID, iteration, obs.ObservationNumber(), norm); err != nil {
				return err
			}
		}
	}
	return nil
}
