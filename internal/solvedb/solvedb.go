// Package solvedb persists solve runs to SQLite: one row per run, one row per
// observation per iteration, and the final adjusted parameter table. The CLI
// records into it so successive runs of the same scenario can be compared.
package solvedb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/peregrine-imaging/bundleadjust/internal/bundle"
)

type Store struct {
	*sql.DB
}

// NewStore opens (creating if needed) the solve database at path.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id            TEXT PRIMARY KEY,
			scenario          TEXT,
			started           TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS iterations (
			run_id            TEXT,
			iteration         BIGINT,
			observation       TEXT,
			correction_norm   DOUBLE,
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);
		CREATE TABLE IF NOT EXISTS parameters (
			run_id            TEXT,
			observation       TEXT,
			name              TEXT,
			value             DOUBLE,
			correction        DOUBLE,
			apriori_sigma     DOUBLE,
			adjusted_sigma    DOUBLE,
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db}, nil
}

// BeginRun records a new solve run and returns its id.
func (s *Store) BeginRun(scenario string) (string, error) {
	runID := uuid.NewString()
	_, err := s.Exec(`INSERT INTO runs (run_id, scenario, started) VALUES (?, ?, ?)`,
		runID, scenario, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return runID, nil
}

// RecordIteration stores one observation's correction norm for one iteration.
func (s *Store) RecordIteration(runID string, iteration int, observation string, correctionNorm float64) error {
	_, err := s.Exec(
		`INSERT INTO iterations (run_id, iteration, observation, correction_norm) VALUES (?, ?, ?, ?)`,
		runID, iteration, observation, correctionNorm)
	if err != nil {
		return fmt.Errorf("failed to record iteration %d: %w", iteration, err)
	}
	return nil
}

// nullableSigma maps the null sigma sentinel to SQL NULL.
func nullableSigma(sigma float64) sql.NullFloat64 {
	if bundle.IsNullSigma(sigma) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: sigma, Valid: true}
}

// RecordParameters stores the observation's final adjusted parameter table.
func (s *Store) RecordParameters(runID string, obs *bundle.Observation) error {
	names := obs.ParameterList()
	corrections := obs.ParameterCorrections()
	aprioriSigmas := obs.AprioriSigmas()
	adjustedSigmas := obs.AdjustedSigmas()

	tx, err := s.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin parameter transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO parameters
		(run_id, observation, name, value, correction, apriori_sigma, adjusted_sigma)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare parameter insert: %w", err)
	}
	defer stmt.Close()

	values := obs.ParameterValues()
	for i, name := range names {
		_, err := stmt.Exec(runID, obs.ObservationNumber(), name,
			values[i], corrections[i],
			nullableSigma(aprioriSigmas[i]), nullableSigma(adjustedSigmas[i]))
		if err != nil {
			return fmt.Errorf("failed to record parameter %q: %w", name, err)
		}
	}
	return tx.Commit()
}

// IterationRecord is one stored iteration row.
type IterationRecord struct {
	Iteration      int
	Observation    string
	CorrectionNorm float64
}

// IterationHistory returns the stored iterations of a run in order.
func (s *Store) IterationHistory(runID string) ([]IterationRecord, error) {
	rows, err := s.Query(
		`SELECT iteration, observation, correction_norm FROM iterations
		 WHERE run_id = ? ORDER BY iteration, observation`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query iterations: %w", err)
	}
	defer rows.Close()

	var records []IterationRecord
	for rows.Next() {
		var r IterationRecord
		if err := rows.Scan(&r.Iteration, &r.Observation, &r.CorrectionNorm); err != nil {
			return nil, fmt.Errorf("failed to scan iteration row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
