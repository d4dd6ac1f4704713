// Copyright 2025 The qsim Authors
// This file is part of the qsim library.
//
// The qsim library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The qsim library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the qsim library. If not, see <http://www.gnu.org/licenses/>.

// Package store archives completed runs in a local sqlite database. The
// archive is service-level history; the simulator itself keeps no state
// between runs.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	_ "modernc.org/sqlite"

	"github.com/questlab/qsim/backend"
)

var ErrNotFound = errors.New("run not found")

// Run is one archived execution.
type Run struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Algorithm string         `json:"algorithm"`
	Qubits    int            `json:"qubits"`
	Shots     int            `json:"shots"`
	Backend   string         `json:"backend"`
	ElapsedMS int64          `json:"elapsed_ms"`
	Counts    backend.Counts `json:"counts"`
}

// Store is the run archive. Safe for concurrent use; sql.DB pools
// connections internally.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	algorithm  TEXT NOT NULL,
	qubits     INTEGER NOT NULL,
	shots      INTEGER NOT NULL,
	backend    TEXT NOT NULL,
	elapsed_ms INTEGER NOT NULL,
	counts     BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
`

// Open opens or creates the archive at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", path, err)
	}

	// sqlite allows one writer; WAL keeps readers unblocked meanwhile.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// Save archives one run.
func (s *Store) Save(ctx context.Context, run Run) error {
	blob, err := msgpack.Marshal(run.Counts)
	if err != nil {
		return fmt.Errorf("encoding counts: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, algorithm, qubits, shots, backend, elapsed_ms, counts)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UnixMilli(), run.Algorithm, run.Qubits,
		run.Shots, run.Backend, run.ElapsedMS, blob)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}
	return nil
}

// Get fetches one archived run by ID.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, algorithm, qubits, shots, backend, elapsed_ms, counts
		 FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, err
}

// List returns the most recent runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, algorithm, qubits, shots, backend, elapsed_ms, counts
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		run     Run
		created int64
		blob    []byte
	)
	if err := sc.Scan(&run.ID, &created, &run.Algorithm, &run.Qubits,
		&run.Shots, &run.Backend, &run.ElapsedMS, &blob); err != nil {
		return nil, err
	}
	run.CreatedAt = time.UnixMilli(created).UTC()
	if err := msgpack.Unmarshal(blob, &run.Counts); err != nil {
		return nil, fmt.Errorf("decoding counts for %s: %w", run.ID, err)
	}
	return &run, nil
}
