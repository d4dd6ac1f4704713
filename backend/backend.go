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

// Package backend executes circuits and returns measurement histograms. The
// local backend simulates exactly and samples shots in parallel shards; the
// remote backend submits the circuit to a qsim job server over HTTP.
package backend

import (
	"context"
	"errors"
	"time"

	"github.com/questlab/qsim/circuit"
)

var (
	ErrInvalidShots = errors.New("shot count must be positive")
	ErrTooLarge     = errors.New("circuit exceeds backend capacity")
)

// RunOptions controls one execution. Seed 0 means time-derived sampling; any
// other value makes the histogram reproducible.
type RunOptions struct {
	Shots int   `json:"shots"`
	Seed  int64 `json:"seed,omitempty"`
}

// Result is the outcome of one circuit execution.
type Result struct {
	JobID   string        `json:"job_id"`
	Backend string        `json:"backend"`
	Counts  Counts        `json:"counts"`
	Shots   int           `json:"shots"`
	Elapsed time.Duration `json:"elapsed"`
}

// Backend runs circuits. Implementations must be safe for concurrent use.
type Backend interface {
	// Name identifies the backend in results and logs.
	Name() string
	// MaxQubits is the largest register the backend accepts.
	MaxQubits() int
	// IsSimulator reports whether results come from exact simulation.
	IsSimulator() bool
	// Run executes the circuit and returns the shot histogram. The context
	// bounds the whole execution.
	Run(ctx context.Context, c *circuit.Circuit, opts RunOptions) (*Result, error)
}
