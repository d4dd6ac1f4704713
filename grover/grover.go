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

// Package grover builds amplitude-amplification circuits that search an
// unstructured space of 2^n bitstrings for a single marked target.
//
// Target strings follow the histogram-key convention: the last character is
// qubit 0, so "10" marks the state where qubit 1 reads 1 and qubit 0 reads 0.
package grover

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/questlab/qsim/backend"
	"github.com/questlab/qsim/circuit"
	"github.com/questlab/qsim/quantum"
)

var (
	ErrInvalidQubits = errors.New("qubit count must be positive")
	ErrTargetLength  = errors.New("target length must equal qubit count")
	ErrTargetChars   = errors.New("target must contain only '0' and '1'")
	ErrInvalidShots  = errors.New("shot count must be positive")
	ErrNoBackend     = errors.New("no backend given")
)

// RunConfig describes one search run. Seed 0 leaves shot sampling
// time-derived; any other value makes the histogram reproducible.
type RunConfig struct {
	N      int
	Target string
	Shots  int
	Seed   int64
}

func validate(n int, target string) error {
	if n <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidQubits, n)
	}
	if n > quantum.MaxQubits {
		return fmt.Errorf("%w: %d qubits", quantum.ErrTooManyQubits, n)
	}
	if len(target) != n {
		return fmt.Errorf("%w: target %q has length %d, want %d", ErrTargetLength, target, len(target), n)
	}
	for i, ch := range target {
		if ch != '0' && ch != '1' {
			return fmt.Errorf("%w: target %q has %q at position %d", ErrTargetChars, target, ch, i)
		}
	}
	return nil
}

// targetBit reports the bit the target assigns to a qubit. The last character
// of the string is qubit 0.
func targetBit(target string, qubit int) byte {
	return target[len(target)-1-qubit]
}

// Iterations returns the optimal number of amplification rounds for an
// n-qubit search, floor(pi/4 * sqrt(2^n)). Registers of one qubit or fewer
// cannot be amplified and get zero rounds.
func Iterations(n int) int {
	if n <= 1 {
		return 0
	}
	return int(math.Floor(math.Pi / 4 * math.Sqrt(float64(uint64(1)<<n))))
}

// Oracle builds the phase oracle marking the target bitstring: every qubit
// where the target reads 0 is wrapped in X gates around a multi-controlled Z,
// so exactly the target basis state picks up a phase of -1. Applying the
// oracle twice restores the input state.
func Oracle(n int, target string) (*circuit.Circuit, error) {
	if err := validate(n, target); err != nil {
		return nil, err
	}
	c := circuit.New(n)
	flipZeros := func() {
		for q := 0; q < n; q++ {
			if targetBit(target, q) == '0' {
				c.X(q)
			}
		}
	}
	flipZeros()
	qubits := make([]int, n)
	for q := range qubits {
		qubits[q] = q
	}
	c.MCZ(qubits...)
	flipZeros()
	return c, nil
}

// Diffusion builds the inversion-about-the-mean operator: Hadamards on every
// qubit around a phase flip of the all-zero state.
func Diffusion(n int) (*circuit.Circuit, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQubits, n)
	}
	if n > quantum.MaxQubits {
		return nil, fmt.Errorf("%w: %d qubits", quantum.ErrTooManyQubits, n)
	}
	c := circuit.New(n)
	hAll := func() {
		for q := 0; q < n; q++ {
			c.H(q)
		}
	}
	xAll := func() {
		for q := 0; q < n; q++ {
			c.X(q)
		}
	}
	hAll()
	xAll()
	qubits := make([]int, n)
	for q := range qubits {
		qubits[q] = q
	}
	c.MCZ(qubits...)
	xAll()
	hAll()
	return c, nil
}

// Build assembles the full search circuit: uniform superposition, then
// Iterations(n) rounds of oracle followed by diffusion, then measurement of
// the whole register. Degenerate sizes (n <= 1) build with zero rounds and
// yield a near-uniform histogram.
func Build(n int, target string) (*circuit.Circuit, error) {
	if err := validate(n, target); err != nil {
		return nil, err
	}
	oracle, err := Oracle(n, target)
	if err != nil {
		return nil, err
	}
	diffusion, err := Diffusion(n)
	if err != nil {
		return nil, err
	}

	c := circuit.New(n)
	for q := 0; q < n; q++ {
		c.H(q)
	}
	for i := 0; i < Iterations(n); i++ {
		c.Append(oracle)
		c.Append(diffusion)
	}
	c.Measure()
	return c, nil
}

// Search builds the circuit for cfg and runs it on the given backend. The
// returned histogram keys are bitstrings in the same orientation as
// cfg.Target, and their counts sum to cfg.Shots.
func Search(ctx context.Context, b backend.Backend, cfg RunConfig) (*backend.Result, error) {
	if b == nil {
		return nil, ErrNoBackend
	}
	if cfg.Shots <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidShots, cfg.Shots)
	}
	c, err := Build(cfg.N, cfg.Target)
	if err != nil {
		return nil, err
	}
	result, err := b.Run(ctx, c, backend.RunOptions{Shots: cfg.Shots, Seed: cfg.Seed})
	if err != nil {
		return nil, fmt.Errorf("running search circuit: %w", err)
	}
	return result, nil
}

// SuccessProbability returns the exact probability of measuring the target
// after k amplification rounds on n qubits, sin^2((2k+1) * theta) with
// sin(theta) = 2^(-n/2). Useful for sizing shot budgets.
func SuccessProbability(n, k int) float64 {
	if n <= 0 {
		return 0
	}
	theta := math.Asin(1 / math.Sqrt(float64(uint64(1)<<n)))
	s := math.Sin(float64(2*k+1) * theta)
	return s * s
}
