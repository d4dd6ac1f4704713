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

// Package quantum implements an exact statevector simulator. A register of n
// qubits is held as 2^n complex amplitudes; gates are applied in place by
// iterating basis-state index pairs, so no gate matrix is ever materialized.
//
// Qubit 0 corresponds to the least significant bit of a basis-state index.
package quantum

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"
	"time"
)

// MaxQubits bounds the register size: 30 qubits is 2^30 amplitudes, 16 GiB of
// state, the most a single host can reasonably hold.
const MaxQubits = 30

var (
	ErrInvalidQubitCount = errors.New("qubit count must be positive")
	ErrTooManyQubits     = fmt.Errorf("qubit count exceeds maximum of %d", MaxQubits)
	ErrQubitOutOfRange   = errors.New("qubit index out of range")
	ErrInvalidState      = errors.New("invalid quantum state")
)

// State is the full statevector of an n-qubit register. It is not safe for
// concurrent mutation; callers that share a State must serialize access.
type State struct {
	numQubits int
	amps      []complex128
	rng       *rand.Rand
}

// NewState allocates an n-qubit register initialized to |0...0>. The shot
// sampler is seeded from the wall clock; use NewSeededState for reproducible
// sampling.
func NewState(numQubits int) (*State, error) {
	return NewSeededState(numQubits, time.Now().UnixNano())
}

// NewSeededState allocates an n-qubit register whose measurement sampling is
// driven by the given seed.
func NewSeededState(numQubits int, seed int64) (*State, error) {
	if numQubits <= 0 {
		return nil, ErrInvalidQubitCount
	}
	if numQubits > MaxQubits {
		return nil, ErrTooManyQubits
	}
	amps := make([]complex128, 1<<numQubits)
	amps[0] = 1
	return &State{
		numQubits: numQubits,
		amps:      amps,
		rng:       rand.New(rand.NewSource(seed)),
	}, nil
}

// NumQubits returns the register size.
func (s *State) NumQubits() int { return s.numQubits }

// Reset returns the register to |0...0>.
func (s *State) Reset() {
	for i := range s.amps {
		s.amps[i] = 0
	}
	s.amps[0] = 1
}

// Amplitudes returns a copy of the statevector.
func (s *State) Amplitudes() []complex128 {
	out := make([]complex128, len(s.amps))
	copy(out, s.amps)
	return out
}

// SetAmplitudes overwrites the statevector. The vector must have the right
// dimension and unit norm.
func (s *State) SetAmplitudes(amps []complex128) error {
	if len(amps) != len(s.amps) {
		return fmt.Errorf("%w: expected %d amplitudes, got %d", ErrInvalidState, len(s.amps), len(amps))
	}
	norm := 0.0
	for _, a := range amps {
		norm += real(a)*real(a) + imag(a)*imag(a)
	}
	if math.Abs(norm-1) > 1e-9 {
		return fmt.Errorf("%w: squared norm is %g, want 1", ErrInvalidState, norm)
	}
	copy(s.amps, amps)
	return nil
}

// Amplitude returns the amplitude of a single basis state.
func (s *State) Amplitude(basis uint64) (complex128, error) {
	if basis >= uint64(len(s.amps)) {
		return 0, fmt.Errorf("%w: basis state %d out of %d", ErrInvalidState, basis, len(s.amps))
	}
	return s.amps[basis], nil
}

// Probability returns |amplitude|^2 of a single basis state.
func (s *State) Probability(basis uint64) float64 {
	if basis >= uint64(len(s.amps)) {
		return 0
	}
	a := s.amps[basis]
	return real(a)*real(a) + imag(a)*imag(a)
}

// Probabilities returns the measurement distribution over all basis states.
func (s *State) Probabilities() []float64 {
	probs := make([]float64, len(s.amps))
	for i, a := range s.amps {
		probs[i] = real(a)*real(a) + imag(a)*imag(a)
	}
	return probs
}

// Norm returns the sum of squared amplitude magnitudes. It is 1 for any valid
// state; gates must preserve it.
func (s *State) Norm() float64 {
	norm := 0.0
	for _, a := range s.amps {
		norm += real(a)*real(a) + imag(a)*imag(a)
	}
	return norm
}

func (s *State) checkQubit(qubit int) error {
	if qubit < 0 || qubit >= s.numQubits {
		return fmt.Errorf("%w: qubit %d of %d", ErrQubitOutOfRange, qubit, s.numQubits)
	}
	return nil
}

// ApplyHadamard applies the Hadamard gate to one qubit.
func (s *State) ApplyHadamard(qubit int) error {
	if err := s.checkQubit(qubit); err != nil {
		return err
	}
	h := complex(1/math.Sqrt2, 0)
	bit := 1 << qubit
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			a0, a1 := s.amps[i], s.amps[j]
			s.amps[i] = h * (a0 + a1)
			s.amps[j] = h * (a0 - a1)
		}
	}
	return nil
}

// ApplyX applies the Pauli-X (NOT) gate to one qubit.
func (s *State) ApplyX(qubit int) error {
	if err := s.checkQubit(qubit); err != nil {
		return err
	}
	bit := 1 << qubit
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
	return nil
}

// ApplyY applies the Pauli-Y gate to one qubit.
func (s *State) ApplyY(qubit int) error {
	if err := s.checkQubit(qubit); err != nil {
		return err
	}
	bit := 1 << qubit
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			s.amps[i], s.amps[j] = -1i*s.amps[j], 1i*s.amps[i]
		}
	}
	return nil
}

// ApplyZ applies the Pauli-Z gate to one qubit: a phase flip on every basis
// state where the qubit reads 1.
func (s *State) ApplyZ(qubit int) error {
	if err := s.checkQubit(qubit); err != nil {
		return err
	}
	bit := 1 << qubit
	for i := range s.amps {
		if i&bit != 0 {
			s.amps[i] = -s.amps[i]
		}
	}
	return nil
}

// ApplyCNOT applies a controlled-NOT with the given control and target qubits.
func (s *State) ApplyCNOT(control, target int) error {
	if err := s.checkQubit(control); err != nil {
		return err
	}
	if err := s.checkQubit(target); err != nil {
		return err
	}
	if control == target {
		return fmt.Errorf("%w: control and target must differ", ErrQubitOutOfRange)
	}
	cBit, tBit := 1<<control, 1<<target
	for i := range s.amps {
		if i&cBit != 0 && i&tBit == 0 {
			j := i | tBit
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
	return nil
}

// ApplyCZ applies a controlled-Z between two qubits.
func (s *State) ApplyCZ(control, target int) error {
	if err := s.checkQubit(control); err != nil {
		return err
	}
	if err := s.checkQubit(target); err != nil {
		return err
	}
	if control == target {
		return fmt.Errorf("%w: control and target must differ", ErrQubitOutOfRange)
	}
	cBit, tBit := 1<<control, 1<<target
	for i := range s.amps {
		if i&cBit != 0 && i&tBit != 0 {
			s.amps[i] = -s.amps[i]
		}
	}
	return nil
}

// ApplySwap exchanges the states of two qubits.
func (s *State) ApplySwap(a, b int) error {
	if err := s.checkQubit(a); err != nil {
		return err
	}
	if err := s.checkQubit(b); err != nil {
		return err
	}
	if a == b {
		return nil
	}
	aBit, bBit := 1<<a, 1<<b
	for i := range s.amps {
		if i&aBit != 0 && i&bBit == 0 {
			j := i ^ aBit ^ bBit
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
	return nil
}

// ApplyPhaseShift multiplies the |1> amplitude of a qubit by e^(i*theta).
func (s *State) ApplyPhaseShift(qubit int, theta float64) error {
	if err := s.checkQubit(qubit); err != nil {
		return err
	}
	phase := cmplx.Rect(1, theta)
	bit := 1 << qubit
	for i := range s.amps {
		if i&bit != 0 {
			s.amps[i] *= phase
		}
	}
	return nil
}

// ApplyControlledPhase applies a phase of e^(i*theta) to basis states where
// both qubits read 1. Used by the inverse QFT.
func (s *State) ApplyControlledPhase(control, target int, theta float64) error {
	if err := s.checkQubit(control); err != nil {
		return err
	}
	if err := s.checkQubit(target); err != nil {
		return err
	}
	if control == target {
		return fmt.Errorf("%w: control and target must differ", ErrQubitOutOfRange)
	}
	phase := cmplx.Rect(1, theta)
	cBit, tBit := 1<<control, 1<<target
	for i := range s.amps {
		if i&cBit != 0 && i&tBit != 0 {
			s.amps[i] *= phase
		}
	}
	return nil
}

// ApplyMCZ applies a multi-controlled Z over the listed qubits: a phase flip
// on every basis state where all of them read 1. With one qubit it is the
// plain Z gate. This is the marking primitive of the search oracle.
func (s *State) ApplyMCZ(qubits []int) error {
	if len(qubits) == 0 {
		return fmt.Errorf("%w: no qubits given", ErrQubitOutOfRange)
	}
	mask := 0
	for _, q := range qubits {
		if err := s.checkQubit(q); err != nil {
			return err
		}
		if mask&(1<<q) != 0 {
			return fmt.Errorf("%w: duplicate qubit %d", ErrQubitOutOfRange, q)
		}
		mask |= 1 << q
	}
	for i := range s.amps {
		if i&mask == mask {
			s.amps[i] = -s.amps[i]
		}
	}
	return nil
}

// ApplyControlledPermutation permutes the basis states of the target qubits
// whenever the control qubit reads 1. The permutation maps the value read
// from the target qubits (targets[0] least significant) to a new value; it
// must be a bijection on [0, 2^len(targets)) or the result is not unitary.
// This is how modular-multiplication gates are executed.
func (s *State) ApplyControlledPermutation(control int, targets []int, perm func(uint64) uint64) error {
	if err := s.checkQubit(control); err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("%w: no target qubits given", ErrQubitOutOfRange)
	}
	tMask := 0
	for _, q := range targets {
		if err := s.checkQubit(q); err != nil {
			return err
		}
		if q == control {
			return fmt.Errorf("%w: control overlaps targets", ErrQubitOutOfRange)
		}
		if tMask&(1<<q) != 0 {
			return fmt.Errorf("%w: duplicate qubit %d", ErrQubitOutOfRange, q)
		}
		tMask |= 1 << q
	}
	cBit := 1 << control
	next := make([]complex128, len(s.amps))
	for i := range s.amps {
		if i&cBit == 0 {
			next[i] += s.amps[i]
			continue
		}
		v := uint64(0)
		for k, q := range targets {
			if i&(1<<q) != 0 {
				v |= 1 << k
			}
		}
		w := perm(v)
		j := i &^ tMask
		for k, q := range targets {
			if w&(1<<k) != 0 {
				j |= 1 << q
			}
		}
		next[j] += s.amps[i]
	}
	err := 0.0 // permutations conserve norm; a lossy map shows up here
	for i := range next {
		a := next[i]
		err += real(a)*real(a) + imag(a)*imag(a)
	}
	if math.Abs(err-s.Norm()) > 1e-9 {
		return fmt.Errorf("%w: permutation is not a bijection", ErrInvalidState)
	}
	s.amps = next
	return nil
}

// SampleOutcome draws one full-register measurement outcome from the current
// distribution without collapsing the state. Repeated calls model independent
// shots of the same prepared circuit.
func (s *State) SampleOutcome() uint64 {
	r := s.rng.Float64()
	cumulative := 0.0
	for i, a := range s.amps {
		cumulative += real(a)*real(a) + imag(a)*imag(a)
		if r < cumulative {
			return uint64(i)
		}
	}
	return uint64(len(s.amps) - 1)
}

// MeasureQubit measures one qubit, collapses the state accordingly and
// returns the observed bit.
func (s *State) MeasureQubit(qubit int) (int, error) {
	if err := s.checkQubit(qubit); err != nil {
		return -1, err
	}
	bit := 1 << qubit
	prob1 := 0.0
	for i, a := range s.amps {
		if i&bit != 0 {
			prob1 += real(a)*real(a) + imag(a)*imag(a)
		}
	}
	result := 0
	if s.rng.Float64() < prob1 {
		result = 1
	}
	norm := 0.0
	for i := range s.amps {
		observed := 0
		if i&bit != 0 {
			observed = 1
		}
		if observed != result {
			s.amps[i] = 0
		} else {
			a := s.amps[i]
			norm += real(a)*real(a) + imag(a)*imag(a)
		}
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range s.amps {
			s.amps[i] /= complex(norm, 0)
		}
	}
	return result, nil
}

// MeasureAll measures the full register, collapses the state to the observed
// basis state and returns its index.
func (s *State) MeasureAll() uint64 {
	result := s.SampleOutcome()
	for i := range s.amps {
		s.amps[i] = 0
	}
	s.amps[result] = 1
	return result
}
