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

// Package shor factors integers by quantum order finding. The order of a
// modulo N is read off a phase-estimation circuit: 2n control qubits drive
// controlled modular multiplications by a^(2^k) on an n-qubit work register,
// an inverse Fourier transform exposes the phase, and continued fractions
// recover the order from the measured value.
package shor

import (
	"context"
	"errors"
	"fmt"
	"math/bits"
	"math/rand"
	"strconv"
	"time"

	"github.com/holiman/uint256"

	"github.com/questlab/qsim/backend"
	"github.com/questlab/qsim/circuit"
	"github.com/questlab/qsim/quantum"
)

var (
	ErrTooSmall      = errors.New("modulus must be at least 4")
	ErrTooLarge      = errors.New("modulus needs more qubits than the simulator holds")
	ErrPrime         = errors.New("modulus is prime")
	ErrBadBase       = errors.New("base must lie in [2, N) and be coprime to N")
	ErrOrderNotFound = errors.New("no measured phase yielded the order")
	ErrNoFactor      = errors.New("all attempts failed to produce a factor")
)

// FactorConfig describes a factoring run. Attempts bounds the number of
// random bases tried; Shots is the sample budget per order-finding circuit.
// Zero values fall back to 8 attempts, 64 shots and a time-derived seed.
type FactorConfig struct {
	N        uint64
	Attempts int
	Shots    int
	Seed     int64
}

// registerSizes returns the work-register width n and control width 2n for a
// modulus, checking the combined circuit fits the simulator.
func registerSizes(n uint64) (work, control int, err error) {
	work = bits.Len64(n)
	control = 2 * work
	if work+control > quantum.MaxQubits {
		return 0, 0, fmt.Errorf("%w: N=%d needs %d qubits", ErrTooLarge, n, work+control)
	}
	return work, control, nil
}

// Build assembles the order-finding circuit for a modulo N: controls in
// [0, 2n) are put in superposition and each control k multiplies the work
// register by a^(2^k) mod N, then the inverse Fourier transform is applied to
// the controls and only they are measured.
func Build(a, n uint64) (*circuit.Circuit, error) {
	if n < 4 {
		return nil, fmt.Errorf("%w: got %d", ErrTooSmall, n)
	}
	if a < 2 || a >= n || gcd(a, n) != 1 {
		return nil, fmt.Errorf("%w: a=%d, N=%d", ErrBadBase, a, n)
	}
	work, control, err := registerSizes(n)
	if err != nil {
		return nil, err
	}

	c := circuit.New(control + work)
	targets := make([]int, work)
	for i := range targets {
		targets[i] = control + i
	}

	// Work register starts in |1>.
	c.X(targets[0])
	for k := 0; k < control; k++ {
		c.H(k)
	}

	// Multiplier for control k is a^(2^k), found by repeated squaring.
	mult := a % n
	for k := 0; k < control; k++ {
		c.CMul(k, mult, n, targets)
		mult = mulMod(mult, mult, n)
	}

	c.Append(InverseQFT(control))

	controls := make([]int, control)
	for i := range controls {
		controls[i] = i
	}
	c.Measure(controls...)
	return c, nil
}

// Order finds the multiplicative order of a modulo N by running the
// order-finding circuit on the given backend and decoding the measured
// phases, most frequent first.
func Order(ctx context.Context, b backend.Backend, a, n uint64, opts backend.RunOptions) (uint64, error) {
	c, err := Build(a, n)
	if err != nil {
		return 0, err
	}
	result, err := b.Run(ctx, c, opts)
	if err != nil {
		return 0, fmt.Errorf("running order-finding circuit: %w", err)
	}

	_, control, err := registerSizes(n)
	if err != nil {
		return 0, err
	}
	denom := uint64(1) << control

	for _, key := range result.Counts.Sorted() {
		y, err := strconv.ParseUint(key, 2, 64)
		if err != nil || y == 0 {
			continue
		}
		// The measured value approximates s/r scaled by 2^m; continued
		// fractions with denominators bounded by N recover r.
		_, r := convergent(y, denom, n)
		if r == 0 {
			continue
		}
		if powMod(a, r, n) == 1 {
			return r, nil
		}
	}
	return 0, ErrOrderNotFound
}

// Factor finds a nontrivial factor pair of cfg.N. Even moduli split
// immediately; primes are rejected up front. Otherwise random bases are tried
// until an even order gives gcd(a^(r/2) +/- 1, N) a nontrivial value.
func Factor(ctx context.Context, b backend.Backend, cfg FactorConfig) (uint64, uint64, error) {
	n := cfg.N
	if n < 4 {
		return 0, 0, fmt.Errorf("%w: got %d", ErrTooSmall, n)
	}
	if n%2 == 0 {
		return 2, n / 2, nil
	}
	if isPrime(n) {
		return 0, 0, fmt.Errorf("%w: %d", ErrPrime, n)
	}
	if _, _, err := registerSizes(n); err != nil {
		return 0, 0, err
	}

	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = 8
	}
	shots := cfg.Shots
	if shots <= 0 {
		shots = 64
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	for attempt := 0; attempt < attempts; attempt++ {
		a := 2 + uint64(rng.Int63n(int64(n-2)))
		if g := gcd(a, n); g != 1 {
			return g, n / g, nil
		}

		r, err := Order(ctx, b, a, n, backend.RunOptions{Shots: shots, Seed: seed + int64(attempt) + 1})
		if err != nil {
			if errors.Is(err, ErrOrderNotFound) {
				continue
			}
			return 0, 0, err
		}
		if r%2 != 0 {
			continue
		}
		x := powMod(a, r/2, n)
		if x == n-1 {
			continue
		}
		for _, g := range []uint64{gcd(x-1, n), gcd(x+1, n)} {
			if g != 1 && g != n {
				return g, n / g, nil
			}
		}
	}
	return 0, 0, fmt.Errorf("%w: N=%d after %d attempts", ErrNoFactor, n, attempts)
}

// convergent returns the continued-fraction convergent s/r of y/q with the
// largest denominator r <= limit. r is 0 when no convergent qualifies.
func convergent(y, q, limit uint64) (s, r uint64) {
	num, den := y, q
	h0, h1 := uint64(0), uint64(1)
	k0, k1 := uint64(1), uint64(0)
	for den != 0 {
		a := num / den
		num, den = den, num%den
		h0, h1 = h1, a*h1+h0
		k0, k1 = k1, a*k1+k0
		if k1 > limit {
			break
		}
		s, r = h1, k1
	}
	return s, r
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// mulMod multiplies modulo n without overflow via 256-bit intermediates.
func mulMod(a, b, n uint64) uint64 {
	var out uint256.Int
	out.MulMod(uint256.NewInt(a), uint256.NewInt(b), uint256.NewInt(n))
	return out.Uint64()
}

// powMod raises a to the e-th power modulo n by square and multiply.
func powMod(a, e, n uint64) uint64 {
	m := uint256.NewInt(n)
	result := uint256.NewInt(1)
	base := uint256.NewInt(a % n)
	for ; e > 0; e >>= 1 {
		if e&1 == 1 {
			result.MulMod(result, base, m)
		}
		base.MulMod(base, base, m)
	}
	return result.Uint64()
}

func isPrime(n uint64) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	for d := uint64(3); d*d <= n; d += 2 {
		if n%d == 0 {
			return false
		}
	}
	return true
}
