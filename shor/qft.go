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

package shor

import (
	"math"

	"github.com/questlab/qsim/circuit"
)

// QFT builds the quantum Fourier transform over qubits [0, n), qubit 0 least
// significant: |x> -> 2^(-n/2) sum_y e^(2*pi*i*x*y/2^n) |y>.
func QFT(n int) *circuit.Circuit {
	c := circuit.New(n)
	for i := n - 1; i >= 0; i-- {
		c.H(i)
		for j := i - 1; j >= 0; j-- {
			c.CP(j, i, math.Pi/float64(uint64(1)<<(i-j)))
		}
	}
	for i := 0; i < n/2; i++ {
		c.Swap(i, n-1-i)
	}
	return c
}

// InverseQFT builds the inverse transform: the QFT gates reversed with
// negated phases.
func InverseQFT(n int) *circuit.Circuit {
	c := circuit.New(n)
	for i := 0; i < n/2; i++ {
		c.Swap(i, n-1-i)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < i; j++ {
			c.CP(j, i, -math.Pi/float64(uint64(1)<<(i-j)))
		}
		c.H(i)
	}
	return c
}
