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

package backend

import (
	"fmt"

	"github.com/questlab/qsim/circuit"
	"github.com/questlab/qsim/quantum"
)

// Simulate prepares the statevector of a circuit by applying its gates to a
// fresh register. The caller samples shots from the returned state.
func Simulate(c *circuit.Circuit, seed int64) (*quantum.State, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid circuit: %w", err)
	}
	state, err := quantum.NewSeededState(c.NumQubits, seed)
	if err != nil {
		return nil, err
	}
	for i, g := range c.Gates {
		if err := applyGate(state, g); err != nil {
			return nil, fmt.Errorf("gate %d (%s): %w", i, g.Name, err)
		}
	}
	return state, nil
}

func applyGate(s *quantum.State, g circuit.Gate) error {
	switch g.Name {
	case circuit.GateH:
		return s.ApplyHadamard(g.Qubits[0])
	case circuit.GateX:
		return s.ApplyX(g.Qubits[0])
	case circuit.GateY:
		return s.ApplyY(g.Qubits[0])
	case circuit.GateZ:
		return s.ApplyZ(g.Qubits[0])
	case circuit.GateCX:
		return s.ApplyCNOT(g.Qubits[0], g.Qubits[1])
	case circuit.GateCZ:
		return s.ApplyCZ(g.Qubits[0], g.Qubits[1])
	case circuit.GateSwap:
		return s.ApplySwap(g.Qubits[0], g.Qubits[1])
	case circuit.GateP:
		return s.ApplyPhaseShift(g.Qubits[0], g.Params[0])
	case circuit.GateCP:
		return s.ApplyControlledPhase(g.Qubits[0], g.Qubits[1], g.Params[0])
	case circuit.GateMCZ:
		return s.ApplyMCZ(g.Qubits)
	case circuit.GateCMul:
		a, modulus := uint64(g.Params[0]), uint64(g.Params[1])
		if modulus == 0 {
			return fmt.Errorf("%w: zero modulus", circuit.ErrBadGateArity)
		}
		targets := g.Qubits[1:]
		return s.ApplyControlledPermutation(g.Qubits[0], targets, func(x uint64) uint64 {
			// Values outside the residue ring pass through so the map
			// stays a bijection on the full register.
			if x >= modulus {
				return x
			}
			return (a * x) % modulus
		})
	default:
		return circuit.ErrUnknownGate
	}
}

// extractMeasured projects a full-register outcome onto the measured qubits,
// producing the bitstring key with measured[0] rightmost.
func extractMeasured(outcome uint64, measured []int) string {
	buf := make([]byte, len(measured))
	for i, q := range measured {
		if outcome&(1<<q) != 0 {
			buf[len(measured)-1-i] = '1'
		} else {
			buf[len(measured)-1-i] = '0'
		}
	}
	return string(buf)
}
