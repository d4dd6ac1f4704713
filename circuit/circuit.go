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

// Package circuit defines the gate-list representation of a quantum circuit.
// A Circuit is backend-independent: the local simulator executes it directly
// and the remote backend ships it as JSON.
package circuit

import (
	"errors"
	"fmt"
)

// Gate names understood by the execution backends.
const (
	GateH    = "H"
	GateX    = "X"
	GateY    = "Y"
	GateZ    = "Z"
	GateCX   = "CX"
	GateCZ   = "CZ"
	GateSwap = "SWAP"
	GateP    = "P"    // single-qubit phase shift, Params[0] = theta
	GateCP   = "CP"   // controlled phase, Params[0] = theta
	GateMCZ  = "MCZ"  // multi-controlled Z over all listed qubits
	GateCMul = "CMUL" // controlled modular multiplication, Params = [a, modulus]
)

var (
	ErrUnknownGate     = errors.New("unknown gate")
	ErrBadGateArity    = errors.New("wrong number of qubits for gate")
	ErrQubitOutOfRange = errors.New("gate qubit out of range")
	ErrEmptyCircuit    = errors.New("circuit has no qubits")
)

// Gate is a single operation. Qubits[0] is the control for controlled gates;
// for CMUL the remaining qubits form the target register, least significant
// first.
type Gate struct {
	Name   string    `json:"name"`
	Qubits []int     `json:"qubits"`
	Params []float64 `json:"params,omitempty"`
}

// Circuit is an ordered gate list over a fixed-size register. Measured lists
// the qubits read out at the end; empty means the full register.
type Circuit struct {
	NumQubits int    `json:"num_qubits"`
	Gates     []Gate `json:"gates"`
	Measured  []int  `json:"measured,omitempty"`
}

// New returns an empty circuit over n qubits.
func New(numQubits int) *Circuit {
	return &Circuit{NumQubits: numQubits}
}

func (c *Circuit) add(name string, qubits []int, params ...float64) *Circuit {
	c.Gates = append(c.Gates, Gate{Name: name, Qubits: qubits, Params: params})
	return c
}

// H appends a Hadamard gate.
func (c *Circuit) H(q int) *Circuit { return c.add(GateH, []int{q}) }

// X appends a Pauli-X gate.
func (c *Circuit) X(q int) *Circuit { return c.add(GateX, []int{q}) }

// Y appends a Pauli-Y gate.
func (c *Circuit) Y(q int) *Circuit { return c.add(GateY, []int{q}) }

// Z appends a Pauli-Z gate.
func (c *Circuit) Z(q int) *Circuit { return c.add(GateZ, []int{q}) }

// CX appends a controlled-NOT gate.
func (c *Circuit) CX(control, target int) *Circuit {
	return c.add(GateCX, []int{control, target})
}

// CZ appends a controlled-Z gate.
func (c *Circuit) CZ(control, target int) *Circuit {
	return c.add(GateCZ, []int{control, target})
}

// Swap appends a SWAP gate.
func (c *Circuit) Swap(a, b int) *Circuit { return c.add(GateSwap, []int{a, b}) }

// P appends a phase-shift gate with angle theta.
func (c *Circuit) P(q int, theta float64) *Circuit {
	return c.add(GateP, []int{q}, theta)
}

// CP appends a controlled-phase gate with angle theta.
func (c *Circuit) CP(control, target int, theta float64) *Circuit {
	return c.add(GateCP, []int{control, target}, theta)
}

// MCZ appends a multi-controlled Z over the listed qubits.
func (c *Circuit) MCZ(qubits ...int) *Circuit {
	qs := make([]int, len(qubits))
	copy(qs, qubits)
	return c.add(GateMCZ, qs)
}

// CMul appends a controlled modular multiplication: when control reads 1 the
// target register value x becomes a*x mod modulus (values >= modulus are left
// untouched). The register is targets[0] least significant.
func (c *Circuit) CMul(control int, a, modulus uint64, targets []int) *Circuit {
	qs := make([]int, 0, len(targets)+1)
	qs = append(qs, control)
	qs = append(qs, targets...)
	return c.add(GateCMul, qs, float64(a), float64(modulus))
}

// Append concatenates another circuit's gates onto this one. Both circuits
// must address the same register size.
func (c *Circuit) Append(other *Circuit) *Circuit {
	c.Gates = append(c.Gates, other.Gates...)
	return c
}

// Measure records the qubits to read out; with no arguments the full register
// is measured.
func (c *Circuit) Measure(qubits ...int) *Circuit {
	if len(qubits) == 0 {
		qubits = make([]int, c.NumQubits)
		for i := range qubits {
			qubits[i] = i
		}
	}
	c.Measured = append([]int(nil), qubits...)
	return c
}

// MeasuredQubits returns the readout list, defaulting to the full register.
func (c *Circuit) MeasuredQubits() []int {
	if len(c.Measured) > 0 {
		return c.Measured
	}
	all := make([]int, c.NumQubits)
	for i := range all {
		all[i] = i
	}
	return all
}

// Validate checks gate names, arities and qubit ranges.
func (c *Circuit) Validate() error {
	if c.NumQubits <= 0 {
		return ErrEmptyCircuit
	}
	for i, g := range c.Gates {
		if err := validateGate(g, c.NumQubits); err != nil {
			return fmt.Errorf("gate %d (%s): %w", i, g.Name, err)
		}
	}
	for _, q := range c.Measured {
		if q < 0 || q >= c.NumQubits {
			return fmt.Errorf("measured qubit %d: %w", q, ErrQubitOutOfRange)
		}
	}
	return nil
}

func validateGate(g Gate, numQubits int) error {
	for _, q := range g.Qubits {
		if q < 0 || q >= numQubits {
			return fmt.Errorf("%w: qubit %d of %d", ErrQubitOutOfRange, q, numQubits)
		}
	}
	switch g.Name {
	case GateH, GateX, GateY, GateZ:
		if len(g.Qubits) != 1 {
			return ErrBadGateArity
		}
	case GateP:
		if len(g.Qubits) != 1 || len(g.Params) != 1 {
			return ErrBadGateArity
		}
	case GateCX, GateCZ, GateSwap:
		if len(g.Qubits) != 2 {
			return ErrBadGateArity
		}
	case GateCP:
		if len(g.Qubits) != 2 || len(g.Params) != 1 {
			return ErrBadGateArity
		}
	case GateMCZ:
		if len(g.Qubits) == 0 {
			return ErrBadGateArity
		}
	case GateCMul:
		if len(g.Qubits) < 2 || len(g.Params) != 2 {
			return ErrBadGateArity
		}
	default:
		return ErrUnknownGate
	}
	return nil
}

// Size returns the number of gates.
func (c *Circuit) Size() int { return len(c.Gates) }
