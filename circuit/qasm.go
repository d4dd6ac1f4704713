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

package circuit

import (
	"fmt"
	"strings"
)

// ToQASM renders the circuit as OpenQASM 3. MCZ is emitted as a chain of
// controls on z; CMUL has no standard-gate equivalent and is emitted as a
// comment so the rest of the program stays loadable.
func (c *Circuit) ToQASM() (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString("OPENQASM 3.0;\n")
	sb.WriteString("include \"stdgates.inc\";\n\n")
	fmt.Fprintf(&sb, "qubit[%d] q;\n", c.NumQubits)
	fmt.Fprintf(&sb, "bit[%d] c;\n\n", len(c.MeasuredQubits()))

	for _, g := range c.Gates {
		switch g.Name {
		case GateH:
			fmt.Fprintf(&sb, "h q[%d];\n", g.Qubits[0])
		case GateX:
			fmt.Fprintf(&sb, "x q[%d];\n", g.Qubits[0])
		case GateY:
			fmt.Fprintf(&sb, "y q[%d];\n", g.Qubits[0])
		case GateZ:
			fmt.Fprintf(&sb, "z q[%d];\n", g.Qubits[0])
		case GateCX:
			fmt.Fprintf(&sb, "cx q[%d], q[%d];\n", g.Qubits[0], g.Qubits[1])
		case GateCZ:
			fmt.Fprintf(&sb, "cz q[%d], q[%d];\n", g.Qubits[0], g.Qubits[1])
		case GateSwap:
			fmt.Fprintf(&sb, "swap q[%d], q[%d];\n", g.Qubits[0], g.Qubits[1])
		case GateP:
			fmt.Fprintf(&sb, "p(%g) q[%d];\n", g.Params[0], g.Qubits[0])
		case GateCP:
			fmt.Fprintf(&sb, "cp(%g) q[%d], q[%d];\n", g.Params[0], g.Qubits[0], g.Qubits[1])
		case GateMCZ:
			if len(g.Qubits) == 1 {
				fmt.Fprintf(&sb, "z q[%d];\n", g.Qubits[0])
				break
			}
			n := len(g.Qubits)
			for i := 0; i < n-1; i++ {
				sb.WriteString("ctrl @ ")
			}
			sb.WriteString("z")
			for i, q := range g.Qubits {
				if i == 0 {
					fmt.Fprintf(&sb, " q[%d]", q)
				} else {
					fmt.Fprintf(&sb, ", q[%d]", q)
				}
			}
			sb.WriteString(";\n")
		case GateCMul:
			fmt.Fprintf(&sb, "// cmul(%d mod %d) ctrl q[%d] targets %v\n",
				uint64(g.Params[0]), uint64(g.Params[1]), g.Qubits[0], g.Qubits[1:])
		}
	}

	sb.WriteString("\n")
	for i, q := range c.MeasuredQubits() {
		fmt.Fprintf(&sb, "c[%d] = measure q[%d];\n", i, q)
	}
	return sb.String(), nil
}
