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

// Package hardware probes the host to size the simulator: how many qubits
// fit in memory and how many sampling workers to run.
package hardware

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/questlab/qsim/quantum"
)

// amplitudeBytes is the footprint of one complex128 amplitude.
const amplitudeBytes = 16

// Info describes the host's simulation capacity.
type Info struct {
	LogicalCores int    `json:"logical_cores"`
	TotalMemory  uint64 `json:"total_memory"`
	FreeMemory   uint64 `json:"free_memory"`
	CPUModel     string `json:"cpu_model"`
	MaxQubits    int    `json:"max_qubits"`
	Workers      int    `json:"workers"`
}

// Detect probes CPU and memory. Probe failures degrade to runtime defaults
// instead of erroring; a missing /proc is not a reason to refuse to simulate.
func Detect() Info {
	info := Info{
		LogicalCores: runtime.NumCPU(),
		Workers:      runtime.NumCPU(),
		MaxQubits:    quantum.MaxQubits,
	}

	if counts, err := cpu.Counts(true); err == nil && counts > 0 {
		info.LogicalCores = counts
		info.Workers = counts
	}
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		info.CPUModel = infos[0].ModelName
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.TotalMemory = vm.Total
		info.FreeMemory = vm.Available
		info.MaxQubits = maxQubitsFor(vm.Available)
	}
	return info
}

// maxQubitsFor returns the largest register whose statevector fits in half
// the available memory, leaving room for the permutation scratch vector.
func maxQubitsFor(available uint64) int {
	budget := available / 2
	n := 0
	for n < quantum.MaxQubits {
		need := uint64(amplitudeBytes) << uint(n+1)
		if need > budget {
			break
		}
		n++
	}
	if n < 1 {
		n = 1
	}
	return n
}
