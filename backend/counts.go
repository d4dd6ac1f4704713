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
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Counts is a measurement histogram keyed by bitstring. Qubit 0 is the
// rightmost character of the key.
type Counts map[string]int

// Total returns the number of shots recorded.
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Top returns the most frequent outcome and its count. Ties break toward the
// lexicographically smaller key so the answer is deterministic.
func (c Counts) Top() (string, int) {
	best, bestN := "", -1
	for k, n := range c {
		if n > bestN || (n == bestN && k < best) {
			best, bestN = k, n
		}
	}
	if bestN < 0 {
		return "", 0
	}
	return best, bestN
}

// Probability returns the empirical probability of an outcome.
func (c Counts) Probability(outcome string) float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}
	return float64(c[outcome]) / float64(total)
}

// Sorted returns the outcomes ordered by descending count, ties by key.
func (c Counts) Sorted() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if c[keys[i]] != c[keys[j]] {
			return c[keys[i]] > c[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Merge folds another histogram into this one. Addition commutes, so the
// merge order of parallel shards does not affect the result.
func (c Counts) Merge(other Counts) {
	for k, n := range other {
		c[k] += n
	}
}

// TotalVariation returns the total-variation distance between the empirical
// distributions of two histograms: half the L1 distance, in [0, 1].
func (c Counts) TotalVariation(other Counts) float64 {
	keys := make(map[string]struct{}, len(c)+len(other))
	for k := range c {
		keys[k] = struct{}{}
	}
	for k := range other {
		keys[k] = struct{}{}
	}
	diffs := make([]float64, 0, len(keys))
	for k := range keys {
		d := c.Probability(k) - other.Probability(k)
		if d < 0 {
			d = -d
		}
		diffs = append(diffs, d)
	}
	return floats.Sum(diffs) / 2
}

// FormatBasisState renders a basis-state index as an n-character bitstring
// with qubit 0 rightmost.
func FormatBasisState(basis uint64, numQubits int) string {
	buf := make([]byte, numQubits)
	for i := 0; i < numQubits; i++ {
		if basis&(1<<i) != 0 {
			buf[numQubits-1-i] = '1'
		} else {
			buf[numQubits-1-i] = '0'
		}
	}
	return string(buf)
}
