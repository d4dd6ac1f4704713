package grover

import (
	"context"
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questlab/qsim/backend"
	"github.com/questlab/qsim/circuit"
)

// simulate runs a circuit from |0...0> and returns the final amplitudes.
func simulate(t *testing.T, c *circuit.Circuit) []complex128 {
	t.Helper()
	state, err := backend.Simulate(c, 1)
	require.NoError(t, err)
	return state.Amplitudes()
}

// targetIndex converts a target bitstring (qubit 0 rightmost) to its basis
// state index.
func targetIndex(target string) uint64 {
	idx := uint64(0)
	for i := 0; i < len(target); i++ {
		if target[len(target)-1-i] == '1' {
			idx |= 1 << i
		}
	}
	return idx
}

func TestIterations(t *testing.T) {
	assert.Equal(t, 0, Iterations(0))
	assert.Equal(t, 0, Iterations(1))
	assert.Equal(t, 1, Iterations(2))
	assert.Equal(t, 2, Iterations(3))
	assert.Equal(t, 3, Iterations(4))
	assert.Equal(t, 25, Iterations(10))
}

func TestOracleMarksOnlyTarget(t *testing.T) {
	const n = 3
	for _, target := range []string{"000", "101", "111", "010"} {
		t.Run(target, func(t *testing.T) {
			oracle, err := Oracle(n, target)
			require.NoError(t, err)

			// Uniform superposition, then the oracle.
			c := circuit.New(n)
			for q := 0; q < n; q++ {
				c.H(q)
			}
			c.Append(oracle)
			amps := simulate(t, c)

			want := 1 / math.Sqrt(1<<n)
			marked := targetIndex(target)
			for i, a := range amps {
				expected := want
				if uint64(i) == marked {
					expected = -want
				}
				assert.InDelta(t, expected, real(a), 1e-9, "basis %d", i)
				assert.InDelta(t, 0, imag(a), 1e-9, "basis %d", i)
			}
		})
	}
}

func TestOracleInvolution(t *testing.T) {
	const n = 4
	oracle, err := Oracle(n, "1010")
	require.NoError(t, err)

	// A non-trivial input state: H layer plus some phase structure.
	prep := circuit.New(n).H(0).H(1).CX(1, 2).H(3).P(2, 0.7)

	before := simulate(t, prep)

	twice := circuit.New(n).Append(prep).Append(oracle).Append(oracle)
	after := simulate(t, twice)

	for i := range before {
		assert.InDelta(t, 0, cmplx.Abs(before[i]-after[i]), 1e-9, "basis %d", i)
	}
}

func TestNormPreserved(t *testing.T) {
	c, err := Build(4, "0110")
	require.NoError(t, err)

	state, err := backend.Simulate(c, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, state.Norm(), 1e-9)
}

func TestTwoQubitConvergence(t *testing.T) {
	// One round on two qubits amplifies the target to certainty.
	c, err := Build(2, "11")
	require.NoError(t, err)

	state, err := backend.Simulate(c, 1)
	require.NoError(t, err)
	prob := state.Probability(targetIndex("11"))
	assert.Greater(t, prob, 0.90)
}

func TestSearchHistogram(t *testing.T) {
	local := backend.NewLocal()
	result, err := Search(context.Background(), local, RunConfig{
		N:      4,
		Target: "1010",
		Shots:  1024,
		Seed:   42,
	})
	require.NoError(t, err)

	// Conservation: every shot lands in exactly one bucket.
	assert.Equal(t, 1024, result.Counts.Total())

	// After three rounds the target dominates the histogram.
	top, count := result.Counts.Top()
	assert.Equal(t, "1010", top)
	assert.Greater(t, count, 900)
}

func TestSearchReproducible(t *testing.T) {
	local := backend.NewLocal()
	cfg := RunConfig{N: 3, Target: "110", Shots: 512, Seed: 7}

	a, err := Search(context.Background(), local, cfg)
	require.NoError(t, err)
	b, err := Search(context.Background(), local, cfg)
	require.NoError(t, err)

	assert.Equal(t, a.Counts, b.Counts)
}

func TestDegenerateSizes(t *testing.T) {
	// Single-qubit searches run with zero rounds and stay near uniform.
	local := backend.NewLocal()
	result, err := Search(context.Background(), local, RunConfig{
		N:      1,
		Target: "1",
		Shots:  2000,
		Seed:   3,
	})
	require.NoError(t, err)
	assert.Equal(t, 2000, result.Counts.Total())
	assert.InDelta(t, 0.5, result.Counts.Probability("1"), 0.1)
}

func TestValidation(t *testing.T) {
	local := backend.NewLocal()
	ctx := context.Background()

	t.Run("zero qubits", func(t *testing.T) {
		_, err := Build(0, "")
		assert.ErrorIs(t, err, ErrInvalidQubits)
	})

	t.Run("target too short", func(t *testing.T) {
		_, err := Build(3, "10")
		assert.ErrorIs(t, err, ErrTargetLength)
	})

	t.Run("target too long", func(t *testing.T) {
		_, err := Build(3, "1010")
		assert.ErrorIs(t, err, ErrTargetLength)
	})

	t.Run("non-binary target", func(t *testing.T) {
		_, err := Build(3, "1x0")
		assert.ErrorIs(t, err, ErrTargetChars)
	})

	t.Run("oracle rejects bad target", func(t *testing.T) {
		_, err := Oracle(3, "102")
		assert.ErrorIs(t, err, ErrTargetChars)
	})

	t.Run("zero shots", func(t *testing.T) {
		_, err := Search(ctx, local, RunConfig{N: 2, Target: "11", Shots: 0})
		assert.ErrorIs(t, err, ErrInvalidShots)
	})

	t.Run("nil backend", func(t *testing.T) {
		_, err := Search(ctx, nil, RunConfig{N: 2, Target: "11", Shots: 10})
		assert.ErrorIs(t, err, ErrNoBackend)
	})
}

func TestSuccessProbability(t *testing.T) {
	// Matches the known closed form at the tested sizes.
	assert.InDelta(t, 1.0, SuccessProbability(2, 1), 1e-9)
	assert.Greater(t, SuccessProbability(4, 3), 0.95)
	assert.Less(t, SuccessProbability(4, 0), 0.10)
}
