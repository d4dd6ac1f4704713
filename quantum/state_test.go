package quantum

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newState(t *testing.T, n int) *State {
	t.Helper()
	s, err := NewSeededState(n, 1)
	require.NoError(t, err)
	return s
}

func TestNewState(t *testing.T) {
	s := newState(t, 3)
	assert.Equal(t, 3, s.NumQubits())

	amps := s.Amplitudes()
	require.Len(t, amps, 8)
	assert.Equal(t, complex128(1), amps[0])
	assert.InDelta(t, 1.0, s.Norm(), 1e-12)
}

func TestNewStateValidation(t *testing.T) {
	_, err := NewSeededState(0, 1)
	assert.ErrorIs(t, err, ErrInvalidQubitCount)

	_, err = NewSeededState(MaxQubits+1, 1)
	assert.ErrorIs(t, err, ErrTooManyQubits)
}

func TestHadamard(t *testing.T) {
	s := newState(t, 1)
	require.NoError(t, s.ApplyHadamard(0))

	h := 1 / math.Sqrt2
	assert.InDelta(t, h, real(s.Amplitudes()[0]), 1e-12)
	assert.InDelta(t, h, real(s.Amplitudes()[1]), 1e-12)

	// H is self-inverse.
	require.NoError(t, s.ApplyHadamard(0))
	assert.InDelta(t, 1.0, s.Probability(0), 1e-12)
}

func TestPauliGates(t *testing.T) {
	t.Run("X flips", func(t *testing.T) {
		s := newState(t, 2)
		require.NoError(t, s.ApplyX(1))
		assert.InDelta(t, 1.0, s.Probability(2), 1e-12)
	})

	t.Run("Z phase on one", func(t *testing.T) {
		s := newState(t, 1)
		require.NoError(t, s.ApplyX(0))
		require.NoError(t, s.ApplyZ(0))
		a, err := s.Amplitude(1)
		require.NoError(t, err)
		assert.InDelta(t, -1.0, real(a), 1e-12)
	})

	t.Run("Y on zero", func(t *testing.T) {
		s := newState(t, 1)
		require.NoError(t, s.ApplyY(0))
		a, err := s.Amplitude(1)
		require.NoError(t, err)
		assert.InDelta(t, 0, cmplx.Abs(a-1i), 1e-12)
	})

	t.Run("Y on one", func(t *testing.T) {
		s := newState(t, 1)
		require.NoError(t, s.ApplyX(0))
		require.NoError(t, s.ApplyY(0))
		a, err := s.Amplitude(0)
		require.NoError(t, err)
		assert.InDelta(t, 0, cmplx.Abs(a-(-1i)), 1e-12)
	})

	t.Run("Y squared is identity", func(t *testing.T) {
		s := newState(t, 2)
		require.NoError(t, s.ApplyHadamard(0))
		require.NoError(t, s.ApplyCNOT(0, 1))
		before := s.Amplitudes()
		require.NoError(t, s.ApplyY(1))
		require.NoError(t, s.ApplyY(1))
		after := s.Amplitudes()
		for i := range before {
			assert.InDelta(t, 0, cmplx.Abs(before[i]-after[i]), 1e-12, "basis %d", i)
		}
	})
}

func TestBellPair(t *testing.T) {
	s := newState(t, 2)
	require.NoError(t, s.ApplyHadamard(0))
	require.NoError(t, s.ApplyCNOT(0, 1))

	assert.InDelta(t, 0.5, s.Probability(0), 1e-12)
	assert.InDelta(t, 0.5, s.Probability(3), 1e-12)
	assert.InDelta(t, 0.0, s.Probability(1), 1e-12)
	assert.InDelta(t, 0.0, s.Probability(2), 1e-12)
}

func TestSwap(t *testing.T) {
	s := newState(t, 3)
	require.NoError(t, s.ApplyX(0))
	require.NoError(t, s.ApplySwap(0, 2))
	assert.InDelta(t, 1.0, s.Probability(4), 1e-12)
}

func TestControlledPhase(t *testing.T) {
	s := newState(t, 2)
	require.NoError(t, s.ApplyX(0))
	require.NoError(t, s.ApplyX(1))
	require.NoError(t, s.ApplyControlledPhase(0, 1, math.Pi/2))

	a, err := s.Amplitude(3)
	require.NoError(t, err)
	assert.InDelta(t, 0, cmplx.Abs(a-1i), 1e-12)
}

func TestMCZ(t *testing.T) {
	s := newState(t, 3)
	for q := 0; q < 3; q++ {
		require.NoError(t, s.ApplyHadamard(q))
	}
	require.NoError(t, s.ApplyMCZ([]int{0, 1, 2}))

	amps := s.Amplitudes()
	h := 1 / math.Sqrt(8)
	for i, a := range amps {
		want := h
		if i == 7 {
			want = -h
		}
		assert.InDelta(t, want, real(a), 1e-12, "basis %d", i)
	}
}

func TestMCZValidation(t *testing.T) {
	s := newState(t, 2)
	assert.ErrorIs(t, s.ApplyMCZ(nil), ErrQubitOutOfRange)
	assert.ErrorIs(t, s.ApplyMCZ([]int{0, 0}), ErrQubitOutOfRange)
	assert.ErrorIs(t, s.ApplyMCZ([]int{0, 5}), ErrQubitOutOfRange)
}

func TestControlledPermutation(t *testing.T) {
	// Controlled multiplication by 2 mod 5 on a 3-qubit register.
	s := newState(t, 4)
	require.NoError(t, s.ApplyX(0))       // control on
	require.NoError(t, s.ApplyX(1))       // register value 1
	err := s.ApplyControlledPermutation(0, []int{1, 2, 3}, func(x uint64) uint64 {
		if x >= 5 {
			return x
		}
		return (2 * x) % 5
	})
	require.NoError(t, err)

	// Value 1 became 2: qubit 2 set, control still on.
	assert.InDelta(t, 1.0, s.Probability(0b0101), 1e-12)
	assert.InDelta(t, 1.0, s.Norm(), 1e-12)
}

func TestControlledPermutationInactiveControl(t *testing.T) {
	s := newState(t, 3)
	require.NoError(t, s.ApplyX(1))
	err := s.ApplyControlledPermutation(0, []int{1, 2}, func(x uint64) uint64 {
		return (x + 1) % 4
	})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, s.Probability(0b010), 1e-12)
}

func TestControlledPermutationRejectsLossyMap(t *testing.T) {
	s := newState(t, 3)
	require.NoError(t, s.ApplyHadamard(0))
	require.NoError(t, s.ApplyHadamard(1))
	require.NoError(t, s.ApplyHadamard(2))
	err := s.ApplyControlledPermutation(0, []int{1, 2}, func(uint64) uint64 {
		return 0
	})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestGatesPreserveNorm(t *testing.T) {
	s := newState(t, 4)
	require.NoError(t, s.ApplyHadamard(0))
	require.NoError(t, s.ApplyHadamard(2))
	require.NoError(t, s.ApplyCNOT(0, 1))
	require.NoError(t, s.ApplyY(3))
	require.NoError(t, s.ApplyCZ(1, 2))
	require.NoError(t, s.ApplyPhaseShift(2, 0.3))
	require.NoError(t, s.ApplyMCZ([]int{0, 1, 2, 3}))
	assert.InDelta(t, 1.0, s.Norm(), 1e-12)
}

func TestSetAmplitudes(t *testing.T) {
	s := newState(t, 1)

	require.NoError(t, s.SetAmplitudes([]complex128{0, 1}))
	assert.InDelta(t, 1.0, s.Probability(1), 1e-12)

	assert.ErrorIs(t, s.SetAmplitudes([]complex128{1}), ErrInvalidState)
	assert.ErrorIs(t, s.SetAmplitudes([]complex128{1, 1}), ErrInvalidState)
}

func TestSampleOutcomeDeterministic(t *testing.T) {
	a := newState(t, 3)
	b := newState(t, 3)
	for q := 0; q < 3; q++ {
		require.NoError(t, a.ApplyHadamard(q))
		require.NoError(t, b.ApplyHadamard(q))
	}
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.SampleOutcome(), b.SampleOutcome())
	}
}

func TestSampleDoesNotCollapse(t *testing.T) {
	s := newState(t, 2)
	require.NoError(t, s.ApplyHadamard(0))

	seen := map[uint64]bool{}
	for i := 0; i < 200; i++ {
		seen[s.SampleOutcome()] = true
	}
	assert.True(t, seen[0])
	assert.True(t, seen[1])
}

func TestMeasureQubitCollapses(t *testing.T) {
	s := newState(t, 2)
	require.NoError(t, s.ApplyHadamard(0))
	require.NoError(t, s.ApplyCNOT(0, 1))

	bit, err := s.MeasureQubit(0)
	require.NoError(t, err)

	// The pair is perfectly correlated, so the partner matches.
	other, err := s.MeasureQubit(1)
	require.NoError(t, err)
	assert.Equal(t, bit, other)
	assert.InDelta(t, 1.0, s.Norm(), 1e-12)
}

func TestMeasureAll(t *testing.T) {
	s := newState(t, 2)
	require.NoError(t, s.ApplyX(1))

	outcome := s.MeasureAll()
	assert.Equal(t, uint64(2), outcome)
	assert.InDelta(t, 1.0, s.Probability(2), 1e-12)
}

func TestReset(t *testing.T) {
	s := newState(t, 2)
	require.NoError(t, s.ApplyHadamard(0))
	s.Reset()
	assert.InDelta(t, 1.0, s.Probability(0), 1e-12)
}
