package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questlab/qsim/backend"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(id string) Run {
	return Run{
		ID:        id,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		Algorithm: "grover",
		Qubits:    4,
		Shots:     1024,
		Backend:   "local",
		ElapsedMS: 12,
		Counts:    backend.Counts{"1010": 961, "0000": 63},
	}
}

func TestSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run := sampleRun("job-1")
	require.NoError(t, s.Save(ctx, run))

	got, err := s.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, run.Algorithm, got.Algorithm)
	assert.Equal(t, run.Counts, got.Counts)
	assert.Equal(t, run.CreatedAt, got.CreatedAt)
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"a", "b", "c"} {
		run := sampleRun(id)
		run.CreatedAt = time.UnixMilli(int64(1000 * (i + 1))).UTC()
		require.NoError(t, s.Save(ctx, run))
	}

	runs, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)
}

func TestDuplicateID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleRun("dup")))
	assert.Error(t, s.Save(ctx, sampleRun("dup")))
}
