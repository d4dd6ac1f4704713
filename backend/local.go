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
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/questlab/qsim/circuit"
	"github.com/questlab/qsim/profile"
	"github.com/questlab/qsim/quantum"
)

// shardSize is the number of shots one worker draws per shard.
const shardSize = 256

// Local simulates circuits exactly and samples shots across a bounded worker
// pool. One statevector is prepared per shard from an independent seeded
// register, so shards never share mutable state.
type Local struct {
	maxQubits int
	workers   int64
	logger    zerolog.Logger
	profiler  *profile.Profiler
}

// LocalOption configures a Local backend.
type LocalOption func(*Local)

// WithMaxQubits caps the accepted register size.
func WithMaxQubits(n int) LocalOption {
	return func(l *Local) { l.maxQubits = n }
}

// WithWorkers bounds the sampling worker pool.
func WithWorkers(n int) LocalOption {
	return func(l *Local) {
		if n > 0 {
			l.workers = int64(n)
		}
	}
}

// WithLogger attaches a logger for per-run progress output.
func WithLogger(logger zerolog.Logger) LocalOption {
	return func(l *Local) { l.logger = logger }
}

// WithProfiler records simulate/sample timings into the given profiler.
func WithProfiler(p *profile.Profiler) LocalOption {
	return func(l *Local) { l.profiler = p }
}

// NewLocal returns the local simulator backend.
func NewLocal(opts ...LocalOption) *Local {
	l := &Local{
		maxQubits: quantum.MaxQubits,
		workers:   int64(runtime.NumCPU()),
		logger:    zerolog.Nop(),
		profiler:  profile.New(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Name implements Backend.
func (l *Local) Name() string { return "local" }

// MaxQubits implements Backend.
func (l *Local) MaxQubits() int { return l.maxQubits }

// IsSimulator implements Backend.
func (l *Local) IsSimulator() bool { return true }

// shardStats carries one worker's outcome back to the merger.
type shardStats struct {
	counts  Counts
	shots   int
	elapsed time.Duration
	err     error
}

// Run implements Backend. The circuit is simulated once per shard and the
// measured qubits are sampled shardSize shots at a time; shard seeds derive
// from opts.Seed so a fixed seed reproduces the exact histogram.
func (l *Local) Run(ctx context.Context, c *circuit.Circuit, opts RunOptions) (*Result, error) {
	if opts.Shots <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidShots, opts.Shots)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid circuit: %w", err)
	}
	if c.NumQubits > l.maxQubits {
		return nil, fmt.Errorf("%w: %d qubits, backend limit %d", ErrTooLarge, c.NumQubits, l.maxQubits)
	}

	jobID := uuid.NewString()
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	start := time.Now()

	numShards := (opts.Shots + shardSize - 1) / shardSize
	l.logger.Debug().
		Str("job_id", jobID).
		Int("qubits", c.NumQubits).
		Int("shots", opts.Shots).
		Int("shards", numShards).
		Msg("starting local run")

	sem := semaphore.NewWeighted(l.workers)
	results := make([]shardStats, numShards)
	var wg sync.WaitGroup

	for shard := 0; shard < numShards; shard++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		shots := shardSize
		if shard == numShards-1 {
			shots = opts.Shots - shard*shardSize
		}
		go func(shard, shots int) {
			defer wg.Done()
			defer sem.Release(1)
			results[shard] = l.runShard(c, seed+int64(shard), shots)
		}(shard, shots)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run cancelled: %w", err)
	}

	counts := make(Counts)
	total := 0
	for shard, r := range results {
		if r.err != nil {
			return nil, fmt.Errorf("shard %d: %w", shard, r.err)
		}
		counts.Merge(r.counts)
		total += r.shots
	}

	elapsed := time.Since(start)
	l.logger.Info().
		Str("job_id", jobID).
		Int("shots", total).
		Int("outcomes", len(counts)).
		Dur("elapsed", elapsed).
		Msg("local run complete")

	return &Result{
		JobID:   jobID,
		Backend: l.Name(),
		Counts:  counts,
		Shots:   total,
		Elapsed: elapsed,
	}, nil
}

func (l *Local) runShard(c *circuit.Circuit, seed int64, shots int) shardStats {
	start := time.Now()
	stopSim := l.profiler.Start("simulate")
	state, err := Simulate(c, seed)
	stopSim()
	if err != nil {
		return shardStats{err: err}
	}

	measured := c.MeasuredQubits()
	counts := make(Counts)
	stopSample := l.profiler.Start("sample")
	for i := 0; i < shots; i++ {
		outcome := state.SampleOutcome()
		counts[extractMeasured(outcome, measured)]++
	}
	stopSample()

	return shardStats{counts: counts, shots: shots, elapsed: time.Since(start)}
}
