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

// Package profile collects wall-clock timing statistics for named operations.
package profile

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Stats aggregates the timings recorded for one operation.
type Stats struct {
	Count int
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
}

// Avg returns the mean duration per call.
func (s Stats) Avg() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// Profiler records operation timings. Safe for concurrent use.
type Profiler struct {
	mu    sync.Mutex
	stats map[string]*Stats
}

// New returns an empty profiler.
func New() *Profiler {
	return &Profiler{stats: make(map[string]*Stats)}
}

// Start begins timing an operation; the returned func stops it and records
// the elapsed duration.
func (p *Profiler) Start(op string) func() {
	begin := time.Now()
	return func() {
		p.record(op, time.Since(begin))
	}
}

func (p *Profiler) record(op string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.stats[op]
	if !ok {
		s = &Stats{Min: d, Max: d}
		p.stats[op] = s
	}
	s.Count++
	s.Total += d
	if d < s.Min {
		s.Min = d
	}
	if d > s.Max {
		s.Max = d
	}
}

// Stats returns a snapshot of the recorded statistics.
func (p *Profiler) Stats() map[string]Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]Stats, len(p.stats))
	for op, s := range p.stats {
		out[op] = *s
	}
	return out
}

// Reset discards all recorded statistics.
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats = make(map[string]*Stats)
}

// Log writes one line per operation at debug level.
func (p *Profiler) Log(logger zerolog.Logger) {
	for op, s := range p.Stats() {
		logger.Debug().
			Str("op", op).
			Int("count", s.Count).
			Dur("total", s.Total).
			Dur("min", s.Min).
			Dur("max", s.Max).
			Dur("avg", s.Avg()).
			Msg("operation timing")
	}
}
