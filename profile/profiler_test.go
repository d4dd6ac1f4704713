package profile

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfilerRecords(t *testing.T) {
	p := New()

	stop := p.Start("simulate")
	time.Sleep(time.Millisecond)
	stop()

	stats := p.Stats()
	require.Contains(t, stats, "simulate")
	s := stats["simulate"]
	assert.Equal(t, 1, s.Count)
	assert.GreaterOrEqual(t, s.Total, time.Millisecond)
	assert.Equal(t, s.Min, s.Max)
	assert.Equal(t, s.Total, s.Avg())
}

func TestProfilerAggregates(t *testing.T) {
	p := New()
	for i := 0; i < 5; i++ {
		p.record("op", time.Duration(i+1)*time.Millisecond)
	}

	s := p.Stats()["op"]
	assert.Equal(t, 5, s.Count)
	assert.Equal(t, time.Millisecond, s.Min)
	assert.Equal(t, 5*time.Millisecond, s.Max)
	assert.Equal(t, 3*time.Millisecond, s.Avg())
}

func TestProfilerConcurrent(t *testing.T) {
	p := New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.record("op", time.Millisecond)
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, p.Stats()["op"].Count)
}

func TestProfilerReset(t *testing.T) {
	p := New()
	p.record("op", time.Millisecond)
	p.Reset()
	assert.Empty(t, p.Stats())
}

func TestAvgEmpty(t *testing.T) {
	assert.Equal(t, time.Duration(0), Stats{}.Avg())
}
