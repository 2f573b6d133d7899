package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, cfg *Config) *Registry {
	t.Helper()
	r := NewRegistry(cfg)
	t.Cleanup(r.Close)
	return r
}

func TestCounterAccumulation(t *testing.T) {
	r := newTestRegistry(t, nil)

	r.IncrementCounter("requests_total", 1, nil)
	r.IncrementCounter("requests_total", 1, nil)
	r.IncrementCounter("requests_total", 5, nil)

	s := r.Summary()
	assert.Equal(t, int64(7), s.Counter("requests_total"))

	// fractional deltas truncate
	r.IncrementCounter("requests_total", 2.9, nil)
	assert.Equal(t, int64(9), r.Summary().Counter("requests_total"))
}

func TestCounterConcurrentMonotonicity(t *testing.T) {
	r := newTestRegistry(t, nil)

	const workers = 8
	const perWorker = 500
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				r.IncrementCounter("ops", 1, nil)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(workers*perWorker), r.Summary().Counter("ops"))
}

func TestGaugeLastWriteWins(t *testing.T) {
	r := newTestRegistry(t, nil)

	r.SetGauge("queue_depth", 3, nil)
	r.SetGauge("queue_depth", 11, nil)

	assert.Equal(t, 11.0, r.Summary().Gauge("queue_depth"))
}

func TestBoundedHistory(t *testing.T) {
	r := newTestRegistry(t, &Config{MaxHistory: 5})

	for i := 0; i < 12; i++ {
		r.SetGauge("g", float64(i), nil)
	}

	s := r.Summary()
	require.Len(t, s.Recent["g"], 5)
	assert.Equal(t, 5, s.TotalDatapoints)
	// retained points are the most recent five, in insertion order
	for i, smp := range s.Recent["g"] {
		assert.Equal(t, float64(7+i), smp.Value)
	}
}

func TestSummaryRecentCappedAtTen(t *testing.T) {
	r := newTestRegistry(t, nil)

	for i := 0; i < 25; i++ {
		r.SetGauge("g", float64(i), nil)
	}

	s := r.Summary()
	require.Len(t, s.Recent["g"], 10)
	assert.Equal(t, 15.0, s.Recent["g"][0].Value)
	assert.Equal(t, 24.0, s.Recent["g"][9].Value)
	assert.Equal(t, 25, s.TotalDatapoints)
	assert.Equal(t, 1, s.ActiveMetrics)
}

func TestSummaryIsDefensiveCopy(t *testing.T) {
	r := newTestRegistry(t, nil)

	tags := map[string]string{"step": "upload"}
	r.IncrementCounter("c", 1, tags)
	tags["step"] = "mutated-by-caller"

	s := r.Summary()
	s.Counters["c"] = 999
	s.Recent["c"][0].Tags["step"] = "mutated-by-reader"

	s2 := r.Summary()
	assert.Equal(t, int64(1), s2.Counter("c"))
	assert.Equal(t, "upload", s2.Recent["c"][0].Tags["step"])
}

func TestTimerRecordsOnce(t *testing.T) {
	r := newTestRegistry(t, nil)

	timer := r.StartTimer("op", nil)
	time.Sleep(10 * time.Millisecond)
	timer.Stop()
	timer.Stop() // second stop must not record again

	s := r.Summary()
	require.Len(t, s.Recent["op"], 1)
	assert.GreaterOrEqual(t, s.Recent["op"][0].Value, 0.01)
}

func TestTimerFiresOnPanicPath(t *testing.T) {
	r := newTestRegistry(t, nil)

	func() {
		defer func() { _ = recover() }()
		defer r.StartTimer("op", nil).Stop()
		panic("boom")
	}()

	require.Len(t, r.Summary().Recent["op"], 1)
}

func TestEmptyNameTolerated(t *testing.T) {
	r := newTestRegistry(t, nil)

	r.IncrementCounter("", 1, nil)

	s := r.Summary()
	assert.Equal(t, 1, s.ActiveMetrics)
	assert.Equal(t, int64(1), s.Counter(""))
}

func TestSweepPurgesOldPointsAndEmptyNames(t *testing.T) {
	r := newTestRegistry(t, &Config{Retention: time.Hour})

	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	now := base
	r.now = func() time.Time { return now }

	r.SetGauge("old_only", 1, nil)
	r.SetGauge("mixed", 1, nil)

	now = base.Add(2 * time.Hour)
	r.SetGauge("mixed", 2, nil)

	r.Sweep()

	s := r.Summary()
	assert.Equal(t, 1, s.ActiveMetrics)
	assert.NotContains(t, s.Recent, "old_only")
	require.Len(t, s.Recent["mixed"], 1)
	assert.Equal(t, 2.0, s.Recent["mixed"][0].Value)
	// gauge projection is not age-evicted
	assert.Equal(t, 2.0, s.Gauge("mixed"))
}

func TestHistogramAndTimerDoNotTouchProjections(t *testing.T) {
	r := newTestRegistry(t, nil)

	r.Record("dist", 4, nil, TypeHistogram)
	r.RecordTimer("took", 1500*time.Millisecond, nil)

	s := r.Summary()
	assert.Empty(t, s.Counters)
	assert.Empty(t, s.Gauges)
	assert.Equal(t, 1.5, s.Recent["took"][0].Value)
}
