// Package metrics implements a thread-safe in-process metrics registry with
// bounded per-metric history and time-based retention. It is the leaf of the
// monitoring core: the alert manager and health checker only ever read
// point-in-time snapshots produced by Summary.
package metrics

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// recentSamples is how many trailing points per metric a Summary carries.
	recentSamples = 10

	defaultMaxHistory    = 10000
	defaultSweepInterval = 5 * time.Minute
	defaultRetention     = 24 * time.Hour
)

// Config tunes a Registry. Zero values fall back to defaults.
type Config struct {
	// MaxHistory caps the number of retained points per metric name.
	MaxHistory int `json:"maxHistory" yaml:"maxHistory"`
	// SweepInterval is how often the background sweeper runs.
	SweepInterval time.Duration `json:"sweepInterval" yaml:"sweepInterval"`
	// Retention is the age past which points are purged.
	Retention time.Duration `json:"retention" yaml:"retention"`
}

func (c *Config) withDefaults() Config {
	out := Config{MaxHistory: defaultMaxHistory, SweepInterval: defaultSweepInterval, Retention: defaultRetention}
	if c == nil {
		return out
	}
	if c.MaxHistory > 0 {
		out.MaxHistory = c.MaxHistory
	}
	if c.SweepInterval > 0 {
		out.SweepInterval = c.SweepInterval
	}
	if c.Retention > 0 {
		out.Retention = c.Retention
	}
	return out
}

// Registry accumulates named metrics for the process lifetime. A single
// coarse mutex guards all internal maps collectively; metric volume is small
// enough that torn-snapshot safety matters more than per-metric parallelism.
type Registry struct {
	mu       sync.Mutex
	history  map[string]*ring
	gauges   map[string]float64
	counters map[string]int64

	cfg Config
	now func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewRegistry builds a registry and starts its background retention sweeper.
// Callers own the lifecycle: Close stops the sweeper.
func NewRegistry(cfg *Config) *Registry {
	r := &Registry{
		history:  make(map[string]*ring),
		gauges:   make(map[string]float64),
		counters: make(map[string]int64),
		cfg:      cfg.withDefaults(),
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go r.sweepLoop()
	return r
}

// Close stops the background sweeper. Safe to call more than once. Recorded
// state stays readable after Close.
func (r *Registry) Close() {
	r.stopOnce.Do(func() { close(r.stop) })
	<-r.done
}

func (r *Registry) sweepLoop() {
	defer close(r.done)
	t := time.NewTicker(r.cfg.SweepInterval)
	defer t.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-t.C:
			r.Sweep()
		}
	}
}

// Record appends a point under name, evicting the oldest point if that name's
// history is full, and updates the counter/gauge projections. The empty name
// is tolerated: it records an entry nothing meaningful reads.
func (r *Registry) Record(name string, value float64, tags map[string]string, typ MetricType) {
	p := Point{
		Name:      name,
		Value:     value,
		Timestamp: r.now(),
		Tags:      copyTags(tags),
		Type:      typ,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.history[name]
	if !ok {
		h = newRing(r.cfg.MaxHistory)
		r.history[name] = h
	}
	h.push(p)

	switch typ {
	case TypeGauge:
		r.gauges[name] = value
	case TypeCounter:
		// Deltas accumulate as integers; fractional deltas truncate.
		r.counters[name] += int64(value)
	}
}

// IncrementCounter adds delta (default callers pass 1) to the running total
// for name.
func (r *Registry) IncrementCounter(name string, delta float64, tags map[string]string) {
	r.Record(name, delta, tags, TypeCounter)
}

// SetGauge overwrites the current value for name.
func (r *Registry) SetGauge(name string, value float64, tags map[string]string) {
	r.Record(name, value, tags, TypeGauge)
}

// RecordTimer records an elapsed duration for name.
func (r *Registry) RecordTimer(name string, d time.Duration, tags map[string]string) {
	r.Record(name, d.Seconds(), tags, TypeTimer)
}

// Summary renders an atomic snapshot of all registry state. Every map and
// slice in the result is a defensive copy.
func (r *Registry) Summary() *Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &Summary{
		Timestamp:     r.now(),
		Counters:      make(map[string]int64, len(r.counters)),
		Gauges:        make(map[string]float64, len(r.gauges)),
		ActiveMetrics: len(r.history),
		Recent:        make(map[string][]Sample, len(r.history)),
	}
	for k, v := range r.counters {
		s.Counters[k] = v
	}
	for k, v := range r.gauges {
		s.Gauges[k] = v
	}
	for name, h := range r.history {
		s.TotalDatapoints += h.len()
		pts := h.tail(recentSamples)
		if len(pts) == 0 {
			continue
		}
		samples := make([]Sample, len(pts))
		for i, p := range pts {
			samples[i] = Sample{Value: p.Value, Timestamp: p.Timestamp, Tags: copyTags(p.Tags)}
		}
		s.Recent[name] = samples
	}
	return s
}

// Sweep purges points older than the retention window and drops metric names
// left empty. The background sweeper calls this on its interval; tests call
// it directly for a deterministic pass.
func (r *Registry) Sweep() {
	cutoff := r.now().Add(-r.cfg.Retention)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for name, h := range r.history {
		removed += h.dropOlderThan(cutoff)
		if h.len() == 0 {
			delete(r.history, name)
		}
	}
	if removed > 0 {
		log.Debug().Int("removed", removed).Time("cutoff", cutoff).Msg("metrics retention sweep")
	}
}
