package metrics

import "time"

// MetricType classifies a recorded point. Counters accumulate, gauges keep
// the latest value, timers are elapsed-seconds measurements, histograms are
// retained as raw points only.
type MetricType string

const (
	TypeCounter   MetricType = "counter"
	TypeGauge     MetricType = "gauge"
	TypeHistogram MetricType = "histogram"
	TypeTimer     MetricType = "timer"
)

// Point is a single measurement. Points are immutable once recorded and are
// owned by the registry's per-name history.
type Point struct {
	Name      string            `json:"name"`
	Value     float64           `json:"value"`
	Timestamp time.Time         `json:"timestamp"`
	Tags      map[string]string `json:"tags,omitempty"`
	Type      MetricType        `json:"type"`
}

// Sample is one history entry as exposed through a Summary.
type Sample struct {
	Value     float64           `json:"value"`
	Timestamp time.Time         `json:"timestamp"`
	Tags      map[string]string `json:"tags,omitempty"`
}

// Summary is an atomic point-in-time copy of registry state. It is the only
// interface the alert manager and health checker read; nothing in it aliases
// live registry memory.
type Summary struct {
	Timestamp       time.Time           `json:"timestamp"`
	Counters        map[string]int64    `json:"counters"`
	Gauges          map[string]float64  `json:"gauges"`
	ActiveMetrics   int                 `json:"active_metrics"`
	TotalDatapoints int                 `json:"total_datapoints"`
	Recent          map[string][]Sample `json:"recent_measurements,omitempty"`
}

// Counter returns the accumulated total for name, zero if absent.
func (s *Summary) Counter(name string) int64 { return s.Counters[name] }

// Gauge returns the current gauge value for name, zero if absent.
func (s *Summary) Gauge(name string) float64 { return s.Gauges[name] }

// Clone deep-copies a Summary so consumers can retain it past the caller's
// use, e.g. as alert trigger context.
func (s *Summary) Clone() *Summary {
	if s == nil {
		return nil
	}
	out := &Summary{
		Timestamp:       s.Timestamp,
		Counters:        make(map[string]int64, len(s.Counters)),
		Gauges:          make(map[string]float64, len(s.Gauges)),
		ActiveMetrics:   s.ActiveMetrics,
		TotalDatapoints: s.TotalDatapoints,
		Recent:          make(map[string][]Sample, len(s.Recent)),
	}
	for k, v := range s.Counters {
		out.Counters[k] = v
	}
	for k, v := range s.Gauges {
		out.Gauges[k] = v
	}
	for name, samples := range s.Recent {
		cp := make([]Sample, len(samples))
		for i, smp := range samples {
			cp[i] = Sample{Value: smp.Value, Timestamp: smp.Timestamp, Tags: copyTags(smp.Tags)}
		}
		out.Recent[name] = cp
	}
	return out
}

func copyTags(tags map[string]string) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		out[k] = v
	}
	return out
}
