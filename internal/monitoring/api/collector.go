package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mediaforge/pipewatch/internal/monitoring/metrics"
)

// Collector bridges registry snapshots to the Prometheus client library so
// the standalone server can expose a native /metrics endpoint alongside the
// bespoke renderer.
type Collector struct {
	reg *metrics.Registry
}

func NewCollector(reg *metrics.Registry) *Collector { return &Collector{reg: reg} }

// Describe sends no descriptors; the metric set is dynamic, so the collector
// is registered unchecked.
func (c *Collector) Describe(chan<- *prometheus.Desc) {}

// Collect emits every counter total and gauge value from a fresh snapshot as
// const metrics, plus the registry's own bookkeeping gauges.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.reg.Summary()

	emit := func(name, help string, typ prometheus.ValueType, v float64) {
		m, err := prometheus.NewConstMetric(prometheus.NewDesc(name, help, nil, nil), typ, v)
		if err != nil {
			return
		}
		ch <- m
	}

	emit("monitoring_system_metrics_total", "Total number of metrics being tracked", prometheus.GaugeValue, float64(s.ActiveMetrics))
	emit("monitoring_datapoints_total", "Total number of metric data points", prometheus.GaugeValue, float64(s.TotalDatapoints))

	for name, v := range s.Counters {
		emit(counterName(name), "Counter metric: "+name, prometheus.CounterValue, float64(v))
	}
	for name, v := range s.Gauges {
		emit(metricName(name), "Gauge metric: "+name, prometheus.GaugeValue, v)
	}
}

// PrometheusHandler serves the collector over a private client registry.
func PrometheusHandler(reg *metrics.Registry) http.Handler {
	pr := prometheus.NewRegistry()
	pr.MustRegister(NewCollector(reg))
	return promhttp.HandlerFor(pr, promhttp.HandlerOpts{})
}
