package api

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/prometheus/common/model"

	"github.com/mediaforge/pipewatch/internal/monitoring/metrics"
)

const expositionContentType = "text/plain; version=0.0.4; charset=utf-8"

// renderExposition writes a Summary in the Prometheus text format: HELP/TYPE
// pairs, `<name>_total <v>` for counters, `<name> <v>` for gauges, and, when
// history is requested, per-point `<name>{tag="v"} <value> <unix_ms>` lines.
func renderExposition(s *metrics.Summary, includeHistory bool) []byte {
	var b bytes.Buffer

	writeMeta := func(name, help, typ string) {
		fmt.Fprintf(&b, "# HELP %s %s\n", name, help)
		fmt.Fprintf(&b, "# TYPE %s %s\n", name, typ)
	}

	writeMeta("monitoring_system_metrics_total", "Total number of metrics being tracked", "gauge")
	fmt.Fprintf(&b, "monitoring_system_metrics_total %d\n", s.ActiveMetrics)
	writeMeta("monitoring_datapoints_total", "Total number of metric data points", "gauge")
	fmt.Fprintf(&b, "monitoring_datapoints_total %d\n", s.TotalDatapoints)

	for _, name := range sortedKeys(s.Counters) {
		exp := counterName(name)
		writeMeta(exp, "Counter metric: "+name, "counter")
		fmt.Fprintf(&b, "%s %d\n", exp, s.Counters[name])
	}

	for _, name := range sortedKeys(s.Gauges) {
		exp := metricName(name)
		writeMeta(exp, "Gauge metric: "+name, "gauge")
		fmt.Fprintf(&b, "%s %s\n", exp, formatValue(s.Gauges[name]))
	}

	if includeHistory {
		for _, name := range sortedKeys(s.Recent) {
			exp := metricName(name)
			for _, smp := range s.Recent[name] {
				fmt.Fprintf(&b, "%s%s %s %d\n", exp, renderLabels(smp.Tags), formatValue(smp.Value), smp.Timestamp.UnixMilli())
			}
		}
	}

	return b.Bytes()
}

// counterName appends the conventional _total suffix unless the metric is
// already named that way.
func counterName(name string) string {
	exp := metricName(name)
	if !strings.HasSuffix(exp, "_total") {
		exp += "_total"
	}
	return exp
}

// metricName rewrites name into a valid exposition metric name, mapping
// every invalid rune to an underscore.
func metricName(name string) string {
	if name == "" {
		return "_"
	}
	if model.IsValidLegacyMetricName(model.LabelValue(name)) {
		return name
	}
	var sb strings.Builder
	for i, r := range name {
		if r == ':' || r == '_' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(i > 0 && r >= '0' && r <= '9') {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

func labelName(name string) string {
	out := metricName(name)
	// colons are metric-name-only
	return strings.ReplaceAll(out, ":", "_")
}

func renderLabels(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	parts := make([]string, 0, len(tags))
	for _, k := range sortedKeys(tags) {
		parts = append(parts, fmt.Sprintf("%s=%q", labelName(k), tags[k]))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
