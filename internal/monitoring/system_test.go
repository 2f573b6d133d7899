package monitoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediaforge/pipewatch/internal/config"
	"github.com/mediaforge/pipewatch/internal/monitoring/alerting"
)

func TestNewSystemWiresDefaults(t *testing.T) {
	cfg, err := config.LoadFrom("")
	require.NoError(t, err)

	sys := NewSystem(cfg)
	defer sys.Close()

	assert.True(t, sys.Enabled())

	// stock rule set is registered: drive the error-rate rule end to end
	sys.Metrics.IncrementCounter(alerting.MetricOperationsTotal, 100, nil)
	sys.Metrics.IncrementCounter(alerting.MetricOperationsSuccessful, 40, nil)
	sys.Metrics.IncrementCounter(alerting.MetricOperationsErrors, 60, nil)

	triggered, _ := sys.EvaluateAlerts()
	names := make(map[string]bool)
	for _, a := range triggered {
		names[a.RuleName] = true
	}
	assert.True(t, names["low_success_rate"])
	assert.True(t, names["critical_success_rate"])
	assert.True(t, names["high_error_rate"])
	assert.True(t, names["critical_error_rate"])
	assert.False(t, names["slow_operations"])

	// idempotent while conditions stay true
	triggered, resolved := sys.EvaluateAlerts()
	assert.Empty(t, triggered)
	assert.Empty(t, resolved)
}

func TestRuleDefaultsOverrides(t *testing.T) {
	cfg, err := config.LoadFrom("")
	require.NoError(t, err)
	cfg.Monitoring.Environment = "production"
	cfg.Monitoring.Alerting.ErrorRateWarn = 0.05
	cfg.Monitoring.Alerting.SlowOperation = "10m"

	rd := ruleDefaults(cfg)
	assert.Equal(t, 0.05, rd.ErrorRateWarn)
	assert.Equal(t, 10*time.Minute, rd.SlowOperation)
	// untouched fields keep the production profile
	assert.Equal(t, 0.85, rd.SuccessRateWarn)
}

func TestSystemDisabledGate(t *testing.T) {
	cfg, err := config.LoadFrom("")
	require.NoError(t, err)
	cfg.Monitoring.Enabled = false

	sys := NewSystem(cfg)
	defer sys.Close()
	assert.False(t, sys.Enabled())
}

func TestConvenienceFunctionsUseDefaultSystem(t *testing.T) {
	cfg, err := config.LoadFrom("")
	require.NoError(t, err)
	sys := NewSystem(cfg)
	defer sys.Close()
	SetDefault(sys)

	IncrementCounter("requests_total", 2, nil)
	SetGauge("queue_depth", 9, nil)
	timer := StartTimer("op", nil)
	timer.Stop()

	s := MetricsSummary()
	assert.Equal(t, int64(2), s.Counter("requests_total"))
	assert.Equal(t, 9.0, s.Gauge("queue_depth"))
	assert.Len(t, s.Recent["op"], 1)

	assert.NotNil(t, AlertSummary())
	triggered, resolved := EvaluateAlerts()
	assert.Empty(t, triggered)
	assert.Empty(t, resolved)
}
