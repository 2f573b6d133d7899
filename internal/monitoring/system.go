// Package monitoring composes the metrics registry, alert manager, and
// health checker into one System. Consumers either construct an isolated
// System (tests, embedding services) or use the process-wide default through
// the package-level convenience functions.
package monitoring

import (
	"sync"
	"time"

	"github.com/mediaforge/pipewatch/internal/config"
	"github.com/mediaforge/pipewatch/internal/monitoring/alerting"
	"github.com/mediaforge/pipewatch/internal/monitoring/health"
	"github.com/mediaforge/pipewatch/internal/monitoring/metrics"
)

// System bundles the three monitoring components. Data flows one way:
// producers write to Metrics, and Alerts/Health read snapshots of it.
type System struct {
	Metrics *metrics.Registry
	Alerts  *alerting.Manager
	Health  *health.Checker

	enabled bool
}

// New assembles a System from explicit components. Most callers want
// NewSystem; this exists for embedders that bring their own rule set or
// check set.
func New(reg *metrics.Registry, alerts *alerting.Manager, checker *health.Checker, enabled bool) *System {
	return &System{Metrics: reg, Alerts: alerts, Health: checker, enabled: enabled}
}

// NewSystem builds a fully wired System: registry with retention sweeper
// running, stock alert rules registered under the configured environment
// profile, and default health checks in place. A nil cfg means defaults.
func NewSystem(cfg *config.Config) *System {
	if cfg == nil {
		cfg, _ = config.LoadFrom("")
	}
	mc := cfg.Monitoring

	reg := metrics.NewRegistry(&metrics.Config{
		MaxHistory:    mc.Metrics.MaxHistoryPerMetric,
		SweepInterval: config.ParseDuration(mc.Metrics.SweepInterval, 5*time.Minute),
		Retention:     config.ParseDuration(mc.Metrics.Retention, 24*time.Hour),
	})

	mgr := alerting.NewManager()
	mgr.AddRules(alerting.DefaultRules(ruleDefaults(cfg)))

	th := health.DefaultThresholds()
	if mc.Health.DiskPath != "" {
		th.DiskPath = mc.Health.DiskPath
	}
	checker := health.NewChecker(config.ParseDuration(mc.Health.CheckTimeout, 5*time.Second))
	health.RegisterDefaultChecks(checker, reg, th)

	return &System{Metrics: reg, Alerts: mgr, Health: checker, enabled: mc.Enabled}
}

func ruleDefaults(cfg *config.Config) alerting.RuleDefaults {
	rd := alerting.DefaultRuleConfig(cfg.IsProduction())
	ov := cfg.Monitoring.Alerting
	if ov.SuccessRateWarn > 0 {
		rd.SuccessRateWarn = ov.SuccessRateWarn
	}
	if ov.SuccessRateCritical > 0 {
		rd.SuccessRateCritical = ov.SuccessRateCritical
	}
	if ov.ErrorRateWarn > 0 {
		rd.ErrorRateWarn = ov.ErrorRateWarn
	}
	if ov.ErrorRateCritical > 0 {
		rd.ErrorRateCritical = ov.ErrorRateCritical
	}
	rd.SlowOperation = config.ParseDuration(ov.SlowOperation, rd.SlowOperation)
	return rd
}

// Enabled reports the monitoring gate every endpoint checks first.
func (s *System) Enabled() bool { return s.enabled }

// EvaluateAlerts snapshots the registry and runs one rule evaluation pass.
func (s *System) EvaluateAlerts() (triggered, resolved []*alerting.Alert) {
	return s.Alerts.Evaluate(s.Metrics.Summary())
}

// Close stops background work. The System stays readable after Close.
func (s *System) Close() { s.Metrics.Close() }

var (
	defaultMu  sync.Mutex
	defaultSys *System
)

// SetDefault installs sys as the process-wide System. Call once at startup,
// before anything uses the convenience functions.
func SetDefault(sys *System) {
	defaultMu.Lock()
	defaultSys = sys
	defaultMu.Unlock()
}

// Default returns the process-wide System, constructing one from environment
// defaults on first use.
func Default() *System {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultSys == nil {
		defaultSys = NewSystem(nil)
	}
	return defaultSys
}

// IncrementCounter adds delta to a counter on the default System.
func IncrementCounter(name string, delta float64, tags map[string]string) {
	Default().Metrics.IncrementCounter(name, delta, tags)
}

// SetGauge sets a gauge on the default System.
func SetGauge(name string, value float64, tags map[string]string) {
	Default().Metrics.SetGauge(name, value, tags)
}

// RecordTimer records an elapsed duration on the default System.
func RecordTimer(name string, d time.Duration, tags map[string]string) {
	Default().Metrics.RecordTimer(name, d, tags)
}

// StartTimer starts a scoped timer on the default System.
func StartTimer(name string, tags map[string]string) *metrics.Timer {
	return Default().Metrics.StartTimer(name, tags)
}

// MetricsSummary snapshots the default System's registry.
func MetricsSummary() *metrics.Summary { return Default().Metrics.Summary() }

// AlertSummary reports the default System's alert state.
func AlertSummary() *alerting.Summary { return Default().Alerts.Summary() }

// HealthStatus runs the default System's health checks.
func HealthStatus() *health.Report { return Default().Health.Run() }

// EvaluateAlerts runs one evaluation pass on the default System.
func EvaluateAlerts() (triggered, resolved []*alerting.Alert) {
	return Default().EvaluateAlerts()
}
