package alerting

import (
	"fmt"
	"time"

	"github.com/mediaforge/pipewatch/internal/monitoring/metrics"
)

// Counter and timer names the stock rules read from snapshots. Pipeline code
// records under these names through the convenience functions.
const (
	MetricOperationsTotal      = "operations_total"
	MetricOperationsSuccessful = "operations_successful"
	MetricOperationsErrors     = "operations_errors"
	MetricOperationDuration    = "operation_duration_seconds"
)

// RuleDefaults carries thresholds and cooldowns for the stock rule set. The
// values are policy, not mechanism; callers may replace the set wholesale.
type RuleDefaults struct {
	SuccessRateWarn     float64       `json:"successRateWarn" yaml:"successRateWarn"`
	SuccessRateCritical float64       `json:"successRateCritical" yaml:"successRateCritical"`
	ErrorRateWarn       float64       `json:"errorRateWarn" yaml:"errorRateWarn"`
	ErrorRateCritical   float64       `json:"errorRateCritical" yaml:"errorRateCritical"`
	SlowOperation       time.Duration `json:"slowOperation" yaml:"slowOperation"`

	SuccessWarnCooldown     time.Duration `json:"successWarnCooldown" yaml:"successWarnCooldown"`
	SuccessCriticalCooldown time.Duration `json:"successCriticalCooldown" yaml:"successCriticalCooldown"`
	ErrorWarnCooldown       time.Duration `json:"errorWarnCooldown" yaml:"errorWarnCooldown"`
	ErrorCriticalCooldown   time.Duration `json:"errorCriticalCooldown" yaml:"errorCriticalCooldown"`
	SlowOperationCooldown   time.Duration `json:"slowOperationCooldown" yaml:"slowOperationCooldown"`
}

// DefaultRuleConfig returns the stock thresholds. The production profile is
// stricter on success and error rates.
func DefaultRuleConfig(production bool) RuleDefaults {
	d := RuleDefaults{
		SuccessRateWarn:     0.80,
		SuccessRateCritical: 0.50,
		ErrorRateWarn:       0.20,
		ErrorRateCritical:   0.50,
		SlowOperation:       30 * time.Minute,

		SuccessWarnCooldown:     5 * time.Minute,
		SuccessCriticalCooldown: time.Minute,
		ErrorWarnCooldown:       3 * time.Minute,
		ErrorCriticalCooldown:   30 * time.Second,
		SlowOperationCooldown:   10 * time.Minute,
	}
	if production {
		d.SuccessRateWarn = 0.85
		d.SuccessRateCritical = 0.60
		d.ErrorRateWarn = 0.15
		d.ErrorRateCritical = 0.40
	}
	return d
}

// DefaultRules builds the stock rule set: success-rate and error-rate floors
// at two severities plus a slow-operation warning on mean recent duration.
func DefaultRules(d RuleDefaults) []Rule {
	return []Rule{
		{
			Name:      "low_success_rate",
			Condition: successRateBelow(d.SuccessRateWarn),
			Severity:  SeverityWarning,
			Message:   fmt.Sprintf("Success rate below %.0f%%", d.SuccessRateWarn*100),
			Cooldown:  d.SuccessWarnCooldown,
			Enabled:   true,
		},
		{
			Name:      "critical_success_rate",
			Condition: successRateBelow(d.SuccessRateCritical),
			Severity:  SeverityCritical,
			Message:   fmt.Sprintf("Success rate below %.0f%% - immediate attention required", d.SuccessRateCritical*100),
			Cooldown:  d.SuccessCriticalCooldown,
			Enabled:   true,
		},
		{
			Name:      "high_error_rate",
			Condition: errorRateAbove(d.ErrorRateWarn),
			Severity:  SeverityWarning,
			Message:   fmt.Sprintf("Error rate above %.0f%%", d.ErrorRateWarn*100),
			Cooldown:  d.ErrorWarnCooldown,
			Enabled:   true,
		},
		{
			Name:      "critical_error_rate",
			Condition: errorRateAbove(d.ErrorRateCritical),
			Severity:  SeverityCritical,
			Message:   fmt.Sprintf("Error rate above %.0f%% - service degradation", d.ErrorRateCritical*100),
			Cooldown:  d.ErrorCriticalCooldown,
			Enabled:   true,
		},
		{
			Name:      "slow_operations",
			Condition: meanDurationAbove(MetricOperationDuration, d.SlowOperation),
			Severity:  SeverityWarning,
			Message:   fmt.Sprintf("Operations taking longer than %s on average", d.SlowOperation),
			Cooldown:  d.SlowOperationCooldown,
			Enabled:   true,
		},
	}
}

func successRateBelow(threshold float64) Condition {
	return func(s *metrics.Summary) bool {
		total := s.Counter(MetricOperationsTotal)
		if total == 0 {
			return false
		}
		return float64(s.Counter(MetricOperationsSuccessful))/float64(total) < threshold
	}
}

func errorRateAbove(threshold float64) Condition {
	return func(s *metrics.Summary) bool {
		total := s.Counter(MetricOperationsTotal)
		if total == 0 {
			return false
		}
		return float64(s.Counter(MetricOperationsErrors))/float64(total) > threshold
	}
}

func meanDurationAbove(metric string, threshold time.Duration) Condition {
	return func(s *metrics.Summary) bool {
		samples := s.Recent[metric]
		if len(samples) == 0 {
			return false
		}
		var sum float64
		for _, smp := range samples {
			sum += smp.Value
		}
		return sum/float64(len(samples)) > threshold.Seconds()
	}
}
