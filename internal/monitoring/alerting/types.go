package alerting

import (
	"time"

	"github.com/mediaforge/pipewatch/internal/monitoring/metrics"
)

// Severity orders operational response priority.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Condition decides whether a rule should fire against a metrics snapshot.
// Conditions must be pure reads of the snapshot and must not block.
type Condition func(*metrics.Summary) bool

// Rule is a named alert rule. Re-registering under the same name replaces the
// prior rule.
type Rule struct {
	Name      string
	Condition Condition
	Severity  Severity
	Message   string
	// Cooldown is the minimum wait after a resolution before the rule may
	// trigger again. The clock runs from resolution time, not trigger time.
	Cooldown time.Duration
	Enabled  bool
}

// Alert is one trigger-to-resolution lifecycle of a rule.
type Alert struct {
	ID          string           `json:"id"`
	RuleName    string           `json:"rule_name"`
	Severity    Severity         `json:"severity"`
	Message     string           `json:"message"`
	TriggeredAt time.Time        `json:"triggered_at"`
	ResolvedAt  *time.Time       `json:"resolved_at,omitempty"`
	Context     *metrics.Summary `json:"context,omitempty"`
}

// Active reports whether the alert has not yet resolved.
func (a *Alert) Active() bool { return a.ResolvedAt == nil }

// Duration returns how long the alert has been (or was) active, using now
// for the open end of an unresolved alert.
func (a *Alert) Duration(now time.Time) time.Duration {
	end := now
	if a.ResolvedAt != nil {
		end = *a.ResolvedAt
	}
	return end.Sub(a.TriggeredAt)
}

// View is the JSON shape of one alert in summaries and API responses.
type View struct {
	ID              string           `json:"id"`
	RuleName        string           `json:"rule_name"`
	Severity        Severity         `json:"severity"`
	Message         string           `json:"message"`
	TriggeredAt     time.Time        `json:"triggered_at"`
	ResolvedAt      *time.Time       `json:"resolved_at,omitempty"`
	DurationSeconds float64          `json:"duration_seconds"`
	Context         *metrics.Summary `json:"context,omitempty"`
}

// Statistics are derived figures over current alert state.
type Statistics struct {
	SeverityBreakdown     map[Severity]int `json:"severity_breakdown"`
	Trend                 string           `json:"trend"`
	ActiveToResolvedRatio float64          `json:"active_to_resolved_ratio"`
	ResolutionRate        float64          `json:"resolution_rate"`
	AvgResolutionSeconds  float64          `json:"avg_resolution_seconds"`
}

// Summary is the full alert-state report.
type Summary struct {
	Timestamp          time.Time  `json:"timestamp"`
	Active             []View     `json:"active_alerts"`
	RecentResolved     []View     `json:"recent_resolved"`
	TotalActive        int        `json:"total_active"`
	TotalResolvedToday int        `json:"total_resolved_today"`
	Statistics         Statistics `json:"statistics"`
}
