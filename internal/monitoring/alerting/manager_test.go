package alerting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediaforge/pipewatch/internal/monitoring/metrics"
)

func snapshot(counters map[string]int64) *metrics.Summary {
	return &metrics.Summary{
		Timestamp: time.Now(),
		Counters:  counters,
		Gauges:    map[string]float64{},
		Recent:    map[string][]metrics.Sample{},
	}
}

func errorRateRule(cooldown time.Duration) Rule {
	return Rule{
		Name: "error_rate_high",
		Condition: func(s *metrics.Summary) bool {
			total := s.Counter("requests_total")
			if total == 0 {
				return false
			}
			return float64(s.Counter("errors_total"))/float64(total) > 0.2
		},
		Severity: SeverityWarning,
		Message:  "Error rate above 20%",
		Cooldown: cooldown,
		Enabled:  true,
	}
}

func TestAlertLifecycle(t *testing.T) {
	m := NewManager()
	m.AddRule(errorRateRule(time.Minute))

	// 5% error rate: nothing fires
	triggered, resolved := m.Evaluate(snapshot(map[string]int64{"errors_total": 5, "requests_total": 100}))
	assert.Empty(t, triggered)
	assert.Empty(t, resolved)

	// 25%: exactly one trigger
	hot := snapshot(map[string]int64{"errors_total": 25, "requests_total": 100})
	triggered, resolved = m.Evaluate(hot)
	require.Len(t, triggered, 1)
	assert.Empty(t, resolved)
	assert.Equal(t, "error_rate_high", triggered[0].RuleName)
	assert.True(t, triggered[0].Active())
	assert.NotEmpty(t, triggered[0].ID)

	// still 25%: idempotent while active
	triggered, resolved = m.Evaluate(hot)
	assert.Empty(t, triggered)
	assert.Empty(t, resolved)

	// back to 5%: exactly one resolution, active set empty
	triggered, resolved = m.Evaluate(snapshot(map[string]int64{"errors_total": 5, "requests_total": 100}))
	assert.Empty(t, triggered)
	require.Len(t, resolved, 1)
	assert.False(t, resolved[0].Active())
	assert.Equal(t, 0, m.Summary().TotalActive)
}

func TestAlertContextIsCopied(t *testing.T) {
	m := NewManager()
	m.AddRule(errorRateRule(0))

	s := snapshot(map[string]int64{"errors_total": 30, "requests_total": 100})
	triggered, _ := m.Evaluate(s)
	require.Len(t, triggered, 1)

	s.Counters["errors_total"] = 0
	assert.Equal(t, int64(30), triggered[0].Context.Counter("errors_total"))
}

func TestCooldownSuppression(t *testing.T) {
	m := NewManager()
	base := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	now := base
	m.now = func() time.Time { return now }

	const cooldown = 60 * time.Second
	m.AddRule(errorRateRule(cooldown))

	hot := snapshot(map[string]int64{"errors_total": 50, "requests_total": 100})
	cold := snapshot(map[string]int64{"errors_total": 0, "requests_total": 100})

	// first trigger is immediate
	triggered, _ := m.Evaluate(hot)
	require.Len(t, triggered, 1)

	// resolve at T
	now = base.Add(10 * time.Second)
	_, resolved := m.Evaluate(cold)
	require.Len(t, resolved, 1)
	resolvedAt := now

	// condition true again within cooldown of resolution: suppressed
	now = resolvedAt.Add(cooldown - time.Second)
	triggered, _ = m.Evaluate(hot)
	assert.Empty(t, triggered)

	// at exactly T+cooldown: allowed again
	now = resolvedAt.Add(cooldown)
	triggered, _ = m.Evaluate(hot)
	require.Len(t, triggered, 1)
}

func TestDisabledRuleNeverFires(t *testing.T) {
	m := NewManager()
	r := errorRateRule(0)
	r.Enabled = false
	m.AddRule(r)

	triggered, _ := m.Evaluate(snapshot(map[string]int64{"errors_total": 90, "requests_total": 100}))
	assert.Empty(t, triggered)
}

func TestAddRuleReplacesByName(t *testing.T) {
	m := NewManager()
	m.AddRule(Rule{
		Name:      "always",
		Condition: func(*metrics.Summary) bool { return true },
		Severity:  SeverityInfo,
		Message:   "v1",
		Enabled:   true,
	})
	m.AddRule(Rule{
		Name:      "always",
		Condition: func(*metrics.Summary) bool { return false },
		Severity:  SeverityInfo,
		Message:   "v2",
		Enabled:   true,
	})

	triggered, _ := m.Evaluate(snapshot(nil))
	assert.Empty(t, triggered)

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Len(t, m.rules, 1)
	assert.Equal(t, "v2", m.rules["always"].Message)
}

func TestSummaryStatistics(t *testing.T) {
	m := NewManager()
	base := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	now := base
	m.now = func() time.Time { return now }

	fire := true
	m.AddRule(Rule{
		Name:      "flappy",
		Condition: func(*metrics.Summary) bool { return fire },
		Severity:  SeverityCritical,
		Message:   "flapping",
		Enabled:   true,
	})
	m.AddRule(Rule{
		Name:      "steady",
		Condition: func(*metrics.Summary) bool { return true },
		Severity:  SeverityWarning,
		Message:   "steady state problem",
		Enabled:   true,
	})

	m.Evaluate(snapshot(nil)) // both trigger

	// resolve flappy after 30s
	now = base.Add(30 * time.Second)
	fire = false
	_, resolved := m.Evaluate(snapshot(nil))
	require.Len(t, resolved, 1)

	now = base.Add(time.Minute)
	sum := m.Summary()

	assert.Equal(t, 1, sum.TotalActive)
	assert.Equal(t, 1, sum.TotalResolvedToday)
	require.Len(t, sum.Active, 1)
	assert.Equal(t, "steady", sum.Active[0].RuleName)
	assert.Equal(t, 60.0, sum.Active[0].DurationSeconds)
	require.Len(t, sum.RecentResolved, 1)
	assert.Equal(t, 30.0, sum.RecentResolved[0].DurationSeconds)

	stats := sum.Statistics
	assert.Equal(t, 1, stats.SeverityBreakdown[SeverityWarning])
	assert.Equal(t, 0, stats.SeverityBreakdown[SeverityCritical])
	assert.Equal(t, "stable", stats.Trend)
	assert.Equal(t, 1.0, stats.ActiveToResolvedRatio)
	assert.Equal(t, 0.5, stats.ResolutionRate)
	assert.Equal(t, 30.0, stats.AvgResolutionSeconds)
}

func TestTrendLabelThresholds(t *testing.T) {
	assert.Equal(t, "stable", trendLabel(0))
	assert.Equal(t, "stable", trendLabel(5))
	assert.Equal(t, "elevated", trendLabel(6))
	assert.Equal(t, "elevated", trendLabel(10))
	assert.Equal(t, "critical", trendLabel(11))
}

func TestResolvedHistoryBounded(t *testing.T) {
	m := NewManager()
	fire := false
	m.AddRule(Rule{
		Name:      "cycler",
		Condition: func(*metrics.Summary) bool { return fire },
		Severity:  SeverityInfo,
		Message:   "cycle",
		Enabled:   true,
	})

	for i := 0; i < resolvedCapacity+50; i++ {
		fire = true
		m.Evaluate(snapshot(nil))
		fire = false
		m.Evaluate(snapshot(nil))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Len(t, m.resolved, resolvedCapacity)
}
