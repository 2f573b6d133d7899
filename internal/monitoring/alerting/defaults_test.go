package alerting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediaforge/pipewatch/internal/monitoring/metrics"
)

func ruleByName(t *testing.T, rules []Rule, name string) Rule {
	t.Helper()
	for _, r := range rules {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("rule %s not found", name)
	return Rule{}
}

func TestDefaultRuleConfigProfiles(t *testing.T) {
	dev := DefaultRuleConfig(false)
	prod := DefaultRuleConfig(true)

	assert.Equal(t, 0.80, dev.SuccessRateWarn)
	assert.Equal(t, 0.85, prod.SuccessRateWarn)
	assert.Greater(t, prod.SuccessRateCritical, dev.SuccessRateCritical)
	assert.Less(t, prod.ErrorRateWarn, dev.ErrorRateWarn)
}

func TestDefaultRulesConditions(t *testing.T) {
	rules := DefaultRules(DefaultRuleConfig(false))
	require.Len(t, rules, 5)

	lowSuccess := ruleByName(t, rules, "low_success_rate")
	assert.False(t, lowSuccess.Condition(snapshot(map[string]int64{
		MetricOperationsTotal: 0,
	})), "no operations yet must not fire")
	assert.False(t, lowSuccess.Condition(snapshot(map[string]int64{
		MetricOperationsTotal:      100,
		MetricOperationsSuccessful: 90,
	})))
	assert.True(t, lowSuccess.Condition(snapshot(map[string]int64{
		MetricOperationsTotal:      100,
		MetricOperationsSuccessful: 70,
	})))

	highError := ruleByName(t, rules, "high_error_rate")
	assert.False(t, highError.Condition(snapshot(map[string]int64{
		MetricOperationsTotal:  100,
		MetricOperationsErrors: 20,
	})), "exactly at threshold is not above it")
	assert.True(t, highError.Condition(snapshot(map[string]int64{
		MetricOperationsTotal:  100,
		MetricOperationsErrors: 21,
	})))
}

func TestSlowOperationsUsesMeanOfRecent(t *testing.T) {
	rules := DefaultRules(DefaultRuleConfig(false))
	slow := ruleByName(t, rules, "slow_operations")

	mkSnap := func(durations ...float64) *metrics.Summary {
		s := snapshot(nil)
		for _, d := range durations {
			s.Recent[MetricOperationDuration] = append(s.Recent[MetricOperationDuration],
				metrics.Sample{Value: d, Timestamp: time.Now()})
		}
		return s
	}

	assert.False(t, slow.Condition(mkSnap()), "no samples must not fire")
	assert.False(t, slow.Condition(mkSnap(100, 200)))
	// mean of 600 and 3600 is 2100s, above the 1800s default
	assert.True(t, slow.Condition(mkSnap(600, 3600)))
}
