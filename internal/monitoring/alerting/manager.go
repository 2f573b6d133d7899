// Package alerting evaluates named rules against metrics snapshots and tracks
// alert lifecycles. State transitions are cooldown-gated to prevent alert
// storms; evaluation never re-enters the metrics registry, it only reads the
// snapshot it was handed.
package alerting

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mediaforge/pipewatch/internal/monitoring/metrics"
)

const (
	// resolvedCapacity bounds the resolved-alert history; oldest evicted first.
	resolvedCapacity = 1000
	// recentResolved is how many resolved alerts a Summary reports.
	recentResolved = 10
)

// Manager owns rule registration, evaluation, and alert state. All state is
// guarded by one manager-scoped mutex.
type Manager struct {
	mu           sync.Mutex
	rules        map[string]Rule
	active       map[string]*Alert
	resolved     []*Alert
	lastResolved map[string]time.Time

	now func() time.Time
}

// NewManager returns an empty manager. Stock rules come from DefaultRules and
// are registered by the caller.
func NewManager() *Manager {
	return &Manager{
		rules:        make(map[string]Rule),
		active:       make(map[string]*Alert),
		lastResolved: make(map[string]time.Time),
		now:          time.Now,
	}
}

// AddRule registers or replaces a rule by name.
func (m *Manager) AddRule(r Rule) {
	if r.Name == "" {
		return
	}
	m.mu.Lock()
	m.rules[r.Name] = r
	m.mu.Unlock()
	log.Info().Str("rule", r.Name).Str("severity", string(r.Severity)).Msg("alert rule registered")
}

// AddRules registers every rule in rs.
func (m *Manager) AddRules(rs []Rule) {
	for _, r := range rs {
		m.AddRule(r)
	}
}

// Evaluate runs every enabled rule against the snapshot and returns the
// alerts newly triggered and newly resolved by this call only. While a rule
// stays true its alert is not re-reported; a rule whose prior alert resolved
// at T may not trigger again before T+Cooldown.
//
// A condition that panics is not recovered here: a broken rule must surface,
// not be silently skipped.
func (m *Manager) Evaluate(s *metrics.Summary) (triggered, resolved []*Alert) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for name, rule := range m.rules {
		if !rule.Enabled || rule.Condition == nil {
			continue
		}
		firing := rule.Condition(s)
		_, isActive := m.active[name]

		switch {
		case firing && !isActive:
			if last, ok := m.lastResolved[name]; ok && now.Before(last.Add(rule.Cooldown)) {
				continue
			}
			a := &Alert{
				ID:          uuid.NewString(),
				RuleName:    name,
				Severity:    rule.Severity,
				Message:     rule.Message,
				TriggeredAt: now,
				Context:     s.Clone(),
			}
			m.active[name] = a
			triggered = append(triggered, a)
			log.Warn().Str("rule", name).Str("severity", string(rule.Severity)).Msg("alert triggered")

		case !firing && isActive:
			a := m.active[name]
			ts := now
			a.ResolvedAt = &ts
			delete(m.active, name)
			m.lastResolved[name] = now
			m.appendResolved(a)
			resolved = append(resolved, a)
			log.Info().Str("rule", name).Dur("active_for", a.Duration(now)).Msg("alert resolved")
		}
	}
	return triggered, resolved
}

func (m *Manager) appendResolved(a *Alert) {
	if len(m.resolved) == resolvedCapacity {
		copy(m.resolved, m.resolved[1:])
		m.resolved = m.resolved[:resolvedCapacity-1]
	}
	m.resolved = append(m.resolved, a)
}

// Summary reports active alerts in full detail, the most recent resolved
// alerts, counts, and derived statistics.
func (m *Manager) Summary() *Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	out := &Summary{
		Timestamp:      now,
		Active:         make([]View, 0, len(m.active)),
		RecentResolved: []View{},
		TotalActive:    len(m.active),
	}

	breakdown := map[Severity]int{SeverityInfo: 0, SeverityWarning: 0, SeverityError: 0, SeverityCritical: 0}
	for _, a := range m.active {
		breakdown[a.Severity]++
		out.Active = append(out.Active, viewOf(a, now, true))
	}

	dayAgo := now.Add(-24 * time.Hour)
	for _, a := range m.resolved {
		if a.ResolvedAt != nil && a.ResolvedAt.After(dayAgo) {
			out.TotalResolvedToday++
		}
	}

	start := len(m.resolved) - recentResolved
	if start < 0 {
		start = 0
	}
	var resolutionTotal float64
	var resolutionCount int
	for _, a := range m.resolved[start:] {
		out.RecentResolved = append(out.RecentResolved, viewOf(a, now, false))
		resolutionTotal += a.Duration(now).Seconds()
		resolutionCount++
	}

	avgResolution := 0.0
	if resolutionCount > 0 {
		avgResolution = resolutionTotal / float64(resolutionCount)
	}

	out.Statistics = Statistics{
		SeverityBreakdown:     breakdown,
		Trend:                 trendLabel(len(m.active)),
		ActiveToResolvedRatio: float64(len(m.active)) / float64(max(out.TotalResolvedToday, 1)),
		ResolutionRate:        float64(out.TotalResolvedToday) / float64(max(len(m.active)+out.TotalResolvedToday, 1)),
		AvgResolutionSeconds:  avgResolution,
	}
	return out
}

func viewOf(a *Alert, now time.Time, withContext bool) View {
	v := View{
		ID:              a.ID,
		RuleName:        a.RuleName,
		Severity:        a.Severity,
		Message:         a.Message,
		TriggeredAt:     a.TriggeredAt,
		ResolvedAt:      a.ResolvedAt,
		DurationSeconds: a.Duration(now).Seconds(),
	}
	if withContext {
		v.Context = a.Context
	}
	return v
}

func trendLabel(active int) string {
	switch {
	case active > 10:
		return "critical"
	case active > 5:
		return "elevated"
	default:
		return "stable"
	}
}
