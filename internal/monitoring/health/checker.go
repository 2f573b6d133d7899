// Package health aggregates independent check functions into one overall
// status and numeric score for liveness/readiness consumers. A failing or
// overrunning check degrades the report; it never crashes the aggregator.
package health

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Status is the coarse tier a single check reports.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
	StatusUnknown  Status = "unknown"
)

// statusScores weight each tier for the overall percentage.
var statusScores = map[Status]int{
	StatusHealthy:  3,
	StatusWarning:  2,
	StatusCritical: 1,
	StatusUnknown:  0,
}

// Result is one check's outcome. Results are ephemeral: recomputed on every
// Run, never persisted.
type Result struct {
	Status  Status         `json:"status"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// CheckFunc produces a Result. Checks take no arguments and should be fast;
// the checker enforces a per-check timeout.
type CheckFunc func() Result

// Tally counts checks per tier.
type Tally struct {
	TotalChecks int `json:"total_checks"`
	Healthy     int `json:"healthy"`
	Warning     int `json:"warning"`
	Critical    int `json:"critical"`
	Unknown     int `json:"unknown"`
}

// Report bundles per-check results with the aggregate score.
type Report struct {
	Timestamp        time.Time         `json:"timestamp"`
	OverallStatus    Status            `json:"overall_status"`
	HealthScore      string            `json:"health_score"`
	HealthPercentage float64           `json:"health_percentage"`
	Checks           map[string]Result `json:"checks"`
	Summary          Tally             `json:"summary"`
}

const defaultCheckTimeout = 5 * time.Second

// Checker runs registered checks under a checker-scoped lock.
type Checker struct {
	mu      sync.Mutex
	checks  map[string]CheckFunc
	timeout time.Duration
}

// NewChecker returns an empty checker. timeout bounds each check's run; zero
// means the 5s default.
func NewChecker(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}
	return &Checker{checks: make(map[string]CheckFunc), timeout: timeout}
}

// Register adds or replaces a check under name.
func (c *Checker) Register(name string, fn CheckFunc) {
	if name == "" || fn == nil {
		return
	}
	c.mu.Lock()
	c.checks[name] = fn
	c.mu.Unlock()
	log.Info().Str("check", name).Msg("health check registered")
}

// Run invokes every registered check and scores the results: healthy=3,
// warning=2, critical=1, unknown=0; percentage = sum/(3·n)·100; overall is
// healthy at >=90, warning at >=70, critical below.
func (c *Checker) Run() *Report {
	c.mu.Lock()
	defer c.mu.Unlock()

	results := make(map[string]Result, len(c.checks))
	for name, fn := range c.checks {
		results[name] = c.runOne(name, fn)
	}

	total := 0
	maxScore := len(results) * 3
	tally := Tally{TotalChecks: len(results)}
	for _, res := range results {
		total += statusScores[res.Status]
		switch res.Status {
		case StatusHealthy:
			tally.Healthy++
		case StatusWarning:
			tally.Warning++
		case StatusCritical:
			tally.Critical++
		default:
			tally.Unknown++
		}
	}

	pct := 100.0
	if maxScore > 0 {
		pct = float64(total) / float64(maxScore) * 100
	}
	overall := StatusCritical
	switch {
	case pct >= 90:
		overall = StatusHealthy
	case pct >= 70:
		overall = StatusWarning
	}

	return &Report{
		Timestamp:        time.Now(),
		OverallStatus:    overall,
		HealthScore:      fmt.Sprintf("%d/%d", total, maxScore),
		HealthPercentage: math.Round(pct*10) / 10,
		Checks:           results,
		Summary:          tally,
	}
}

// runOne isolates one check: a panic or an overrun becomes a synthetic
// Critical result instead of poisoning the whole report.
func (c *Checker) runOne(name string, fn CheckFunc) Result {
	resCh := make(chan Result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Str("check", name).Any("panic", r).Msg("health check panicked")
				resCh <- Result{Status: StatusCritical, Message: fmt.Sprintf("Health check failed: %v", r)}
			}
		}()
		resCh <- fn()
	}()

	select {
	case res := <-resCh:
		return res
	case <-time.After(c.timeout):
		log.Error().Str("check", name).Dur("timeout", c.timeout).Msg("health check timed out")
		return Result{Status: StatusCritical, Message: fmt.Sprintf("Health check timed out after %s", c.timeout)}
	}
}
