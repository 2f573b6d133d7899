package health

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/mediaforge/pipewatch/internal/monitoring/metrics"
)

// Default check names. API recommendation heuristics key off these.
const (
	CheckMemoryUsage      = "memory_usage"
	CheckDiskSpace        = "disk_space"
	CheckCPUUsage         = "cpu_usage"
	CheckDatabase         = "database_connectivity"
	CheckExternalServices = "external_services"
	CheckAppMetrics       = "application_metrics"
)

// Thresholds tunes the default resource and application checks. Percent
// fields are 0-100.
type Thresholds struct {
	MemoryWarnPercent float64       `json:"memoryWarnPercent" yaml:"memoryWarnPercent"`
	MemoryCritPercent float64       `json:"memoryCritPercent" yaml:"memoryCritPercent"`
	DiskFreeWarnPct   float64       `json:"diskFreeWarnPercent" yaml:"diskFreeWarnPercent"`
	DiskFreeCritPct   float64       `json:"diskFreeCritPercent" yaml:"diskFreeCritPercent"`
	CPUWarnPercent    float64       `json:"cpuWarnPercent" yaml:"cpuWarnPercent"`
	CPUCritPercent    float64       `json:"cpuCritPercent" yaml:"cpuCritPercent"`
	ErrorRateWarnPct  float64       `json:"errorRateWarnPercent" yaml:"errorRateWarnPercent"`
	ErrorRateCritPct  float64       `json:"errorRateCritPercent" yaml:"errorRateCritPercent"`
	CPUSampleInterval time.Duration `json:"cpuSampleInterval" yaml:"cpuSampleInterval"`
	DiskPath          string        `json:"diskPath" yaml:"diskPath"`
}

// DefaultThresholds mirrors the stock production policy: memory 85/95, disk
// free 15/5, CPU 80/95, application error rate 5/15.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MemoryWarnPercent: 85,
		MemoryCritPercent: 95,
		DiskFreeWarnPct:   15,
		DiskFreeCritPct:   5,
		CPUWarnPercent:    80,
		CPUCritPercent:    95,
		ErrorRateWarnPct:  5,
		ErrorRateCritPct:  15,
		CPUSampleInterval: time.Second,
		DiskPath:          "/",
	}
}

// RegisterDefaultChecks wires the stock check set onto c: OS resource checks
// via gopsutil (Unknown when sampling fails), an application error-rate check
// over the registry's counters, and two placeholder checks pending
// customization.
func RegisterDefaultChecks(c *Checker, reg *metrics.Registry, th Thresholds) {
	c.Register(CheckMemoryUsage, MemoryCheck(th))
	c.Register(CheckDiskSpace, DiskCheck(th))
	c.Register(CheckCPUUsage, CPUCheck(th))
	c.Register(CheckDatabase, placeholderCheck("Database connectivity check not implemented"))
	c.Register(CheckExternalServices, placeholderCheck("External services check not implemented"))
	c.Register(CheckAppMetrics, ApplicationMetricsCheck(reg, th))
}

// MemoryCheck reports virtual memory pressure.
func MemoryCheck(th Thresholds) CheckFunc {
	return func() Result {
		vm, err := mem.VirtualMemory()
		if err != nil {
			return unknownResult("memory sampling unavailable", err)
		}
		status := tierBelow(vm.UsedPercent, th.MemoryWarnPercent, th.MemoryCritPercent)
		return Result{
			Status:  status,
			Message: fmt.Sprintf("Memory usage: %.1f%%", vm.UsedPercent),
			Details: map[string]any{
				"used_mb":      float64(vm.Used) / (1 << 20),
				"total_mb":     float64(vm.Total) / (1 << 20),
				"available_mb": float64(vm.Available) / (1 << 20),
			},
		}
	}
}

// DiskCheck reports free space on the configured path.
func DiskCheck(th Thresholds) CheckFunc {
	return func() Result {
		du, err := disk.Usage(th.DiskPath)
		if err != nil {
			return unknownResult("disk sampling unavailable", err)
		}
		freePct := float64(du.Free) / float64(du.Total) * 100
		status := StatusCritical
		switch {
		case freePct > th.DiskFreeWarnPct:
			status = StatusHealthy
		case freePct > th.DiskFreeCritPct:
			status = StatusWarning
		}
		return Result{
			Status:  status,
			Message: fmt.Sprintf("Disk space: %.1f%% free", freePct),
			Details: map[string]any{
				"free_gb":  float64(du.Free) / (1 << 30),
				"total_gb": float64(du.Total) / (1 << 30),
			},
		}
	}
}

// CPUCheck samples aggregate CPU usage over the configured interval.
func CPUCheck(th Thresholds) CheckFunc {
	return func() Result {
		pcts, err := cpu.Percent(th.CPUSampleInterval, false)
		if err != nil || len(pcts) == 0 {
			return unknownResult("cpu sampling unavailable", err)
		}
		usage := pcts[0]
		return Result{
			Status:  tierBelow(usage, th.CPUWarnPercent, th.CPUCritPercent),
			Message: fmt.Sprintf("CPU usage: %.1f%%", usage),
			Details: map[string]any{"cpu_percent": usage},
		}
	}
}

// ApplicationMetricsCheck derives an error rate from the errors_total and
// requests_total counters.
func ApplicationMetricsCheck(reg *metrics.Registry, th Thresholds) CheckFunc {
	return func() Result {
		s := reg.Summary()
		errors := s.Counter("errors_total")
		requests := s.Counter("requests_total")
		if requests == 0 {
			return Result{
				Status:  StatusHealthy,
				Message: "No requests recorded yet",
				Details: map[string]any{"error_rate": 0.0, "total_requests": int64(0), "error_count": int64(0)},
			}
		}
		errPct := float64(errors) / float64(requests) * 100
		return Result{
			Status:  tierBelow(errPct, th.ErrorRateWarnPct, th.ErrorRateCritPct),
			Message: fmt.Sprintf("Application error rate: %.1f%%", errPct),
			Details: map[string]any{"error_rate": errPct, "total_requests": requests, "error_count": errors},
		}
	}
}

func placeholderCheck(msg string) CheckFunc {
	return func() Result {
		return Result{
			Status:  StatusHealthy,
			Message: msg,
			Details: map[string]any{"note": "customize this check for your deployment"},
		}
	}
}

// tierBelow maps a usage value against ascending warn/crit bounds.
func tierBelow(v, warn, crit float64) Status {
	switch {
	case v < warn:
		return StatusHealthy
	case v < crit:
		return StatusWarning
	default:
		return StatusCritical
	}
}

func unknownResult(msg string, err error) Result {
	details := map[string]any{}
	if err != nil {
		details["error"] = err.Error()
	}
	return Result{Status: StatusUnknown, Message: msg, Details: details}
}
