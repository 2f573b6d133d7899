package api

import "github.com/mediaforge/pipewatch/internal/monitoring/health"

// recommendations derives actionable advice from per-check results. Keyed by
// the default check names; unknown checks contribute nothing.
func recommendations(r *health.Report) []string {
	var out []string

	add := func(name string, critical, warning string) {
		res, ok := r.Checks[name]
		if !ok {
			return
		}
		switch res.Status {
		case health.StatusCritical:
			if critical != "" {
				out = append(out, critical)
			}
		case health.StatusWarning:
			if warning != "" {
				out = append(out, warning)
			}
		}
	}

	add(health.CheckMemoryUsage,
		"URGENT: High memory usage detected. Consider scaling or memory optimization.",
		"Monitor memory usage closely. Consider memory profiling.")
	add(health.CheckDiskSpace,
		"CRITICAL: Low disk space. Free up space or scale storage immediately.",
		"Disk space running low. Plan for storage cleanup or expansion.")
	add(health.CheckCPUUsage,
		"CRITICAL: High CPU usage. Investigate performance bottlenecks.",
		"Elevated CPU usage. Monitor for performance degradation.")
	add(health.CheckAppMetrics,
		"CRITICAL: High application error rates. Immediate investigation required.",
		"Elevated error rates detected. Review application logs.")
	add(health.CheckDatabase,
		"CRITICAL: Database connectivity issues. Check database status.", "")
	add(health.CheckExternalServices,
		"CRITICAL: External service dependencies failing. Check service status.", "")

	if len(out) == 0 {
		out = append(out, "All systems operating normally.")
	}
	return out
}
