package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `json:"server" yaml:"server"`
	Logging    LoggingConfig    `json:"logging" yaml:"logging"`
	Monitoring MonitoringConfig `json:"monitoring" yaml:"monitoring"`
}

type ServerConfig struct {
	BindAddr string `json:"bindAddr" yaml:"bindAddr"`
}

type LoggingConfig struct {
	Level string `json:"level" yaml:"level"`
}

type MonitoringConfig struct {
	// Enabled gates every monitoring endpoint; when false they answer 503.
	Enabled bool `json:"enabled" yaml:"enabled"`
	// Environment selects the alert threshold profile: "production" is
	// stricter than the default "development".
	Environment string         `json:"environment" yaml:"environment"`
	Metrics     MetricsConfig  `json:"metrics" yaml:"metrics"`
	Alerting    AlertingConfig `json:"alerting" yaml:"alerting"`
	Health      HealthConfig   `json:"health" yaml:"health"`
}

type MetricsConfig struct {
	MaxHistoryPerMetric int    `json:"maxHistoryPerMetric" yaml:"maxHistoryPerMetric"`
	SweepInterval       string `json:"sweepInterval" yaml:"sweepInterval"` // e.g. "300s"
	Retention           string `json:"retention" yaml:"retention"`         // e.g. "24h"
}

// AlertingConfig overrides stock rule thresholds. Zero values mean "use the
// environment profile default". Rates are 0-1 fractions.
type AlertingConfig struct {
	SuccessRateWarn     float64 `json:"successRateWarn" yaml:"successRateWarn"`
	SuccessRateCritical float64 `json:"successRateCritical" yaml:"successRateCritical"`
	ErrorRateWarn       float64 `json:"errorRateWarn" yaml:"errorRateWarn"`
	ErrorRateCritical   float64 `json:"errorRateCritical" yaml:"errorRateCritical"`
	SlowOperation       string  `json:"slowOperation" yaml:"slowOperation"` // e.g. "30m"
}

type HealthConfig struct {
	CheckTimeout string `json:"checkTimeout" yaml:"checkTimeout"` // e.g. "5s"
	DiskPath     string `json:"diskPath" yaml:"diskPath"`
}

// Load builds configuration from environment variables, then overlays the
// file given by -f if present.
func Load() (*Config, error) {
	configFile := flag.String("f", "", "Path to configuration file (json or yaml)")
	flag.Parse()
	return LoadFrom(*configFile)
}

// LoadFrom is Load without flag handling, for tests and embedding callers.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			BindAddr: getEnv("SERVER_BIND_ADDR", "0.0.0.0:9090"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "debug"),
		},
		Monitoring: MonitoringConfig{
			Enabled:     getEnvBool("MONITORING_ENABLED", true),
			Environment: getEnv("ENVIRONMENT", "development"),
			Metrics: MetricsConfig{
				MaxHistoryPerMetric: getEnvInt("METRICS_MAX_HISTORY", 10000),
				SweepInterval:       getEnv("METRICS_SWEEP_INTERVAL", "300s"),
				Retention:           getEnv("METRICS_RETENTION", "24h"),
			},
			Health: HealthConfig{
				CheckTimeout: getEnv("HEALTH_CHECK_TIMEOUT", "5s"),
				DiskPath:     getEnv("HEALTH_DISK_PATH", "/"),
			},
		},
	}

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, err
		}
	}

	// fill reasonable defaults when fields omitted in file
	if cfg.Server.BindAddr == "" {
		cfg.Server.BindAddr = "0.0.0.0:9090"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "debug"
	}
	if cfg.Monitoring.Environment == "" {
		cfg.Monitoring.Environment = "development"
	}
	if cfg.Monitoring.Metrics.SweepInterval == "" {
		cfg.Monitoring.Metrics.SweepInterval = "300s"
	}
	if cfg.Monitoring.Metrics.Retention == "" {
		cfg.Monitoring.Metrics.Retention = "24h"
	}
	if cfg.Monitoring.Health.CheckTimeout == "" {
		cfg.Monitoring.Health.CheckTimeout = "5s"
	}
	if cfg.Monitoring.Health.DiskPath == "" {
		cfg.Monitoring.Health.DiskPath = "/"
	}

	return cfg, nil
}

// IsProduction reports whether the production alert profile applies.
func (c *Config) IsProduction() bool { return c.Monitoring.Environment == "production" }

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	return nil
}

// ParseDuration parses s, falling back to def when s is empty or malformed.
func ParseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	if v, err := time.ParseDuration(s); err == nil {
		return v
	}
	return def
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
