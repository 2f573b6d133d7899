package main

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mediaforge/pipewatch/internal/config"
	"github.com/mediaforge/pipewatch/internal/monitoring"
	"github.com/mediaforge/pipewatch/internal/monitoring/api"
)

func main() {
	log.Info().Msg("Starting pipewatch monitoring server")
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// configure log level from config
	switch strings.ToLower(cfg.Logging.Level) {
	case "trace":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	sys := monitoring.NewSystem(cfg)
	defer sys.Close()
	monitoring.SetDefault(sys)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(api.JSONRecovery())
	api.NewApi(router, sys)
	api.RegisterServiceRoutes(router, sys)

	log.Info().
		Str("bind", cfg.Server.BindAddr).
		Bool("monitoring_enabled", sys.Enabled()).
		Str("environment", cfg.Monitoring.Environment).
		Msg("serving monitoring endpoints")
	if err := router.Run(cfg.Server.BindAddr); err != nil {
		log.Fatal().Err(err).Msg("start pipewatch server failed")
	}
	log.Info().Msg("pipewatch server exit...")
}
