// Package providers contains dependency injection providers for the asset
// monitor daemon.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/emberforge/assetmon/internal/config"
	"github.com/emberforge/assetmon/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideManifest provides the parsed watch manifest.
func ProvideManifest(i do.Injector) (*config.Manifest, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return config.LoadManifest(cfg.Monitor.ManifestPath)
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting asset monitor",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"manifest", cfg.Monitor.ManifestPath,
		"debounce_window", cfg.Monitor.DebounceWindow,
	)

	return log, nil
}
