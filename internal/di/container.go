// Package di provides dependency injection configuration for the asset
// monitor daemon.
package di

import (
	"github.com/samber/do/v2"

	"github.com/emberforge/assetmon/internal/config"
	"github.com/emberforge/assetmon/internal/di/providers"
	"github.com/emberforge/assetmon/internal/logger"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideManifest)

	// Monitor pipeline
	do.Provide(injector, providers.ProvideMonitorService)
	do.Provide(injector, providers.ProvideReloaders)

	return injector
}

// Bootstrap initializes all services. This triggers lazy initialization in
// dependency order; the reloaders invocation registers every manifest rule
// with the monitor service.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*config.Manifest](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.MonitorServiceHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.Reloaders](injector); err != nil {
		return err
	}
	return nil
}
