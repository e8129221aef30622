package providers

import (
	"github.com/samber/do/v2"

	"github.com/emberforge/assetmon/internal/config"
	"github.com/emberforge/assetmon/internal/logger"
	"github.com/emberforge/assetmon/internal/monitor"
	"github.com/emberforge/assetmon/internal/reload"
)

// Reloaders holds the reload managers built from the watch manifest, keyed by
// watched directory.
type Reloaders struct {
	Scripts map[string]*reload.ScriptManager
	Models  map[string]*reload.ModelManager
}

// Shutdown implements do.Shutdownable. Handler deregistration happens via the
// monitor service's own shutdown; this only stops the script workers.
func (r *Reloaders) Shutdown() error {
	for _, m := range r.Scripts {
		m.Close()
	}
	return nil
}

// ProvideReloaders builds one reload manager per manifest rule and registers
// each with the monitor service.
func ProvideReloaders(i do.Injector) (*Reloaders, error) {
	cfg := do.MustInvoke[*config.Config](i)
	manifest := do.MustInvoke[*config.Manifest](i)
	log := do.MustInvoke[*logger.Logger](i)
	svc := do.MustInvoke[*MonitorServiceHandle](i)

	reloaders := &Reloaders{
		Scripts: make(map[string]*reload.ScriptManager),
		Models:  make(map[string]*reload.ModelManager),
	}

	for _, rule := range manifest.Watches {
		var handler monitor.Handler

		switch rule.Kind {
		case config.KindScript:
			m := reloaders.Scripts[rule.Directory]
			if m == nil {
				m = reload.NewScriptManager(log.Logger, rule.Directory)
				reloaders.Scripts[rule.Directory] = m
				if err := m.Preload(); err != nil {
					log.Warn("script preload failed", "dir", rule.Directory, "error", err)
				}
			}
			handler = m

		case config.KindModel:
			m := reloaders.Models[rule.Directory]
			if m == nil {
				var err error
				m, err = reload.NewModelManager(log.Logger, rule.Directory, cfg.Reload.ModelCacheSize)
				if err != nil {
					return nil, err
				}
				reloaders.Models[rule.Directory] = m
			}
			handler = m

		case config.KindLog:
			handler = monitor.NewHandler("", nil, func(batch monitor.Batch) {
				for _, ev := range batch {
					log.Info("asset changed", "path", ev.Path, "kind", ev.Kind.String())
				}
			})
		}

		handler = reload.WithPatterns(handler, rule.Patterns)
		if err := svc.MonitorDirectoryFiles(rule.Directory, handler); err != nil {
			return nil, err
		}
		log.Info("watch rule active", "dir", rule.Directory, "kind", rule.Kind, "key", handler.Key())
	}

	return reloaders, nil
}
