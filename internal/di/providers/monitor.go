package providers

import (
	"github.com/samber/do/v2"

	"github.com/emberforge/assetmon/internal/config"
	"github.com/emberforge/assetmon/internal/logger"
	"github.com/emberforge/assetmon/internal/monitor"
)

// MonitorServiceHandle wraps the monitor service with shutdown capability.
// The service owns its backend and closes it during Shutdown.
type MonitorServiceHandle struct {
	*monitor.Service
}

// Shutdown implements do.Shutdownable.
func (h *MonitorServiceHandle) Shutdown() error {
	return h.Service.Shutdown()
}

// ProvideMonitorService provides the debounced directory monitor.
func ProvideMonitorService(i do.Injector) (*MonitorServiceHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	backend, err := monitor.NewFsnotifyBackend(log.Logger)
	if err != nil {
		return nil, err
	}

	svc := monitor.New(log.Logger, backend, monitor.Options{
		DebounceWindow: cfg.Monitor.DebounceWindow,
	})

	log.Info("Monitor service started")

	return &MonitorServiceHandle{Service: svc}, nil
}
