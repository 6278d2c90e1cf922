// Package metrics exposes the daemon's Prometheus metrics over HTTP.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/shiporacle/shiporacle/pkg/config"
)

// Service serves metrics.
type Service struct {
	*http.Server
	config config.BasicService
	log    *zap.Logger
}

// NewPrometheusService creates a new service for gathering prometheus
// metrics.
func NewPrometheusService(cfg config.BasicService, log *zap.Logger) *Service {
	return &Service{
		Server: &http.Server{
			Addr:    cfg.Address,
			Handler: promhttp.Handler(),
		},
		config: cfg,
		log:    log,
	}
}

// Start runs the http service with the exposed endpoint on the configured
// port.
func (ms *Service) Start() {
	if !ms.config.Enabled {
		ms.log.Info("metrics service hasn't started since it's disabled")
		return
	}
	ms.log.Info("metrics service is running", zap.String("endpoint", ms.Addr))
	err := ms.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		ms.log.Warn("metrics service couldn't start on configured port", zap.Error(err))
	}
}

// ShutDown stops the service.
func (ms *Service) ShutDown() {
	if !ms.config.Enabled {
		return
	}
	ms.log.Info("shutting down metrics service", zap.String("endpoint", ms.Addr))
	if err := ms.Shutdown(context.Background()); err != nil {
		ms.log.Error("can't shut metrics service down", zap.Error(err))
	}
}
