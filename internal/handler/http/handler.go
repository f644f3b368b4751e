package http

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/MKhiriev/go-team-sync/internal/logger"
	"github.com/MKhiriev/go-team-sync/internal/service"
)

// Handler serves the local sync control API.
type Handler struct {
	status   service.StatusService
	job      service.SyncJob
	gatherer prometheus.Gatherer

	logger *logger.Logger
}

// NewHandler builds the handler over the process services. A nil gatherer
// exposes the default prometheus registry on /metrics.
func NewHandler(services *service.ClientServices, gatherer prometheus.Gatherer, logger *logger.Logger) *Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	logger.Info().Msg("http handler created")
	return &Handler{
		status:   services.Status,
		job:      services.Job,
		gatherer: gatherer,
		logger:   logger,
	}
}
