package metrics

import (
	"time"

	"github.com/mfreeman451/checkmate/pkg/models"
)

//go:generate mockgen -destination=mock_metrics.go -package=metrics github.com/mfreeman451/checkmate/pkg/metrics MetricStore,MetricCollector

type MetricStore interface {
	Add(timestamp time.Time, elapsedMicros int64, serviceName string)
	GetPoints() []models.MetricPoint
}

type MetricCollector interface {
	AddMetric(host string, timestamp time.Time, elapsedMicros int64, serviceName string)
	GetMetrics(host string) []models.MetricPoint
	GetActiveHosts() int64
}
