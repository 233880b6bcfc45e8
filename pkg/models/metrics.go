// Package models pkg/models/metrics.go
package models

import "time"

// MetricPoint is one recorded evaluation timing for a service item.
type MetricPoint struct {
	Timestamp     time.Time `json:"timestamp"`
	ElapsedMicros int64     `json:"elapsed_micros"`
	ServiceName   string    `json:"service_name"`
}

// MetricsConfig controls the per-host timing buffers. MaxHosts caps how
// many hosts get a buffer; zero means no cap.
type MetricsConfig struct {
	Enabled   bool `json:"metrics_enabled"`
	Retention int  `json:"metrics_retention"`
	MaxHosts  int  `json:"max_hosts"`
}
