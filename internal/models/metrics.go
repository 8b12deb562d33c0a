package models

import "time"

// SystemMetrics is a lightweight aggregate snapshot for operational
// endpoints, complementing the Prometheus exposition.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	SnapshotRefreshes        uint64    `json:"snapshot_refreshes"`
	MessageGenerations       uint64    `json:"message_generations"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
