package database

import (
	"context"
	"time"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus is the result of a database health probe
type HealthStatus struct {
	Status       string          `json:"status"`
	ResponseTime time.Duration   `json:"response_time"`
	Errors       []string        `json:"errors,omitempty"`
	Metrics      MetricsSnapshot `json:"metrics"`
	CheckedAt    time.Time       `json:"checked_at"`
}

// Health pings the pool and reports its state
func (m *Manager) Health(ctx context.Context) *HealthStatus {
	start := time.Now()
	status := &HealthStatus{
		Status:    StatusHealthy,
		CheckedAt: start,
	}

	db := m.DB()
	if db == nil {
		status.Status = StatusUnhealthy
		status.Errors = append(status.Errors, "database connection is closed")
		return status
	}

	if err := db.PingContext(ctx); err != nil {
		status.Status = StatusUnhealthy
		status.Errors = append(status.Errors, err.Error())
	} else {
		var one int
		if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
			status.Status = StatusUnhealthy
			status.Errors = append(status.Errors, err.Error())
		}
	}

	status.ResponseTime = time.Since(start)
	status.Metrics = m.metrics.Snapshot(db.Stats())
	return status
}
