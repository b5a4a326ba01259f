package model

const (
	HealthStatusHealthy   = "healthy"
	HealthStatusUnhealthy = "unhealthy"
)

// HealthStatus is the transient result of an on-demand health check.
// It is computed per request and never persisted.
type HealthStatus struct {
	Status         string   `json:"status"`
	ConfigLoaded   bool     `json:"config_loaded"`
	GraphBuilt     bool     `json:"graph_built"`
	SearchEnabled  bool     `json:"search_enabled"`
	TracingEnabled bool     `json:"tracing_enabled"`
	Errors         []string `json:"errors"`
}

// Healthy reports whether the status is the healthy sentinel.
func (h HealthStatus) Healthy() bool {
	return h.Status == HealthStatusHealthy
}
