package domain

// ServiceHealth reports the health of one dependency.
type ServiceHealth struct {
	Name          string  `json:"name"`
	Status        string  `json:"status"` // healthy, degraded, unhealthy
	LatencyMs     int64   `json:"latency_ms"`
	UptimePercent float64 `json:"uptime_percent"`
	LastChecked   string  `json:"last_checked"`
}

// HealthStatus is the GET /healthz response.
type HealthStatus struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
}

// OpsSnapshot is the GET /v1/metrics/summary response: a point-in-time read
// of the service's own counters.
type OpsSnapshot struct {
	TotalRequests    int64   `json:"total_requests"`
	ErrorRate        float64 `json:"error_rate"`
	UpstreamErrors   int64   `json:"upstream_errors"`
	PaymentMutations int64   `json:"payment_mutations"`
	CacheHitRate     float64 `json:"cache_hit_rate"`
	Period           string  `json:"period"`
}
