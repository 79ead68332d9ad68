package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Spatial query health
	MetricNearbyLatency  = "spatial.nearby_latency"
	MetricCandidateRatio = "spatial.candidate_to_result_ratio"
	MetricCacheHitRatio  = "spatial.cache_hit_ratio"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricFencesActive     = "business.fences_active"
	MetricAlertsRecorded   = "business.alerts_recorded"
	MetricDuplicateRejects = "business.duplicate_rejections"
)
