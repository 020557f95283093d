package observability

import "github.com/prometheus/client_golang/prometheus"

// UpstreamBuckets covers vendor latencies from 50ms to two minutes.
var UpstreamBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// RequestsTotal counts downstream HTTP requests by route and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatrelay_requests_total",
			Help: "Downstream requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration records downstream request duration in seconds.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatrelay_request_duration_seconds",
			Help:    "Downstream request duration",
			Buckets: UpstreamBuckets,
		},
		[]string{"method", "route"},
	)

	// StreamingConnections tracks in-flight SSE responses.
	StreamingConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatrelay_streaming_connections_active",
			Help: "Active streaming responses",
		},
	)

	// UpstreamRequestsTotal counts calls to the vendor API by endpoint and status code.
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatrelay_upstream_requests_total",
			Help: "Vendor API requests",
		},
		[]string{"endpoint", "status"},
	)

	// UpstreamLatency records time to vendor response headers.
	UpstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatrelay_upstream_latency_seconds",
			Help:    "Vendor time to first byte",
			Buckets: UpstreamBuckets,
		},
		[]string{"endpoint"},
	)

	// StreamEventsTotal counts decoded vendor stream events.
	StreamEventsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chatrelay_stream_events_total",
			Help: "Decoded vendor stream events",
		},
	)

	// StreamParseErrorsTotal counts vendor stream lines that failed to decode.
	StreamParseErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chatrelay_stream_parse_errors_total",
			Help: "Discarded vendor stream lines",
		},
	)

	// CatalogResolutionsTotal counts catalog resolutions by source (cache, upstream, error).
	CatalogResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatrelay_catalog_resolutions_total",
			Help: "Model catalog resolutions",
		},
		[]string{"source"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		StreamingConnections,
		UpstreamRequestsTotal,
		UpstreamLatency,
		StreamEventsTotal,
		StreamParseErrorsTotal,
		CatalogResolutionsTotal,
	)
}
