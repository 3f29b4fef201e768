package mediaforge

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the process-wide metric instruments named in §4.9, all
// registered against a single shared registry created once at startup and
// threaded by reference into C3, C6, C8 and C10.
type Metrics struct {
	Registry *prometheus.Registry

	Downloads                 *prometheus.CounterVec
	AssetProcessingSeconds    prometheus.Histogram
	FlowRateSeconds           prometheus.Gauge
	StorageReadsTotalTime     prometheus.Histogram
	StorageReadsNumber        prometheus.Counter
	PreviewRequestsTotalTime  prometheus.Histogram
	PreviewRequestsNumber     prometheus.Counter
}

// NewMetrics builds and registers the full metric set against a fresh
// registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		Downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "downloads_total",
			Help: "Terminal download outcomes by status.",
		}, []string{"status"}),
		AssetProcessingSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "asset_processing_seconds",
			Help: "Wall time of one worker's download-resize-store cycle.",
		}),
		FlowRateSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "flow_rate_seconds",
			Help: "Seconds per reported result at the last reporter flush.",
		}),
		StorageReadsTotalTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "storage_reads_total_time_seconds",
			Help: "Time spent in object store Get calls from the preview server.",
		}),
		StorageReadsNumber: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storage_reads_number",
			Help: "Number of object store Get calls from the preview server.",
		}),
		PreviewRequestsTotalTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "get_preview_requests_total_time_seconds",
			Help: "Full latency of /preview/{id} requests.",
		}),
		PreviewRequestsNumber: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "get_preview_requests_number",
			Help: "Number of /preview/{id} requests.",
		}),
	}

	reg.MustRegister(
		m.Downloads,
		m.AssetProcessingSeconds,
		m.FlowRateSeconds,
		m.StorageReadsTotalTime,
		m.StorageReadsNumber,
		m.PreviewRequestsTotalTime,
		m.PreviewRequestsNumber,
	)
	return m
}
