package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"perkey.ratelimiter/tokenbucket"
)

// StatsSource reports aggregate admission counters and the number of tracked
// buckets. A tokenbucket.Limiter of any key type satisfies it.
type StatsSource interface {
	Stats() tokenbucket.Stats
	Len() int
}

// LimiterCollector exposes a limiter's aggregate counters to Prometheus.
// Register it alongside promhttp to serve the /metrics endpoint.
type LimiterCollector struct {
	source  StatsSource
	allowed *prometheus.Desc
	denied  *prometheus.Desc
	buckets *prometheus.Desc
}

func NewLimiterCollector(source StatsSource) *LimiterCollector {
	return &LimiterCollector{
		source: source,
		allowed: prometheus.NewDesc(
			"ratelimiter_requests_allowed_total",
			"Total requests admitted across all keys.",
			nil, nil,
		),
		denied: prometheus.NewDesc(
			"ratelimiter_requests_denied_total",
			"Total requests denied across all keys.",
			nil, nil,
		),
		buckets: prometheus.NewDesc(
			"ratelimiter_buckets",
			"Number of per-key buckets currently tracked.",
			nil, nil,
		),
	}
}

func (c *LimiterCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.allowed
	ch <- c.denied
	ch <- c.buckets
}

func (c *LimiterCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.source.Stats()
	ch <- prometheus.MustNewConstMetric(c.allowed, prometheus.CounterValue, float64(stats.Allowed))
	ch <- prometheus.MustNewConstMetric(c.denied, prometheus.CounterValue, float64(stats.Denied))
	ch <- prometheus.MustNewConstMetric(c.buckets, prometheus.GaugeValue, float64(c.source.Len()))
}
