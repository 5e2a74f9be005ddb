// Package metrics provides request counters for rate limited endpoints and a
// Prometheus bridge for limiter statistics.
package metrics

import "sync/atomic"

type RateLimitMetrics struct {
	TotalRequests    atomic.Uint64
	RejectedRequests atomic.Uint64
	AllowedRequests  atomic.Uint64
}

func NewRateLimitMetrics() *RateLimitMetrics {
	return &RateLimitMetrics{}
}

func (r *RateLimitMetrics) RecordRequest(allowed bool) {
	r.TotalRequests.Add(1)
	if allowed {
		r.AllowedRequests.Add(1)
	} else {
		r.RejectedRequests.Add(1)
	}
}
