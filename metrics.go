package spacetraveling

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cmsDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spacetraveling_cms_request_duration_seconds",
			Help:    "Duration of CMS requests by operation",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	cmsErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spacetraveling_cms_errors_total",
			Help: "CMS requests that failed, by operation",
		},
		[]string{"op"},
	)

	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spacetraveling_cache_lookups_total",
			Help: "Post cache lookups by kind and result (hit, miss, stale)",
		},
		[]string{"kind", "result"},
	)
)

func observeCMS(op string, start time.Time) {
	cmsDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
