// internal/app/system/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Request paths of the usage report.
const (
	PathFull     = "full"
	PathFragment = "fragment"
	PathAPI      = "api"
)

// Outcomes recorded for page requests.
const (
	OutcomeOK     = "ok"
	OutcomeDenied = "denied"
	OutcomeError  = "error"
)

var (
	pageRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ltiusage",
		Subsystem: "report",
		Name:      "page_requests_total",
		Help:      "Usage report page requests by path and outcome.",
	}, []string{"path", "outcome"})

	pageFetchSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ltiusage",
		Subsystem: "report",
		Name:      "page_fetch_seconds",
		Help:      "Time spent computing one page of the usage report.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"path"})

	activityDeletes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ltiusage",
		Subsystem: "activities",
		Name:      "deletes_total",
		Help:      "LTI activity deletions by outcome.",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(pageRequests, pageFetchSeconds, activityDeletes)
}

// ObservePage records one page request and its latency.
func ObservePage(path, outcome string, elapsed time.Duration) {
	pageRequests.WithLabelValues(path, outcome).Inc()
	if outcome == OutcomeOK {
		pageFetchSeconds.WithLabelValues(path).Observe(elapsed.Seconds())
	}
}

// ObserveDelete records one delete attempt.
func ObserveDelete(outcome string) {
	activityDeletes.WithLabelValues(outcome).Inc()
}
