package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "agency_cms"

var (
	DispatchRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_runs_total",
			Help:      "Dispatch job runs by result (ok, skipped, failed).",
		},
		[]string{"result"},
	)

	DispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Duration of dispatch job runs.",
			Buckets:   []float64{.1, .5, 1, 5, 15, 30, 60, 120, 300},
		},
	)

	NewslettersPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "newsletters_published_total",
			Help:      "Newsletters moved to PUBLISHED.",
		},
	)

	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "newsletter_emails_total",
			Help:      "Newsletter emails by outcome (sent, failed).",
		},
		[]string{"outcome"},
	)
)

// Handler exposes the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
