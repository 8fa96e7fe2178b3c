package inventory

import "github.com/prometheus/client_golang/prometheus"

// Adjustment metrics
var (
	adjustmentsApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bundle_sync_adjustments_applied_total",
			Help: "Total number of inventory adjustments written upstream",
		},
		[]string{"direction"},
	)

	adjustmentsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bundle_sync_adjustments_skipped_total",
			Help: "Total number of inventory adjustments skipped due to upstream failures",
		},
		[]string{"stage"},
	)
)

func init() {
	prometheus.MustRegister(adjustmentsApplied)
	prometheus.MustRegister(adjustmentsSkipped)
}
