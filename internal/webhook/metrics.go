package webhook

import "github.com/prometheus/client_golang/prometheus"

// Ingress metrics
var (
	webhooksReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bundle_sync_webhooks_received_total",
			Help: "Total number of webhook deliveries received",
		},
		[]string{"topic"},
	)

	webhooksDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bundle_sync_webhooks_dropped_total",
			Help: "Total number of webhook deliveries dropped before processing",
		},
		[]string{"topic", "cause"},
	)
)

func init() {
	prometheus.MustRegister(webhooksReceived)
	prometheus.MustRegister(webhooksDropped)
}
