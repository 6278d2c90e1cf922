package tracker

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics used in monitoring service.
var (
	pollCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Completed poll cycles",
			Name:      "polls_total",
			Namespace: "shiporacle",
		},
	)

	pollFailCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Poll cycles aborted by a chain query failure",
			Name:      "poll_failures_total",
			Namespace: "shiporacle",
		},
	)

	closedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Shipments closed on chain",
			Name:      "shipments_closed_total",
			Namespace: "shiporacle",
		},
	)

	closeFailCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Failed shipment closing attempts",
			Name:      "shipment_close_failures_total",
			Namespace: "shiporacle",
		},
	)
)

func init() {
	prometheus.MustRegister(
		pollCounter,
		pollFailCounter,
		closedCounter,
		closeFailCounter,
	)
}
