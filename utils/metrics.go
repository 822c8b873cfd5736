package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MetricPagoResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Name:      "pago_resolutions_total",
			Help:      "Number of pagos moved out of the pending state, by method and final state",
		},
		[]string{"metodo", "estado"},
	)

	MetricBoletasIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Name:      "boletas_issued_total",
			Help:      "Number of issued boletas, by periodo",
		},
		[]string{"periodo"},
	)

	MetricReconciliationActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Name:      "reconciliation_actions_total",
			Help:      "Number of reconciliation actions, by kind and outcome",
		},
		[]string{"action", "outcome"},
	)

	MetricReconciliationRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "portal",
			Name:      "reconciliation_run_duration_seconds",
			Help:      "Duration of the reconciliation runs",
			Buckets:   prometheus.DefBuckets,
		},
	)

	MetricGatewayRequestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "portal",
			Name:      "gateway_request_duration_seconds",
			Help:      "Latency of the calls to the payment gateways",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"gateway", "operation", "outcome"},
	)

	MetricChatConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "portal",
			Name:      "chat_connections",
			Help:      "Number of open chat websocket connections",
		},
	)
)
