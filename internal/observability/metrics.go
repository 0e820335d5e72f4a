// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the escrow service.
type Metrics struct {
	// Settlement metrics
	OrdersCreated     prometheus.Counter
	OrdersFilled      prometheus.Counter
	OrdersCancelled   prometheus.Counter
	SettlementErrors  *prometheus.CounterVec
	TransferFailures  *prometheus.CounterVec
	SettlementLatency *prometheus.HistogramVec

	// Escrow metrics
	EscrowHoldings    *prometheus.GaugeVec
	OpenOrders        prometheus.Gauge
	QuarantinedOrders prometheus.Gauge

	// Event sink metrics
	EventsPublished prometheus.Counter
	EventsDropped   *prometheus.CounterVec

	// API metrics
	WSClients       prometheus.Gauge
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "swapchain"
	}

	return &Metrics{
		// Settlement metrics
		OrdersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "orders_created_total",
			Help:      "Total number of orders created",
		}),
		OrdersFilled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "orders_filled_total",
			Help:      "Total number of orders filled",
		}),
		OrdersCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "orders_cancelled_total",
			Help:      "Total number of orders cancelled",
		}),
		SettlementErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "errors_total",
			Help:      "Total number of failed operations by operation and error kind",
		}, []string{"operation", "kind"}),
		TransferFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "transfer_failures_total",
			Help:      "Total number of asset ledger transfers rejected by operation",
		}, []string{"operation"}),
		SettlementLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "operation_latency_seconds",
			Help:      "Settlement operation latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),

		// Escrow metrics
		EscrowHoldings: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "escrow",
			Name:      "holdings",
			Help:      "Current custodial holding per asset",
		}, []string{"asset"}),
		OpenOrders: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "escrow",
			Name:      "open_orders",
			Help:      "Current number of open orders",
		}),
		QuarantinedOrders: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "escrow",
			Name:      "quarantined_orders",
			Help:      "Number of orders refused further mutation after an internal-consistency violation",
		}),

		// Event sink metrics
		EventsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Total number of settlement events published to sinks",
		}),
		EventsDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "dropped_total",
			Help:      "Total number of settlement events dropped by sink",
		}, []string{"sink"}),

		// API metrics
		WSClients: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "ws_clients",
			Help:      "Current number of connected WebSocket clients",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}
