// Package metrics defines the Prometheus collectors exported by the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, path and status
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stableroute_http_requests_total",
		Help: "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration observes request latency by method and path
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stableroute_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// DatabaseConnectionsGauge tracks database pool state
	DatabaseConnectionsGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "stableroute_database_connections",
		Help: "Database connection pool state",
	}, []string{"state"})

	// QuotesIssuedTotal counts issued quotes by route kind (same_chain / cross_chain)
	QuotesIssuedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stableroute_quotes_issued_total",
		Help: "Quotes issued by route kind",
	}, []string{"kind"})

	// QuoteErrorsTotal counts quote request failures by error code
	QuoteErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stableroute_quote_errors_total",
		Help: "Quote request failures by error code",
	}, []string{"code"})

	// PriceLookupsTotal counts price lookups by chain and outcome
	// (cache_hit, source, fallback)
	PriceLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stableroute_price_lookups_total",
		Help: "Price lookups by chain and outcome",
	}, []string{"chain", "outcome"})

	// BridgeSelectionsTotal counts bridge selections by protocol
	BridgeSelectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stableroute_bridge_selections_total",
		Help: "Bridge selections by protocol",
	}, []string{"protocol"})

	// MessagesTotal counts cross-chain message transitions by state
	MessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stableroute_messages_total",
		Help: "Cross-chain message transitions",
	}, []string{"state"})

	// TransfersTotal counts transfer records by status
	TransfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stableroute_transfers_total",
		Help: "Transfer records by status",
	}, []string{"status"})
)
