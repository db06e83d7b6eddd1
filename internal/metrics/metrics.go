// Package metrics provides Prometheus metrics for the binder server.
// Scrape these at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "binder_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "binder_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Scryfall API Metrics
	ScryfallRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "binder_scryfall_requests_total",
			Help: "Total number of Scryfall API requests made",
		},
		[]string{"endpoint", "status"},
	)

	ScryfallCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "binder_scryfall_cache_hits_total",
			Help: "Named-lookup requests served from the in-memory cache",
		},
	)

	// Collection Metrics
	CollectionMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "binder_collection_mutations_total",
			Help: "Collection add/remove operations",
		},
		[]string{"op"},
	)

	PriceRefreshUpdatesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "binder_price_refresh_updates_total",
			Help: "Total number of collection prices updated by refresh runs",
		},
	)

	// Trade Metrics
	TradeOffersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "binder_trade_offers_total",
			Help: "Trade offers by resulting status",
		},
		[]string{"status"},
	)
)
