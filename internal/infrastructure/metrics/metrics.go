package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the application-level Prometheus metrics. HTTP metrics
// live in the router middleware and register themselves.
type Metrics struct {
	// Ledger metrics
	RulesApplied       *prometheus.CounterVec
	ApplyRejections    *prometheus.CounterVec
	VATSettlements     prometheus.Counter
	ManualTransactions *prometheus.CounterVec
	TransactionAmount  prometheus.Histogram
	ApplyDuration      prometheus.Histogram

	// Cache metrics
	CacheHits        *prometheus.CounterVec
	CacheMisses      *prometheus.CounterVec
	CacheInvalidated prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Ledger metrics
		RulesApplied: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valcoin_rules_applied_total",
				Help: "Total number of rule applications committed",
			},
			[]string{"rule_id"},
		),
		ApplyRejections: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valcoin_apply_rejections_total",
				Help: "Total number of rule applications rejected by validation",
			},
			[]string{"reason"},
		),
		VATSettlements: promauto.NewCounter(prometheus.CounterOpts{
			Name: "valcoin_vat_settlements_total",
			Help: "Total number of VAT settlement rows written",
		}),
		ManualTransactions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valcoin_manual_transactions_total",
				Help: "Total manual transactions by status",
			},
			[]string{"status"},
		),
		TransactionAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "valcoin_transaction_amount",
			Help:    "Transaction amounts",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000},
		}),
		ApplyDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "valcoin_apply_duration_seconds",
			Help:    "Duration of rule application operations",
			Buckets: prometheus.DefBuckets,
		}),

		// Cache metrics
		CacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valcoin_cache_hits_total",
				Help: "Total cache hits by key",
			},
			[]string{"key"},
		),
		CacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valcoin_cache_misses_total",
				Help: "Total cache misses by key",
			},
			[]string{"key"},
		),
		CacheInvalidated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "valcoin_cache_invalidations_total",
			Help: "Total cache keys invalidated",
		}),
	}
}
