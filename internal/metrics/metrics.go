package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SalesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tillpoint_sales_created_total",
		Help: "Total number of sales recorded",
	})

	SalesFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tillpoint_sales_failed_total",
		Help: "Total number of rejected or failed sale attempts",
	}, []string{"code"})

	SalesReplayedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tillpoint_sales_replayed_total",
		Help: "Total number of sale requests answered from an idempotency key",
	})

	CouponRedemptionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tillpoint_coupon_redemptions_total",
		Help: "Total number of coupons applied to recorded sales",
	})

	SaleTransactionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tillpoint_sale_transaction_seconds",
		Help:    "Latency of the sale recording transaction",
		Buckets: prometheus.DefBuckets,
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
