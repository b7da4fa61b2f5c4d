// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RateLimitExceeded counts requests rejected by the rate limiter.
	RateLimitExceeded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "delivery_rate_limit_exceeded_total",
		Help: "Number of requests rejected by the rate limiter.",
	})

	// PaymentAttempts counts payment gateway calls by outcome.
	PaymentAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_payment_attempts_total",
		Help: "Payment gateway call attempts by outcome.",
	}, []string{"outcome"})

	// PaymentRetries counts retried payment gateway calls.
	PaymentRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "delivery_payment_retries_total",
		Help: "Number of retried payment gateway calls.",
	})

	// LocationReports counts accepted courier location reports.
	LocationReports = promauto.NewCounter(prometheus.CounterOpts{
		Name: "delivery_location_reports_total",
		Help: "Number of accepted courier location reports.",
	})

	// TrackingSubscribers tracks currently connected location subscribers.
	TrackingSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "delivery_tracking_subscribers",
		Help: "Currently connected courier location subscribers.",
	})

	// OutboxPublished counts notifications published by the outbox worker.
	OutboxPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "delivery_outbox_published_total",
		Help: "Number of notifications published by the outbox worker.",
	})

	// HTTPRequests counts served requests by method, route and status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_http_requests_total",
		Help: "Served HTTP requests by method, route and status class.",
	}, []string{"method", "route", "status"})

	// HTTPDuration observes request latency by route.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "delivery_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)
