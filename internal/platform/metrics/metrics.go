package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "petfy"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "route", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	WalkRequestsCreated   = promauto.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "walk_requests_created_total", Help: "Walk requests created"})
	WalkRequestsCancelled = promauto.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "walk_requests_cancelled_total", Help: "Walk requests cancelled"})
	WalkRequestsConfirmed = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "walk_requests_confirmed_total", Help: "Walk requests confirmed, by source (auto|walker)"},
		[]string{"source"},
	)

	SchedulerEntries = promauto.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "scheduler_entries", Help: "Pending auto-confirmation entries"})
	SessionsOpen     = promauto.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "sessions_open", Help: "Sessions cached in memory"})

	ChatMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "chat_messages_total", Help: "Chat messages appended, by sender"},
		[]string{"sender"},
	)

	AuthCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "auth_calls_total", Help: "Calls to the auth backend, by operation and outcome"},
		[]string{"op", "outcome"},
	)
)
