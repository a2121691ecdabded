package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_requests_latency_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// ATM operations
	TransactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atm_transactions_total",
			Help: "Committed deposits and withdrawals",
		},
		[]string{"type"}, // Deposit|Withdraw
	)
	TransactionsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atm_transactions_failed_total",
			Help: "Rejected or failed deposits and withdrawals",
		},
		[]string{"type", "reason"},
	)
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atm_logins_total",
			Help: "Login attempts by outcome",
		},
		[]string{"outcome"}, // success|failure|blocked|error
	)
	RegistrationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "atm_registrations_total",
			Help: "Accounts created",
		},
	)

	// worker queue
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)

	initOnce sync.Once
)

// /metrics endpoint handler
var Handler = promhttp.Handler

// Init registers the collectors with the default registry. Safe to call
// more than once (tests build several routers).
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			RequestLatency,
			TransactionsTotal,
			TransactionsFailed,
			LoginsTotal,
			RegistrationsTotal,
			WorkerQueueDepth,
		)
	})
}
