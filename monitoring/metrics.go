package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ResponseTimeHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_time_seconds",
			Help:    "Histogram of response times",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	NodePurchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "node_purchases_total",
			Help: "Total number of purchased mining nodes",
		},
		[]string{"node_id"},
	)

	WithdrawalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "withdrawals_total",
			Help: "Total number of processed withdrawals",
		},
		[]string{"balance_type"},
	)
)

// ObserveRequest обновляет счётчик запросов и гистограмму времени ответа.
func ObserveRequest(method, path string, status int, latency time.Duration) {
	HttpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	ResponseTimeHistogram.WithLabelValues(method, path).Observe(latency.Seconds())
}
