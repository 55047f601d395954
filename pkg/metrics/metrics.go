package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request latency in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// MQ consume latency in milliseconds
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	SlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_slow_query_count",
			Help: "Queries slower than the configured threshold",
		},
		[]string{"statement"},
	)

	SlowQueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "db_slow_query_duration_seconds",
			Help:    "Duration of slow queries in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 8),
		},
	)

	HistoryEntriesLogged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tarefa_history_entries_logged_total",
			Help: "Time-tracking history entries appended",
		},
		[]string{"source"}, // source: jwt, cli
	)

	SummaryCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "effort_summary_cache_lookups_total",
			Help: "Effort summary cache lookups by result",
		},
		[]string{"result"}, // result: hit, miss, error
	)

	OrphanedTasks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kanban_orphaned_tasks_total",
			Help: "Tasks found referencing a step outside their project while assembling a board",
		},
	)
)

// RecordHTTPRequestDuration observes one request.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordMQConsumeLatency observes one delivery.
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

// IncrementSlowQuery records one slow statement. The statement label is the first
// keyword only, to keep cardinality bounded.
func IncrementSlowQuery(sql string, duration time.Duration) {
	SlowQueryCount.WithLabelValues(statementKind(sql)).Inc()
	SlowQueryDuration.Observe(duration.Seconds())
}

func IncrementHistoryLogged(source string) {
	HistoryEntriesLogged.WithLabelValues(source).Inc()
}

func IncrementSummaryCache(result string) {
	SummaryCacheLookups.WithLabelValues(result).Inc()
}

func AddOrphanedTasks(n int) {
	OrphanedTasks.Add(float64(n))
}
