// Package metrics holds the Prometheus collectors of the recommendation service.
package metrics

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "recommendations"

var latencyBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

var (
	// RecommendationRequests counts orchestrated requests by operation and outcome.
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total recommendation requests",
		},
		[]string{"operation", "outcome"},
	)

	// StageLatency tracks latency of each pipeline stage.
	StageLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_latency_seconds",
			Help:      "Latency of pipeline stages in seconds",
			Buckets:   latencyBuckets,
		},
		[]string{"stage"}, // embed, vector_search, retrieve (embed + search), rank, respond, persist
	)

	// UpstreamFailures counts degraded collaborator calls.
	UpstreamFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_failures_total",
			Help:      "Collaborator calls that failed and were degraded",
		},
		[]string{"collaborator"}, // embedder, vector_store, responder, session_store, interaction_log
	)

	// MalformedRecords counts catalog records dropped for missing fields.
	MalformedRecords = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_records_total",
			Help:      "Retrieved catalog records dropped for missing required fields",
		},
	)

	// FallbackResponses counts replies produced by the templated fallback.
	FallbackResponses = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallback_responses_total",
			Help:      "Conversational replies generated by the fallback templates",
		},
	)

	// CatalogSyncItems counts catalog items processed by the embed consumer.
	CatalogSyncItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_sync_items_total",
			Help:      "Catalog items processed by the embedding pipeline",
		},
		[]string{"outcome"}, // upserted, failed, skipped
	)

	// DBConnectionPoolSize mirrors sql.DBStats.
	DBConnectionPoolSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connection_pool_size",
			Help:      "Database connection pool size by state",
		},
		[]string{"state"},
	)
)

// UpdateDBPoolStats updates database connection pool metrics from sql.DBStats.
func UpdateDBPoolStats(stats sql.DBStats) {
	DBConnectionPoolSize.WithLabelValues("active").Set(float64(stats.InUse))
	DBConnectionPoolSize.WithLabelValues("idle").Set(float64(stats.Idle))
	DBConnectionPoolSize.WithLabelValues("max").Set(float64(stats.MaxOpenConnections))
}
