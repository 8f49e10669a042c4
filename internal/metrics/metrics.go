package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label value constants to prevent typos
const (
	// HTTP endpoints
	EndpointDashboard  = "dashboard"
	EndpointBiometrics = "biometrics"
	EndpointActivities = "activities"
	EndpointSync       = "sync"
	EndpointHealth     = "health"

	// Bridge API operations
	OpGetAthlete    = "get_athlete"
	OpGetWellness   = "get_wellness"
	OpGetActivities = "get_activities"
	OpGetActivity   = "get_activity"

	// Sync run kinds
	SyncKindDaily      = "daily"
	SyncKindHistorical = "historical"

	// Results
	ResultSuccess = "success"
	ResultError   = "error"
	ResultFailure = "failure"

	// Record kinds
	RecordKindWellness = "wellness"
	RecordKindActivity = "activity"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"endpoint", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint", "status_code"},
	)
)

// Bridge API Metrics
var (
	BridgeAPIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_api_requests_total",
			Help: "Total number of bridge API requests",
		},
		[]string{"operation", "status_code"},
	)

	BridgeAPIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bridge_api_request_duration_seconds",
			Help:    "Bridge API request latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"operation", "status_code"},
	)
)

// Sync Metrics
var (
	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_runs_total",
			Help: "Total number of sync runs by kind and result",
		},
		[]string{"kind", "result"},
	)

	SyncRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sync_run_duration_seconds",
			Help:    "Time spent on sync runs",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"kind"},
	)

	SyncChunksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_chunks_total",
			Help: "Total number of historical sync chunks attempted by result",
		},
		[]string{"result"},
	)

	RecordsUpsertedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "records_upserted_total",
			Help: "Total number of records upserted into the store",
		},
		[]string{"kind"},
	)

	RecordsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "records_skipped_total",
			Help: "Total number of upstream records rejected at the ingestion boundary",
		},
		[]string{"kind"},
	)

	SyncActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sync_active",
			Help: "Whether a sync run is currently in progress (1) or not (0)",
		},
	)
)

// Store Metrics
var (
	StoreRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "store_rows",
			Help: "Number of rows per table",
		},
		[]string{"table"},
	)

	LastSuccessfulSyncTimestamp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "last_successful_sync_timestamp_seconds",
			Help: "Unix timestamp of the last successful sync per source",
		},
		[]string{"source"},
	)
)
