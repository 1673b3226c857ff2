package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/sma-timetable-engine/internal/models"
)

// Index write operations reported by the metrics service.
const (
	IndexOpUpsert  = "upsert"
	IndexOpRebuild = "rebuild"
	IndexOpRemove  = "remove"
)

// MetricsSnapshot is a compact view of engine counters for the summary endpoint.
type MetricsSnapshot struct {
	Generations            uint64    `json:"generations"`
	AverageGenerationMs    float64   `json:"average_generation_ms"`
	ConflictsReported      uint64    `json:"conflicts_reported"`
	IndexWriteFailures     uint64    `json:"index_write_failures"`
	IndexRepairsScheduled  uint64    `json:"index_repairs_scheduled"`
	CacheHitRatio          float64   `json:"cache_hit_ratio"`
	RequestsTotal          uint64    `json:"requests_total"`
	AverageRequestDuration float64   `json:"average_request_duration_ms"`
	Goroutines             int       `json:"goroutines"`
	GeneratedAt            time.Time `json:"generated_at"`
}

// MetricsService encapsulates Prometheus instrumentation for the timetable engine.
type MetricsService struct {
	registry           *prometheus.Registry
	handler            http.Handler
	requestDuration    *prometheus.HistogramVec
	requestTotal       *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	entriesPlaced      prometheus.Counter
	conflicts          *prometheus.CounterVec
	indexWrites        *prometheus.CounterVec
	indexRepairs       *prometheus.CounterVec
	cacheLatency       prometheus.Observer
	cacheWrite         prometheus.Observer
	cacheHitRatio      prometheus.Gauge

	generationCount         uint64
	generationDurationTotal uint64
	conflictCount           uint64
	indexFailureCount       uint64
	repairCount             uint64
	cacheHitCount           uint64
	cacheMissCount          uint64
	requestCount            uint64
	requestDurationTotal    uint64
}

// NewMetricsService registers the engine collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	generationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timetable_generation_duration_seconds",
		Help:    "Time spent building grids, placing entries and analyzing conflicts",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"strategy"})

	entriesPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_entries_placed_total",
		Help: "Entries placed by the assignment engine",
	})

	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_conflicts_total",
		Help: "Conflicts reported by generation, by type and severity",
	}, []string{"type", "severity"})

	indexWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "session_index_writes_total",
		Help: "Session index maintenance operations by outcome",
	}, []string{"op", "result"})

	indexRepairs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "session_index_repairs_total",
		Help: "Session index repair jobs by outcome",
	}, []string{"result"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for catalog cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for catalog cache writes",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, generationDuration, entriesPlaced, conflicts,
		indexWrites, indexRepairs, cacheLatency, cacheWrite, cacheHitRatio, goroutines)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		generationDuration: generationDuration,
		entriesPlaced:      entriesPlaced,
		conflicts:          conflicts,
		indexWrites:        indexWrites,
		indexRepairs:       indexRepairs,
		cacheLatency:       cacheLatency,
		cacheWrite:         cacheWrite,
		cacheHitRatio:      cacheHitRatio,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveGeneration records one generation run with its placed entries and conflicts.
func (m *MetricsService) ObserveGeneration(strategy string, duration time.Duration, entries int, conflicts []models.Conflict) {
	if m == nil {
		return
	}
	if strategy == "" {
		strategy = StrategyDeterministic
	}
	m.generationDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	m.entriesPlaced.Add(float64(entries))
	for _, c := range conflicts {
		m.conflicts.WithLabelValues(string(c.Type), string(c.Severity)).Inc()
	}
	atomic.AddUint64(&m.generationCount, 1)
	atomic.AddUint64(&m.generationDurationTotal, uint64(duration.Nanoseconds()))
	atomic.AddUint64(&m.conflictCount, uint64(len(conflicts)))
}

// RecordIndexWrite counts a session index maintenance operation.
func (m *MetricsService) RecordIndexWrite(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
		atomic.AddUint64(&m.indexFailureCount, 1)
	}
	m.indexWrites.WithLabelValues(op, result).Inc()
}

// RecordIndexRepair counts repair jobs: "scheduled", "ok" or "error".
func (m *MetricsService) RecordIndexRepair(result string) {
	if m == nil {
		return
	}
	if result == "scheduled" {
		atomic.AddUint64(&m.repairCount, 1)
	}
	m.indexRepairs.WithLabelValues(result).Inc()
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// Snapshot returns aggregated counters.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	generations := atomic.LoadUint64(&m.generationCount)
	genDuration := atomic.LoadUint64(&m.generationDurationTotal)
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	snapshot := MetricsSnapshot{
		Generations:           generations,
		ConflictsReported:     atomic.LoadUint64(&m.conflictCount),
		IndexWriteFailures:    atomic.LoadUint64(&m.indexFailureCount),
		IndexRepairsScheduled: atomic.LoadUint64(&m.repairCount),
		RequestsTotal:         requests,
		Goroutines:            runtime.NumGoroutine(),
		GeneratedAt:           time.Now().UTC(),
	}
	if generations > 0 {
		snapshot.AverageGenerationMs = float64(genDuration) / float64(generations) / float64(time.Millisecond)
	}
	if hits+misses > 0 {
		snapshot.CacheHitRatio = float64(hits) / float64(hits+misses)
	}
	if requests > 0 {
		snapshot.AverageRequestDuration = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}
	return snapshot
}
