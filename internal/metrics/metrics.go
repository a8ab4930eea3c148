// Package metrics exposes Prometheus counters for scan and cache activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache lookup results.
const (
	ResultHit  = "hit"
	ResultMiss = "miss"
)

var (
	// cacheLookupsTotal counts model cache lookups.
	// Labels: result (hit, miss)
	cacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "llvmls",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Model cache lookups by result",
	}, []string{"result"})

	cachedDocuments = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "llvmls",
		Subsystem: "cache",
		Name:      "documents",
		Help:      "Documents currently held by the model cache",
	})

	scannedLinesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "llvmls",
		Subsystem: "scan",
		Name:      "lines_total",
		Help:      "Lines classified by the scanner",
	})

	scanDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "llvmls",
		Subsystem: "scan",
		Name:      "duration_seconds",
		Help:      "Wall time of one document scan",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	// diskCacheTotal counts on-disk model cache operations.
	// Labels: op (hit, miss, write, error)
	diskCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "llvmls",
		Subsystem: "disk_cache",
		Name:      "ops_total",
		Help:      "On-disk model cache operations by outcome",
	}, []string{"op"})
)

// RecordLookup records a model cache lookup.
func RecordLookup(hit bool) {
	result := ResultMiss
	if hit {
		result = ResultHit
	}
	cacheLookupsTotal.WithLabelValues(result).Inc()
}

// RecordScan records one finished scan.
func RecordScan(lines int, durationSec float64) {
	scannedLinesTotal.Add(float64(lines))
	scanDurationSeconds.Observe(durationSec)
}

// SetCachedDocuments publishes the current cache size.
func SetCachedDocuments(n int) {
	cachedDocuments.Set(float64(n))
}

// RecordDiskCache records a disk cache outcome ("hit", "miss", "write", "error").
func RecordDiskCache(op string) {
	diskCacheTotal.WithLabelValues(op).Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
