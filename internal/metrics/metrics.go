package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "travel_planner"

var (
	GenerationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "total",
			Help:      "Total number of itinerary generations by outcome",
		},
		[]string{"provider", "status"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "duration_seconds",
			Help:      "Itinerary generation duration in seconds",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
		},
		[]string{"provider"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "last_plan_cache",
			Name:      "lookups_total",
			Help:      "Last-plan cache lookups by result",
		},
		[]string{"result"},
	)
)

// ObserveGeneration записывает исход и длительность генерации.
func ObserveGeneration(provider, status string, elapsed time.Duration) {
	GenerationTotal.WithLabelValues(provider, status).Inc()
	GenerationDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// ObserveCacheLookup записывает результат чтения кэша: hit, miss или corrupt.
func ObserveCacheLookup(result string) {
	CacheLookups.WithLabelValues(result).Inc()
}
