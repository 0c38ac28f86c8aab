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

	// Recipes
	RecipesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "recipes_created_total",
			Help: "Total recipes created",
		},
	)
	RecipesDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "recipes_deleted_total",
			Help: "Total recipes deleted",
		},
	)
	RatingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratings_total",
			Help: "Total ratings submitted",
		},
		[]string{"result"}, // created|updated
	)
	ImageUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_image_uploads_total",
			Help: "Recipe image uploads to object storage",
		},
		[]string{"status"},
	)

	// Cache
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by result",
		},
		[]string{"result"}, // hit|miss
	)

	initOnce sync.Once
)

// Handler serves /metrics.
var Handler = promhttp.Handler

// Init registers every collector. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestsTotal)
		prometheus.MustRegister(RequestLatency)
		prometheus.MustRegister(RecipesCreated)
		prometheus.MustRegister(RecipesDeleted)
		prometheus.MustRegister(RatingsTotal)
		prometheus.MustRegister(ImageUploads)
		prometheus.MustRegister(CacheLookups)
	})
}
