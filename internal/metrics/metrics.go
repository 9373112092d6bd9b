package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "soundalike"

// Recorder holds the recommender's collectors.
type Recorder struct {
	Recommendations      *prometheus.CounterVec
	RecommendDuration    prometheus.Histogram
	CatalogSize          prometheus.Gauge
	StoreErrors          *prometheus.CounterVec
	NamesNormalized      prometheus.Counter
	IngestedArtists      *prometheus.CounterVec
	HTTPRequests         *prometheus.CounterVec
	HTTPRequestDurations *prometheus.HistogramVec
}

// New registers a fresh set of collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		Recommendations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recommendations_total",
				Help:      "Total number of recommendation calls by result kind",
			},
			[]string{"result"},
		),
		RecommendDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "recommendation_duration_seconds",
				Help:      "Duration of a load, encode, and rank pass in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		CatalogSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_size",
				Help:      "Number of artists in the most recently loaded catalog snapshot",
			},
		),
		StoreErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_errors_total",
				Help:      "Total number of catalog store failures",
			},
			[]string{"operation"}, // "load", "normalize"
		),
		NamesNormalized: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "names_normalized_total",
				Help:      "Total number of normalized_name values rewritten",
			},
		),
		IngestedArtists: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingested_artists_total",
				Help:      "Total number of artists processed by catalog ingestion",
			},
			[]string{"source", "outcome"}, // source: "file" or the service name; outcome: "created", "updated", "skipped", "failed"
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDurations: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"method", "route"},
		),
	}
}

// NewServerRegistry returns a registry that also carries the Go runtime and process collectors.
func NewServerRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// RecordRecommendation records one finished recommendation call.
func (r *Recorder) RecordRecommendation(result string, catalogSize int, duration time.Duration) {
	if r == nil {
		return
	}
	r.Recommendations.WithLabelValues(result).Inc()
	r.RecommendDuration.Observe(duration.Seconds())
	r.CatalogSize.Set(float64(catalogSize))
}

// RecordStoreError counts a failed store operation.
func (r *Recorder) RecordStoreError(operation string) {
	if r == nil {
		return
	}
	r.StoreErrors.WithLabelValues(operation).Inc()
}

// RecordNormalized adds the number of rewritten normalized names.
func (r *Recorder) RecordNormalized(changed int) {
	if r == nil || changed <= 0 {
		return
	}
	r.NamesNormalized.Add(float64(changed))
}

// RecordIngest counts one ingested artist.
func (r *Recorder) RecordIngest(source, outcome string) {
	if r == nil {
		return
	}
	r.IngestedArtists.WithLabelValues(source, outcome).Inc()
}

// RecordHTTPRequest records a served request.
func (r *Recorder) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if r == nil {
		return
	}
	r.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.HTTPRequestDurations.WithLabelValues(method, route).Observe(duration.Seconds())
}
