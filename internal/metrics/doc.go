// Package metrics exposes Prometheus instrumentation for the recommender.
//
// A [Recorder] owns one set of collectors registered on a caller-supplied registry, which keeps
// tests isolated from the process-wide default registry. A nil *Recorder is valid and records nothing.
//
// Collected series:
//   - soundalike_recommendations_total{result}
//   - soundalike_recommendation_duration_seconds
//   - soundalike_catalog_size
//   - soundalike_store_errors_total{operation}
//   - soundalike_names_normalized_total
//   - soundalike_ingested_artists_total{source,outcome}
//   - soundalike_http_requests_total{method,route,status}
//   - soundalike_http_request_duration_seconds{method,route}
//
// Usage:
//
//	reg := prometheus.NewRegistry()
//	rec := metrics.New(reg)
//	mux.Handle("/metrics", metrics.Handler(reg))
package metrics
