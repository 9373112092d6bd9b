// Package server provides HTTP routing, middleware, and the server loop for the web interface.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Middleware
//
//   - [Logging] writes one charmbracelet/log line per request
//   - [Metrics] feeds request counts and latencies to a [metrics.Recorder]
//   - [Recover] converts handler panics into 500 responses
//
// All three share a status-capturing writer, so registering them as Logging, Metrics, Recover
// records a recovered panic as a 500.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// # Serving
//
// [Run] serves until its context is cancelled and then shuts down, waiting up to [ShutdownTimeout]
// for in-flight requests.
package server
