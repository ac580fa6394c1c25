// Package metric provides Prometheus instrumentation for wirebus. The
// MetricsRegistry owns a private prometheus.Registry preloaded with the
// core entity lifecycle metrics plus Go runtime collectors, and the
// Server exposes it over HTTP for scraping.
//
// All Record helpers are nil-safe so instrumented code never has to
// guard against a bus running without metrics.
package metric
