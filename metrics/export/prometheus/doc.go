// Package prometheus exposes goPass engine metrics through
// prometheus/client_golang.
//
// [Exporter] implements prometheus.Collector. Each scrape reads
// [goPass.Engine.MetricsSnapshot] and emits one counter per engine counter,
// the gopass_verify_latency_seconds histogram and gopass_audit_dropped_total.
// Register it with any prometheus.Registerer, or mount [Exporter.Handler],
// which serves it from a private registry.
package prometheus
