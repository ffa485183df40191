// Package otel publishes goPass engine metrics as OpenTelemetry observable
// instruments.
//
// [NewExporter] registers one Int64ObservableCounter per engine counter and one
// Int64ObservableGauge per cumulative latency bucket. A single callback reads
// [goPass.Engine.MetricsSnapshot] on each collection. Callers own the
// MeterProvider.
package otel
