// Package otel bridges authkit metrics into OpenTelemetry.
//
// [NewOTelExporter] registers observable instruments on a caller-supplied
// [metric.Meter] and reads counter and histogram snapshots from the manager
// on each collection cycle. Metric names match the Prometheus exporter's.
//
// # What this package must NOT do
//
//   - Own a MeterProvider — callers configure the OTel SDK.
//   - Mutate manager state.
package otel
