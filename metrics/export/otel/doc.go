// Package otel exposes goSignIn counters and the transport latency histogram
// through OpenTelemetry asynchronous instruments.
//
// [NewOTelExporter] registers an Int64ObservableCounter per goSignIn counter
// and an Int64ObservableGauge per cumulative latency bucket. A single
// callback reads [goSignIn.Engine.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider; callers supply the Meter.
//   - Mutate engine state.
package otel
