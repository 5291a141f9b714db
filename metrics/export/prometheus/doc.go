// Package prometheus renders goSignIn metrics in Prometheus text exposition
// format.
//
// [NewPrometheusExporter] accepts a [goSignIn.Engine] and exposes an
// [http.Handler]. Counter names are prefixed gosignin_*_total; the single
// histogram is gosignin_transport_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry; callers mount the Handler.
//   - Mutate engine state.
package prometheus
