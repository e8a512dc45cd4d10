// Package prometheus provides Prometheus collectors for goTokenGate metrics.
//
// [NewPrometheusExporter] accepts a [goTokenGate.Gate] and exposes an [http.Handler]
// that renders all goTokenGate counters and histograms in Prometheus text exposition
// format. Counter names are prefixed gotokengate_*_total; the single histogram is
// gotokengate_authenticate_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry (callers mount the Handler).
//   - Mutate gate state.
package prometheus
