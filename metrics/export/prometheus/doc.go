// Package prometheus provides Prometheus collectors for goMFA metrics.
//
// [NewPrometheusExporter] accepts a [goMFA.Engine] and exposes an [http.Handler]
// that renders all goMFA counters and histograms in Prometheus text exposition format.
// Counter names are prefixed gomfa_*_total; the single histogram is
// gomfa_verify_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
