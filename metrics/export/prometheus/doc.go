// Package prometheus renders goCred service metrics in Prometheus text format.
//
// [New] wraps a [goCred.Service] and [Exporter.Handler] serves the exposition.
// Counters are named gocred_*_total; the digest histogram is
// gocred_digest_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the Handler.
//   - Mutate service state.
package prometheus
