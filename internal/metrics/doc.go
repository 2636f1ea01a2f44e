// Package metrics wires the channel and orchestrator packages' narrow
// Metrics interfaces to concrete Prometheus collectors, so brokerd can
// expose them over HTTP without the core packages knowing Prometheus
// exists.
package metrics
