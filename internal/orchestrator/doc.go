// Package orchestrator implements the core of an endpoint: it owns every
// peering, the one routing table, the local subscription filter
// and sinks, and dispatches inbound data_messages to local delivery and/or
// onward forwarding.
package orchestrator
