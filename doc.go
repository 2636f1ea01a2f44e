// Package broker implements Endpoint, a publish/subscribe node that
// exchanges data_messages with its peers over a mesh of WebSocket
// peerings, routed by hierarchical topic.
//
// Endpoint is a facade over internal/orchestrator: everything the
// orchestrator does must run in a single-threaded region, so
// Endpoint serializes every public call, every inbound frame from every
// peering's WebSocket connection, and every logical tick through one
// dispatch goroutine before it ever touches the orchestrator.
package broker
