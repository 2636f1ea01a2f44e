// Package wire serializes the protocol's business payload (a DataMessage)
// and multiplexes the protocol's control message types onto a single byte
// stream, for the one transport adapter (internal/bridge/ws) that actually
// needs bytes on a wire. The reliable channel never sees wire format — it
// exchanges typed Go values; the orchestrator uses this package only to
// encode and decode the DataMessage carried in an event payload.
package wire
