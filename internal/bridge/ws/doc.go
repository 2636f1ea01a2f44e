// Package ws implements a WebSocket transport adapter: it carries
// internal/wire frames for a single
// peering's reliable channel, peering control messages and routing
// advertisements over a *websocket.Conn, and satisfies
// internal/orchestrator's PeerLink.
package ws
