package ws

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/J-Gras/zeek-broker/internal/channel"
	"github.com/J-Gras/zeek-broker/internal/logger"
	"github.com/J-Gras/zeek-broker/internal/orchestrator"
	"github.com/J-Gras/zeek-broker/internal/peering"
	"github.com/J-Gras/zeek-broker/internal/wire"
	"github.com/J-Gras/zeek-broker/pkg/types"
)

var log = logger.Logger("bridge/ws")

// Conn carries one peering's reliable-channel traffic, BYE handshake and
// routing advertisements over a *websocket.Conn, multiplexed with
// internal/wire. It satisfies orchestrator.PeerLink.
//
// Reads run on their own goroutine (readLoop) and are handed to onMessage;
// writes happen synchronously from whatever goroutine calls Send/Broadcast/
// etc. gorilla/websocket permits exactly this split — one reader and one
// writer goroutine concurrently, never two of either — so callers only need
// to serialize their own writes, which the orchestrator's single-threaded
// dispatch already does.
type Conn struct {
	ws     *websocket.Conn
	peerID types.EndpointID

	onMessage func(peerID types.EndpointID, message any)
	onClose   func(peerID types.EndpointID, err error)

	writeMu sync.Mutex

	mu     sync.Mutex
	closed bool
}

var _ orchestrator.PeerLink = (*Conn)(nil)

func newConn(wsConn *websocket.Conn, peerID types.EndpointID, onMessage func(types.EndpointID, any), onClose func(types.EndpointID, error)) *Conn {
	c := &Conn{ws: wsConn, peerID: peerID, onMessage: onMessage, onClose: onClose}
	go c.readLoop()
	return c
}

// PeerID returns the remote endpoint id learned during the identify step.
func (c *Conn) PeerID() types.EndpointID { return c.peerID }

func (c *Conn) Send(_ channel.Handle, message channel.Message) { c.write(message) }
func (c *Conn) Broadcast(message channel.Message)              { c.write(message) }
func (c *Conn) SendUpstream(message channel.Message)           { c.write(message) }

func (c *Conn) SendBye(token types.ByeToken) {
	c.writeKind(wire.KindBye, peering.Bye{Token: token})
}

func (c *Conn) SendByeAck(token types.ByeToken) {
	c.writeKind(wire.KindByeAck, peering.ByeAck{Token: token})
}

func (c *Conn) SendAdvertisement(adv orchestrator.Advertisement) {
	c.writeKind(wire.KindAdvertisement, adv)
}

// Disconnect closes the underlying connection; it is PeerLink's half of
// Close, named to match peering.Backend's vocabulary.
func (c *Conn) Disconnect() { _ = c.Close() }

// Close is idempotent: a second call is a no-op.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	return c.ws.Close()
}

func (c *Conn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Conn) write(message channel.Message) {
	kind, ok := frameKindFor(message)
	if !ok {
		log.Warn("no frame kind for message type, dropping", "peer", c.peerID.ShortString(), "type", fmt.Sprintf("%T", message))
		return
	}
	c.writeKind(kind, message)
}

func (c *Conn) writeKind(kind wire.Kind, message any) {
	encoded, err := wire.EncodeFrame(kind, message)
	if err != nil {
		log.Error("failed to encode frame", "peer", c.peerID.ShortString(), "kind", kind, "error", err)
		return
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.ws.WriteMessage(websocket.BinaryMessage, encoded); err != nil {
		log.Debug("write failed", "peer", c.peerID.ShortString(), "kind", kind, "error", err)
	}
}

func frameKindFor(message channel.Message) (wire.Kind, bool) {
	switch message.(type) {
	case channel.Handshake:
		return wire.KindHandshake, true
	case channel.Heartbeat:
		return wire.KindHeartbeat, true
	case channel.Event:
		return wire.KindEvent, true
	case channel.Ack:
		return wire.KindAck, true
	case channel.Nack:
		return wire.KindNack, true
	case channel.RetransmitFailed:
		return wire.KindRetransmitFailed, true
	default:
		return 0, false
	}
}

func (c *Conn) readLoop() {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			wasClosed := c.isClosed()
			_ = c.Close()
			if !wasClosed && c.onClose != nil {
				c.onClose(c.peerID, err)
			}
			return
		}

		kind, payload, err := wire.DecodeFrame(data)
		if err != nil {
			log.Warn("dropping undecodable frame", "peer", c.peerID.ShortString(), "error", err)
			continue
		}

		message, err := decodeByKind(kind, payload)
		if err != nil {
			log.Warn("dropping frame with undecodable payload", "peer", c.peerID.ShortString(), "kind", kind, "error", err)
			continue
		}

		if c.onMessage != nil {
			c.onMessage(c.peerID, message)
		}
	}
}

func decodeByKind(kind wire.Kind, payload []byte) (any, error) {
	switch kind {
	case wire.KindHandshake:
		var m channel.Handshake
		return m, wire.DecodeInto(payload, &m)
	case wire.KindHeartbeat:
		var m channel.Heartbeat
		return m, wire.DecodeInto(payload, &m)
	case wire.KindEvent:
		var m channel.Event
		return m, wire.DecodeInto(payload, &m)
	case wire.KindAck:
		var m channel.Ack
		return m, wire.DecodeInto(payload, &m)
	case wire.KindNack:
		var m channel.Nack
		return m, wire.DecodeInto(payload, &m)
	case wire.KindRetransmitFailed:
		var m channel.RetransmitFailed
		return m, wire.DecodeInto(payload, &m)
	case wire.KindBye:
		var m peering.Bye
		return m, wire.DecodeInto(payload, &m)
	case wire.KindByeAck:
		var m peering.ByeAck
		return m, wire.DecodeInto(payload, &m)
	case wire.KindAdvertisement:
		var m orchestrator.Advertisement
		return m, wire.DecodeInto(payload, &m)
	default:
		return nil, fmt.Errorf("ws: unrecognized frame kind %d", kind)
	}
}
