package ws

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/J-Gras/zeek-broker/internal/wire"
	"github.com/J-Gras/zeek-broker/pkg/types"
)

// Dial opens a WebSocket connection to addr, identifies localID to the
// remote end, and waits for the remote's own Identify frame before handing
// back a Conn addressed by the peer id it just learned.
func Dial(ctx context.Context, addr string, localID types.EndpointID, onMessage func(types.EndpointID, any), onClose func(types.EndpointID, error)) (*Conn, error) {
	wsConn, _, err := websocket.DefaultDialer.DialContext(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("ws: dial %s: %w", addr, err)
	}

	if err := identifySelf(wsConn, localID); err != nil {
		_ = wsConn.Close()
		return nil, err
	}

	peerID, err := readIdentify(wsConn)
	if err != nil {
		_ = wsConn.Close()
		return nil, err
	}

	log.Info("dialed peer", "peer", peerID.ShortString(), "addr", addr)
	return newConn(wsConn, peerID, onMessage, onClose), nil
}

func identifySelf(wsConn *websocket.Conn, localID types.EndpointID) error {
	encoded, err := wire.EncodeFrame(wire.KindIdentify, wire.Identify{EndpointID: localID})
	if err != nil {
		return fmt.Errorf("ws: encode identify: %w", err)
	}
	if err := wsConn.WriteMessage(websocket.BinaryMessage, encoded); err != nil {
		return fmt.Errorf("ws: send identify: %w", err)
	}
	return nil
}

func readIdentify(wsConn *websocket.Conn) (types.EndpointID, error) {
	_, data, err := wsConn.ReadMessage()
	if err != nil {
		return types.EmptyEndpointID, fmt.Errorf("ws: read identify: %w", err)
	}
	kind, payload, err := wire.DecodeFrame(data)
	if err != nil {
		return types.EmptyEndpointID, fmt.Errorf("ws: decode identify frame: %w", err)
	}
	if kind != wire.KindIdentify {
		return types.EmptyEndpointID, fmt.Errorf("ws: expected identify frame, got %s", kind)
	}
	var id wire.Identify
	if err := wire.DecodeInto(payload, &id); err != nil {
		return types.EmptyEndpointID, fmt.Errorf("ws: decode identify payload: %w", err)
	}
	return id.EndpointID, nil
}
