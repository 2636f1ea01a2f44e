package ws

import (
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/J-Gras/zeek-broker/pkg/types"
)

// Listener accepts inbound WebSocket connections, runs the identify step
// server-side, and hands back a Conn per accepted peer through Accept.
type Listener struct {
	localID  types.EndpointID
	upgrader websocket.Upgrader
	ln       net.Listener
	srv      *http.Server

	onMessage func(types.EndpointID, any)
	onClose   func(types.EndpointID, error)

	accept    chan *Conn
	closeOnce sync.Once
	closed    chan struct{}
}

// NewListener binds addr and starts serving WebSocket upgrade requests.
func NewListener(addr string, localID types.EndpointID, onMessage func(types.EndpointID, any), onClose func(types.EndpointID, error)) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	l := &Listener{
		localID:   localID,
		upgrader:  websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		onMessage: onMessage,
		onClose:   onClose,
		ln:        ln,
		accept:    make(chan *Conn),
		closed:    make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", l.handleUpgrade)
	l.srv = &http.Server{Handler: mux}

	go func() {
		if err := l.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Warn("listener serve ended", "addr", addr, "error", err)
		}
	}()

	log.Info("listening", "addr", ln.Addr().String())
	return l, nil
}

// Addr returns the listener's bound network address.
func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// Accept blocks until a peer has completed the identify step, or the
// listener is closed.
func (l *Listener) Accept() (*Conn, error) {
	select {
	case c := <-l.accept:
		return c, nil
	case <-l.closed:
		return nil, ErrListenerClosed
	}
}

// Close stops accepting new connections. It is idempotent.
func (l *Listener) Close() error {
	l.closeOnce.Do(func() { close(l.closed) })
	return l.srv.Close()
}

func (l *Listener) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	wsConn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	peerID, err := readIdentify(wsConn)
	if err != nil {
		log.Warn("identify failed", "remote", r.RemoteAddr, "error", err)
		_ = wsConn.Close()
		return
	}
	if err := identifySelf(wsConn, l.localID); err != nil {
		log.Warn("identify response failed", "remote", r.RemoteAddr, "error", err)
		_ = wsConn.Close()
		return
	}

	conn := newConn(wsConn, peerID, l.onMessage, l.onClose)
	select {
	case l.accept <- conn:
	case <-l.closed:
		_ = conn.Close()
	}
}
