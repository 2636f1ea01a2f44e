package broker

import (
	"context"
	"net"
	"sync"
	"sync/atomic"

	wallclock "github.com/benbjohnson/clock"

	"github.com/J-Gras/zeek-broker/internal/bridge/ws"
	"github.com/J-Gras/zeek-broker/internal/channel"
	"github.com/J-Gras/zeek-broker/internal/clock"
	"github.com/J-Gras/zeek-broker/internal/logger"
	"github.com/J-Gras/zeek-broker/internal/metrics"
	"github.com/J-Gras/zeek-broker/internal/orchestrator"
	"github.com/J-Gras/zeek-broker/internal/peering"
	"github.com/J-Gras/zeek-broker/internal/routing"
	"github.com/J-Gras/zeek-broker/pkg/types"
)

var log = logger.Logger("broker")

// Endpoint is a running node participating in the bus: it owns the core
// orchestrator, dials and accepts WebSocket peerings, and drives the
// logical clock that times out BYE handshakes, heartbeats and nacks.
//
// Every public method, every inbound frame from every peering, and every
// logical tick funnels through one dispatch goroutine (run), so the
// orchestrator — which must never be called concurrently — only ever
// sees one caller at a time. Callers block until their command has run;
// they never touch orchestrator state directly.
type Endpoint struct {
	config  Config
	localID types.EndpointID
	metrics *metrics.Registry

	orch   *orchestrator.Orchestrator
	driver *clock.Driver

	onDeliver func(types.DataMessage)

	listener *ws.Listener

	commands chan func()

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
	closed  atomic.Bool
}

// New constructs an Endpoint. It does not start any goroutines or bind any
// sockets until Start is called.
func New(opts ...Option) (*Endpoint, error) {
	e := &Endpoint{
		config:   DefaultConfig(),
		localID:  types.NewEndpointID(),
		commands: make(chan func()),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	orch, err := orchestrator.New(e.config.Orchestrator, e.localID, e.deliverLocal)
	if err != nil {
		return nil, err
	}
	e.orch = orch

	if e.metrics != nil {
		e.orch.SetMetrics(e.metrics.Orchestrator())
		e.orch.SetChannelMetrics(func(peerID types.EndpointID) channel.Metrics {
			return e.metrics.ForPeer(peerID.String())
		})
	}

	return e, nil
}

// LocalID returns this endpoint's id.
func (e *Endpoint) LocalID() types.EndpointID { return e.localID }

// Addr returns the bound address of this endpoint's inbound WebSocket
// listener, or nil if it was started without one (dial-only).
func (e *Endpoint) Addr() net.Addr {
	if e.listener == nil {
		return nil
	}
	return e.listener.Addr()
}

func (e *Endpoint) deliverLocal(msg types.DataMessage) {
	if e.onDeliver != nil {
		e.onDeliver(msg)
	}
}

// Start begins driving the logical clock and, if a listen address is
// configured, accepting inbound peerings. It returns once the endpoint is
// ready to serve calls; the listener and tick driver keep running in their
// own goroutines until Close.
func (e *Endpoint) Start() error {
	if !e.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	e.ctx, e.cancel = context.WithCancel(context.Background())
	e.driver = clock.NewDriver(wallclock.New(), e.config.TickInterval)
	e.driver.Subscribe(e.enqueueTick)

	e.wg.Add(1)
	go e.run()

	go e.driver.Start()

	if e.config.ListenAddress != "" {
		listener, err := ws.NewListener(e.config.ListenAddress, e.localID, e.dispatchInbound, e.dispatchClosed)
		if err != nil {
			e.cancel()
			e.driver.Stop()
			return err
		}
		e.listener = listener

		e.wg.Add(1)
		go e.acceptLoop()
	}

	log.Info("endpoint started", "id", e.localID.ShortString(), "listen", e.config.ListenAddress)
	return nil
}

// Close stops the tick driver and listener, cancels the endpoint's context,
// and waits for the dispatch and accept goroutines to exit. It does not
// close open peering connections and sends no BYE. It is idempotent.
func (e *Endpoint) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}

	if e.listener != nil {
		_ = e.listener.Close()
	}
	if e.driver != nil {
		e.driver.Stop()
	}
	if e.cancel != nil {
		e.cancel()
	}
	e.wg.Wait()

	log.Info("endpoint closed", "id", e.localID.ShortString())
	return nil
}

func (e *Endpoint) run() {
	defer e.wg.Done()
	for {
		select {
		case fn := <-e.commands:
			fn()
		case <-e.ctx.Done():
			return
		}
	}
}

func (e *Endpoint) enqueueTick() {
	select {
	case e.commands <- e.orch.Tick:
	case <-e.ctx.Done():
	}
}

func (e *Endpoint) acceptLoop() {
	defer e.wg.Done()
	for {
		conn, err := e.listener.Accept()
		if err != nil {
			return
		}
		e.addPeeringFromConn(conn, "")
	}
}

func (e *Endpoint) addPeeringFromConn(conn *ws.Conn, address string) {
	select {
	case e.commands <- func() {
		if err := e.orch.AddPeering(conn.PeerID(), address, conn, e.config.PeerHeartbeatIntervalTicks); err != nil {
			log.Warn("rejecting inbound peering", "peer", conn.PeerID().ShortString(), "error", err)
			_ = conn.Close()
		}
	}:
	case <-e.ctx.Done():
		_ = conn.Close()
	}
}

func (e *Endpoint) dispatchInbound(peerID types.EndpointID, message any) {
	select {
	case e.commands <- func() { e.orch.HandleInbound(peerID, message) }:
	case <-e.ctx.Done():
	}
}

func (e *Endpoint) dispatchClosed(peerID types.EndpointID, err error) {
	select {
	case e.commands <- func() {
		log.Warn("peering connection closed", "peer", peerID.ShortString(), "error", err)
		_ = e.orch.ForceDisconnect(peerID)
	}:
	case <-e.ctx.Done():
	}
}

// submit runs fn on the dispatch goroutine and waits for it to finish.
func (e *Endpoint) submit(fn func()) error {
	if e.closed.Load() {
		return ErrClosed
	}

	done := make(chan struct{})
	select {
	case e.commands <- func() { fn(); close(done) }:
	case <-e.ctx.Done():
		return ErrClosed
	}

	select {
	case <-done:
		return nil
	case <-e.ctx.Done():
		return ErrClosed
	}
}

// Publish originates a data_message on topic.
func (e *Endpoint) Publish(topic string, payload []byte) error {
	return e.submit(func() { e.orch.Publish(topic, payload) })
}

// Subscribe adds prefix to this endpoint's subscription filter.
func (e *Endpoint) Subscribe(prefix string) error {
	return e.submit(func() { e.orch.Subscribe(prefix) })
}

// Unsubscribe removes prefix from this endpoint's subscription filter.
func (e *Endpoint) Unsubscribe(prefix string) error {
	return e.submit(func() { e.orch.Unsubscribe(prefix) })
}

// Peer dials addr, exchanges the identify handshake, and adds the
// resulting connection as a peering once it reaches the dispatch
// goroutine.
func (e *Endpoint) Peer(ctx context.Context, addr string) (types.EndpointID, error) {
	conn, err := ws.Dial(ctx, addr, e.localID, e.dispatchInbound, e.dispatchClosed)
	if err != nil {
		return types.EmptyEndpointID, err
	}

	peerID := conn.PeerID()
	if err := e.submit(func() {
		if err := e.orch.AddPeering(peerID, addr, conn, e.config.PeerHeartbeatIntervalTicks); err != nil {
			_ = conn.Close()
			log.Warn("failed to add peering after dial", "peer", peerID.ShortString(), "error", err)
		}
	}); err != nil {
		_ = conn.Close()
		return types.EmptyEndpointID, err
	}
	return peerID, nil
}

// Unpeer begins removing peerID's peering. When graceful is true it runs
// the BYE handshake before tearing down; otherwise it disconnects
// immediately.
func (e *Endpoint) Unpeer(peerID types.EndpointID, graceful bool) error {
	return e.submit(func() {
		var err error
		if graceful {
			err = e.orch.RemovePeering(peerID, true)
		} else {
			err = e.orch.ForceDisconnect(peerID)
		}
		if err != nil {
			log.Warn("unpeer failed", "peer", peerID.ShortString(), "error", err)
		}
	})
}

// PeerCount returns the number of peerings currently tracked.
func (e *Endpoint) PeerCount() (int, error) {
	var n int
	err := e.submit(func() { n = e.orch.PeerCount() })
	return n, err
}

// PeerIDs returns the peer ids of every tracked peering.
func (e *Endpoint) PeerIDs() ([]types.EndpointID, error) {
	var ids []types.EndpointID
	err := e.submit(func() { ids = e.orch.PeerIDs() })
	return ids, err
}

// PeeringStatus returns the current status of peerID's peering, if any.
func (e *Endpoint) PeeringStatus(peerID types.EndpointID) (peering.Status, bool, error) {
	var (
		status peering.Status
		ok     bool
	)
	err := e.submit(func() { status, ok = e.orch.PeeringStatus(peerID) })
	return status, ok, err
}

// RoutingStats returns the routing table's current size.
func (e *Endpoint) RoutingStats() (routing.Stats, error) {
	var stats routing.Stats
	err := e.submit(func() { stats = e.orch.RoutingStats() })
	return stats, err
}

// WaitShutdown blocks until ctx is done, then closes the endpoint.
func (e *Endpoint) WaitShutdown(ctx context.Context) {
	<-ctx.Done()
	_ = e.Close()
}
