package broker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/J-Gras/zeek-broker/internal/peering"
	"github.com/J-Gras/zeek-broker/pkg/types"
)

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.TickInterval = 10 * time.Millisecond
	return cfg
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	require.True(t, cond(), "condition not met within %s", timeout)
}

func TestNew_AppliesOptionsAndDefaults(t *testing.T) {
	id := types.NewEndpointID()
	e, err := New(WithEndpointID(id))
	require.NoError(t, err)
	assert.Equal(t, id, e.LocalID())
	assert.Nil(t, e.Addr())
}

func TestEndpoint_StartTwice_ReturnsErrAlreadyStarted(t *testing.T) {
	e, err := New(WithConfig(fastConfig()))
	require.NoError(t, err)
	require.NoError(t, e.Start())
	defer e.Close()

	assert.ErrorIs(t, e.Start(), ErrAlreadyStarted)
}

func TestEndpoint_Close_IsIdempotent(t *testing.T) {
	e, err := New(WithConfig(fastConfig()))
	require.NoError(t, err)
	require.NoError(t, e.Start())

	require.NoError(t, e.Close())
	require.NoError(t, e.Close())
}

func TestEndpoint_MethodsAfterClose_ReturnErrClosed(t *testing.T) {
	e, err := New(WithConfig(fastConfig()))
	require.NoError(t, err)
	require.NoError(t, e.Start())
	require.NoError(t, e.Close())

	assert.ErrorIs(t, e.Publish("a", []byte("x")), ErrClosed)
	assert.ErrorIs(t, e.Subscribe("a"), ErrClosed)
	assert.ErrorIs(t, e.Unsubscribe("a"), ErrClosed)
	assert.ErrorIs(t, e.Unpeer(types.NewEndpointID(), false), ErrClosed)

	_, err = e.PeerCount()
	assert.ErrorIs(t, err, ErrClosed)

	_, err = e.PeerIDs()
	assert.ErrorIs(t, err, ErrClosed)

	_, _, err = e.PeeringStatus(types.NewEndpointID())
	assert.ErrorIs(t, err, ErrClosed)

	_, err = e.RoutingStats()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestEndpoint_PublishSubscribe_LocalDelivery(t *testing.T) {
	delivered := make(chan types.DataMessage, 4)
	e, err := New(
		WithConfig(fastConfig()),
		WithOnDeliver(func(msg types.DataMessage) { delivered <- msg }),
	)
	require.NoError(t, err)
	require.NoError(t, e.Start())
	defer e.Close()

	require.NoError(t, e.Subscribe("a/b"))

	require.NoError(t, e.Publish("a/b/c", []byte("hello")))
	select {
	case msg := <-delivered:
		assert.Equal(t, "a/b/c", msg.Topic)
		assert.Equal(t, []byte("hello"), msg.Payload)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for local delivery")
	}

	require.NoError(t, e.Publish("other/topic", []byte("ignored")))
	select {
	case msg := <-delivered:
		t.Fatalf("unexpected delivery for non-matching topic: %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, e.Unsubscribe("a/b"))
	require.NoError(t, e.Publish("a/b/c", []byte("after unsubscribe")))
	select {
	case msg := <-delivered:
		t.Fatalf("unexpected delivery after unsubscribe: %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

// twoPeeredEndpoints starts a listening endpoint and a dialing endpoint,
// peers them over a real WebSocket connection, and returns both along with
// the peer ids each side learned about the other. bOpts lets a caller
// install extra options (e.g. WithOnDeliver) on the dialing side before it
// starts, since setting callbacks after Start would race with its dispatch
// goroutine.
func twoPeeredEndpoints(t *testing.T, bOpts ...Option) (a, b *Endpoint, aSeesB, bSeesA types.EndpointID) {
	t.Helper()

	a, err := New(WithConfig(fastConfig()), WithListenAddress("127.0.0.1:0"))
	require.NoError(t, err)
	require.NoError(t, a.Start())
	t.Cleanup(func() { _ = a.Close() })

	b, err = New(append([]Option{WithConfig(fastConfig())}, bOpts...)...)
	require.NoError(t, err)
	require.NoError(t, b.Start())
	t.Cleanup(func() { _ = b.Close() })

	addr := fmt.Sprintf("ws://%s/", a.Addr().String())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	aSeesB, err = b.Peer(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, a.LocalID(), aSeesB)

	waitFor(t, time.Second, func() bool {
		n, err := a.PeerCount()
		return err == nil && n == 1
	})

	ids, err := a.PeerIDs()
	require.NoError(t, err)
	require.Len(t, ids, 1)
	bSeesA = ids[0]
	assert.Equal(t, b.LocalID(), bSeesA)

	return a, b, aSeesB, bSeesA
}

func TestEndpoint_Peer_EstablishesPeeringBothSides(t *testing.T) {
	a, b, _, bSeesA := twoPeeredEndpoints(t)

	status, ok, err := a.PeeringStatus(bSeesA)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, peering.PeerAdded, status.Kind)

	stats, err := a.RoutingStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Destinations)

	stats, err = b.RoutingStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Destinations)
}

func TestEndpoint_Peer_ForwardsDataMessages(t *testing.T) {
	delivered := make(chan types.DataMessage, 1)
	a, b, _, _ := twoPeeredEndpoints(t, WithOnDeliver(func(msg types.DataMessage) { delivered <- msg }))

	require.NoError(t, b.Subscribe("sensors/temp"))

	waitFor(t, time.Second, func() bool {
		stats, err := a.RoutingStats()
		return err == nil && stats.Destinations == 1
	})

	// a forwards only to peers whose advertised filter matches; b sends its
	// new subscription on its next tick, so give that advertisement time to
	// reach a before publishing.
	time.Sleep(10 * fastConfig().TickInterval)

	require.NoError(t, a.Publish("sensors/temp/1", []byte("21c")))

	select {
	case msg := <-delivered:
		assert.Equal(t, "sensors/temp/1", msg.Topic)
		assert.Equal(t, []byte("21c"), msg.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for cross-peering delivery")
	}
}

func TestEndpoint_Unpeer_Graceful_RemovesBothSides(t *testing.T) {
	a, b, aSeesB, bSeesA := twoPeeredEndpoints(t)

	require.NoError(t, b.Unpeer(aSeesB, true))

	waitFor(t, 2*time.Second, func() bool {
		n, err := b.PeerCount()
		return err == nil && n == 0
	})
	waitFor(t, 2*time.Second, func() bool {
		n, err := a.PeerCount()
		return err == nil && n == 0
	})

	_, ok, err := a.PeeringStatus(bSeesA)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEndpoint_Unpeer_UnknownPeer_DoesNotFail(t *testing.T) {
	e, err := New(WithConfig(fastConfig()))
	require.NoError(t, err)
	require.NoError(t, e.Start())
	defer e.Close()

	// RemovePeering failure is logged, not surfaced: Unpeer only reports
	// errors from submit itself (e.g. the endpoint being closed).
	assert.NoError(t, e.Unpeer(types.NewEndpointID(), false))
}
