package peering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/J-Gras/zeek-broker/internal/channel"
	"github.com/J-Gras/zeek-broker/pkg/types"
)

type recordingBackend struct {
	byes       []types.ByeToken
	byeAcks    []types.ByeToken
	disconnects int
}

func (b *recordingBackend) SendBye(token types.ByeToken)    { b.byes = append(b.byes, token) }
func (b *recordingBackend) SendByeAck(token types.ByeToken) { b.byeAcks = append(b.byeAcks, token) }
func (b *recordingBackend) Disconnect()                     { b.disconnects++ }

func newTestPeering(backend Backend, heartbeatIntervalTicks int) *Peering {
	return New(DefaultConfig(), types.NewEndpointID(), "10.0.0.1:4243", channel.Handle("in"), channel.Handle("out"), heartbeatIntervalTicks, backend)
}

func TestPeering_New_StartsActiveWithPeerAdded(t *testing.T) {
	p := newTestPeering(&recordingBackend{}, 5)
	assert.Equal(t, StateActive, p.State())
	assert.Equal(t, PeerAdded, p.Status().Kind)
}

func TestPeering_Remove_SendsBye(t *testing.T) {
	backend := &recordingBackend{}
	p := newTestPeering(backend, 5)

	require.NoError(t, p.Remove(true))
	require.Len(t, backend.byes, 1)
	assert.Equal(t, StateClosing, p.State())
	assert.True(t, p.RemovedFlag())
}

func TestPeering_Remove_Twice_Fails(t *testing.T) {
	p := newTestPeering(&recordingBackend{}, 5)
	require.NoError(t, p.Remove(true))
	assert.ErrorIs(t, p.Remove(true), ErrAlreadyRemoving)
}

func TestPeering_Remove_AfterClosed_Fails(t *testing.T) {
	backend := &recordingBackend{}
	p := newTestPeering(backend, 5)
	require.NoError(t, p.Remove(false))
	p.HandleByeAck(backend.byes[0])
	assert.ErrorIs(t, p.Remove(true), ErrClosed)
}

func TestPeering_MatchingByeAck_TearsDownAsRemoved(t *testing.T) {
	backend := &recordingBackend{}
	p := newTestPeering(backend, 5)
	require.NoError(t, p.Remove(true))

	p.HandleByeAck(backend.byes[0])

	assert.Equal(t, StateClosed, p.State())
	assert.Equal(t, PeerRemoved, p.Status().Kind)
	assert.Equal(t, 1, backend.disconnects)
}

func TestPeering_StaleByeAck_Ignored(t *testing.T) {
	backend := &recordingBackend{}
	p := newTestPeering(backend, 5)
	require.NoError(t, p.Remove(true))

	p.HandleByeAck(types.ByeToken(999999)) // not the token we sent

	assert.Equal(t, StateClosing, p.State())
	assert.Equal(t, 0, backend.disconnects)
}

func TestPeering_ByeAck_BeforeRemove_Ignored(t *testing.T) {
	backend := &recordingBackend{}
	p := newTestPeering(backend, 5)

	p.HandleByeAck(types.ByeToken(1))

	assert.Equal(t, StateActive, p.State())
	assert.Equal(t, 0, backend.disconnects)
}

func TestPeering_PeerInitiatedBye_TearsDownAsDisconnected(t *testing.T) {
	backend := &recordingBackend{}
	p := newTestPeering(backend, 5)

	p.HandleBye(types.ByeToken(42))

	require.Len(t, backend.byeAcks, 1)
	assert.Equal(t, types.ByeToken(42), backend.byeAcks[0])
	assert.Equal(t, StateClosed, p.State())
	assert.Equal(t, PeerDisconnected, p.Status().Kind)
}

func TestPeering_ByeCrossedWithLocalRemove_ReportsRemoved(t *testing.T) {
	backend := &recordingBackend{}
	p := newTestPeering(backend, 5)
	require.NoError(t, p.Remove(true))

	p.HandleBye(types.ByeToken(7)) // peer's own bye crossed ours in flight

	assert.Equal(t, StateClosed, p.State())
	assert.Equal(t, PeerRemoved, p.Status().Kind)
}

func TestPeering_ForceDisconnect_WithoutRemove_ReportsDisconnected(t *testing.T) {
	backend := &recordingBackend{}
	p := newTestPeering(backend, 5)

	p.ForceDisconnect()

	assert.Equal(t, StateClosed, p.State())
	assert.Equal(t, PeerDisconnected, p.Status().Kind)
	assert.Equal(t, 1, backend.disconnects)
}

func TestPeering_ForceDisconnect_Idempotent(t *testing.T) {
	backend := &recordingBackend{}
	p := newTestPeering(backend, 5)

	p.ForceDisconnect()
	p.ForceDisconnect()

	assert.Equal(t, 1, backend.disconnects)
}

func TestPeering_Tick_FiresByeTimeout(t *testing.T) {
	backend := &recordingBackend{}
	p := newTestPeering(backend, 5) // heartbeat 5 * multiplier 4 = 20 ticks
	require.NoError(t, p.Remove(true))

	for i := 0; i < 19; i++ {
		p.Tick()
	}
	assert.Equal(t, StateClosing, p.State())
	assert.Equal(t, 0, backend.disconnects)

	p.Tick() // 20th tick: timeout expires
	assert.Equal(t, StateClosed, p.State())
	assert.Equal(t, PeerRemoved, p.Status().Kind)
	assert.Equal(t, 1, backend.disconnects)
}

func TestPeering_Tick_ByeAckBeforeTimeout_CancelsIt(t *testing.T) {
	backend := &recordingBackend{}
	p := newTestPeering(backend, 5)
	require.NoError(t, p.Remove(true))

	for i := 0; i < 10; i++ {
		p.Tick()
	}
	p.HandleByeAck(backend.byes[0])

	for i := 0; i < 20; i++ {
		p.Tick() // must not re-fire: teardown already happened, disconnects stays 1
	}
	assert.Equal(t, 1, backend.disconnects)
}

func TestPeering_RemoveWithoutTimeout_NeverForcesDisconnect(t *testing.T) {
	backend := &recordingBackend{}
	p := newTestPeering(backend, 5)
	require.NoError(t, p.Remove(false))

	for i := 0; i < 1000; i++ {
		p.Tick()
	}
	assert.Equal(t, StateClosing, p.State())
	assert.Equal(t, 0, backend.disconnects)
}

func TestPeering_RemoveWithTimeout_HeartbeatDisabled_NeverForcesDisconnect(t *testing.T) {
	backend := &recordingBackend{}
	p := newTestPeering(backend, 0) // heartbeats disabled
	require.NoError(t, p.Remove(true))

	for i := 0; i < 1000; i++ {
		p.Tick()
	}
	assert.Equal(t, StateClosing, p.State())
	assert.Equal(t, 0, backend.disconnects)
}

func TestPeering_SetOnStatus_FiresOnTeardown(t *testing.T) {
	backend := &recordingBackend{}
	p := newTestPeering(backend, 5)

	var got []Status
	p.SetOnStatus(func(s Status) { got = append(got, s) })

	p.ForceDisconnect()

	require.Len(t, got, 1)
	assert.Equal(t, PeerDisconnected, got[0].Kind)
}

func TestPeering_Tick_Inactive_NoOp(t *testing.T) {
	backend := &recordingBackend{}
	p := newTestPeering(backend, 5)

	p.Tick() // no remove in progress
	assert.Equal(t, StateActive, p.State())
}
