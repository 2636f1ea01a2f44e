package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/J-Gras/zeek-broker/pkg/types"
)

type fakeAck struct {
	Seq uint64
}

func TestEncodeDecodeFrame_RoundTrips(t *testing.T) {
	encoded, err := EncodeFrame(KindAck, fakeAck{Seq: 42})
	require.NoError(t, err)

	kind, payload, err := DecodeFrame(encoded)
	require.NoError(t, err)
	assert.Equal(t, KindAck, kind)

	var out fakeAck
	require.NoError(t, DecodeInto(payload, &out))
	assert.Equal(t, uint64(42), out.Seq)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "ack", KindAck.String())
	assert.Equal(t, "bye_ack", KindByeAck.String())
	assert.Equal(t, "unknown", Kind(255).String())
}

func TestDecodeFrame_CorruptInput_Errors(t *testing.T) {
	_, _, err := DecodeFrame([]byte("garbage"))
	assert.Error(t, err)
}

func TestEncodeDecodeFrame_Identify_RoundTrips(t *testing.T) {
	id := types.NewEndpointID()
	encoded, err := EncodeFrame(KindIdentify, Identify{EndpointID: id})
	require.NoError(t, err)

	kind, payload, err := DecodeFrame(encoded)
	require.NoError(t, err)
	assert.Equal(t, KindIdentify, kind)

	var out Identify
	require.NoError(t, DecodeInto(payload, &out))
	assert.Equal(t, id, out.EndpointID)
}
