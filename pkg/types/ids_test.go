package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpointID_RoundTrip(t *testing.T) {
	id := NewEndpointID()
	require.False(t, id.IsEmpty())

	parsed, err := EndpointIDFromString(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestEndpointID_Empty(t *testing.T) {
	assert.True(t, EmptyEndpointID.IsEmpty())
	assert.Equal(t, "", EmptyEndpointID.String())
}

func TestEndpointID_ShortString(t *testing.T) {
	id := NewEndpointID()
	short := id.ShortString()
	assert.LessOrEqual(t, len(short), 8)
}

func TestEndpointID_FromString_Invalid(t *testing.T) {
	_, err := EndpointIDFromString("not-valid-base58-!!!")
	assert.Error(t, err)
}

func TestByeToken_Random(t *testing.T) {
	a := NewByeToken()
	b := NewByeToken()
	assert.NotEqual(t, a, b)
}
