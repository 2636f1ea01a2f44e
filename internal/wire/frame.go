package wire

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/klauspost/compress/s2"
)

// Kind tags which protocol message type a Frame's payload holds, so a
// single byte stream (one WebSocket connection) can multiplex every
// message the reliable channel, peering and orchestrator exchange.
// wire itself never references the concrete types (channel.Event,
// peering.Bye, ...) to avoid an import cycle with their packages — callers
// decode the tagged payload into the type Kind names.
type Kind uint8

const (
	KindHandshake Kind = iota
	KindHeartbeat
	KindEvent
	KindAck
	KindNack
	KindRetransmitFailed
	KindBye
	KindByeAck
	KindAdvertisement
	KindIdentify
)

func (k Kind) String() string {
	switch k {
	case KindHandshake:
		return "handshake"
	case KindHeartbeat:
		return "heartbeat"
	case KindEvent:
		return "event"
	case KindAck:
		return "ack"
	case KindNack:
		return "nack"
	case KindRetransmitFailed:
		return "retransmit_failed"
	case KindBye:
		return "bye"
	case KindByeAck:
		return "bye_ack"
	case KindAdvertisement:
		return "advertisement"
	case KindIdentify:
		return "identify"
	default:
		return "unknown"
	}
}

type frameEnvelope struct {
	Kind    Kind
	Payload []byte
}

// EncodeFrame gob-encodes message, compresses it, and tags the result with
// kind for the far end's dispatch switch.
func EncodeFrame(kind Kind, message any) ([]byte, error) {
	var inner bytes.Buffer
	if err := gob.NewEncoder(&inner).Encode(message); err != nil {
		return nil, fmt.Errorf("wire: encode frame payload (%s): %w", kind, err)
	}

	var out bytes.Buffer
	if err := gob.NewEncoder(&out).Encode(frameEnvelope{
		Kind:    kind,
		Payload: s2.Encode(nil, inner.Bytes()),
	}); err != nil {
		return nil, fmt.Errorf("wire: encode frame envelope (%s): %w", kind, err)
	}
	return out.Bytes(), nil
}

// DecodeFrame returns the frame's Kind and its decompressed, still
// gob-encoded payload. The caller uses DecodeInto with a concrete value of
// the type Kind names.
func DecodeFrame(data []byte) (Kind, []byte, error) {
	var fe frameEnvelope
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&fe); err != nil {
		return 0, nil, fmt.Errorf("wire: decode frame envelope: %w", err)
	}
	decompressed, err := s2.Decode(nil, fe.Payload)
	if err != nil {
		return 0, nil, fmt.Errorf("wire: decompress frame payload (%s): %w", fe.Kind, err)
	}
	return fe.Kind, decompressed, nil
}

// DecodeInto gob-decodes a DecodeFrame payload into v, a pointer to the
// concrete message type the frame's Kind names.
func DecodeInto(payload []byte, v any) error {
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(v); err != nil {
		return fmt.Errorf("wire: decode frame value: %w", err)
	}
	return nil
}
