package wire

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/klauspost/compress/s2"

	"github.com/J-Gras/zeek-broker/pkg/types"
)

// EncodeDataMessage serializes msg into the bytes a channel.Producer carries
// as an Event payload. The wire bit-layout itself is explicitly out of the
// core's scope; gob+s2 is simply what this module's transport adapters use
// to get a types.DataMessage across a byte-oriented link.
func EncodeDataMessage(msg types.DataMessage) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(msg); err != nil {
		return nil, fmt.Errorf("wire: encode data message: %w", err)
	}
	return s2.Encode(nil, buf.Bytes()), nil
}

// DecodeDataMessage reverses EncodeDataMessage.
func DecodeDataMessage(data []byte) (types.DataMessage, error) {
	decompressed, err := s2.Decode(nil, data)
	if err != nil {
		return types.DataMessage{}, fmt.Errorf("wire: decompress data message: %w", err)
	}
	var msg types.DataMessage
	if err := gob.NewDecoder(bytes.NewReader(decompressed)).Decode(&msg); err != nil {
		return types.DataMessage{}, fmt.Errorf("wire: decode data message: %w", err)
	}
	return msg, nil
}
