package store

import "hash/fnv"

// Key derives a SeenCache key from a data_message's topic and payload.
func Key(topic string, payload []byte) uint64 {
	h := fnv.New64a()
	h.Write([]byte(topic))
	h.Write([]byte{0}) // separator: "ab"+"c" must not collide with "a"+"bc"
	h.Write(payload)
	return h.Sum64()
}
