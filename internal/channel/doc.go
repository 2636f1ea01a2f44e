// Package channel implements a reliable, ordered, at-most-once-delivered
// message channel: a producer fanning out to many consumers with
// cumulative acks, nacks, retransmission and heartbeats, layered over an
// unreliable, possibly-reordering transport.
//
// The channel is generic over an opaque Handle identifying one consumer and
// an opaque Payload, but this package exposes that genericity through
// narrow capability interfaces (ProducerBackend,
// ConsumerBackend) rather than Go type parameters, so a test can substitute
// a trivial in-memory backend without any generic instantiation machinery.
package channel
