package channel

// ProducerBackend is the capability a Producer needs from its transport:
// unicast one message to a known consumer, or broadcast to all of them.
// Implementations live outside this package — e.g. internal/bridge/ws
// carries these over a WebSocket connection, and tests use a trivial
// in-memory fake.
type ProducerBackend interface {
	Send(handle Handle, message Message)
	Broadcast(message Message)
}

// ConsumerBackend is the capability a Consumer needs from its transport and
// application layer. Consume MUST NOT fail — the channel has nowhere to
// route a delivery error except through ConsumeGap's contract.
type ConsumerBackend interface {
	// Consume delivers a payload in sequence. MUST NOT fail.
	Consume(payload []byte)

	// ConsumeGap is called when a sequence slot known to be missing
	// (retransmit_failed) arrives in order. A non-nil return triggers
	// Close.
	ConsumeGap() error

	// Send delivers a consumer-to-producer message (Ack or Nack).
	Send(message Message)

	// Close terminates this consumer; no further calls are permitted
	// afterward.
	Close(err error)
}
