package channel

// fakeNetwork is an in-memory ProducerBackend that simply routes messages
// into per-handle consumers, used to drive end-to-end scenarios without any
// real transport.
type fakeNetwork struct {
	consumers map[Handle]*Consumer
	dropped   map[Seq]bool // seqs to silently drop, simulating loss
}

func newFakeNetwork() *fakeNetwork {
	return &fakeNetwork{
		consumers: make(map[Handle]*Consumer),
		dropped:   make(map[Seq]bool),
	}
}

func (n *fakeNetwork) deliver(handle Handle, message Message) {
	c, ok := n.consumers[handle]
	if !ok {
		return
	}
	if event, ok := message.(Event); ok && n.dropped[event.Seq] {
		return
	}
	deliverToConsumer(c, message)
}

func (n *fakeNetwork) Send(handle Handle, message Message) {
	n.deliver(handle, message)
}

func (n *fakeNetwork) Broadcast(message Message) {
	for h := range n.consumers {
		n.deliver(h, message)
	}
}

func deliverToConsumer(c *Consumer, message Message) {
	switch m := message.(type) {
	case Handshake:
		c.HandleHandshake(m.FirstSeq, m.HeartbeatInterval)
	case Heartbeat:
		c.HandleHeartbeat(m.Seq)
	case Event:
		c.HandleEvent(m.Seq, m.Payload)
	case RetransmitFailed:
		c.HandleRetransmitFailed(m.Seq)
	}
}

// fakeUpstream is a ConsumerBackend that routes consumer->producer messages
// (Ack/Nack) straight into the producer under test, and records every
// delivered payload and gap for assertions.
type fakeUpstream struct {
	handle    Handle
	producer  *Producer
	delivered [][]byte
	gaps      int
	gapErr    error // returned by ConsumeGap; nil means "no error"
	closeErr  error
	closed    bool
}

func newFakeUpstream(handle Handle, producer *Producer) *fakeUpstream {
	return &fakeUpstream{handle: handle, producer: producer}
}

func (u *fakeUpstream) Consume(payload []byte) {
	u.delivered = append(u.delivered, payload)
}

func (u *fakeUpstream) ConsumeGap() error {
	u.gaps++
	return u.gapErr
}

func (u *fakeUpstream) Send(message Message) {
	switch m := message.(type) {
	case Ack:
		u.producer.HandleAck(u.handle, m.Seq)
	case Nack:
		u.producer.HandleNack(u.handle, m.Seqs)
	}
}

func (u *fakeUpstream) Close(err error) {
	u.closed = true
	u.closeErr = err
}
