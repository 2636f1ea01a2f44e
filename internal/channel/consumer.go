package channel

import (
	"sort"

	"github.com/J-Gras/zeek-broker/internal/clock"
)

// ConsumerState classifies a Consumer's lifecycle stage.
type ConsumerState int

const (
	StateUnsynced ConsumerState = iota
	StateSynced
	StateClosed
)

// Consumer is the reassembly side of a reliable channel.
//
// Like Producer, it owns a single-threaded region: all methods run at a
// suspension point (inbound stream item or scheduled tick) and must
// not be called concurrently.
type Consumer struct {
	config  Config
	clk     *clock.Clock
	backend ConsumerBackend
	metrics Metrics

	nextSeq           Seq
	lastSeq           Seq
	heartbeatInterval int
	buffer            []OptionalEvent // sorted ascending by Seq, all Seq > nextSeq

	lastTickSeq Seq
	idleTicks   int
	numTicks    int64

	closed bool
}

// NewConsumer creates a Consumer in the unsynced state.
func NewConsumer(config Config, backend ConsumerBackend) *Consumer {
	return &Consumer{
		config:  config,
		clk:     clock.New(),
		backend: backend,
		metrics: noopMetrics{},
	}
}

// SetMetrics installs a Metrics sink; pass nil to go back to discarding.
func (c *Consumer) SetMetrics(m Metrics) {
	if m == nil {
		m = noopMetrics{}
	}
	c.metrics = m
}

// State reports the consumer's current lifecycle stage.
func (c *Consumer) State() ConsumerState {
	switch {
	case c.closed:
		return StateClosed
	case c.nextSeq > 0:
		return StateSynced
	default:
		return StateUnsynced
	}
}

// NextSeq returns the next sequence number the consumer expects to deliver.
func (c *Consumer) NextSeq() Seq { return c.nextSeq }

// LastSeq returns the highest sequence number the consumer currently knows
// about.
func (c *Consumer) LastSeq() Seq { return c.lastSeq }

// BufferLen returns the number of buffered slots (full or empty), for tests
// and metrics.
func (c *Consumer) BufferLen() int { return len(c.buffer) }

// HandleHandshake processes a (re)sent handshake. A late handshake — one
// whose offset is behind what the consumer already expects — is ignored.
func (c *Consumer) HandleHandshake(offset Seq, heartbeatInterval int) {
	if c.closed {
		return
	}
	if offset < c.nextSeq {
		return // late handshake
	}

	c.nextSeq = offset + 1
	c.lastSeq = c.nextSeq
	c.heartbeatInterval = heartbeatInterval
	c.tryDrainBuffer()
}

// HandleHeartbeat learns of the producer's current head even when no event
// carrying that seq has arrived.
func (c *Consumer) HandleHeartbeat(seq Seq) {
	if c.closed {
		return
	}
	if c.lastSeq == 0 || seq == 0 {
		return // pre-handshake, or sentinel
	}
	if seq+1 > c.lastSeq {
		c.lastSeq = seq + 1
	}
}

// HandleEvent processes an inbound event.
func (c *Consumer) HandleEvent(seq Seq, payload []byte) {
	if c.closed {
		return
	}

	switch {
	case seq == c.nextSeq:
		c.backend.Consume(payload)
		c.metrics.IncEventsDelivered()
		c.nextSeq++
		if c.nextSeq > c.lastSeq {
			c.lastSeq = c.nextSeq
		}
		c.tryDrainBuffer()

	case seq > c.nextSeq:
		if seq > c.lastSeq {
			c.lastSeq = seq
		}
		c.insertBuffer(seq, payload, true)

	default:
		// seq < nextSeq: already delivered, ignore.
	}
}

// HandleRetransmitFailed processes the producer's report that seq is
// permanently lost.
func (c *Consumer) HandleRetransmitFailed(seq Seq) {
	if c.closed {
		return
	}

	switch {
	case seq == c.nextSeq:
		c.consumeGapAt(seq)

	case seq > c.nextSeq:
		if seq > c.lastSeq {
			c.lastSeq = seq
		}
		c.insertBuffer(seq, nil, false)

	default:
		// seq < nextSeq: ignore.
	}
}

// consumeGapAt runs ConsumeGap for the head-of-line seq and either advances
// past it or closes the consumer.
func (c *Consumer) consumeGapAt(seq Seq) {
	err := c.backend.ConsumeGap()
	c.metrics.IncGaps()
	if err != nil {
		c.buffer = nil
		c.closeWith(err)
		return
	}
	c.nextSeq++
	if c.nextSeq > c.lastSeq {
		c.lastSeq = c.nextSeq
	}
	c.tryDrainBuffer()
}

// tryDrainBuffer pops and delivers every contiguous slot starting at
// nextSeq.
func (c *Consumer) tryDrainBuffer() {
	for len(c.buffer) > 0 && c.buffer[0].Seq == c.nextSeq {
		slot := c.buffer[0]
		c.buffer = c.buffer[1:]

		if slot.Present {
			c.backend.Consume(slot.Payload)
			c.metrics.IncEventsDelivered()
			c.nextSeq++
			continue
		}

		err := c.backend.ConsumeGap()
		c.metrics.IncGaps()
		if err != nil {
			c.buffer = nil
			c.closeWith(err)
			return
		}
		c.nextSeq++
	}
}

// insertBuffer places a slot for seq into the sorted buffer, applying the
// fill/dedupe rule where an empty slot may be filled by a later
// full arrival; a full slot is never overwritten; a brand-new seq is
// inserted in order.
func (c *Consumer) insertBuffer(seq Seq, payload []byte, present bool) {
	i := sort.Search(len(c.buffer), func(i int) bool { return c.buffer[i].Seq >= seq })

	if i < len(c.buffer) && c.buffer[i].Seq == seq {
		existing := &c.buffer[i]
		if !existing.Present && present {
			existing.Payload = payload
			existing.Present = true
		}
		// existing.Present && present: duplicate, drop silently.
		// existing.Present && !present: already have the payload, keep it.
		return
	}

	c.buffer = append(c.buffer, OptionalEvent{})
	copy(c.buffer[i+1:], c.buffer[i:])
	c.buffer[i] = OptionalEvent{Seq: seq, Payload: payload, Present: present}
}

// closeWith transitions the consumer to closed and notifies the backend. No
// further calls are permitted afterward.
func (c *Consumer) closeWith(err error) {
	c.closed = true
	c.backend.Close(err)
}

// Tick advances the internal clock, sends a cumulative ack on heartbeat
// cadence, and resends a nack after NackTimeoutTicks of no progress while
// behind.
func (c *Consumer) Tick() {
	progressed := c.nextSeq > c.lastTickSeq
	c.lastTickSeq = c.nextSeq
	c.clk.Tick()
	c.numTicks++

	if progressed {
		c.idleTicks = 0
		if c.onHeartbeatCadence() {
			c.sendAck()
		}
		return
	}

	c.idleTicks++
	if c.nextSeq < c.lastSeq && c.idleTicks >= c.config.NackTimeoutTicks {
		c.idleTicks = 0
		c.backend.Send(Nack{Seqs: c.missingSeqs()})
		return
	}
	if c.onHeartbeatCadence() {
		c.sendAck()
	}
}

func (c *Consumer) onHeartbeatCadence() bool {
	return c.heartbeatInterval > 0 && c.numTicks%int64(c.heartbeatInterval) == 0
}

func (c *Consumer) sendAck() {
	c.backend.Send(Ack{Seq: c.cumulativeAck()})
}

// cumulativeAck returns next_seq-1 once
// synchronized, 0 before synchronization.
func (c *Consumer) cumulativeAck() Seq {
	if c.nextSeq > 0 {
		return c.nextSeq - 1
	}
	return 0
}

// missingSeqs enumerates [nextSeq, lastSeq) for every seq that has no
// buffer entry at all — full or empty — pinning the termination behavior
// the walk is a single linear scan
// against the sorted buffer, with no special case at the final seq.
func (c *Consumer) missingSeqs() []Seq {
	var out []Seq
	bufIdx := 0
	for s := c.nextSeq; s < c.lastSeq; s++ {
		for bufIdx < len(c.buffer) && c.buffer[bufIdx].Seq < s {
			bufIdx++
		}
		if bufIdx < len(c.buffer) && c.buffer[bufIdx].Seq == s {
			continue
		}
		out = append(out, s)
	}
	return out
}
