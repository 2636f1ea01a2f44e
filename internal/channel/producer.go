package channel

import (
	"sort"

	"github.com/J-Gras/zeek-broker/internal/clock"
	"github.com/J-Gras/zeek-broker/internal/logger"
)

var log = logger.Logger("channel")

// Producer is the fan-out side of a reliable channel.
//
// A Producer owns a single-threaded region: every method call happens at one
// of the suspension points (inbound stream item or
// scheduled tick), so no internal locking is needed — the caller is
// responsible for never calling into a Producer concurrently from two
// goroutines.
type Producer struct {
	config Config
	clk    *clock.Clock
	backend ProducerBackend
	metrics Metrics

	seq    Seq
	paths  map[Handle]*Path
	buffer []Event // strictly increasing by Seq

	lastBroadcastTick int64 // ticks since creation, not a types.Timestamp diff
}

// NewProducer creates a Producer with seq=0 and no consumers.
func NewProducer(config Config, backend ProducerBackend) *Producer {
	return &Producer{
		config:  config,
		clk:     clock.New(),
		backend: backend,
		metrics: noopMetrics{},
		paths:   make(map[Handle]*Path),
	}
}

// SetMetrics installs a Metrics sink; pass nil to go back to discarding.
func (p *Producer) SetMetrics(m Metrics) {
	if m == nil {
		m = noopMetrics{}
	}
	p.metrics = m
}

// Seq returns the producer's current head sequence number.
func (p *Producer) Seq() Seq { return p.seq }

// Produce fans payload out to every registered consumer.
//
// If there are no consumers, the payload is discarded — the producer
// retains nothing on behalf of nobody.
func (p *Producer) Produce(payload []byte) {
	if len(p.paths) == 0 {
		return
	}

	p.seq++
	event := Event{Seq: p.seq, Payload: payload}
	p.buffer = append(p.buffer, event)
	p.evictIfOverHighWater()

	p.lastBroadcastTick = int64(p.clk.Now())
	p.backend.Broadcast(event)
	p.metrics.ObserveBufferSize(len(p.buffer))
}

// Add registers a fresh consumer and sends it the initial handshake.
//
// It fails with ErrConsumerExists if handle is already registered.
func (p *Producer) Add(handle Handle) error {
	if _, exists := p.paths[handle]; exists {
		return ErrConsumerExists
	}

	now := p.clk.Now()
	p.paths[handle] = &Path{
		Handle:         handle,
		Offset:         p.seq,
		Acked:          p.seq,
		FirstAckedTick: now,
		LastAckedTick:  now,
	}

	p.backend.Send(handle, Handshake{
		FirstSeq:          p.seq,
		HeartbeatInterval: p.config.HeartbeatIntervalTicks,
	})
	return nil
}

// Remove drops a consumer's bookkeeping, e.g. when its peering tears down.
// It does not send anything — the caller is responsible for any BYE-style
// protocol on the transport side.
func (p *Producer) Remove(handle Handle) {
	delete(p.paths, handle)
}

// HandleAck processes a cumulative ack from handle.
func (p *Producer) HandleAck(handle Handle, ackSeq Seq) {
	path, ok := p.paths[handle]
	if !ok {
		return // unknown handle: ignore
	}

	if ackSeq < path.Acked {
		return // stale: ignore
	}

	now := p.clk.Now()
	if ackSeq == path.Acked {
		// Keepalive: touch the liveness timestamp only. This must stay a
		// pure no-op on the buffer so that
		// keepalive traffic never triggers a min-acked scan.
		path.LastAckedTick = now
		return
	}

	path.Acked = ackSeq
	path.FirstAckedTick = now
	path.LastAckedTick = now
	p.metrics.IncAcks()

	p.dropAckedPrefix()
}

// HandleNack processes a nack from handle, resending or reporting loss for
// each requested seq.
func (p *Producer) HandleNack(handle Handle, seqs []Seq) {
	if len(seqs) == 0 {
		return
	}
	path, ok := p.paths[handle]
	if !ok {
		return
	}
	p.metrics.IncNacks()

	if seqs[0] == 0 {
		p.backend.Send(handle, Handshake{
			FirstSeq:          path.Offset,
			HeartbeatInterval: p.config.HeartbeatIntervalTicks,
		})
		return
	}

	// seqs[0]-1 is an implicit cumulative ack: everything before the first
	// missing seq has been delivered.
	p.HandleAck(handle, seqs[0]-1)

	for _, s := range seqs {
		if event, found := p.lookupEvent(s); found {
			p.backend.Send(handle, event)
			p.metrics.IncRetransmitsSent()
			continue
		}
		p.backend.Send(handle, RetransmitFailed{Seq: s})
		p.metrics.IncRetransmitFailed()
	}
}

// Tick advances the internal clock and, on cadence, broadcasts a heartbeat.
func (p *Producer) Tick() {
	now := p.clk.Tick()

	if p.config.HeartbeatIntervalTicks > 0 &&
		int64(now)-p.lastBroadcastTick == int64(p.config.HeartbeatIntervalTicks) {
		p.backend.Broadcast(Heartbeat{Seq: p.seq})
		p.lastBroadcastTick = int64(now)
		p.metrics.IncHeartbeatsSent()
	}
}

// Idle reports whether every registered consumer has fully caught up.
// Vacuously true when there are no consumers.
func (p *Producer) Idle() bool {
	for _, path := range p.paths {
		if path.Acked != p.seq {
			return false
		}
	}
	return true
}

// BufferLen returns the number of events currently retained, for tests and
// metrics.
func (p *Producer) BufferLen() int { return len(p.buffer) }

// PathFor returns a copy of the Path for handle, for tests and
// introspection.
func (p *Producer) PathFor(handle Handle) (Path, bool) {
	path, ok := p.paths[handle]
	if !ok {
		return Path{}, false
	}
	return *path, true
}

func (p *Producer) dropAckedPrefix() {
	minAcked := p.minAcked()

	i := 0
	for ; i < len(p.buffer); i++ {
		if p.buffer[i].Seq > minAcked {
			break
		}
	}
	if i > 0 {
		p.buffer = append(p.buffer[:0], p.buffer[i:]...)
	}
	p.metrics.ObserveBufferSize(len(p.buffer))
}

func (p *Producer) minAcked() Seq {
	min := Seq(0)
	first := true
	for _, path := range p.paths {
		if first || path.Acked < min {
			min = path.Acked
			first = false
		}
	}
	return min
}

func (p *Producer) lookupEvent(seq Seq) (Event, bool) {
	i := sort.Search(len(p.buffer), func(i int) bool { return p.buffer[i].Seq >= seq })
	if i < len(p.buffer) && p.buffer[i].Seq == seq {
		return p.buffer[i], true
	}
	return Event{}, false
}

func (p *Producer) evictIfOverHighWater() {
	hw := p.config.SendBufferHighWater
	if hw <= 0 || len(p.buffer) <= hw {
		return
	}
	evicted := len(p.buffer) - hw
	p.buffer = append(p.buffer[:0], p.buffer[evicted:]...)
	log.Debug("evicted events over high water mark", "count", evicted, "high_water", hw)
}
