package metrics

// ChannelMetrics implements channel.Metrics for one peering, labeling every
// observation with the peer id so a single Registry can serve every
// producer/consumer pair an orchestrator owns.
type ChannelMetrics struct {
	r    *Registry
	peer string
}

// ForPeer returns the channel.Metrics implementation for peerID. Callers
// pass the result to channel.Producer.SetMetrics and channel.Consumer.SetMetrics.
func (r *Registry) ForPeer(peerID string) *ChannelMetrics {
	return &ChannelMetrics{r: r, peer: peerID}
}

func (m *ChannelMetrics) ObserveBufferSize(n int) {
	m.r.bufferSize.WithLabelValues(m.peer).Set(float64(n))
}
func (m *ChannelMetrics) IncAcks()            { m.r.acksTotal.WithLabelValues(m.peer).Inc() }
func (m *ChannelMetrics) IncNacks()           { m.r.nacksTotal.WithLabelValues(m.peer).Inc() }
func (m *ChannelMetrics) IncRetransmitsSent() { m.r.retransmitsSent.WithLabelValues(m.peer).Inc() }
func (m *ChannelMetrics) IncRetransmitFailed() {
	m.r.retransmitsFailed.WithLabelValues(m.peer).Inc()
}
func (m *ChannelMetrics) IncHeartbeatsSent()  { m.r.heartbeatsSent.WithLabelValues(m.peer).Inc() }
func (m *ChannelMetrics) IncEventsDelivered() { m.r.eventsDelivered.WithLabelValues(m.peer).Inc() }
func (m *ChannelMetrics) IncGaps()            { m.r.gapsTotal.WithLabelValues(m.peer).Inc() }
