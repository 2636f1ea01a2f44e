package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "broker"

// Registry owns every collector this module registers and hands out the
// peer-scoped and orchestrator-scoped Metrics implementations that wrap
// them. One Registry is shared by every peering's channel.Producer and
// channel.Consumer, and by the one Orchestrator per endpoint.
type Registry struct {
	reg *prometheus.Registry

	acksTotal            *prometheus.CounterVec
	nacksTotal           *prometheus.CounterVec
	retransmitsSent      *prometheus.CounterVec
	retransmitsFailed    *prometheus.CounterVec
	heartbeatsSent       *prometheus.CounterVec
	eventsDelivered      *prometheus.CounterVec
	gapsTotal            *prometheus.CounterVec
	bufferSize           *prometheus.GaugeVec

	publishedTotal       prometheus.Counter
	deliveredTotal       prometheus.Counter
	forwardedTotal       prometheus.Counter
	duplicateDropped     prometheus.Counter
	ttlExpiredTotal      prometheus.Counter
	peeringsAddedTotal   prometheus.Counter
	peeringsRemovedTotal prometheus.Counter
	peerCount            prometheus.Gauge
}

// NewRegistry creates a Registry and registers every collector it owns
// against a fresh prometheus.Registry.
func NewRegistry() *Registry {
	r := &Registry{reg: prometheus.NewRegistry()}

	peerLabels := []string{"peer"}
	r.acksTotal = r.counterVec("channel_acks_total", "Cumulative acks received, per peering.", peerLabels)
	r.nacksTotal = r.counterVec("channel_nacks_total", "Nacks received, per peering.", peerLabels)
	r.retransmitsSent = r.counterVec("channel_retransmits_sent_total", "Events resent in response to a nack, per peering.", peerLabels)
	r.retransmitsFailed = r.counterVec("channel_retransmits_failed_total", "Nacked sequence numbers that had already been evicted, per peering.", peerLabels)
	r.heartbeatsSent = r.counterVec("channel_heartbeats_sent_total", "Producer heartbeats sent, per peering.", peerLabels)
	r.eventsDelivered = r.counterVec("channel_events_delivered_total", "Events delivered in order to the consumer, per peering.", peerLabels)
	r.gapsTotal = r.counterVec("channel_gaps_total", "Permanently lost sequence numbers surfaced to the consumer, per peering.", peerLabels)
	r.bufferSize = r.gaugeVec("channel_producer_buffer_size", "Number of events currently retained by a producer, per peering.", peerLabels)

	r.publishedTotal = r.counter("published_total", "Data messages originated locally via Publish.")
	r.deliveredTotal = r.counter("delivered_total", "Data messages delivered to the local subscriber sink.")
	r.forwardedTotal = r.counter("forwarded_total", "Data messages forwarded onward to at least one peering.")
	r.duplicateDropped = r.counter("duplicate_dropped_total", "Data messages dropped as already-seen duplicates.")
	r.ttlExpiredTotal = r.counter("ttl_expired_total", "Data messages dropped after their TTL reached zero.")
	r.peeringsAddedTotal = r.counter("peerings_added_total", "Peerings successfully established.")
	r.peeringsRemovedTotal = r.counter("peerings_removed_total", "Peerings torn down, gracefully or by force.")
	r.peerCount = r.gauge("peer_count", "Number of peerings currently active.")

	return r
}

// Registerer exposes the underlying prometheus.Registry for brokerd's HTTP
// handler to mount.
func (r *Registry) Registerer() *prometheus.Registry { return r.reg }

func (r *Registry) counterVec(name, help string, labels []string) *prometheus.CounterVec {
	v := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help}, labels)
	r.reg.MustRegister(v)
	return v
}

func (r *Registry) gaugeVec(name, help string, labels []string) *prometheus.GaugeVec {
	v := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help}, labels)
	r.reg.MustRegister(v)
	return v
}

func (r *Registry) counter(name, help string) prometheus.Counter {
	c := prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help})
	r.reg.MustRegister(c)
	return c
}

func (r *Registry) gauge(name, help string) prometheus.Gauge {
	g := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
	r.reg.MustRegister(g)
	return g
}
