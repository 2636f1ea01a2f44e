package orchestrator

import (
	"github.com/J-Gras/zeek-broker/internal/channel"
	"github.com/J-Gras/zeek-broker/pkg/types"
)

// ChannelMetricsFactory returns the channel.Metrics a peering's producer and
// consumer should report into, labeled however the concrete implementation
// (internal/metrics) sees fit — typically by peerID. Installed via
// SetChannelMetrics; nil means every peering keeps channel's own noop.
type ChannelMetricsFactory func(peerID types.EndpointID) channel.Metrics

// Metrics receives orchestrator-level counters; a concrete prometheus
// implementation lives in internal/metrics. Mirrors the narrow,
// method-per-event shape of channel.Metrics.
type Metrics interface {
	IncPublished()
	IncDelivered()
	IncForwarded()
	IncDuplicateDropped()
	IncTTLExpired()
	IncPeeringAdded()
	IncPeeringRemoved()
	ObservePeerCount(n int)
}

type noopMetrics struct{}

func (noopMetrics) IncPublished()          {}
func (noopMetrics) IncDelivered()          {}
func (noopMetrics) IncForwarded()          {}
func (noopMetrics) IncDuplicateDropped()   {}
func (noopMetrics) IncTTLExpired()         {}
func (noopMetrics) IncPeeringAdded()       {}
func (noopMetrics) IncPeeringRemoved()     {}
func (noopMetrics) ObservePeerCount(int)   {}
