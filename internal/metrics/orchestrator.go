package metrics

// OrchestratorMetrics implements orchestrator.Metrics against one
// Registry's global (non-peer-labeled) collectors.
type OrchestratorMetrics struct {
	r *Registry
}

// Orchestrator returns the orchestrator.Metrics implementation bound to
// this Registry.
func (r *Registry) Orchestrator() *OrchestratorMetrics {
	return &OrchestratorMetrics{r: r}
}

func (m *OrchestratorMetrics) IncPublished()        { m.r.publishedTotal.Inc() }
func (m *OrchestratorMetrics) IncDelivered()        { m.r.deliveredTotal.Inc() }
func (m *OrchestratorMetrics) IncForwarded()        { m.r.forwardedTotal.Inc() }
func (m *OrchestratorMetrics) IncDuplicateDropped() { m.r.duplicateDropped.Inc() }
func (m *OrchestratorMetrics) IncTTLExpired()       { m.r.ttlExpiredTotal.Inc() }
func (m *OrchestratorMetrics) IncPeeringAdded()     { m.r.peeringsAddedTotal.Inc() }
func (m *OrchestratorMetrics) IncPeeringRemoved()   { m.r.peeringsRemovedTotal.Inc() }
func (m *OrchestratorMetrics) ObservePeerCount(n int) { m.r.peerCount.Set(float64(n)) }
