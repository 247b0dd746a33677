package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MarketplaceMetrics counts marketplace outcomes worth alerting on.
type MarketplaceMetrics struct {
	acceptances *prometheus.CounterVec
	bids        *prometheus.CounterVec
}

// Acceptance outcome labels.
const (
	AcceptanceWon      = "won"
	AcceptanceConflict = "conflict"
)

// NewMarketplaceMetrics registers marketplace counters on the provided registerer.
func NewMarketplaceMetrics(reg prometheus.Registerer) *MarketplaceMetrics {
	if reg == nil {
		return &MarketplaceMetrics{}
	}
	acceptances := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bid_acceptance_total",
		Help: "Bid acceptance attempts by outcome.",
	}, []string{"outcome"})
	bids := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bid_submitted_total",
		Help: "Submitted bids by terminal result.",
	}, []string{"result"})
	reg.MustRegister(acceptances, bids)
	return &MarketplaceMetrics{
		acceptances: acceptances,
		bids:        bids,
	}
}

// IncAcceptance records one acceptance attempt outcome.
func (m *MarketplaceMetrics) IncAcceptance(outcome string) {
	if m == nil || m.acceptances == nil {
		return
	}
	m.acceptances.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncBidSubmitted records one submitted bid result.
func (m *MarketplaceMetrics) IncBidSubmitted(result string) {
	if m == nil || m.bids == nil {
		return
	}
	m.bids.WithLabelValues(normalizeLabel(result)).Inc()
}
