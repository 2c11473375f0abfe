package metrics

import "github.com/prometheus/client_golang/prometheus"

// Vote and settlement counters
var (
	VotesPlacedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "votes_placed_total",
		Help:      "Total number of vote rows by bet type",
	}, []string{"bet_type"})

	SettlementsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "settlements_total",
		Help:      "Total number of settlement attempts by outcome",
	}, []string{"outcome"})

	PayoffAmountTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payoff_amount_total",
		Help:      "Total payoff returned in stake units",
	})
)

// VoteStakeUnits is the per-race stake distribution
var VoteStakeUnits = prometheus.NewHistogram(prometheus.HistogramOpts{
	Namespace: namespace,
	Name:      "vote_stake_units",
	Help:      "Total stake units placed per race",
	Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
})

// RacesRemaining is the number of races not yet voted in today's list
var RacesRemaining = prometheus.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "races_remaining",
	Help:      "Number of races in the current race list still waiting for a vote",
})

// RecordVote records a race vote and its rows.
func RecordVote(rowsByBetType map[string]int, stake int) {
	for betType, n := range rowsByBetType {
		VotesPlacedTotal.WithLabelValues(betType).Add(float64(n))
	}
	VoteStakeUnits.Observe(float64(stake))
}

// RecordSettlement records a settlement attempt.
func RecordSettlement(outcome string, payoff float64) {
	SettlementsTotal.WithLabelValues(outcome).Inc()
	if payoff > 0 {
		PayoffAmountTotal.Add(payoff)
	}
}

// UpdateRacesRemaining sets the remaining-races gauge.
func UpdateRacesRemaining(count int) {
	RacesRemaining.Set(float64(count))
}
