package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VoteRecord represents a staked combination. OddsFix, Payoff and
// PayoffAmount are filled in at settlement.
type VoteRecord struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	RaceID         string          `db:"race_id" json:"race_id" validate:"required"`
	BetType        BetType         `db:"bet_type" json:"bet_type" validate:"gte=1,lte=7"`
	Combination    Combination     `db:"-" json:"combination"`
	Probability    float64         `db:"probability" json:"probability" validate:"gte=0,lte=1"`
	Odds           *float64        `db:"odds" json:"odds"`
	ExpectedReturn float64         `db:"expected_return" json:"expected_return"`
	VoteAmount     int             `db:"vote_amount" json:"vote_amount" validate:"gte=0"`
	VotedAt        time.Time       `db:"voted_at" json:"voted_at"`
	OddsFix        *float64        `db:"odds_fix" json:"odds_fix"`
	Payoff         decimal.Decimal `db:"payoff" json:"payoff"`
	PayoffAmount   decimal.Decimal `db:"payoff_amount" json:"payoff_amount"`
	SettledAt      *time.Time      `db:"settled_at" json:"settled_at"`
}

// IsHit checks if the combination returned anything
func (v *VoteRecord) IsHit() bool {
	return v.PayoffAmount.IsPositive()
}

// VoteSummary aggregates vote results over many races
type VoteSummary struct {
	Races  int             `json:"races"`
	Votes  int             `json:"votes"`
	Hits   int             `json:"hits"`
	Cost   decimal.Decimal `json:"cost"`
	Return decimal.Decimal `json:"return"`
	Profit decimal.Decimal `json:"profit"`
}

// HitRate returns hits per vote
func (s *VoteSummary) HitRate() float64 {
	if s.Votes == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Votes)
}

// ReturnRate returns total return over total cost
func (s *VoteSummary) ReturnRate() float64 {
	if s.Cost.IsZero() {
		return 0
	}
	rate, _ := s.Return.Div(s.Cost).Float64()
	return rate
}
