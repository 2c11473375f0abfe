// Package vote decides which combinations of a race to stake and how much.
package vote

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/boatrace-vote/internal/models"
)

// ErrInvalidParams is returned for a selector configuration that cannot stake
var ErrInvalidParams = errors.New("invalid vote parameters")

// Band is the half-open interval [Median-Range, Median+Range)
type Band struct {
	Median float64
	Range  float64
}

// Contains checks if x falls inside the band
func (b Band) Contains(x float64) bool {
	return x >= b.Median-b.Range && x < b.Median+b.Range
}

// Params configures a Selector. Exactly one of FixedUnits and TargetPayoff
// is positive.
type Params struct {
	Probability    Band
	ExpectedReturn Band
	FixedUnits     int
	TargetPayoff   float64
}

// Validate checks the parameters are usable
func (p Params) Validate() error {
	if p.Probability.Range < 0 || p.ExpectedReturn.Range < 0 {
		return fmt.Errorf("%w: negative band range", ErrInvalidParams)
	}
	fixed := p.FixedUnits > 0
	target := p.TargetPayoff > 0
	if fixed == target {
		return fmt.Errorf("%w: exactly one of fixed units and target payoff must be set", ErrInvalidParams)
	}
	return nil
}

// Candidate is a prediction joined to its fixed odds. Odds is nil when the
// odds table has no usable row for the combination.
type Candidate struct {
	models.Prediction
	Odds *float64
}

// ExpectedReturn is probability times odds, zero without odds
func (c Candidate) ExpectedReturn() float64 {
	if c.Odds == nil {
		return 0
	}
	return c.Probability * *c.Odds
}

// Decision is the result of voting on one race. Entry is an updated copy.
type Decision struct {
	Entry      models.RaceListEntry
	Candidates int
	Votes      []models.VoteRecord
}

// Stake returns the total units staked
func (d *Decision) Stake() int {
	total := 0
	for _, v := range d.Votes {
		total += v.VoteAmount
	}
	return total
}

// Selector filters candidates by probability and expected return bands
type Selector struct {
	params Params
}

// NewSelector creates a selector after validating its parameters
func NewSelector(params Params) (*Selector, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Selector{params: params}, nil
}

// GetParameters returns the configuration as loggable fields
func (s *Selector) GetParameters() map[string]interface{} {
	return map[string]interface{}{
		"probability_median":     s.params.Probability.Median,
		"probability_range":      s.params.Probability.Range,
		"expected_return_median": s.params.ExpectedReturn.Median,
		"expected_return_range":  s.params.ExpectedReturn.Range,
		"fixed_units":            s.params.FixedUnits,
		"target_payoff":          s.params.TargetPayoff,
	}
}

// Stake returns the units to put on a candidate, zero when it is out of
// either band or has no odds.
func (s *Selector) Stake(c Candidate) int {
	if c.Odds == nil || *c.Odds <= 0 {
		return 0
	}
	if !s.params.Probability.Contains(c.Probability) {
		return 0
	}
	if !s.params.ExpectedReturn.Contains(c.ExpectedReturn()) {
		return 0
	}
	if s.params.FixedUnits > 0 {
		return s.params.FixedUnits
	}
	return int(math.Floor(s.params.TargetPayoff / *c.Odds))
}

// Vote selects the staked combinations of the entry's race and marks the
// entry voted at now. A race without odds is voted with a zero stake.
func (s *Selector) Vote(entry models.RaceListEntry, predictions []models.Prediction, odds []models.RaceOdds, now time.Time) (*Decision, error) {
	candidates, err := Candidates(entry.RaceID, predictions, odds)
	if err != nil {
		return nil, err
	}

	decision := &Decision{
		Entry:      entry.Clone(),
		Candidates: len(candidates),
	}
	for _, c := range candidates {
		amount := s.Stake(c)
		if amount <= 0 {
			continue
		}
		odds := *c.Odds
		decision.Votes = append(decision.Votes, models.VoteRecord{
			ID:             uuid.New(),
			RaceID:         c.RaceID,
			BetType:        c.BetType,
			Combination:    c.Combination,
			Probability:    c.Probability,
			Odds:           &odds,
			ExpectedReturn: c.ExpectedReturn(),
			VoteAmount:     amount,
			VotedAt:        now,
		})
	}

	if err := decision.Entry.MarkVoted(now, decision.Stake()); err != nil {
		return nil, err
	}
	return decision, nil
}
