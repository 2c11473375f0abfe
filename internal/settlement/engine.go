// Package settlement computes the realized return of a voted race from its
// official odds and payoff tables.
package settlement

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yourusername/boatrace-vote/internal/models"
)

// Outcome describes what a settlement attempt did
type Outcome string

const (
	// OutcomeNotVoted means the race has no vote decision; nothing changed.
	OutcomeNotVoted Outcome = "not_voted"
	// OutcomeAlreadySettled means the race was paid off earlier; nothing changed.
	OutcomeAlreadySettled Outcome = "already_settled"
	// OutcomeVoided means the race published no odds. It is settled with a
	// zero return and its vote rows are discarded.
	OutcomeVoided Outcome = "voided"
	// OutcomePending means odds exist but payoffs are not final yet.
	OutcomePending Outcome = "pending"
	// OutcomeSettled means every vote row was joined to the payoff table.
	OutcomeSettled Outcome = "settled"
)

// Result is the output of one settlement attempt. Entry is always a copy;
// the caller's entry is never modified.
type Result struct {
	Outcome Outcome
	Entry   models.RaceListEntry
	Votes   []models.VoteRecord
	Hits    int
}

// Changed reports whether the ledger and vote table must be written back
func (r *Result) Changed() bool {
	return r.Outcome == OutcomeSettled || r.Outcome == OutcomeVoided
}

// Engine settles races. It holds no state.
type Engine struct{}

// NewEngine creates a settlement engine
func NewEngine() *Engine {
	return &Engine{}
}

// Settle joins a race's vote rows to its odds and payoff rows and computes
// the return. Odds and payoff rows of other races are ignored, so whole feed
// tables can be passed in. A combination with no payoff row returns zero.
func (e *Engine) Settle(entry models.RaceListEntry, votes []models.VoteRecord, odds []models.RaceOdds, payoffs []models.RacePayoff, now time.Time) (*Result, error) {
	result := &Result{Entry: entry.Clone()}

	switch {
	case !entry.IsVoted():
		result.Outcome = OutcomeNotVoted
		return result, nil
	case entry.IsSettled():
		result.Outcome = OutcomeAlreadySettled
		return result, nil
	}

	for _, v := range votes {
		if v.RaceID != entry.RaceID {
			return nil, fmt.Errorf("%w: vote row for %s in race %s", models.ErrForeignRace, v.RaceID, entry.RaceID)
		}
	}

	oddsByKey, err := indexOdds(entry.RaceID, odds)
	if err != nil {
		return nil, err
	}
	if len(oddsByKey) == 0 {
		if err := result.Entry.MarkSettled(now, decimal.Zero); err != nil {
			return nil, err
		}
		result.Outcome = OutcomeVoided
		return result, nil
	}

	payoffByKey, err := indexPayoffs(entry.RaceID, payoffs)
	if err != nil {
		return nil, err
	}
	if len(payoffByKey) == 0 {
		result.Outcome = OutcomePending
		return result, nil
	}

	settledAt := now
	total := decimal.Zero
	rows := make([]models.VoteRecord, 0, len(votes))
	for _, v := range votes {
		key, err := canonicalKey(v.RaceID, v.BetType, v.Combination)
		if err != nil {
			return nil, err
		}

		row := v
		if o, ok := oddsByKey[key]; ok && o.Odds1 != nil {
			fix := *o.Odds1
			row.OddsFix = &fix
		}
		multiplier := payoffByKey[key]
		row.Payoff = multiplier
		row.PayoffAmount = multiplier.Mul(decimal.NewFromInt(int64(v.VoteAmount)))
		row.SettledAt = &settledAt

		if row.IsHit() {
			result.Hits++
		}
		total = total.Add(row.PayoffAmount)
		rows = append(rows, row)
	}

	if err := result.Entry.MarkSettled(now, total); err != nil {
		return nil, err
	}
	result.Votes = rows
	result.Outcome = OutcomeSettled
	return result, nil
}

func canonicalKey(raceID string, betType models.BetType, c models.Combination) (models.ComboKey, error) {
	spec, err := betType.Spec()
	if err != nil {
		return models.ComboKey{}, err
	}
	return models.NewComboKey(raceID, betType, spec.Canonical(c)), nil
}

func indexOdds(raceID string, odds []models.RaceOdds) (map[models.ComboKey]models.RaceOdds, error) {
	out := make(map[models.ComboKey]models.RaceOdds)
	for _, o := range odds {
		if o.RaceID != raceID {
			continue
		}
		key, err := canonicalKey(o.RaceID, o.BetType, o.Combination)
		if err != nil {
			return nil, err
		}
		if _, dup := out[key]; !dup {
			out[key] = o
		}
	}
	return out, nil
}

// indexPayoffs maps each winning combination to its multiplier. A blank
// multiplier counts as zero. Rows without a combination (not established,
// special payout) still mark the payoff table as published.
func indexPayoffs(raceID string, payoffs []models.RacePayoff) (map[models.ComboKey]decimal.Decimal, error) {
	out := make(map[models.ComboKey]decimal.Decimal)
	for _, p := range payoffs {
		if p.RaceID != raceID {
			continue
		}
		key, err := canonicalKey(p.RaceID, p.BetType, p.Combination)
		if err != nil {
			return nil, err
		}
		if _, dup := out[key]; dup {
			continue
		}
		if p.Payoff.Valid {
			out[key] = p.Payoff.Decimal
		} else {
			out[key] = decimal.Zero
		}
	}
	return out, nil
}
