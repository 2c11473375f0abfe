package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RaceState is the lifecycle position of a race list entry
type RaceState string

const (
	RaceStateScheduled RaceState = "scheduled"
	RaceStateVoted     RaceState = "voted"
	RaceStateSettled   RaceState = "settled"
)

// RaceListEntry represents one race on the day's ledger. VoteTimestamp and
// PayoffTimestamp are each set exactly once, in that order.
type RaceListEntry struct {
	RaceID          string           `db:"race_id" json:"race_id" validate:"required"`
	PlaceID         string           `db:"place_id" json:"place_id"`
	RaceRound       int              `db:"race_round" json:"race_round"`
	StartDatetime   time.Time        `db:"start_datetime" json:"start_datetime" validate:"required"`
	VoteTimestamp   *time.Time       `db:"vote_timestamp" json:"vote_timestamp"`
	VoteAmount      int              `db:"vote_amount" json:"vote_amount" validate:"gte=0"`
	PayoffTimestamp *time.Time       `db:"payoff_timestamp" json:"payoff_timestamp"`
	PayoffAmount    *decimal.Decimal `db:"payoff_amount" json:"payoff_amount"`
}

// NewRaceListEntry creates a scheduled entry from a race's schedule line
func NewRaceListEntry(info RaceInfo) RaceListEntry {
	return RaceListEntry{
		RaceID:        info.RaceID,
		PlaceID:       info.PlaceID,
		RaceRound:     info.RaceRound,
		StartDatetime: info.StartDatetime,
	}
}

// State derives the lifecycle state from the timestamps
func (e *RaceListEntry) State() RaceState {
	switch {
	case e.PayoffTimestamp != nil:
		return RaceStateSettled
	case e.VoteTimestamp != nil:
		return RaceStateVoted
	default:
		return RaceStateScheduled
	}
}

// IsVoted checks if a vote decision has been recorded, even a zero stake
func (e *RaceListEntry) IsVoted() bool {
	return e.VoteTimestamp != nil
}

// IsSettled checks if the race has been paid off
func (e *RaceListEntry) IsSettled() bool {
	return e.PayoffTimestamp != nil
}

// MarkVoted records the vote decision
func (e *RaceListEntry) MarkVoted(at time.Time, amount int) error {
	if e.VoteTimestamp != nil {
		return fmt.Errorf("%w: %s", ErrAlreadyVoted, e.RaceID)
	}
	if amount < 0 {
		return fmt.Errorf("negative vote amount %d for race %s", amount, e.RaceID)
	}
	t := at
	e.VoteTimestamp = &t
	e.VoteAmount = amount
	return nil
}

// MarkSettled records the realized return
func (e *RaceListEntry) MarkSettled(at time.Time, amount decimal.Decimal) error {
	if e.VoteTimestamp == nil {
		return fmt.Errorf("%w: %s", ErrNotVoted, e.RaceID)
	}
	if e.PayoffTimestamp != nil {
		return fmt.Errorf("%w: %s", ErrAlreadySettled, e.RaceID)
	}
	if at.Before(*e.VoteTimestamp) {
		return fmt.Errorf("%w: %s", ErrSettleBeforeVote, e.RaceID)
	}
	t := at
	e.PayoffTimestamp = &t
	e.PayoffAmount = &amount
	return nil
}

// Clone returns a deep copy so callers can compute an update without touching
// the snapshot they read
func (e RaceListEntry) Clone() RaceListEntry {
	out := e
	if e.VoteTimestamp != nil {
		t := *e.VoteTimestamp
		out.VoteTimestamp = &t
	}
	if e.PayoffTimestamp != nil {
		t := *e.PayoffTimestamp
		out.PayoffTimestamp = &t
	}
	if e.PayoffAmount != nil {
		d := *e.PayoffAmount
		out.PayoffAmount = &d
	}
	return out
}
