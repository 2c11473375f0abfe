// Package service runs the race day workflows against object storage.
package service

import (
	"github.com/yourusername/boatrace-vote/internal/models"
	"github.com/yourusername/boatrace-vote/internal/racelist"
)

// StepOutcome reports what one vote or payoff step did
type StepOutcome string

const (
	// StepIdle means no race is eligible right now.
	StepIdle StepOutcome = "idle"
	// StepAwaitingFeed means a race is eligible but its feed is not uploaded yet.
	StepAwaitingFeed StepOutcome = "awaiting_feed"
	// StepVoted means a vote decision was recorded, possibly with zero stake.
	StepVoted StepOutcome = "voted"
	// StepPending means odds are published but payoffs are not final.
	StepPending StepOutcome = "pending"
	// StepVoided means the race published no odds and was settled at zero.
	StepVoided StepOutcome = "voided"
	// StepSettled means the race was paid off.
	StepSettled StepOutcome = "settled"
)

// StepResult is the outcome of one step and the race it concerned
type StepResult struct {
	Outcome StepOutcome
	RaceID  string
	// Remaining counts races not yet voted or not yet settled after the step.
	Remaining int
}

// Done reports whether the ledger has no work left
func (r *StepResult) Done() bool {
	return r.Remaining == 0
}

func remaining(ledger *racelist.Ledger) int {
	return len(ledger.Remaining())
}

// firstUploaded returns the first candidate whose feed is in uploaded
func firstUploaded(candidates []models.RaceListEntry, uploaded map[string]bool) (models.RaceListEntry, bool) {
	for _, e := range candidates {
		if uploaded[e.RaceID] {
			return e, true
		}
	}
	return models.RaceListEntry{}, false
}
