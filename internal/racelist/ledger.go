// Package racelist holds the day's race ledger: one entry per race with its
// vote and payoff lifecycle.
//
// The ledger is read as a whole snapshot, updated in memory and written back
// whole. Nothing here locks; at most one process may write a given ledger.
package racelist

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/yourusername/boatrace-vote/internal/models"
)

// Default lead and lag around a race's start time
const (
	DefaultVoteLead  = 5 * time.Minute
	DefaultPayoffLag = 10 * time.Minute
)

// Ledger is an ordered set of race list entries keyed by race_id
type Ledger struct {
	entries []models.RaceListEntry
}

// New creates a ledger from stored entries. Entries are copied and sorted
// by start time then race_id.
func New(entries []models.RaceListEntry) (*Ledger, error) {
	l := &Ledger{entries: make([]models.RaceListEntry, 0, len(entries))}
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if seen[e.RaceID] {
			return nil, fmt.Errorf("%w: race %s listed twice", models.ErrDuplicateKey, e.RaceID)
		}
		seen[e.RaceID] = true
		l.entries = append(l.entries, e.Clone())
	}
	l.sort()
	return l, nil
}

// Build creates the ledger of one race day from schedule lines. Only races
// starting in [day, day+24h) are kept.
func Build(infos []models.RaceInfo, day time.Time) *Ledger {
	end := day.Add(24 * time.Hour)
	l := &Ledger{}
	seen := make(map[string]bool)
	for _, info := range infos {
		if info.StartDatetime.Before(day) || !info.StartDatetime.Before(end) {
			continue
		}
		if seen[info.RaceID] {
			continue
		}
		seen[info.RaceID] = true
		l.entries = append(l.entries, models.NewRaceListEntry(info))
	}
	l.sort()
	return l
}

func (l *Ledger) sort() {
	slices.SortStableFunc(l.entries, func(a, b models.RaceListEntry) int {
		return cmp.Or(a.StartDatetime.Compare(b.StartDatetime), cmp.Compare(a.RaceID, b.RaceID))
	})
}

// Len returns the number of races
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Entries returns a copy of every entry in ledger order
func (l *Ledger) Entries() []models.RaceListEntry {
	out := make([]models.RaceListEntry, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.Clone()
	}
	return out
}

// Get returns a copy of one race's entry
func (l *Ledger) Get(raceID string) (models.RaceListEntry, error) {
	for _, e := range l.entries {
		if e.RaceID == raceID {
			return e.Clone(), nil
		}
	}
	return models.RaceListEntry{}, fmt.Errorf("%w: race %s", models.ErrNotFound, raceID)
}

// Replace swaps in an updated entry. Lifecycle fields may only move forward:
// a vote or payoff already recorded cannot be changed or removed.
func (l *Ledger) Replace(updated models.RaceListEntry) error {
	for i, e := range l.entries {
		if e.RaceID != updated.RaceID {
			continue
		}
		if err := checkForward(e, updated); err != nil {
			return err
		}
		l.entries[i] = updated.Clone()
		l.sort()
		return nil
	}
	return fmt.Errorf("%w: race %s", models.ErrNotFound, updated.RaceID)
}

func checkForward(old, updated models.RaceListEntry) error {
	if old.VoteTimestamp != nil {
		if updated.VoteTimestamp == nil || !updated.VoteTimestamp.Equal(*old.VoteTimestamp) || updated.VoteAmount != old.VoteAmount {
			return fmt.Errorf("%w: %s", models.ErrAlreadyVoted, old.RaceID)
		}
	}
	if old.PayoffTimestamp != nil {
		if updated.PayoffTimestamp == nil || !updated.PayoffTimestamp.Equal(*old.PayoffTimestamp) {
			return fmt.Errorf("%w: %s", models.ErrAlreadySettled, old.RaceID)
		}
	}
	if updated.PayoffTimestamp != nil && updated.VoteTimestamp == nil {
		return fmt.Errorf("%w: %s", models.ErrNotVoted, old.RaceID)
	}
	return nil
}

// VoteCandidates returns the races not yet voted whose start is no later
// than now+lead, latest-starting first.
func (l *Ledger) VoteCandidates(now time.Time, lead time.Duration) []models.RaceListEntry {
	return l.latestFirst(func(e models.RaceListEntry) bool {
		return !e.IsVoted() && !e.StartDatetime.After(now.Add(lead))
	})
}

// PayoffCandidates returns the voted but unsettled races whose start is no
// later than now-lag, latest-starting first.
func (l *Ledger) PayoffCandidates(now time.Time, lag time.Duration) []models.RaceListEntry {
	return l.latestFirst(func(e models.RaceListEntry) bool {
		return e.IsVoted() && !e.IsSettled() && !e.StartDatetime.After(now.Add(-lag))
	})
}

// FindVoteRace returns the first of VoteCandidates
func (l *Ledger) FindVoteRace(now time.Time, lead time.Duration) (models.RaceListEntry, bool) {
	return first(l.VoteCandidates(now, lead))
}

// FindPayoffRace returns the first of PayoffCandidates
func (l *Ledger) FindPayoffRace(now time.Time, lag time.Duration) (models.RaceListEntry, bool) {
	return first(l.PayoffCandidates(now, lag))
}

func first(entries []models.RaceListEntry) (models.RaceListEntry, bool) {
	if len(entries) == 0 {
		return models.RaceListEntry{}, false
	}
	return entries[0], true
}

func (l *Ledger) latestFirst(match func(models.RaceListEntry) bool) []models.RaceListEntry {
	var out []models.RaceListEntry
	for i := len(l.entries) - 1; i >= 0; i-- {
		if match(l.entries[i]) {
			out = append(out, l.entries[i].Clone())
		}
	}
	return out
}

// NotVoted returns the races still waiting for a vote
func (l *Ledger) NotVoted() []models.RaceListEntry {
	return l.filter(func(e models.RaceListEntry) bool { return !e.IsVoted() })
}

// NotSettled returns the voted races still waiting for a payoff
func (l *Ledger) NotSettled() []models.RaceListEntry {
	return l.filter(func(e models.RaceListEntry) bool { return e.IsVoted() && !e.IsSettled() })
}

// Remaining returns every race not yet settled
func (l *Ledger) Remaining() []models.RaceListEntry {
	return l.filter(func(e models.RaceListEntry) bool { return !e.IsSettled() })
}

func (l *Ledger) filter(match func(models.RaceListEntry) bool) []models.RaceListEntry {
	var out []models.RaceListEntry
	for _, e := range l.entries {
		if match(e) {
			out = append(out, e.Clone())
		}
	}
	return out
}
