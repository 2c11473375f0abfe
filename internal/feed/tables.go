package feed

import (
	"cmp"
	"slices"

	"github.com/yourusername/boatrace-vote/internal/models"
)

// Tables holds the entities of one parsed batch. Each slice is unique on the
// entity's natural key and sorted by it; a slice is nil when no record of
// that kind parsed.
type Tables struct {
	RaceIndexes    []models.RaceIndex
	Brackets       []models.BracketEntry
	BracketResults []models.BracketRunResult
	RaceInfos      []models.RaceInfo
	FinishResults  []models.RaceFinishResult
	StartResults   []models.RaceStartResult
	Payoffs        []models.RacePayoff
	Odds           []models.RaceOdds
	Racers         []models.RacerProfile
}

// Counts returns the number of rows per kind
func (t *Tables) Counts() map[Kind]int {
	return map[Kind]int{
		KindRaceIndex:     len(t.RaceIndexes),
		KindBracket:       len(t.Brackets),
		KindBracketResult: len(t.BracketResults),
		KindRaceInfo:      len(t.RaceInfos),
		KindFinishResult:  len(t.FinishResults),
		KindStartResult:   len(t.StartResults),
		KindPayoff:        len(t.Payoffs),
		KindOdds:          len(t.Odds),
		KindRacerProfile:  len(t.Racers),
	}
}

// OddsFor returns the odds rows of one race
func (t *Tables) OddsFor(raceID string) []models.RaceOdds {
	var out []models.RaceOdds
	for _, o := range t.Odds {
		if o.RaceID == raceID {
			out = append(out, o)
		}
	}
	return out
}

// PayoffsFor returns the payoff rows of one race
func (t *Tables) PayoffsFor(raceID string) []models.RacePayoff {
	var out []models.RacePayoff
	for _, p := range t.Payoffs {
		if p.RaceID == raceID {
			out = append(out, p)
		}
	}
	return out
}

// RaceInfo returns the schedule line of one race
func (t *Tables) RaceInfo(raceID string) (models.RaceInfo, bool) {
	for _, info := range t.RaceInfos {
		if info.RaceID == raceID {
			return info, true
		}
	}
	return models.RaceInfo{}, false
}

// normalize deduplicates every table, first occurrence wins, then
// sorts by natural key.
func (t *Tables) normalize() {
	t.RaceIndexes = uniqueSorted(t.RaceIndexes,
		func(r models.RaceIndex) string { return r.RaceIndexID },
		func(a, b models.RaceIndex) int { return cmp.Compare(a.RaceIndexID, b.RaceIndexID) })

	type bracketKey struct{ race, racer string }
	t.Brackets = uniqueSorted(t.Brackets,
		func(r models.BracketEntry) bracketKey { return bracketKey{r.RaceID, r.RacerID} },
		func(a, b models.BracketEntry) int {
			return cmp.Or(cmp.Compare(a.RaceID, b.RaceID), cmp.Compare(a.RacerID, b.RacerID))
		})

	type runKey struct {
		race         string
		bracket, run int
	}
	t.BracketResults = uniqueSorted(t.BracketResults,
		func(r models.BracketRunResult) runKey { return runKey{r.RaceID, r.BracketNumber, r.RunNumber} },
		func(a, b models.BracketRunResult) int {
			return cmp.Or(
				cmp.Compare(a.RaceID, b.RaceID),
				cmp.Compare(a.BracketNumber, b.BracketNumber),
				cmp.Compare(a.RunNumber, b.RunNumber),
			)
		})

	t.RaceInfos = uniqueSorted(t.RaceInfos,
		func(r models.RaceInfo) string { return r.RaceID },
		func(a, b models.RaceInfo) int { return cmp.Compare(a.RaceID, b.RaceID) })

	type boatKey struct {
		race    string
		bracket int
	}
	t.FinishResults = uniqueSorted(t.FinishResults,
		func(r models.RaceFinishResult) boatKey { return boatKey{r.RaceID, r.BracketNumber} },
		func(a, b models.RaceFinishResult) int {
			return cmp.Or(cmp.Compare(a.RaceID, b.RaceID), cmp.Compare(a.BracketNumber, b.BracketNumber))
		})
	t.StartResults = uniqueSorted(t.StartResults,
		func(r models.RaceStartResult) boatKey { return boatKey{r.RaceID, r.BracketNumber} },
		func(a, b models.RaceStartResult) int {
			return cmp.Or(cmp.Compare(a.RaceID, b.RaceID), cmp.Compare(a.BracketNumber, b.BracketNumber))
		})

	t.Payoffs = uniqueSorted(t.Payoffs,
		models.RacePayoff.Key,
		func(a, b models.RacePayoff) int { return a.Key().Compare(b.Key()) })
	t.Odds = uniqueSorted(t.Odds,
		models.RaceOdds.Key,
		func(a, b models.RaceOdds) int { return a.Key().Compare(b.Key()) })

	t.Racers = uniqueSorted(t.Racers,
		func(r models.RacerProfile) string { return r.RacerID },
		func(a, b models.RacerProfile) int { return cmp.Compare(a.RacerID, b.RacerID) })
}

func uniqueSorted[T any, K comparable](rows []T, key func(T) K, compare func(a, b T) int) []T {
	if len(rows) == 0 {
		return nil
	}
	seen := make(map[K]struct{}, len(rows))
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		k := key(r)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	slices.SortStableFunc(out, compare)
	return out
}
