package vote

import (
	"slices"

	"github.com/yourusername/boatrace-vote/internal/models"
)

// Candidates left-joins a race's predictions to its odds on the composite
// key. Rows of other races are ignored. The result is sorted by key.
func Candidates(raceID string, predictions []models.Prediction, odds []models.RaceOdds) ([]Candidate, error) {
	oddsByKey := make(map[models.ComboKey]*float64)
	for _, o := range odds {
		if o.RaceID != raceID {
			continue
		}
		spec, err := o.BetType.Spec()
		if err != nil {
			return nil, err
		}
		key := models.NewComboKey(o.RaceID, o.BetType, spec.Canonical(o.Combination))
		if _, dup := oddsByKey[key]; !dup {
			oddsByKey[key] = o.Odds1
		}
	}

	var out []Candidate
	seen := make(map[models.ComboKey]bool)
	for _, p := range predictions {
		if p.RaceID != raceID {
			continue
		}
		spec, err := p.BetType.Spec()
		if err != nil {
			return nil, err
		}
		p.Combination = spec.Canonical(p.Combination)
		key := p.Key()
		if seen[key] {
			continue
		}
		seen[key] = true

		c := Candidate{Prediction: p}
		if o := oddsByKey[key]; o != nil {
			v := *o
			c.Odds = &v
		}
		out = append(out, c)
	}

	slices.SortFunc(out, func(a, b Candidate) int { return a.Key().Compare(b.Key()) })
	return out, nil
}
