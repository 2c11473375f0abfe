package models

import "cmp"

// ComboKey is the natural key of odds, payoff and vote rows
type ComboKey struct {
	RaceID      string
	BetType     BetType
	Combination Combination
}

// NewComboKey builds a key from a row's fields
func NewComboKey(raceID string, betType BetType, c Combination) ComboKey {
	return ComboKey{RaceID: raceID, BetType: betType, Combination: c}
}

// Compare orders keys by race, bet type, then bracket numbers
func (k ComboKey) Compare(o ComboKey) int {
	return cmp.Or(
		cmp.Compare(k.RaceID, o.RaceID),
		cmp.Compare(k.BetType, o.BetType),
		cmp.Compare(k.Combination[0], o.Combination[0]),
		cmp.Compare(k.Combination[1], o.Combination[1]),
		cmp.Compare(k.Combination[2], o.Combination[2]),
	)
}

// Key returns the odds row's natural key
func (o RaceOdds) Key() ComboKey {
	return NewComboKey(o.RaceID, o.BetType, o.Combination)
}

// Key returns the payoff row's natural key
func (p RacePayoff) Key() ComboKey {
	return NewComboKey(p.RaceID, p.BetType, p.Combination)
}

// Key returns the vote row's natural key
func (v VoteRecord) Key() ComboKey {
	return NewComboKey(v.RaceID, v.BetType, v.Combination)
}

// Key returns the prediction's natural key
func (p Prediction) Key() ComboKey {
	return NewComboKey(p.RaceID, p.BetType, p.Combination)
}
