package models

import (
	"github.com/shopspring/decimal"
)

// RaceOdds represents the fixed odds of one combination. Odds2 is the upper
// bound and is only published for place and quinella-place.
type RaceOdds struct {
	RaceID      string      `db:"race_id" json:"race_id" validate:"required"`
	BetType     BetType     `db:"bet_type" json:"bet_type" validate:"gte=1,lte=7"`
	Combination Combination `db:"-" json:"combination"`
	Odds1       *float64    `db:"odds_1" json:"odds_1"`
	Odds2       *float64    `db:"odds_2" json:"odds_2"`
}

// RacePayoff represents an official payoff line. Payoff is the return per
// unit stake; it is null when the page shows an empty cell. A cancelled line
// (不成立, 特払) has an empty combination.
type RacePayoff struct {
	RaceID      string              `db:"race_id" json:"race_id" validate:"required"`
	BetType     BetType             `db:"bet_type" json:"bet_type" validate:"gte=1,lte=7"`
	Combination Combination         `db:"-" json:"combination"`
	Payoff      decimal.NullDecimal `db:"payoff" json:"payoff"`
	Favorite    *int                `db:"favorite" json:"favorite"`
}
