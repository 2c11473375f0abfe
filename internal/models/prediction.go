package models

// Prediction is a model's probability that a combination comes in. The
// predictions table is produced offline and read from object storage.
type Prediction struct {
	RaceID      string      `json:"race_id" validate:"required"`
	BetType     BetType     `json:"bet_type" validate:"gte=1,lte=7"`
	Combination Combination `json:"combination"`
	Probability float64     `json:"probability" validate:"gte=0,lte=1"`
}
