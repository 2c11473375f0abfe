package models

// Finish codes below zero record why a boat did not finish. Positive values
// are finishing ranks.
const (
	FinishCapsized     = -1  // 転
	FinishFell         = -2  // 落
	FinishEngineStop   = -3  // エ
	FinishInterference = -4  // 妨
	FinishFlyingStart  = -5  // Ｆ
	FinishLateStart    = -6  // Ｌ
	FinishIncomplete   = -7  // 不
	FinishAbsent       = -8  // 欠
	FinishSunk         = -9  // 沈
	FinishNoRecord     = -10 // ＿
	FinishDisqualified = -11 // 失
)

// RaceFinishResult represents a boat's official finish
type RaceFinishResult struct {
	RaceID        string   `db:"race_id" json:"race_id" validate:"required"`
	BracketNumber int      `db:"bracket_number" json:"bracket_number" validate:"gte=1,lte=6"`
	Result        int      `db:"result" json:"result" validate:"ne=0,gte=-11"`
	ResultTime    *float64 `db:"result_time" json:"result_time"`
}

// Finished reports whether the boat was ranked
func (r *RaceFinishResult) Finished() bool {
	return r.Result > 0
}

// RaceStartResult represents a boat's measured start and the winning maneuver
// when the boat won
type RaceStartResult struct {
	RaceID          string   `db:"race_id" json:"race_id" validate:"required"`
	BracketNumber   int      `db:"bracket_number" json:"bracket_number" validate:"gte=1,lte=6"`
	ResultStartTime *float64 `db:"result_start_time" json:"result_start_time"`
	Kimarite        *string  `db:"kimarite" json:"kimarite"`
}
