package models

// RacerClass is the racer's rank for the current term
type RacerClass int

const (
	RacerClassA1 RacerClass = 1
	RacerClassA2 RacerClass = 2
	RacerClassB1 RacerClass = 3
	RacerClassB2 RacerClass = 4
)

// BracketEntry represents one racer's line on the pre-race program
type BracketEntry struct {
	RaceID        string     `db:"race_id" json:"race_id" validate:"required"`
	BracketNumber int        `db:"bracket_number" json:"bracket_number" validate:"gte=1,lte=6"`
	RacerID       string     `db:"racer_id" json:"racer_id" validate:"required"`
	RacerClass    RacerClass `db:"racer_class_type" json:"racer_class_type" validate:"gte=1,lte=4"`
	BelongTo      string     `db:"belong_to" json:"belong_to"`
	BirthPlace    string     `db:"birth_place" json:"birth_place"`
	Age           int        `db:"age" json:"age"`
	Weight        *float64   `db:"weight" json:"weight"`

	FlyingStartCount   int      `db:"flying_start_count" json:"flying_start_count"`
	LateStartCount     int      `db:"late_start_count" json:"late_start_count"`
	AverageStartTiming *float64 `db:"average_start_timing" json:"average_start_timing"`

	FirstPlaceRateAllPlace      float64 `db:"first_place_rate_all_place" json:"first_place_rate_all_place"`
	SecondPlaceRateAllPlace     float64 `db:"second_place_rate_all_place" json:"second_place_rate_all_place"`
	ThirdPlaceRateAllPlace      float64 `db:"third_place_rate_all_place" json:"third_place_rate_all_place"`
	FirstPlaceRateCurrentPlace  float64 `db:"first_place_rate_current_place" json:"first_place_rate_current_place"`
	SecondPlaceRateCurrentPlace float64 `db:"second_place_rate_current_place" json:"second_place_rate_current_place"`
	ThirdPlaceRateCurrentPlace  float64 `db:"third_place_rate_current_place" json:"third_place_rate_current_place"`

	MotorID              int     `db:"motor_id" json:"motor_id"`
	SecondPlaceRateMotor float64 `db:"second_place_rate_motor" json:"second_place_rate_motor"`
	ThirdPlaceRateMotor  float64 `db:"third_place_rate_motor" json:"third_place_rate_motor"`
	BoatID               int     `db:"boat_id" json:"boat_id"`
	SecondPlaceRateBoat  float64 `db:"second_place_rate_boat" json:"second_place_rate_boat"`
	ThirdPlaceRateBoat   float64 `db:"third_place_rate_boat" json:"third_place_rate_boat"`
}

// BracketRunResult is one of a racer's recent runs shown next to the program.
// BracketNumberRun is the lane the racer held in that earlier race.
type BracketRunResult struct {
	RaceID           string  `db:"race_id" json:"race_id" validate:"required"`
	BracketNumber    int     `db:"bracket_number" json:"bracket_number" validate:"gte=1,lte=6"`
	RunNumber        int     `db:"run_number" json:"run_number"`
	RaceRound        int     `db:"race_round" json:"race_round"`
	StartTiming      float64 `db:"start_timing" json:"start_timing"`
	Result           int     `db:"result" json:"result"`
	ApproachCourse   *int    `db:"approach_course" json:"approach_course"`
	BracketNumberRun int     `db:"bracket_number_run" json:"bracket_number_run"`
}
