package models

import (
	"time"
)

// RaceGrade is the meeting grade printed on the race index page
type RaceGrade int

const (
	RaceGradeIppan RaceGrade = 0
	RaceGradeG3    RaceGrade = 1
	RaceGradeG2    RaceGrade = 2
	RaceGradeG1    RaceGrade = 3
	RaceGradeSG    RaceGrade = 4
)

// RaceIndex represents one meeting at a venue. RaceIndexID is the earliest
// day of the meeting joined with the venue code.
type RaceIndex struct {
	RaceIndexID string    `db:"race_index_id" json:"race_index_id" validate:"required"`
	PlaceID     string    `db:"place_id" json:"place_id" validate:"required,len=2"`
	PlaceName   string    `db:"place_name" json:"place_name"`
	RaceName    string    `db:"race_name" json:"race_name"`
	RaceGrade   RaceGrade `db:"race_grade_type" json:"race_grade_type" validate:"gte=0,lte=4"`
	Days        []string  `db:"-" json:"days"`
}

// RaceInfo represents the schedule line of a single race
type RaceInfo struct {
	RaceID        string    `db:"race_id" json:"race_id" validate:"required"`
	PlaceID       string    `db:"place_id" json:"place_id" validate:"required,len=2"`
	RaceRound     int       `db:"race_round" json:"race_round" validate:"gte=1,lte=12"`
	StartDatetime time.Time `db:"start_datetime" json:"start_datetime" validate:"required"`
	RaceSubname   string    `db:"race_subname" json:"race_subname"`
	CourseLength  int       `db:"course_length" json:"course_length" validate:"gt=0"`
}

// TimeToStart returns the duration from now until the scheduled start
func (r *RaceInfo) TimeToStart(now time.Time) time.Duration {
	return r.StartDatetime.Sub(now)
}
