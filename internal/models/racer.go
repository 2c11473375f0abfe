package models

import (
	"time"
)

// BloodType codes
const (
	BloodTypeA  = 1
	BloodTypeB  = 2
	BloodTypeO  = 3
	BloodTypeAB = 4
)

// RacerProfile represents a registered racer
type RacerProfile struct {
	RacerID     string     `db:"racer_id" json:"racer_id" validate:"required,len=4,numeric"`
	Name        string     `db:"name" json:"name" validate:"required"`
	NameKana    string     `db:"name_kana" json:"name_kana"`
	BirthDay    time.Time  `db:"birth_day" json:"birth_day"`
	Height      int        `db:"height" json:"height"`
	Weight      int        `db:"weight" json:"weight"`
	BloodType   int        `db:"blood_type" json:"blood_type" validate:"gte=1,lte=4"`
	BelongTo    string     `db:"belong_to" json:"belong_to"`
	BirthPlace  string     `db:"birth_place" json:"birth_place"`
	DebutPeriod int        `db:"debut_period" json:"debut_period"`
	RacerClass  RacerClass `db:"racer_class_type" json:"racer_class_type" validate:"gte=1,lte=4"`
}
