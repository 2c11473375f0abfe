package feed

import (
	"regexp"
	"strings"

	"github.com/yourusername/boatrace-vote/internal/models"
)

var boatColorPattern = regexp.MustCompile(`is-boatColor([0-9])`)

// ParseBracket reads one racer line of the race program (#bracket)
func ParseBracket(rec Record) (*models.BracketEntry, error) {
	f := newFieldReader(rec)

	key, err := RaceListKey(f.get("url"))
	if err != nil {
		return nil, err
	}

	e := &models.BracketEntry{RaceID: key.ID()}
	e.BracketNumber = f.int("bracket_number")

	// "4530/B2"
	if parts := f.split("racer_data1", "/", 2); parts != nil {
		e.RacerID = strings.TrimSpace(parts[0])
		class, ok := racerClassTokens[strings.TrimSpace(parts[1])]
		if !ok {
			f.fail(fieldErr("racer_data1", parts[1], ErrUnknownToken))
		}
		e.RacerClass = class
	}

	// "福岡/福岡/34歳/44.5kg"
	if parts := f.split("racer_data2", "/", 4); parts != nil {
		e.BelongTo = strings.TrimSpace(parts[0])
		e.BirthPlace = strings.TrimSpace(parts[1])
		e.Age = f.parseInt("racer_data2", strings.TrimSuffix(strings.TrimSpace(parts[2]), "歳"))
		e.Weight = f.optionalFloat("racer_data2", strings.TrimSuffix(strings.TrimSpace(parts[3]), "kg"))
	}

	// "F0/L0/0.16"
	if parts := f.split("racer_data3", "/", 3); parts != nil {
		e.FlyingStartCount = f.parseInt("racer_data3", strings.TrimPrefix(strings.TrimSpace(parts[0]), "F"))
		e.LateStartCount = f.parseInt("racer_data3", strings.TrimPrefix(strings.TrimSpace(parts[1]), "L"))
		e.AverageStartTiming = f.optionalFloat("racer_data3", parts[2])
	}

	// "7.06/53.62/75.36"
	if rates := f.floats("racer_rate_all_place", 3); rates != nil {
		e.FirstPlaceRateAllPlace, e.SecondPlaceRateAllPlace, e.ThirdPlaceRateAllPlace = rates[0], rates[1], rates[2]
	}
	if rates := f.floats("racer_rate_current_place", 3); rates != nil {
		e.FirstPlaceRateCurrentPlace, e.SecondPlaceRateCurrentPlace, e.ThirdPlaceRateCurrentPlace = rates[0], rates[1], rates[2]
	}

	// "20/35.35/49.49"
	if parts := f.split("motor_rate", "/", 3); parts != nil {
		e.MotorID = f.parseInt("motor_rate", parts[0])
		e.SecondPlaceRateMotor = f.parseFloat("motor_rate", parts[1])
		e.ThirdPlaceRateMotor = f.parseFloat("motor_rate", parts[2])
	}
	if parts := f.split("boat_rate", "/", 3); parts != nil {
		e.BoatID = f.parseInt("boat_rate", parts[0])
		e.SecondPlaceRateBoat = f.parseFloat("boat_rate", parts[1])
		e.ThirdPlaceRateBoat = f.parseFloat("boat_rate", parts[2])
	}

	if err := f.err(); err != nil {
		return nil, err
	}
	return e, nil
}

// ParseBracketResult reads one of a racer's recent runs (#bracket_result)
func ParseBracketResult(rec Record) (*models.BracketRunResult, error) {
	f := newFieldReader(rec)

	key, err := RaceListKey(f.get("url"))
	if err != nil {
		return nil, err
	}

	r := &models.BracketRunResult{RaceID: key.ID()}
	r.BracketNumber = f.int("bracket_number")
	r.RunNumber = f.int("run_number")
	r.RaceRound = f.int("race_round")

	// ".25"
	r.StartTiming = f.parseFloat("start_timing", "0"+normalize(f.get("start_timing")))

	if v, ok := f.value("result"); ok {
		code, err := parseFinishCode("result", v)
		f.fail(err)
		r.Result = code
	}

	if v, ok := f.value("approach_course"); ok {
		r.ApproachCourse = f.optionalInt("approach_course", v)
	}

	// " is-boatColor5"
	if v, ok := f.value("bracket_color"); ok {
		m := boatColorPattern.FindStringSubmatch(v)
		if m == nil {
			f.fail(fieldErr("bracket_color", v, ErrPatternMismatch))
		} else {
			r.BracketNumberRun = f.parseInt("bracket_color", m[1])
		}
	}

	if err := f.err(); err != nil {
		return nil, err
	}
	return r, nil
}
