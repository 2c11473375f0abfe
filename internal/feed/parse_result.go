package feed

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/yourusername/boatrace-vote/internal/models"
)

var (
	resultTimePattern = regexp.MustCompile(`([0-9]+)'([0-9]+)"([0-9]+)`)
	startTimePattern  = regexp.MustCompile(`(\.[0-9]{2})(.*)`)
)

// ParseFinishResult reads one boat's finish (#result)
func ParseFinishResult(rec Record) (*models.RaceFinishResult, error) {
	f := newFieldReader(rec)

	key, err := RaceResultKey(f.get("url"))
	if err != nil {
		return nil, err
	}

	r := &models.RaceFinishResult{RaceID: key.ID()}
	r.BracketNumber = f.int("bracket_number")

	if v, ok := f.value("result"); ok {
		code, err := parseFinishCode("result", v)
		f.fail(err)
		r.Result = code
	}

	// 1'51"0 is one minute 51.0 seconds
	if v, ok := f.value("result_time"); ok {
		if m := resultTimePattern.FindStringSubmatch(normalize(v)); m != nil {
			minutes, _ := strconv.Atoi(m[1])
			seconds, _ := strconv.Atoi(m[2])
			tenths, _ := strconv.Atoi(m[3])
			t := float64(minutes)*60 + float64(seconds) + float64(tenths)/10
			r.ResultTime = &t
		} else if !isBlank(v) {
			f.fail(fieldErr("result_time", v, ErrMalformedField))
		}
	}

	if err := f.err(); err != nil {
		return nil, err
	}
	return r, nil
}

// ParseStartResult reads one boat's start timing (#start). A late start "L"
// has neither timing nor maneuver.
func ParseStartResult(rec Record) (*models.RaceStartResult, error) {
	f := newFieldReader(rec)

	key, err := RaceResultKey(f.get("url"))
	if err != nil {
		return nil, err
	}

	r := &models.RaceStartResult{RaceID: key.ID()}
	r.BracketNumber = f.int("bracket_number")

	// ".12   まくり"
	if v, ok := f.value("start_time"); ok {
		if m := startTimePattern.FindStringSubmatch(v); m != nil {
			st := f.parseFloat("start_time", "0"+m[1])
			r.ResultStartTime = &st
			if kimarite := strings.TrimSpace(m[2]); kimarite != "" {
				r.Kimarite = &kimarite
			}
		} else if normalize(v) != "L" {
			f.fail(fieldErr("start_time", v, ErrMalformedField))
		}
	}

	if err := f.err(); err != nil {
		return nil, err
	}
	return r, nil
}
