package feed

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/yourusername/boatrace-vote/internal/models"
)

var courseLengthPattern = regexp.MustCompile(`^(.*?)([0-9０-９]+)[mｍ]`)

// ParseRaceInfo reads the schedule line of a race (#info)
func ParseRaceInfo(rec Record) (*models.RaceInfo, error) {
	f := newFieldReader(rec)

	key, err := RaceListKey(f.get("url"))
	if err != nil {
		return nil, err
	}

	info := &models.RaceInfo{
		RaceID:    key.ID(),
		PlaceID:   key.PlaceID,
		RaceRound: key.Round,
	}

	// "20:38" on the race day, JST
	if v, ok := f.value("start_time"); ok {
		start, err := time.ParseInLocation("20060102 15:04", key.Date+" "+normalize(v), JST)
		if err != nil {
			f.fail(fieldErr("start_time", v, ErrMalformedField))
		}
		info.StartDatetime = start
	}

	// "優勝戦　　　　1800m"
	if v, ok := f.value("course_length"); ok {
		m := courseLengthPattern.FindStringSubmatch(strings.TrimSpace(v))
		if m == nil {
			f.fail(fieldErr("course_length", v, ErrPatternMismatch))
		} else {
			info.RaceSubname = strings.TrimSpace(m[1])
			info.CourseLength = f.parseInt("course_length", m[2])
		}
	}

	if err := f.err(); err != nil {
		return nil, err
	}
	return info, nil
}

// ParseRaceIndex reads a meeting header. The meeting id is the earliest of
// the day links the page lists.
func ParseRaceIndex(rec Record) (*models.RaceIndex, error) {
	f := newFieldReader(rec)

	idx := &models.RaceIndex{
		PlaceID:   f.text("place_id"),
		PlaceName: f.text("place_name"),
		RaceName:  f.text("race_name"),
	}

	urls := rec["race_index_urls"]
	if len(urls) == 0 {
		f.fail(fieldErr("race_index_urls", "", ErrMissingField))
	}
	days := make([]string, 0, len(urls))
	for _, u := range urls {
		m := raceIndexURLPattern.FindStringSubmatch(u)
		if m == nil {
			f.fail(fieldErr("race_index_urls", u, ErrPatternMismatch))
			continue
		}
		days = append(days, m[2]+"_"+m[1])
	}
	sort.Strings(days)
	if len(days) > 0 {
		idx.RaceIndexID = days[0]
		idx.Days = days
	}

	if v, ok := f.value("race_grade"); ok {
		found := false
		for _, g := range raceGradeTokens {
			if strings.Contains(v, g.token) {
				idx.RaceGrade = g.grade
				found = true
				break
			}
		}
		if !found {
			f.fail(fieldErr("race_grade", v, ErrUnknownToken))
		}
	}

	if err := f.err(); err != nil {
		return nil, err
	}
	return idx, nil
}
