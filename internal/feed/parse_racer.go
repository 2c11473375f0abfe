package feed

import (
	"regexp"
	"strings"
	"time"

	"github.com/yourusername/boatrace-vote/internal/models"
)

var racerIDPattern = regexp.MustCompile(`([0-9]{4})`)

// ParseRacerProfile reads a racer's profile page. A page without racer_id is
// an unknown racer and yields no entity and no error.
func ParseRacerProfile(rec Record) (*models.RacerProfile, error) {
	if !rec.Has("racer_id") {
		return nil, nil
	}

	f := newFieldReader(rec)

	p := &models.RacerProfile{
		Name:       f.text("name"),
		NameKana:   f.text("name_kana"),
		BelongTo:   f.text("belong_to"),
		BirthPlace: f.text("birth_place"),
	}

	if v, ok := f.value("racer_id"); ok {
		m := racerIDPattern.FindStringSubmatch(normalize(v))
		if m == nil {
			f.fail(fieldErr("racer_id", v, ErrPatternMismatch))
		} else {
			p.RacerID = m[1]
		}
	}

	// "1989/11/13"
	if v, ok := f.value("birth_day"); ok {
		birthDay, err := time.ParseInLocation("2006/01/02", normalize(v), JST)
		if err != nil {
			f.fail(fieldErr("birth_day", v, ErrMalformedField))
		}
		p.BirthDay = birthDay
	}

	if v, ok := f.value("height"); ok {
		n, err := parseSuffixedInt("height", v, "cm")
		f.fail(err)
		p.Height = n
	}
	if v, ok := f.value("weight"); ok {
		n, err := parseSuffixedInt("weight", v, "kg")
		f.fail(err)
		p.Weight = n
	}
	if v, ok := f.value("debut_period"); ok {
		n, err := parseSuffixedInt("debut_period", v, "期")
		f.fail(err)
		p.DebutPeriod = n
	}

	if v, ok := f.value("blood_type"); ok {
		bt, known := bloodTypeTokens[normalize(v)]
		if !known {
			f.fail(fieldErr("blood_type", v, ErrUnknownToken))
		}
		p.BloodType = bt
	}

	// "B1級"
	if v, ok := f.value("racer_class"); ok {
		class, known := racerClassTokens[strings.TrimSuffix(normalize(v), "級")]
		if !known {
			f.fail(fieldErr("racer_class", v, ErrUnknownToken))
		}
		p.RacerClass = class
	}

	if err := f.err(); err != nil {
		return nil, err
	}
	return p, nil
}
