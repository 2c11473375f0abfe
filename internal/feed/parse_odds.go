package feed

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/yourusername/boatrace-vote/internal/models"
)

var oddsRangePattern = regexp.MustCompile(`^([\.0-9]+)-([\.0-9]+)$`)

// ParseOdds reads the fixed odds of one combination. A page without an odds
// field belongs to a cancelled race and yields no entity and no error.
func ParseOdds(rec Record) (*models.RaceOdds, error) {
	if !rec.Has("odds") {
		return nil, nil
	}

	f := newFieldReader(rec)

	key, page, err := OddsKey(f.get("url"))
	if err != nil {
		return nil, err
	}
	betType, ok := oddsPageBetType(page)
	if !ok {
		return nil, fieldErr("url", rec.URL(), ErrUnknownToken)
	}
	spec, _ := betType.Spec()

	o := &models.RaceOdds{RaceID: key.ID(), BetType: betType}

	var c models.Combination
	for i := 0; i < spec.Arity; i++ {
		c[i] = f.int("bracket_number_" + strconv.Itoa(i+1))
	}
	if f.err() == nil {
		if err := spec.Validate(c); err != nil {
			f.fail(invalidCombination("bracket_number", spec.Format(c), err))
		}
	}
	o.Combination = spec.Canonical(c)

	v := normalize(f.get("odds"))
	switch {
	case strings.TrimSpace(f.get("odds")) == oddsScratched:
		// boat withdrawn
	case spec.OddsArity == 1:
		x := f.parseFloat("odds", v)
		o.Odds1 = &x
	default:
		// "2.6-3.4"
		m := oddsRangePattern.FindStringSubmatch(v)
		if m == nil {
			f.fail(fieldErr("odds", v, ErrMalformedField))
			break
		}
		lo := f.parseFloat("odds", m[1])
		hi := f.parseFloat("odds", m[2])
		o.Odds1, o.Odds2 = &lo, &hi
	}

	if err := f.err(); err != nil {
		return nil, err
	}
	return o, nil
}
