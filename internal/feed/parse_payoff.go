package feed

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yourusername/boatrace-vote/internal/models"
)

// ParsePayoff reads one line of the official payoff table (#payoff). The
// printed amount is yen per 100-yen ticket; Payoff is stored per unit stake.
func ParsePayoff(rec Record) (*models.RacePayoff, error) {
	f := newFieldReader(rec)

	key, err := RaceResultKey(f.get("url"))
	if err != nil {
		return nil, err
	}

	p := &models.RacePayoff{RaceID: key.ID()}

	label := f.text("bet_type")
	betType, ok := models.BetTypeFromLabel(label)
	if !ok {
		f.fail(fieldErr("bet_type", label, ErrUnknownToken))
		return nil, f.err()
	}
	p.BetType = betType
	spec, _ := betType.Spec()

	if v, ok := f.value("bracket_number"); ok {
		switch strings.TrimSpace(v) {
		case payoffNotEstablished, payoffSpecial:
			// no winning combination
		default:
			c, err := parseCombination("bracket_number", v, spec)
			f.fail(err)
			p.Combination = c
		}
	}

	if v, ok := f.lookup("favorite"); ok {
		p.Favorite = f.optionalInt("favorite", v)
	}

	// "¥1,450"
	if v, ok := f.value("payoff"); ok {
		amount, err := parseYen("payoff", v)
		f.fail(err)
		p.Payoff = amount
	}

	if err := f.err(); err != nil {
		return nil, err
	}
	return p, nil
}

// parseCombination reads "3", "2-3", "3=4", "2-3-4" or "2=3=4" according to
// the bet type's separator and arity.
func parseCombination(field, value string, spec models.BetTypeSpec) (models.Combination, error) {
	var c models.Combination
	v := normalize(value)

	parts := []string{v}
	if spec.Arity > 1 {
		var err error
		parts, err = splitExact(field, v, spec.Separator, spec.Arity)
		if err != nil {
			return c, err
		}
	}
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return c, fieldErr(field, value, ErrMalformedField)
		}
		c[i] = n
	}
	if err := spec.Validate(c); err != nil {
		return c, invalidCombination(field, value, err)
	}
	return spec.Canonical(c), nil
}

func parseYen(field, value string) (decimal.NullDecimal, error) {
	v := normalize(value)
	if v == "" {
		return decimal.NullDecimal{}, nil
	}
	v = strings.NewReplacer("¥", "", "\\", "", ",", "").Replace(v)
	yen, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return decimal.NullDecimal{}, fieldErr(field, value, ErrMalformedField)
	}
	return decimal.NewNullDecimal(decimal.New(yen, -2)), nil
}
