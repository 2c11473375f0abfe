package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// BetType identifies one of the seven ticket kinds sold per race
type BetType int

const (
	BetTypeWin           BetType = 1 // 単勝
	BetTypePlace         BetType = 2 // 複勝
	BetTypeQuinellaPlace BetType = 3 // 拡連複
	BetTypeExacta        BetType = 4 // 2連単
	BetTypeQuinella      BetType = 5 // 2連複
	BetTypeTrifecta      BetType = 6 // 3連単
	BetTypeTrio          BetType = 7 // 3連複
)

// MaxBrackets is the widest combination any bet type uses
const MaxBrackets = 3

// BetTypeSpec describes the key schema of a bet type. Settlement and vote
// selection are driven entirely by this descriptor.
type BetTypeSpec struct {
	Type      BetType
	Name      string
	Label     string
	Arity     int  // bracket numbers in the join key
	OddsArity int  // odds values published per combination
	Ordered   bool // finishing order matters
	Separator string
}

var betTypeSpecs = map[BetType]BetTypeSpec{
	BetTypeWin:           {Type: BetTypeWin, Name: "win", Label: "単勝", Arity: 1, OddsArity: 1, Ordered: true},
	BetTypePlace:         {Type: BetTypePlace, Name: "place", Label: "複勝", Arity: 1, OddsArity: 2, Ordered: true},
	BetTypeQuinellaPlace: {Type: BetTypeQuinellaPlace, Name: "quinella_place", Label: "拡連複", Arity: 2, OddsArity: 2, Separator: "="},
	BetTypeExacta:        {Type: BetTypeExacta, Name: "exacta", Label: "2連単", Arity: 2, OddsArity: 1, Ordered: true, Separator: "-"},
	BetTypeQuinella:      {Type: BetTypeQuinella, Name: "quinella", Label: "2連複", Arity: 2, OddsArity: 1, Separator: "="},
	BetTypeTrifecta:      {Type: BetTypeTrifecta, Name: "trifecta", Label: "3連単", Arity: 3, OddsArity: 1, Ordered: true, Separator: "-"},
	BetTypeTrio:          {Type: BetTypeTrio, Name: "trio", Label: "3連複", Arity: 3, OddsArity: 1, Separator: "="},
}

// AllBetTypes lists the bet types in code order
func AllBetTypes() []BetType {
	return []BetType{
		BetTypeWin, BetTypePlace, BetTypeQuinellaPlace, BetTypeExacta,
		BetTypeQuinella, BetTypeTrifecta, BetTypeTrio,
	}
}

// Valid reports whether b is one of the seven known bet types
func (b BetType) Valid() bool {
	_, ok := betTypeSpecs[b]
	return ok
}

// Spec returns the descriptor for b
func (b BetType) Spec() (BetTypeSpec, error) {
	spec, ok := betTypeSpecs[b]
	if !ok {
		return BetTypeSpec{}, fmt.Errorf("%w: %d", ErrUnknownBetType, int(b))
	}
	return spec, nil
}

// String returns the bet type name
func (b BetType) String() string {
	if spec, ok := betTypeSpecs[b]; ok {
		return spec.Name
	}
	return "unknown(" + strconv.Itoa(int(b)) + ")"
}

// BetTypeFromLabel maps a payoff table label such as "3連単" to its bet type
func BetTypeFromLabel(label string) (BetType, bool) {
	for _, spec := range betTypeSpecs {
		if spec.Label == label {
			return spec.Type, true
		}
	}
	return 0, false
}

// Combination holds up to three bracket numbers. Slots beyond the bet type's
// arity are zero.
type Combination [MaxBrackets]int

// IsEmpty reports whether no bracket number is set
func (c Combination) IsEmpty() bool {
	return c == Combination{}
}

// Project keeps the first arity slots and clears the rest
func (c Combination) Project(arity int) Combination {
	var out Combination
	for i := 0; i < arity && i < MaxBrackets; i++ {
		out[i] = c[i]
	}
	return out
}

// Canonical returns the combination as stored in join keys: projected to the
// bet type's arity, and sorted ascending when order does not matter.
func (s BetTypeSpec) Canonical(c Combination) Combination {
	out := c.Project(s.Arity)
	if !s.Ordered {
		part := out[:s.Arity]
		sort.Ints(part)
	}
	return out
}

// Format renders a combination the way the official pages print it
func (s BetTypeSpec) Format(c Combination) string {
	parts := make([]string, 0, s.Arity)
	for i := 0; i < s.Arity; i++ {
		parts = append(parts, strconv.Itoa(c[i]))
	}
	return strings.Join(parts, s.Separator)
}

// Validate checks that the combination fills exactly the bet type's arity
// with bracket numbers 1..6, without repeats.
func (s BetTypeSpec) Validate(c Combination) error {
	seen := make(map[int]bool, s.Arity)
	for i := 0; i < MaxBrackets; i++ {
		if i >= s.Arity {
			if c[i] != 0 {
				return fmt.Errorf("%w: %s takes %d bracket numbers, got %v", ErrInvalidCombination, s.Name, s.Arity, c)
			}
			continue
		}
		if c[i] < 1 || c[i] > 6 {
			return fmt.Errorf("%w: bracket number %d out of range", ErrInvalidCombination, c[i])
		}
		if seen[c[i]] {
			return fmt.Errorf("%w: bracket number %d repeated", ErrInvalidCombination, c[i])
		}
		seen[c[i]] = true
	}
	return nil
}
