package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBetTypeSpecArity(t *testing.T) {
	tests := []struct {
		betType   BetType
		arity     int
		oddsArity int
		ordered   bool
	}{
		{BetTypeWin, 1, 1, true},
		{BetTypePlace, 1, 2, true},
		{BetTypeQuinellaPlace, 2, 2, false},
		{BetTypeExacta, 2, 1, true},
		{BetTypeQuinella, 2, 1, false},
		{BetTypeTrifecta, 3, 1, true},
		{BetTypeTrio, 3, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.betType.String(), func(t *testing.T) {
			spec, err := tt.betType.Spec()
			require.NoError(t, err)
			assert.Equal(t, tt.arity, spec.Arity)
			assert.Equal(t, tt.oddsArity, spec.OddsArity)
			assert.Equal(t, tt.ordered, spec.Ordered)
		})
	}
	assert.Len(t, AllBetTypes(), 7)
}

func TestBetTypeUnknown(t *testing.T) {
	_, err := BetType(8).Spec()
	assert.ErrorIs(t, err, ErrUnknownBetType)
	assert.False(t, BetType(0).Valid())
	assert.Equal(t, "unknown(9)", BetType(9).String())
}

func TestBetTypeFromLabel(t *testing.T) {
	for _, bt := range AllBetTypes() {
		spec, _ := bt.Spec()
		got, ok := BetTypeFromLabel(spec.Label)
		require.True(t, ok, spec.Label)
		assert.Equal(t, bt, got)
	}

	_, ok := BetTypeFromLabel("4連単")
	assert.False(t, ok)
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		name    string
		betType BetType
		in      Combination
		want    Combination
	}{
		{"win drops extra slots", BetTypeWin, Combination{3, 4, 5}, Combination{3, 0, 0}},
		{"exacta keeps order", BetTypeExacta, Combination{4, 2, 0}, Combination{4, 2, 0}},
		{"quinella sorts", BetTypeQuinella, Combination{4, 2, 0}, Combination{2, 4, 0}},
		{"quinella place sorts", BetTypeQuinellaPlace, Combination{6, 1, 0}, Combination{1, 6, 0}},
		{"trifecta keeps order", BetTypeTrifecta, Combination{3, 1, 2}, Combination{3, 1, 2}},
		{"trio sorts", BetTypeTrio, Combination{3, 1, 2}, Combination{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := tt.betType.Spec()
			require.NoError(t, err)
			assert.Equal(t, tt.want, spec.Canonical(tt.in))
		})
	}
}

func TestFormat(t *testing.T) {
	trifecta, _ := BetTypeTrifecta.Spec()
	trio, _ := BetTypeTrio.Spec()
	win, _ := BetTypeWin.Spec()

	assert.Equal(t, "2-3-4", trifecta.Format(Combination{2, 3, 4}))
	assert.Equal(t, "2=3=4", trio.Format(Combination{2, 3, 4}))
	assert.Equal(t, "3", win.Format(Combination{3}))
}

func TestValidateCombination(t *testing.T) {
	exacta, _ := BetTypeExacta.Spec()

	assert.NoError(t, exacta.Validate(Combination{1, 2, 0}))
	assert.ErrorIs(t, exacta.Validate(Combination{1, 2, 3}), ErrInvalidCombination)
	assert.ErrorIs(t, exacta.Validate(Combination{1, 1, 0}), ErrInvalidCombination)
	assert.ErrorIs(t, exacta.Validate(Combination{1, 7, 0}), ErrInvalidCombination)
	assert.ErrorIs(t, exacta.Validate(Combination{1, 0, 0}), ErrInvalidCombination)
}
