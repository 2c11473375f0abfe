package settlement

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/yourusername/boatrace-vote/internal/models"
)

func TestSummarize(t *testing.T) {
	hit := vote(models.BetTypeWin, models.Combination{3}, 2)
	hit.PayoffAmount = decimal.RequireFromString("29")
	miss := vote(models.BetTypeWin, models.Combination{5}, 1)

	summary := Summarize(map[string][]models.VoteRecord{
		raceID:           {hit, miss},
		"20200101_24_11": {vote(models.BetTypeTrio, models.Combination{1, 2, 3}, 3)},
		"20200101_24_10": nil,
	})

	assert.Equal(t, 2, summary.Races)
	assert.Equal(t, 3, summary.Votes)
	assert.Equal(t, 1, summary.Hits)
	assert.True(t, decimal.NewFromInt(6).Equal(summary.Cost))
	assert.True(t, decimal.NewFromInt(29).Equal(summary.Return))
	assert.True(t, decimal.NewFromInt(23).Equal(summary.Profit))
	assert.InDelta(t, 29.0/6.0, summary.ReturnRate(), 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)

	assert.Zero(t, summary.Votes)
	assert.True(t, summary.Profit.IsZero())
	assert.Zero(t, summary.HitRate())
}
