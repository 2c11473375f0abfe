package settlement

import (
	"github.com/shopspring/decimal"
	"github.com/yourusername/boatrace-vote/internal/models"
)

// Summarize aggregates settled vote tables keyed by race. Unsettled rows
// count toward cost but not return.
func Summarize(tables map[string][]models.VoteRecord) models.VoteSummary {
	summary := models.VoteSummary{
		Cost:   decimal.Zero,
		Return: decimal.Zero,
	}
	for _, rows := range tables {
		if len(rows) == 0 {
			continue
		}
		summary.Races++
		for i := range rows {
			v := &rows[i]
			if v.VoteAmount == 0 {
				continue
			}
			summary.Votes++
			summary.Cost = summary.Cost.Add(decimal.NewFromInt(int64(v.VoteAmount)))
			summary.Return = summary.Return.Add(v.PayoffAmount)
			if v.IsHit() {
				summary.Hits++
			}
		}
	}
	summary.Profit = summary.Return.Sub(summary.Cost)
	return summary
}
