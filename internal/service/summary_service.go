package service

import (
	"context"

	"github.com/yourusername/boatrace-vote/internal/models"
	"github.com/yourusername/boatrace-vote/internal/settlement"
	"github.com/yourusername/boatrace-vote/internal/storage"
)

// SummaryService aggregates every stored vote table
type SummaryService struct {
	tables *storage.TableStore
}

// NewSummaryService creates a summary service
func NewSummaryService(tables *storage.TableStore) *SummaryService {
	return &SummaryService{tables: tables}
}

// Summarize reports votes, hits, cost, return and profit over all races
func (s *SummaryService) Summarize(ctx context.Context) (models.VoteSummary, error) {
	votes, err := s.tables.ReadAllVotes(ctx)
	if err != nil {
		return models.VoteSummary{}, err
	}
	return settlement.Summarize(votes), nil
}
