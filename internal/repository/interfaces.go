package repository

import (
	"context"
	"time"

	"github.com/yourusername/boatrace-vote/internal/feed"
	"github.com/yourusername/boatrace-vote/internal/models"
)

// EntityRepository archives parsed feed tables
type EntityRepository interface {
	// SaveTables inserts every row of every table, ignoring rows whose
	// natural key is already stored, and returns rows inserted per table.
	SaveTables(ctx context.Context, tables *feed.Tables) (map[string]int64, error)
	GetRaceInfo(ctx context.Context, raceID string) (*models.RaceInfo, error)
	GetRaceInfosByDateRange(ctx context.Context, start, end time.Time) ([]models.RaceInfo, error)
	GetOddsByRaceID(ctx context.Context, raceID string) ([]models.RaceOdds, error)
	GetPayoffsByRaceID(ctx context.Context, raceID string) ([]models.RacePayoff, error)
}

// VoteResultRepository archives settled vote rows
type VoteResultRepository interface {
	// UpsertBatch stores the rows, replacing settlement fields of rows
	// already archived under the same id.
	UpsertBatch(ctx context.Context, votes []models.VoteRecord) (int64, error)
	GetByRaceID(ctx context.Context, raceID string) ([]models.VoteRecord, error)
	GetSettled(ctx context.Context, start, end time.Time) ([]models.VoteRecord, error)
}
