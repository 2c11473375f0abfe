package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/boatrace-vote/internal/database"
	"github.com/yourusername/boatrace-vote/internal/models"
)

const (
	upsertVoteResult = `
		INSERT INTO vote_result (
			id, race_id, bet_type, bracket_number_1, bracket_number_2, bracket_number_3,
			probability, odds, expected_return, vote_amount, voted_at,
			odds_fix, payoff, payoff_amount, settled_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			odds_fix = EXCLUDED.odds_fix,
			payoff = EXCLUDED.payoff,
			payoff_amount = EXCLUDED.payoff_amount,
			settled_at = EXCLUDED.settled_at`

	selectVoteResult = `
		SELECT id, race_id, bet_type, bracket_number_1, bracket_number_2, bracket_number_3,
		       probability, odds, expected_return, vote_amount, voted_at,
		       odds_fix, payoff, payoff_amount, settled_at
		FROM vote_result`

	errScanVoteResult = "failed to scan vote result: %w"
)

// PostgresVoteResultRepository implements VoteResultRepository for PostgreSQL
type PostgresVoteResultRepository struct {
	db *database.DB
}

// NewPostgresVoteResultRepository creates a new vote result repository
func NewPostgresVoteResultRepository(db *database.DB) VoteResultRepository {
	return &PostgresVoteResultRepository{db: db}
}

// UpsertBatch stores vote rows in one batch
func (r *PostgresVoteResultRepository) UpsertBatch(ctx context.Context, votes []models.VoteRecord) (int64, error) {
	if len(votes) == 0 {
		return 0, nil
	}

	batch := buildVoteBatch(votes)
	results := r.db.Conn(ctx).SendBatch(ctx, batch)
	defer results.Close()

	var affected int64
	for range votes {
		tag, err := results.Exec()
		if err != nil {
			return affected, fmt.Errorf("failed to upsert vote result: %w", err)
		}
		affected += tag.RowsAffected()
	}
	return affected, nil
}

func buildVoteBatch(votes []models.VoteRecord) *pgx.Batch {
	b := &pgx.Batch{}
	for _, v := range votes {
		c := v.Combination
		b.Queue(upsertVoteResult,
			v.ID, v.RaceID, int(v.BetType), c[0], c[1], c[2],
			v.Probability, v.Odds, v.ExpectedReturn, v.VoteAmount, v.VotedAt,
			v.OddsFix, v.Payoff, v.PayoffAmount, v.SettledAt,
		)
	}
	return b
}

// GetByRaceID retrieves the archived vote rows of a race
func (r *PostgresVoteResultRepository) GetByRaceID(ctx context.Context, raceID string) ([]models.VoteRecord, error) {
	rows, err := r.db.Conn(ctx).Query(ctx,
		selectVoteResult+" WHERE race_id = $1 ORDER BY bet_type, bracket_number_1, bracket_number_2, bracket_number_3",
		raceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query vote results by race: %w", err)
	}
	return scanVoteResults(rows)
}

// GetSettled retrieves vote rows settled within [start, end)
func (r *PostgresVoteResultRepository) GetSettled(ctx context.Context, start, end time.Time) ([]models.VoteRecord, error) {
	rows, err := r.db.Conn(ctx).Query(ctx,
		selectVoteResult+" WHERE settled_at >= $1 AND settled_at < $2 ORDER BY settled_at, race_id",
		start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query settled vote results: %w", err)
	}
	return scanVoteResults(rows)
}

func scanVoteResults(rows pgx.Rows) ([]models.VoteRecord, error) {
	defer rows.Close()

	var votes []models.VoteRecord
	for rows.Next() {
		var v models.VoteRecord
		var betType int
		err := rows.Scan(
			&v.ID, &v.RaceID, &betType, &v.Combination[0], &v.Combination[1], &v.Combination[2],
			&v.Probability, &v.Odds, &v.ExpectedReturn, &v.VoteAmount, &v.VotedAt,
			&v.OddsFix, &v.Payoff, &v.PayoffAmount, &v.SettledAt,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanVoteResult, err)
		}
		v.BetType = models.BetType(betType)
		votes = append(votes, v)
	}
	return votes, rows.Err()
}
