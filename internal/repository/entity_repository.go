package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/boatrace-vote/internal/database"
	"github.com/yourusername/boatrace-vote/internal/feed"
	"github.com/yourusername/boatrace-vote/internal/models"
)

const (
	insertRaceIndex = `
		INSERT INTO race_index (race_index_id, place_id, place_name, race_name, race_grade_type, days)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT DO NOTHING`

	insertBracket = `
		INSERT INTO bracket (
			race_id, bracket_number, racer_id, racer_class_type, belong_to, birth_place, age, weight,
			flying_start_count, late_start_count, average_start_timing,
			first_place_rate_all_place, second_place_rate_all_place, third_place_rate_all_place,
			first_place_rate_current_place, second_place_rate_current_place, third_place_rate_current_place,
			motor_id, second_place_rate_motor, third_place_rate_motor,
			boat_id, second_place_rate_boat, third_place_rate_boat
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
		ON CONFLICT DO NOTHING`

	insertBracketResult = `
		INSERT INTO bracket_result (
			race_id, bracket_number, run_number, race_round, start_timing, result, approach_course, bracket_number_run
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT DO NOTHING`

	insertRaceInfo = `
		INSERT INTO race_info (race_id, place_id, race_round, start_datetime, race_subname, course_length)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT DO NOTHING`

	insertFinishResult = `
		INSERT INTO race_result (race_id, bracket_number, result, result_time)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING`

	insertStartResult = `
		INSERT INTO race_start_result (race_id, bracket_number, result_start_time, kimarite)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING`

	insertPayoff = `
		INSERT INTO race_payoff (race_id, bet_type, bracket_number_1, bracket_number_2, bracket_number_3, payoff, favorite)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT DO NOTHING`

	insertOdds = `
		INSERT INTO race_odds (race_id, bet_type, bracket_number_1, bracket_number_2, bracket_number_3, odds_1, odds_2)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT DO NOTHING`

	insertRacer = `
		INSERT INTO racer (
			racer_id, name, name_kana, birth_day, height, weight, blood_type,
			belong_to, birth_place, debut_period, racer_class_type
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT DO NOTHING`

	selectRaceInfo = `
		SELECT race_id, place_id, race_round, start_datetime, race_subname, course_length
		FROM race_info`

	errScanRaceInfo = "failed to scan race info: %w"
)

// PostgresEntityRepository implements EntityRepository for PostgreSQL
type PostgresEntityRepository struct {
	db *database.DB
}

// NewPostgresEntityRepository creates a new entity repository
func NewPostgresEntityRepository(db *database.DB) EntityRepository {
	return &PostgresEntityRepository{db: db}
}

// SaveTables inserts all tables of a parsed batch in one transaction
func (r *PostgresEntityRepository) SaveTables(ctx context.Context, tables *feed.Tables) (map[string]int64, error) {
	batch, targets := buildEntityBatch(tables)
	inserted := make(map[string]int64)
	if batch.Len() == 0 {
		return inserted, nil
	}

	err := r.db.WithTransaction(ctx, func(txCtx context.Context) error {
		results := r.db.Conn(txCtx).SendBatch(txCtx, batch)
		for _, table := range targets {
			tag, err := results.Exec()
			if err != nil {
				results.Close()
				return fmt.Errorf("failed to insert into %s: %w", table, err)
			}
			inserted[table] += tag.RowsAffected()
		}
		return results.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save feed tables: %w", err)
	}

	return inserted, nil
}

// buildEntityBatch queues one insert per row and returns the target table of
// each queued statement in order
func buildEntityBatch(t *feed.Tables) (*pgx.Batch, []string) {
	b := &pgx.Batch{}
	var targets []string

	queue := func(table, sql string, args ...any) {
		b.Queue(sql, args...)
		targets = append(targets, table)
	}

	for _, r := range t.RaceIndexes {
		days := r.Days
		if days == nil {
			days = []string{}
		}
		queue("race_index", insertRaceIndex, r.RaceIndexID, r.PlaceID, r.PlaceName, r.RaceName, int(r.RaceGrade), days)
	}
	for _, r := range t.Brackets {
		queue("bracket", insertBracket,
			r.RaceID, r.BracketNumber, r.RacerID, int(r.RacerClass), r.BelongTo, r.BirthPlace, r.Age, r.Weight,
			r.FlyingStartCount, r.LateStartCount, r.AverageStartTiming,
			r.FirstPlaceRateAllPlace, r.SecondPlaceRateAllPlace, r.ThirdPlaceRateAllPlace,
			r.FirstPlaceRateCurrentPlace, r.SecondPlaceRateCurrentPlace, r.ThirdPlaceRateCurrentPlace,
			r.MotorID, r.SecondPlaceRateMotor, r.ThirdPlaceRateMotor,
			r.BoatID, r.SecondPlaceRateBoat, r.ThirdPlaceRateBoat,
		)
	}
	for _, r := range t.BracketResults {
		queue("bracket_result", insertBracketResult,
			r.RaceID, r.BracketNumber, r.RunNumber, r.RaceRound, r.StartTiming, r.Result, r.ApproachCourse, r.BracketNumberRun)
	}
	for _, r := range t.RaceInfos {
		queue("race_info", insertRaceInfo, r.RaceID, r.PlaceID, r.RaceRound, r.StartDatetime, r.RaceSubname, r.CourseLength)
	}
	for _, r := range t.FinishResults {
		queue("race_result", insertFinishResult, r.RaceID, r.BracketNumber, r.Result, r.ResultTime)
	}
	for _, r := range t.StartResults {
		queue("race_start_result", insertStartResult, r.RaceID, r.BracketNumber, r.ResultStartTime, r.Kimarite)
	}
	for _, r := range t.Payoffs {
		c := r.Combination
		queue("race_payoff", insertPayoff, r.RaceID, int(r.BetType), c[0], c[1], c[2], r.Payoff, r.Favorite)
	}
	for _, r := range t.Odds {
		c := r.Combination
		queue("race_odds", insertOdds, r.RaceID, int(r.BetType), c[0], c[1], c[2], r.Odds1, r.Odds2)
	}
	for _, r := range t.Racers {
		queue("racer", insertRacer,
			r.RacerID, r.Name, r.NameKana, nullDate(r.BirthDay), r.Height, r.Weight, r.BloodType,
			r.BelongTo, r.BirthPlace, r.DebutPeriod, int(r.RacerClass))
	}

	return b, targets
}

func nullDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

// GetRaceInfo retrieves the schedule line of a race
func (r *PostgresEntityRepository) GetRaceInfo(ctx context.Context, raceID string) (*models.RaceInfo, error) {
	info := &models.RaceInfo{}
	err := r.db.Conn(ctx).QueryRow(ctx, selectRaceInfo+" WHERE race_id = $1", raceID).Scan(
		&info.RaceID, &info.PlaceID, &info.RaceRound, &info.StartDatetime, &info.RaceSubname, &info.CourseLength,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get race info: %w", err)
	}
	return info, nil
}

// GetRaceInfosByDateRange retrieves races starting in [start, end)
func (r *PostgresEntityRepository) GetRaceInfosByDateRange(ctx context.Context, start, end time.Time) ([]models.RaceInfo, error) {
	rows, err := r.db.Conn(ctx).Query(ctx,
		selectRaceInfo+" WHERE start_datetime >= $1 AND start_datetime < $2 ORDER BY start_datetime, race_id",
		start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query race infos: %w", err)
	}
	defer rows.Close()

	var infos []models.RaceInfo
	for rows.Next() {
		var info models.RaceInfo
		if err := rows.Scan(
			&info.RaceID, &info.PlaceID, &info.RaceRound, &info.StartDatetime, &info.RaceSubname, &info.CourseLength,
		); err != nil {
			return nil, fmt.Errorf(errScanRaceInfo, err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// GetOddsByRaceID retrieves the archived odds of a race
func (r *PostgresEntityRepository) GetOddsByRaceID(ctx context.Context, raceID string) ([]models.RaceOdds, error) {
	rows, err := r.db.Conn(ctx).Query(ctx, `
		SELECT race_id, bet_type, bracket_number_1, bracket_number_2, bracket_number_3, odds_1, odds_2
		FROM race_odds
		WHERE race_id = $1
		ORDER BY bet_type, bracket_number_1, bracket_number_2, bracket_number_3`, raceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query odds by race: %w", err)
	}
	defer rows.Close()

	var odds []models.RaceOdds
	for rows.Next() {
		var o models.RaceOdds
		var betType int
		if err := rows.Scan(&o.RaceID, &betType, &o.Combination[0], &o.Combination[1], &o.Combination[2], &o.Odds1, &o.Odds2); err != nil {
			return nil, fmt.Errorf("failed to scan odds: %w", err)
		}
		o.BetType = models.BetType(betType)
		odds = append(odds, o)
	}
	return odds, rows.Err()
}

// GetPayoffsByRaceID retrieves the archived payoffs of a race
func (r *PostgresEntityRepository) GetPayoffsByRaceID(ctx context.Context, raceID string) ([]models.RacePayoff, error) {
	rows, err := r.db.Conn(ctx).Query(ctx, `
		SELECT race_id, bet_type, bracket_number_1, bracket_number_2, bracket_number_3, payoff, favorite
		FROM race_payoff
		WHERE race_id = $1
		ORDER BY bet_type, bracket_number_1, bracket_number_2, bracket_number_3`, raceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payoffs by race: %w", err)
	}
	defer rows.Close()

	var payoffs []models.RacePayoff
	for rows.Next() {
		var p models.RacePayoff
		var betType int
		if err := rows.Scan(&p.RaceID, &betType, &p.Combination[0], &p.Combination[1], &p.Combination[2], &p.Payoff, &p.Favorite); err != nil {
			return nil, fmt.Errorf("failed to scan payoff: %w", err)
		}
		p.BetType = models.BetType(betType)
		payoffs = append(payoffs, p)
	}
	return payoffs, rows.Err()
}
