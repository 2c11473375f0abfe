package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/boatrace-vote/internal/feed"
	"github.com/yourusername/boatrace-vote/internal/logger"
	"github.com/yourusername/boatrace-vote/internal/metrics"
	"github.com/yourusername/boatrace-vote/internal/racelist"
	"github.com/yourusername/boatrace-vote/internal/storage"
)

// RaceListService builds the day's ledger from a schedule feed
type RaceListService struct {
	tables *storage.TableStore
	audit  *logger.AuditLogger
	log    *logrus.Logger
}

// NewRaceListService creates a race list service
func NewRaceListService(tables *storage.TableStore, log *logrus.Logger) *RaceListService {
	return &RaceListService{
		tables: tables,
		audit:  logger.NewAuditLogger(log),
		log:    log,
	}
}

// Create parses the schedule feed at feedKey and writes a fresh ledger of the
// races starting on date's JST day. An existing ledger is replaced.
func (s *RaceListService) Create(ctx context.Context, date time.Time, feedKey string) (*racelist.Ledger, error) {
	tables, _, err := s.tables.ReadFeed(ctx, feedKey)
	if err != nil {
		return nil, err
	}

	day := RaceDay(date)
	ledger := racelist.Build(tables.RaceInfos, day)
	if err := s.tables.WriteRaceList(ctx, ledger); err != nil {
		return nil, err
	}

	s.audit.LogRaceListCreated(day.Format("2006-01-02"), ledger.Len())
	metrics.UpdateRacesRemaining(remaining(ledger))
	if ledger.Len() == 0 {
		s.log.WithFields(logrus.Fields{
			"feed":       feedKey,
			"race_infos": len(tables.RaceInfos),
		}).Warn("Race list is empty")
	}

	return ledger, nil
}

// RaceDay returns midnight JST of the day containing t
func RaceDay(t time.Time) time.Time {
	local := t.In(feed.JST)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, feed.JST)
}

// ParseRaceDay reads a YYYY-MM-DD or YYYYMMDD date as a JST race day
func ParseRaceDay(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "20060102"} {
		if day, err := time.ParseInLocation(layout, value, feed.JST); err == nil {
			return day, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid race day %q: want YYYY-MM-DD", value)
}
