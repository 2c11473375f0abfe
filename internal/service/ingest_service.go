package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/boatrace-vote/internal/feed"
	"github.com/yourusername/boatrace-vote/internal/repository"
	"github.com/yourusername/boatrace-vote/internal/storage"
)

// IngestResult reports what one feed contributed to the archive
type IngestResult struct {
	FeedKey  string
	Inserted map[string]int64
	// Report is nil when the feed came from the cache.
	Report *feed.Report
}

// IngestService archives parsed feeds in the database
type IngestService struct {
	tables   *storage.TableStore
	entities repository.EntityRepository
	log      *logrus.Logger
}

// NewIngestService creates an ingest service
func NewIngestService(tables *storage.TableStore, entities repository.EntityRepository, log *logrus.Logger) *IngestService {
	return &IngestService{tables: tables, entities: entities, log: log}
}

// Ingest parses the feed at feedKey and stores every entity table. Rows
// already archived are left untouched.
func (s *IngestService) Ingest(ctx context.Context, feedKey string) (*IngestResult, error) {
	tables, report, err := s.tables.ReadFeed(ctx, feedKey)
	if err != nil {
		return nil, err
	}

	inserted, err := s.entities.SaveTables(ctx, tables)
	if err != nil {
		return nil, fmt.Errorf("failed to archive %s: %w", feedKey, err)
	}

	fields := logrus.Fields{"feed": feedKey}
	for table, n := range inserted {
		fields[table] = n
	}
	s.log.WithFields(fields).Info("Feed archived")

	return &IngestResult{FeedKey: feedKey, Inserted: inserted, Report: report}, nil
}

// IngestPrefix archives every feed object under prefix in key order. It
// stops at the first failure.
func (s *IngestService) IngestPrefix(ctx context.Context, prefix string) ([]*IngestResult, error) {
	keys, err := s.tables.Store().List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds under %s: %w", prefix, err)
	}

	results := make([]*IngestResult, 0, len(keys))
	for _, key := range keys {
		res, err := s.Ingest(ctx, key)
		if err != nil {
			return results, err
		}
		s.tables.ForgetFeed(key)
		results = append(results, res)
	}
	return results, nil
}
