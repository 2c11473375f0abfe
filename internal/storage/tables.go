package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/boatrace-vote/internal/feed"
	"github.com/yourusername/boatrace-vote/internal/models"
	"github.com/yourusername/boatrace-vote/internal/racelist"
)

// TableStore reads and writes the typed tables of the vote workflow
type TableStore struct {
	store  ObjectStore
	keys   Keys
	parser *feed.Parser
	cache  *FeedCache
	log    *logrus.Entry
}

// NewTableStore creates a table store. cache may be nil.
func NewTableStore(store ObjectStore, keys Keys, parser *feed.Parser, cache *FeedCache, log *logrus.Logger) *TableStore {
	return &TableStore{
		store:  store,
		keys:   keys,
		parser: parser,
		cache:  cache,
		log:    log.WithField("component", "tables"),
	}
}

// Keys returns the key layout
func (t *TableStore) Keys() Keys {
	return t.keys
}

// Store returns the underlying object store
func (t *TableStore) Store() ObjectStore {
	return t.store
}

// ReadRaceList loads the ledger
func (t *TableStore) ReadRaceList(ctx context.Context) (*racelist.Ledger, error) {
	var entries []models.RaceListEntry
	if err := t.readGzipJSON(ctx, t.keys.RaceList(), &entries); err != nil {
		return nil, fmt.Errorf("failed to read race list: %w", err)
	}
	return racelist.New(entries)
}

// WriteRaceList stores the ledger and its CSV snapshot
func (t *TableStore) WriteRaceList(ctx context.Context, ledger *racelist.Ledger) error {
	entries := ledger.Entries()
	if err := t.writeGzipJSON(ctx, t.keys.RaceList(), entries); err != nil {
		return fmt.Errorf("failed to write race list: %w", err)
	}

	data, err := encodeRaceListCSV(entries)
	if err != nil {
		return fmt.Errorf("failed to encode race list csv: %w", err)
	}
	if err := t.store.Put(ctx, t.keys.RaceListCSV(), data); err != nil {
		return fmt.Errorf("failed to write race list csv: %w", err)
	}
	return nil
}

// ReadVotes loads a race's vote table. A missing table reads as empty.
func (t *TableStore) ReadVotes(ctx context.Context, raceID string) ([]models.VoteRecord, error) {
	var votes []models.VoteRecord
	err := t.readGzipJSON(ctx, t.keys.Vote(raceID), &votes)
	if errors.Is(err, ErrObjectNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read votes of %s: %w", raceID, err)
	}
	return votes, nil
}

// WriteVotes replaces a race's vote table
func (t *TableStore) WriteVotes(ctx context.Context, raceID string, votes []models.VoteRecord) error {
	if votes == nil {
		votes = []models.VoteRecord{}
	}
	if err := t.writeGzipJSON(ctx, t.keys.Vote(raceID), votes); err != nil {
		return fmt.Errorf("failed to write votes of %s: %w", raceID, err)
	}
	return nil
}

// ReadAllVotes loads every vote table, keyed by race_id
func (t *TableStore) ReadAllVotes(ctx context.Context) (map[string][]models.VoteRecord, error) {
	keys, err := t.store.List(ctx, t.keys.VoteTables())
	if err != nil {
		return nil, fmt.Errorf("failed to list vote tables: %w", err)
	}

	out := make(map[string][]models.VoteRecord, len(keys))
	for _, key := range keys {
		raceID, ok := t.keys.VoteRaceID(key)
		if !ok {
			continue
		}
		votes, err := t.ReadVotes(ctx, raceID)
		if err != nil {
			return nil, err
		}
		out[raceID] = votes
	}
	return out, nil
}

// ReadPredictions loads the predictions table
func (t *TableStore) ReadPredictions(ctx context.Context) ([]models.Prediction, error) {
	var predictions []models.Prediction
	if err := t.readGzipJSON(ctx, t.keys.Predictions(), &predictions); err != nil {
		return nil, fmt.Errorf("failed to read predictions: %w", err)
	}
	return predictions, nil
}

// WritePredictions stores the predictions table
func (t *TableStore) WritePredictions(ctx context.Context, predictions []models.Prediction) error {
	if err := t.writeGzipJSON(ctx, t.keys.Predictions(), predictions); err != nil {
		return fmt.Errorf("failed to write predictions: %w", err)
	}
	return nil
}

// UploadedFeeds lists the feed prefix once and returns the race_ids with a
// pre-race feed and those with an after-race feed
func (t *TableStore) UploadedFeeds(ctx context.Context) (before, after map[string]bool, err error) {
	keys, err := t.store.List(ctx, t.keys.RaceFeeds())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list feeds: %w", err)
	}

	before = make(map[string]bool)
	after = make(map[string]bool)
	for _, key := range keys {
		raceID, isAfter, ok := t.keys.FeedRaceID(key)
		switch {
		case !ok:
			continue
		case isAfter:
			after[raceID] = true
		default:
			before[raceID] = true
		}
	}
	return before, after, nil
}

// ReadFeed downloads and parses a raw feed batch
func (t *TableStore) ReadFeed(ctx context.Context, key string) (*feed.Tables, *feed.Report, error) {
	if t.cache != nil {
		if tables, ok := t.cache.Get(key); ok {
			return tables, nil, nil
		}
	}

	data, err := t.store.Get(ctx, key)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read feed %s: %w", key, err)
	}
	tables, report, err := t.parser.ParseBytes(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed %s: %w", key, err)
	}
	if len(report.Failures) > 0 {
		t.log.WithFields(logrus.Fields{"key": key, "failures": len(report.Failures)}).Warn("Feed parsed with dropped records")
	}

	if t.cache != nil {
		t.cache.Set(key, tables)
	}
	return tables, report, nil
}

// ForgetFeed drops a feed from the cache so the next read fetches it again
func (t *TableStore) ForgetFeed(key string) {
	if t.cache != nil {
		t.cache.Invalidate(key)
	}
}

func (t *TableStore) readGzipJSON(ctx context.Context, key string, v interface{}) error {
	data, err := t.store.Get(ctx, key)
	if err != nil {
		return err
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to open gzip %s: %w", key, err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return fmt.Errorf("failed to decompress %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (t *TableStore) writeGzipJSON(ctx context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return fmt.Errorf("failed to compress %s: %w", key, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to compress %s: %w", key, err)
	}
	return t.store.Put(ctx, key, buf.Bytes())
}

var raceListHeader = []string{
	"race_id", "place_id", "race_round", "start_datetime",
	"vote_timestamp", "vote_amount", "payoff_timestamp", "payoff_amount",
}

func encodeRaceListCSV(entries []models.RaceListEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(raceListHeader); err != nil {
		return nil, err
	}
	for _, e := range entries {
		row := []string{
			e.RaceID,
			e.PlaceID,
			strconv.Itoa(e.RaceRound),
			e.StartDatetime.Format(time.RFC3339),
			formatTime(e.VoteTimestamp),
			strconv.Itoa(e.VoteAmount),
			formatTime(e.PayoffTimestamp),
			"",
		}
		if e.PayoffAmount != nil {
			row[7] = e.PayoffAmount.String()
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
