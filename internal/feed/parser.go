package feed

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/boatrace-vote/internal/logger"
	"github.com/yourusername/boatrace-vote/internal/metrics"
)

// Report summarizes a batch: records parsed per kind, skipped records
// (cancelled odds pages, unknown racers), unclassified records and failures.
type Report struct {
	Parsed       map[Kind]int
	Skipped      map[Kind]int
	Unclassified int
	Failures     []*ParseError
	Duration     time.Duration
}

// Parser drives classification and parsing over a feed batch. A record that
// fails is logged with its raw fields and dropped; the rest of the batch is
// unaffected.
type Parser struct {
	log *logger.FeedLogger
}

// NewParser creates a parser logging through base
func NewParser(base *logrus.Logger) *Parser {
	return &Parser{log: logger.NewFeedLogger(base)}
}

// ParseBytes decodes a JSON feed batch and parses it
func (p *Parser) ParseBytes(data []byte) (*Tables, *Report, error) {
	records, err := DecodeBatch(data)
	if err != nil {
		return nil, nil, err
	}
	tables, report := p.Parse(records)
	return tables, report, nil
}

// Parse parses every record of the batch. Record order only matters for
// which duplicate survives.
func (p *Parser) Parse(records []Record) (*Tables, *Report) {
	start := time.Now()
	tables := &Tables{}
	report := &Report{
		Parsed:  make(map[Kind]int),
		Skipped: make(map[Kind]int),
	}

	for _, rec := range records {
		kind := Classify(rec)
		if kind == KindUnknown {
			report.Unclassified++
			p.log.LogUnclassified(rec.URL(), len(rec))
			metrics.RecordFeedRecord(kind.String(), metrics.FeedStatusUnclassified)
			continue
		}

		added, err := tables.add(kind, rec)
		switch {
		case err != nil:
			perr := asParseError(kind, rec, err)
			report.Failures = append(report.Failures, perr)
			p.log.LogParseFailure(kind.String(), map[string][]string(rec), perr)
			metrics.RecordFeedRecord(kind.String(), metrics.FeedStatusFailed)
		case !added:
			report.Skipped[kind]++
			metrics.RecordFeedRecord(kind.String(), metrics.FeedStatusSkipped)
		default:
			report.Parsed[kind]++
			metrics.RecordFeedRecord(kind.String(), metrics.FeedStatusParsed)
		}
	}

	tables.normalize()
	report.Duration = time.Since(start)

	counts := make(map[string]int)
	for kind, n := range tables.Counts() {
		if n > 0 {
			counts[kind.String()] = n
		}
	}
	p.log.LogBatchParsed(len(records), counts, len(report.Failures), report.Duration)
	metrics.ObserveFeedParse(report.Duration.Seconds())

	return tables, report
}

// add parses one record into its table. It reports false for a record that
// legitimately carries no entity.
func (t *Tables) add(kind Kind, rec Record) (bool, error) {
	switch kind {
	case KindRaceIndex:
		return appendParsed(&t.RaceIndexes, rec, ParseRaceIndex)
	case KindBracket:
		return appendParsed(&t.Brackets, rec, ParseBracket)
	case KindBracketResult:
		return appendParsed(&t.BracketResults, rec, ParseBracketResult)
	case KindRaceInfo:
		return appendParsed(&t.RaceInfos, rec, ParseRaceInfo)
	case KindFinishResult:
		return appendParsed(&t.FinishResults, rec, ParseFinishResult)
	case KindStartResult:
		return appendParsed(&t.StartResults, rec, ParseStartResult)
	case KindPayoff:
		return appendParsed(&t.Payoffs, rec, ParsePayoff)
	case KindOdds:
		return appendParsed(&t.Odds, rec, ParseOdds)
	case KindRacerProfile:
		return appendParsed(&t.Racers, rec, ParseRacerProfile)
	}
	return false, nil
}

func appendParsed[T any](dst *[]T, rec Record, parse func(Record) (*T, error)) (bool, error) {
	v, err := parse(rec)
	if err != nil {
		return false, err
	}
	if v == nil {
		return false, nil
	}
	*dst = append(*dst, *v)
	return true, nil
}

func asParseError(kind Kind, rec Record, err error) *ParseError {
	var perr *ParseError
	if errors.As(err, &perr) {
		return perr
	}
	return &ParseError{Kind: kind, URL: rec.URL(), Record: rec, Err: err}
}
