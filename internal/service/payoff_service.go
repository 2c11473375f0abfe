package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/boatrace-vote/internal/logger"
	"github.com/yourusername/boatrace-vote/internal/metrics"
	"github.com/yourusername/boatrace-vote/internal/models"
	"github.com/yourusername/boatrace-vote/internal/racelist"
	"github.com/yourusername/boatrace-vote/internal/repository"
	"github.com/yourusername/boatrace-vote/internal/settlement"
	"github.com/yourusername/boatrace-vote/internal/storage"
)

// PayoffService settles the next eligible race
type PayoffService struct {
	tables  *storage.TableStore
	engine  *settlement.Engine
	lag     time.Duration
	archive repository.VoteResultRepository
	audit   *logger.AuditLogger
	log     *logrus.Logger
}

// NewPayoffService creates a payoff service. lag is how long after its start
// a race becomes eligible. archive may be nil.
func NewPayoffService(tables *storage.TableStore, lag time.Duration, archive repository.VoteResultRepository, log *logrus.Logger) *PayoffService {
	return &PayoffService{
		tables:  tables,
		engine:  settlement.NewEngine(),
		lag:     lag,
		archive: archive,
		audit:   logger.NewAuditLogger(log),
		log:     log,
	}
}

// SettleNext settles the latest-starting voted race that started by now-lag
// and has an after-race feed. Candidates are tried latest first: a race
// whose payoffs are not final is skipped in favour of an earlier one, and
// its cached feed is dropped so a later step fetches the re-uploaded feed.
// At most one race is settled per step.
func (s *PayoffService) SettleNext(ctx context.Context, now time.Time) (*StepResult, error) {
	ledger, err := s.tables.ReadRaceList(ctx)
	if err != nil {
		return nil, err
	}

	candidates := ledger.PayoffCandidates(now, s.lag)
	if len(candidates) == 0 {
		return &StepResult{Outcome: StepIdle, Remaining: remaining(ledger)}, nil
	}

	_, uploaded, err := s.tables.UploadedFeeds(ctx)
	if err != nil {
		return nil, err
	}

	var pending *StepResult
	for _, entry := range candidates {
		if !uploaded[entry.RaceID] {
			continue
		}

		feedKey := s.tables.Keys().AfterFeed(entry.RaceID)
		settled, err := s.settle(ctx, entry, feedKey, now)
		if err != nil {
			return nil, err
		}
		if settled.Outcome == settlement.OutcomePending {
			s.tables.ForgetFeed(feedKey)
			s.audit.LogDeferred(entry.RaceID, string(settled.Outcome))
			if pending == nil {
				pending = &StepResult{Outcome: StepPending, RaceID: entry.RaceID, Remaining: remaining(ledger)}
			}
			continue
		}
		return s.apply(ctx, ledger, settled, feedKey, now)
	}

	if pending != nil {
		return pending, nil
	}
	s.log.WithFields(logrus.Fields{
		"race_id":    candidates[0].RaceID,
		"candidates": len(candidates),
	}).Debug("Post-race feeds not uploaded yet")
	return &StepResult{Outcome: StepAwaitingFeed, RaceID: candidates[0].RaceID, Remaining: remaining(ledger)}, nil
}

func (s *PayoffService) settle(ctx context.Context, entry models.RaceListEntry, feedKey string, now time.Time) (*settlement.Result, error) {
	tables, _, err := s.tables.ReadFeed(ctx, feedKey)
	if err != nil {
		return nil, err
	}
	votes, err := s.tables.ReadVotes(ctx, entry.RaceID)
	if err != nil {
		return nil, err
	}

	settled, err := s.engine.Settle(entry, votes, tables.OddsFor(entry.RaceID), tables.PayoffsFor(entry.RaceID), now)
	if err != nil {
		return nil, fmt.Errorf("failed to settle %s: %w", entry.RaceID, err)
	}
	return settled, nil
}

// apply persists a voided or settled race: vote table first, then ledger
func (s *PayoffService) apply(ctx context.Context, ledger *racelist.Ledger, settled *settlement.Result, feedKey string, now time.Time) (*StepResult, error) {
	raceID := settled.Entry.RaceID
	result := &StepResult{RaceID: raceID}
	switch settled.Outcome {
	case settlement.OutcomeVoided:
		result.Outcome = StepVoided
	case settlement.OutcomeSettled:
		result.Outcome = StepSettled
	default:
		// PayoffCandidates only returns voted, unsettled races
		return nil, fmt.Errorf("unexpected settlement outcome %q for %s", settled.Outcome, raceID)
	}

	if err := s.tables.WriteVotes(ctx, raceID, settled.Votes); err != nil {
		return nil, err
	}
	if err := ledger.Replace(settled.Entry); err != nil {
		return nil, err
	}
	if err := s.tables.WriteRaceList(ctx, ledger); err != nil {
		return nil, err
	}
	s.tables.ForgetFeed(feedKey)
	s.archiveVotes(ctx, raceID, settled)

	payoff := *settled.Entry.PayoffAmount
	s.audit.LogSettlement(raceID, string(settled.Outcome), settled.Entry.VoteAmount, payoff, settled.Hits, now)
	payoffFloat, _ := payoff.Float64()
	metrics.RecordSettlement(string(settled.Outcome), payoffFloat)

	result.Remaining = remaining(ledger)
	metrics.UpdateRacesRemaining(result.Remaining)
	return result, nil
}

// archiveVotes copies settled rows to the database. The object store stays
// authoritative, so a failure is logged and the step still succeeds.
func (s *PayoffService) archiveVotes(ctx context.Context, raceID string, settled *settlement.Result) {
	if s.archive == nil || len(settled.Votes) == 0 {
		return
	}
	n, err := s.archive.UpsertBatch(ctx, settled.Votes)
	if err != nil {
		s.log.WithError(err).WithField("race_id", raceID).Warn("Failed to archive vote results")
		return
	}
	s.log.WithFields(logrus.Fields{"race_id": raceID, "rows": n}).Debug("Vote results archived")
}
