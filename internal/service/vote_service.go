package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/boatrace-vote/internal/logger"
	"github.com/yourusername/boatrace-vote/internal/metrics"
	"github.com/yourusername/boatrace-vote/internal/storage"
	"github.com/yourusername/boatrace-vote/internal/vote"
)

// VoteService votes the next eligible race
type VoteService struct {
	tables   *storage.TableStore
	selector *vote.Selector
	lead     time.Duration
	audit    *logger.AuditLogger
	log      *logrus.Logger
}

// NewVoteService creates a vote service. lead is how long before its start a
// race becomes eligible.
func NewVoteService(tables *storage.TableStore, selector *vote.Selector, lead time.Duration, log *logrus.Logger) *VoteService {
	return &VoteService{
		tables:   tables,
		selector: selector,
		lead:     lead,
		audit:    logger.NewAuditLogger(log),
		log:      log,
	}
}

// VoteNext records a vote decision for the latest-starting unvoted race due
// by now+lead whose pre-race feed is uploaded. An earlier race with a feed
// is not held up by a later one still waiting for its feed. The vote table
// is written before the ledger, so a failed ledger write leaves the race
// eligible and the next step overwrites the table.
func (s *VoteService) VoteNext(ctx context.Context, now time.Time) (*StepResult, error) {
	ledger, err := s.tables.ReadRaceList(ctx)
	if err != nil {
		return nil, err
	}

	candidates := ledger.VoteCandidates(now, s.lead)
	if len(candidates) == 0 {
		return &StepResult{Outcome: StepIdle, Remaining: remaining(ledger)}, nil
	}

	uploaded, _, err := s.tables.UploadedFeeds(ctx)
	if err != nil {
		return nil, err
	}
	entry, ok := firstUploaded(candidates, uploaded)
	if !ok {
		s.log.WithFields(logrus.Fields{
			"race_id":    candidates[0].RaceID,
			"candidates": len(candidates),
		}).Debug("Pre-race feeds not uploaded yet")
		return &StepResult{Outcome: StepAwaitingFeed, RaceID: candidates[0].RaceID, Remaining: remaining(ledger)}, nil
	}
	result := &StepResult{RaceID: entry.RaceID, Remaining: remaining(ledger)}
	feedKey := s.tables.Keys().BeforeFeed(entry.RaceID)

	tables, _, err := s.tables.ReadFeed(ctx, feedKey)
	if err != nil {
		return nil, err
	}
	predictions, err := s.tables.ReadPredictions(ctx)
	if err != nil {
		return nil, err
	}

	decision, err := s.selector.Vote(entry, predictions, tables.OddsFor(entry.RaceID), now)
	if err != nil {
		return nil, err
	}

	if len(decision.Votes) > 0 {
		if err := s.tables.WriteVotes(ctx, entry.RaceID, decision.Votes); err != nil {
			return nil, err
		}
	}
	if err := ledger.Replace(decision.Entry); err != nil {
		return nil, err
	}
	if err := s.tables.WriteRaceList(ctx, ledger); err != nil {
		return nil, err
	}
	s.tables.ForgetFeed(feedKey)

	rows := make(map[string]int)
	for _, v := range decision.Votes {
		rows[v.BetType.String()]++
	}
	s.audit.LogVote(entry.RaceID, decision.Candidates, len(decision.Votes), decision.Stake(), now)
	metrics.RecordVote(rows, decision.Stake())

	result.Outcome = StepVoted
	result.Remaining = remaining(ledger)
	metrics.UpdateRacesRemaining(result.Remaining)
	return result, nil
}
