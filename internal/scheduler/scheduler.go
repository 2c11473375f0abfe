// Package scheduler drives the vote and payoff steps on a fixed interval.
//
// One cycle reads the ledger, updates it and writes it back. Cycles of the
// same scheduler never overlap, but nothing guards against a second process
// writing the same ledger: run exactly one loop per ledger.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/boatrace-vote/internal/metrics"
	"github.com/yourusername/boatrace-vote/internal/service"
)

// MinInterval is the shortest accepted loop interval
const MinInterval = time.Second

// VoteStepper votes the next eligible race
type VoteStepper interface {
	VoteNext(ctx context.Context, now time.Time) (*service.StepResult, error)
}

// PayoffStepper settles the next eligible race
type PayoffStepper interface {
	SettleNext(ctx context.Context, now time.Time) (*service.StepResult, error)
}

// CycleResult reports one vote step and one payoff step
type CycleResult struct {
	RunID  uuid.UUID
	Now    time.Time
	Vote   *service.StepResult
	Payoff *service.StepResult
}

// Done reports whether the ledger had no work left after the cycle
func (c *CycleResult) Done() bool {
	return c.Payoff != nil && c.Payoff.Done()
}

// Scheduler manages the poll loop
type Scheduler struct {
	cron     *cron.Cron
	votes    VoteStepper
	payoffs  PayoffStepper
	clock    func() time.Time
	observer func(*CycleResult, error)
	logger   *logrus.Logger

	mu          sync.RWMutex
	isRunning   bool
	jobIDs      []cron.EntryID
	stepTimeout time.Duration

	done     chan struct{}
	doneOnce sync.Once
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithClock replaces time.Now, for replays at a fixed time
func WithClock(clock func() time.Time) Option {
	return func(s *Scheduler) { s.clock = clock }
}

// WithObserver is called after every cycle with its result and error
func WithObserver(observe func(*CycleResult, error)) Option {
	return func(s *Scheduler) { s.observer = observe }
}

// NewScheduler creates a scheduler over the two steps
func NewScheduler(votes VoteStepper, payoffs PayoffStepper, logger *logrus.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(logger))),
		),
		votes:   votes,
		payoffs: payoffs,
		clock:   time.Now,
		logger:  logger,
		jobIDs:  make([]cron.EntryID, 0, 1),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScheduleLoop runs one cycle every interval. Each cycle gets a timeout just
// under the interval.
func (s *Scheduler) ScheduleLoop(interval time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if interval < MinInterval {
		return fmt.Errorf("loop interval %s is shorter than %s", interval, MinInterval)
	}
	s.stepTimeout = interval - interval/10

	entryID, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.stepTimeout)
		defer cancel()
		// errors are logged inside RunCycle
		_, _ = s.RunCycle(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("interval", interval.String()).Info("Scheduled vote loop")
	return nil
}

// RunCycle runs the vote step then the payoff step at the current clock
// time. A failed vote step does not prevent the payoff step.
func (s *Scheduler) RunCycle(ctx context.Context) (*CycleResult, error) {
	start := time.Now()
	result := &CycleResult{RunID: uuid.New(), Now: s.clock()}
	log := s.logger.WithFields(logrus.Fields{
		"run_id": result.RunID.String(),
		"now":    result.Now.Format(time.RFC3339),
	})

	var errs []error

	vote, err := s.votes.VoteNext(ctx, result.Now)
	if err != nil {
		log.WithError(err).Error("Vote step failed")
		errs = append(errs, fmt.Errorf("vote step: %w", err))
	} else {
		result.Vote = vote
		logStep(log, "vote", vote)
	}

	payoff, err := s.payoffs.SettleNext(ctx, result.Now)
	if err != nil {
		log.WithError(err).Error("Payoff step failed")
		errs = append(errs, fmt.Errorf("payoff step: %w", err))
	} else {
		result.Payoff = payoff
		logStep(log, "payoff", payoff)
	}

	cycleErr := errors.Join(errs...)
	metrics.RecordCycle(cycleErr, time.Since(start).Seconds())
	if s.observer != nil {
		s.observer(result, cycleErr)
	}

	if cycleErr == nil && result.Done() {
		log.Info("All races voted and settled")
		s.doneOnce.Do(func() { close(s.done) })
	}
	return result, cycleErr
}

func logStep(log *logrus.Entry, step string, res *service.StepResult) {
	entry := log.WithFields(logrus.Fields{
		"step":      step,
		"outcome":   string(res.Outcome),
		"remaining": res.Remaining,
	})
	if res.RaceID != "" {
		entry = entry.WithField("race_id", res.RaceID)
	}
	if res.Outcome == service.StepIdle || res.Outcome == service.StepAwaitingFeed {
		entry.Debug("Step finished")
		return
	}
	entry.Info("Step finished")
}

// Done is closed after the first cycle that leaves no race to vote or settle
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for a running cycle to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled cycle
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}

	var nextRun time.Time
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() && (nextRun.IsZero() || entry.Next.Before(nextRun)) {
			nextRun = entry.Next
		}
	}
	return nextRun
}
