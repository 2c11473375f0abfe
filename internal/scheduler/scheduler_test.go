package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/boatrace-vote/internal/service"
)

type stubStep struct {
	calls  []time.Time
	result *service.StepResult
	err    error
}

func (s *stubStep) VoteNext(_ context.Context, now time.Time) (*service.StepResult, error) {
	s.calls = append(s.calls, now)
	return s.result, s.err
}

func (s *stubStep) SettleNext(_ context.Context, now time.Time) (*service.StepResult, error) {
	s.calls = append(s.calls, now)
	return s.result, s.err
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

var fixedNow = time.Date(2020, 1, 1, 11, 34, 0, 0, time.UTC)

func TestRunCycle(t *testing.T) {
	votes := &stubStep{result: &service.StepResult{Outcome: service.StepVoted, RaceID: "20200101_24_12", Remaining: 2}}
	payoffs := &stubStep{result: &service.StepResult{Outcome: service.StepIdle, Remaining: 2}}
	s := NewScheduler(votes, payoffs, quietLogger(), WithClock(func() time.Time { return fixedNow }))

	res, err := s.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []time.Time{fixedNow}, votes.calls)
	assert.Equal(t, []time.Time{fixedNow}, payoffs.calls)
	assert.Equal(t, service.StepVoted, res.Vote.Outcome)
	assert.False(t, res.Done())
	assert.False(t, isClosed(s.Done()))
}

func TestRunCycleDone(t *testing.T) {
	votes := &stubStep{result: &service.StepResult{Outcome: service.StepIdle}}
	payoffs := &stubStep{result: &service.StepResult{Outcome: service.StepSettled, Remaining: 0}}
	s := NewScheduler(votes, payoffs, quietLogger())

	res, err := s.RunCycle(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Done())
	assert.True(t, isClosed(s.Done()))

	// closing twice must not panic
	_, err = s.RunCycle(context.Background())
	require.NoError(t, err)
}

func TestRunCycleVoteFailureStillSettles(t *testing.T) {
	votes := &stubStep{err: errors.New("storage down")}
	payoffs := &stubStep{result: &service.StepResult{Outcome: service.StepIdle, Remaining: 0}}
	s := NewScheduler(votes, payoffs, quietLogger())

	res, err := s.RunCycle(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vote step")
	assert.Len(t, payoffs.calls, 1)
	assert.Nil(t, res.Vote)
	assert.False(t, isClosed(s.Done()), "a failed cycle never ends the loop")
}

func TestScheduleLoop(t *testing.T) {
	steps := &stubStep{result: &service.StepResult{Outcome: service.StepIdle, Remaining: 1}}

	tests := []struct {
		name     string
		interval time.Duration
		wantErr  bool
	}{
		{name: "valid", interval: time.Minute},
		{name: "too short", interval: 100 * time.Millisecond, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(steps, steps, quietLogger())
			err := s.ScheduleLoop(tt.interval)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestStartStop(t *testing.T) {
	steps := &stubStep{result: &service.StepResult{Outcome: service.StepIdle, Remaining: 1}}
	s := NewScheduler(steps, steps, quietLogger())

	assert.Error(t, s.Start(), "no jobs scheduled")

	require.NoError(t, s.ScheduleLoop(time.Hour))
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.False(t, s.GetNextRun().IsZero())
	assert.Error(t, s.Start())
	assert.Error(t, s.ScheduleLoop(time.Hour), "cannot add jobs while running")

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.True(t, s.GetNextRun().IsZero())
}

func TestObserverSeesEveryCycle(t *testing.T) {
	votes := &stubStep{err: errors.New("storage down")}
	payoffs := &stubStep{result: &service.StepResult{Outcome: service.StepPending, RaceID: "20200101_24_11", Remaining: 1}}

	var seen []error
	var last *CycleResult
	s := NewScheduler(votes, payoffs, quietLogger(), WithObserver(func(res *CycleResult, err error) {
		last = res
		seen = append(seen, err)
	}))

	_, err := s.RunCycle(context.Background())
	require.Error(t, err)
	require.Len(t, seen, 1)
	assert.ErrorIs(t, seen[0], votes.err)
	require.NotNil(t, last)
	assert.Equal(t, service.StepPending, last.Payoff.Outcome)
}
