package vote

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/boatrace-vote/internal/models"
)

const raceID = "20200101_24_12"

var now = time.Date(2020, 1, 1, 10, 57, 0, 0, time.UTC)

func f64(v float64) *float64 { return &v }

func entry() models.RaceListEntry {
	return models.RaceListEntry{RaceID: raceID, StartDatetime: now.Add(3 * time.Minute)}
}

func pred(bt models.BetType, c models.Combination, p float64) models.Prediction {
	return models.Prediction{RaceID: raceID, BetType: bt, Combination: c, Probability: p}
}

func oddsRow(bt models.BetType, c models.Combination, odds float64) models.RaceOdds {
	return models.RaceOdds{RaceID: raceID, BetType: bt, Combination: c, Odds1: f64(odds)}
}

func defaultParams() Params {
	return Params{
		Probability:    Band{Median: 0.3, Range: 0.2},
		ExpectedReturn: Band{Median: 1.5, Range: 0.5},
		FixedUnits:     1,
	}
}

func TestBandIsHalfOpen(t *testing.T) {
	b := Band{Median: 1.0, Range: 0.5}

	assert.True(t, b.Contains(0.5))
	assert.True(t, b.Contains(1.49))
	assert.False(t, b.Contains(1.5))
	assert.False(t, b.Contains(0.49))
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Params)
		wantErr bool
	}{
		{name: "fixed units", mutate: func(p *Params) {}},
		{name: "target payoff", mutate: func(p *Params) { p.FixedUnits = 0; p.TargetPayoff = 10 }},
		{name: "both modes", mutate: func(p *Params) { p.TargetPayoff = 10 }, wantErr: true},
		{name: "neither mode", mutate: func(p *Params) { p.FixedUnits = 0 }, wantErr: true},
		{name: "negative range", mutate: func(p *Params) { p.Probability.Range = -0.1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := defaultParams()
			tt.mutate(&p)
			_, err := NewSelector(p)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidParams)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestStake(t *testing.T) {
	fixed, err := NewSelector(defaultParams())
	require.NoError(t, err)

	targetParams := defaultParams()
	targetParams.FixedUnits = 0
	targetParams.TargetPayoff = 10
	target, err := NewSelector(targetParams)
	require.NoError(t, err)

	tests := []struct {
		name      string
		selector  *Selector
		candidate Candidate
		want      int
	}{
		{name: "in both bands", selector: fixed, candidate: Candidate{Prediction: models.Prediction{Probability: 0.3}, Odds: f64(5.0)}, want: 1},
		{name: "probability too low", selector: fixed, candidate: Candidate{Prediction: models.Prediction{Probability: 0.05}, Odds: f64(30.0)}, want: 0},
		{name: "expected return too high", selector: fixed, candidate: Candidate{Prediction: models.Prediction{Probability: 0.4}, Odds: f64(10.0)}, want: 0},
		{name: "no odds", selector: fixed, candidate: Candidate{Prediction: models.Prediction{Probability: 0.3}}, want: 0},
		{name: "target payoff floors", selector: target, candidate: Candidate{Prediction: models.Prediction{Probability: 0.4}, Odds: f64(3.0)}, want: 3},
		{name: "target payoff below one unit", selector: target, candidate: Candidate{Prediction: models.Prediction{Probability: 0.12}, Odds: f64(12.0)}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.selector.Stake(tt.candidate))
		})
	}
}

func TestVote(t *testing.T) {
	s, err := NewSelector(defaultParams())
	require.NoError(t, err)

	predictions := []models.Prediction{
		pred(models.BetTypeWin, models.Combination{1}, 0.45),
		pred(models.BetTypeWin, models.Combination{2}, 0.2),
		pred(models.BetTypeTrio, models.Combination{3, 1, 2}, 0.15),
		pred(models.BetTypeExacta, models.Combination{4, 5}, 0.3),
	}
	odds := []models.RaceOdds{
		oddsRow(models.BetTypeWin, models.Combination{1}, 2.5),
		oddsRow(models.BetTypeWin, models.Combination{2}, 12.0),
		oddsRow(models.BetTypeTrio, models.Combination{1, 2, 3}, 9.0),
	}

	d, err := s.Vote(entry(), predictions, odds, now)
	require.NoError(t, err)

	assert.Equal(t, 4, d.Candidates)
	require.Len(t, d.Votes, 2)
	assert.Equal(t, models.BetTypeWin, d.Votes[0].BetType)
	assert.Equal(t, models.Combination{1}, d.Votes[0].Combination)
	assert.InDelta(t, 1.125, d.Votes[0].ExpectedReturn, 1e-9)
	assert.Equal(t, models.BetTypeTrio, d.Votes[1].BetType)
	assert.Equal(t, models.Combination{1, 2, 3}, d.Votes[1].Combination)
	assert.NotEqual(t, d.Votes[0].ID, d.Votes[1].ID)

	assert.Equal(t, 2, d.Stake())
	assert.Equal(t, 2, d.Entry.VoteAmount)
	assert.Equal(t, models.RaceStateVoted, d.Entry.State())
}

func TestVoteWithoutOdds(t *testing.T) {
	s, err := NewSelector(defaultParams())
	require.NoError(t, err)

	d, err := s.Vote(entry(), []models.Prediction{pred(models.BetTypeWin, models.Combination{1}, 0.3)}, nil, now)
	require.NoError(t, err)

	assert.Empty(t, d.Votes)
	assert.Equal(t, 0, d.Entry.VoteAmount)
	require.NotNil(t, d.Entry.VoteTimestamp)
	assert.Equal(t, now, *d.Entry.VoteTimestamp)
}

func TestVoteTwice(t *testing.T) {
	s, err := NewSelector(defaultParams())
	require.NoError(t, err)

	d, err := s.Vote(entry(), nil, nil, now)
	require.NoError(t, err)

	_, err = s.Vote(d.Entry, nil, nil, now.Add(time.Minute))
	assert.ErrorIs(t, err, models.ErrAlreadyVoted)
}

func TestCandidatesIgnoreOtherRaces(t *testing.T) {
	other := pred(models.BetTypeWin, models.Combination{1}, 0.3)
	other.RaceID = "20200101_24_11"

	candidates, err := Candidates(raceID, []models.Prediction{other, pred(models.BetTypeWin, models.Combination{1}, 0.3)},
		[]models.RaceOdds{oddsRow(models.BetTypeWin, models.Combination{1}, 2.0)})
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, f64(2.0), candidates[0].Odds)
}

func TestCandidatesUnknownBetType(t *testing.T) {
	_, err := Candidates(raceID, []models.Prediction{{RaceID: raceID, BetType: 9}}, nil)
	assert.ErrorIs(t, err, models.ErrUnknownBetType)
}
