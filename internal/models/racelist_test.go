package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntry() RaceListEntry {
	return NewRaceListEntry(RaceInfo{
		RaceID:        "20230731_24_12",
		PlaceID:       "24",
		RaceRound:     12,
		StartDatetime: time.Date(2023, 7, 31, 20, 38, 0, 0, time.UTC),
	})
}

func TestRaceListEntryLifecycle(t *testing.T) {
	entry := testEntry()
	assert.Equal(t, RaceStateScheduled, entry.State())

	voteAt := entry.StartDatetime.Add(-5 * time.Minute)
	require.NoError(t, entry.MarkVoted(voteAt, 3))
	assert.Equal(t, RaceStateVoted, entry.State())
	assert.Equal(t, 3, entry.VoteAmount)
	assert.Nil(t, entry.PayoffAmount)

	payAt := entry.StartDatetime.Add(15 * time.Minute)
	require.NoError(t, entry.MarkSettled(payAt, decimal.RequireFromString("14.5")))
	assert.Equal(t, RaceStateSettled, entry.State())
	require.NotNil(t, entry.PayoffAmount)
	assert.True(t, entry.PayoffAmount.Equal(decimal.RequireFromString("14.5")))
}

func TestRaceListEntryTransitionsRejected(t *testing.T) {
	now := time.Date(2023, 7, 31, 21, 0, 0, 0, time.UTC)

	t.Run("settle before vote", func(t *testing.T) {
		entry := testEntry()
		err := entry.MarkSettled(now, decimal.Zero)
		assert.ErrorIs(t, err, ErrNotVoted)
		assert.Nil(t, entry.PayoffTimestamp)
	})

	t.Run("vote twice", func(t *testing.T) {
		entry := testEntry()
		require.NoError(t, entry.MarkVoted(now, 0))
		err := entry.MarkVoted(now.Add(time.Minute), 5)
		assert.ErrorIs(t, err, ErrAlreadyVoted)
		assert.Equal(t, 0, entry.VoteAmount)
		assert.Equal(t, now, *entry.VoteTimestamp)
	})

	t.Run("settle twice", func(t *testing.T) {
		entry := testEntry()
		require.NoError(t, entry.MarkVoted(now, 1))
		require.NoError(t, entry.MarkSettled(now, decimal.Zero))
		err := entry.MarkSettled(now.Add(time.Minute), decimal.NewFromInt(2))
		assert.ErrorIs(t, err, ErrAlreadySettled)
		assert.True(t, entry.PayoffAmount.IsZero())
	})

	t.Run("settle earlier than vote", func(t *testing.T) {
		entry := testEntry()
		require.NoError(t, entry.MarkVoted(now, 1))
		err := entry.MarkSettled(now.Add(-time.Second), decimal.Zero)
		assert.ErrorIs(t, err, ErrSettleBeforeVote)
	})
}

func TestRaceListEntryClone(t *testing.T) {
	entry := testEntry()
	now := time.Now()
	require.NoError(t, entry.MarkVoted(now, 1))

	clone := entry.Clone()
	require.NoError(t, clone.MarkSettled(now, decimal.NewFromInt(1)))

	assert.False(t, entry.IsSettled())
	assert.True(t, clone.IsSettled())
	assert.NotSame(t, entry.VoteTimestamp, clone.VoteTimestamp)
}
