package services

import (
	"context"
	"testing"

	"github.com/crosstable/pairing-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultService_SubmitMovesRoundInProgress(t *testing.T) {
	f := newFixture()
	f.seedSwiss(4)
	ctx := context.Background()

	matches, err := f.pairing.Generate(ctx, 1, 1, 10, "")
	require.NoError(t, err)
	invalidationsBefore := f.recorder.count(10)

	updated, err := f.results.SubmitResult(ctx, matches[0].ID, models.OutcomeSideAWin)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeSideAWin, updated.Outcome)

	state, err := f.states.Get(ctx, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, models.RoundInProgress, state)
	assert.Equal(t, invalidationsBefore+1, f.recorder.count(10))

	// Later results leave the state alone.
	_, err = f.results.SubmitResult(ctx, matches[1].ID, models.OutcomeDraw)
	require.NoError(t, err)
	state, err = f.states.Get(ctx, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, models.RoundInProgress, state)
}

func TestResultService_CorrectionOverwritesOutcome(t *testing.T) {
	f := newFixture()
	f.seedSwiss(4)
	ctx := context.Background()

	matches, err := f.pairing.Generate(ctx, 1, 1, 10, "")
	require.NoError(t, err)

	_, err = f.results.SubmitResult(ctx, matches[0].ID, models.OutcomeSideAWin)
	require.NoError(t, err)
	corrected, err := f.results.SubmitResult(ctx, matches[0].ID, models.OutcomeDraw)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeDraw, corrected.Outcome)

	stored, err := f.matches.GetByID(ctx, matches[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeDraw, stored.Outcome)
}

func TestResultService_RejectsPendingOutcome(t *testing.T) {
	f := newFixture()
	f.seedSwiss(4)

	_, err := f.results.SubmitResult(context.Background(), 1, models.OutcomePending)
	require.ErrorIs(t, err, ErrInvalidOutcome)

	_, err = f.results.SubmitResult(context.Background(), 1, models.MatchOutcome("white_won"))
	require.ErrorIs(t, err, ErrInvalidOutcome)
}

func TestResultService_ByeIsImmutable(t *testing.T) {
	f := newFixture()
	f.seedSwiss(5)
	ctx := context.Background()

	matches, err := f.pairing.Generate(ctx, 1, 1, 10, "")
	require.NoError(t, err)

	var byeID int
	for _, m := range matches {
		if m.IsBye {
			byeID = m.ID
		}
	}
	require.NotZero(t, byeID)

	_, err = f.results.SubmitResult(ctx, byeID, models.OutcomeSideBWin)
	require.ErrorIs(t, err, ErrByeImmutable)
}

func TestResultService_CompletedRoundIsFrozen(t *testing.T) {
	f := newFixture()
	f.seedSwiss(4)
	ctx := context.Background()

	matches, err := f.pairing.Generate(ctx, 1, 1, 10, "")
	require.NoError(t, err)
	for _, m := range matches {
		_, err := f.results.SubmitResult(ctx, m.ID, models.OutcomeSideAWin)
		require.NoError(t, err)
	}
	_, err = f.rounds.Complete(ctx, 1, 1, 10)
	require.NoError(t, err)

	_, err = f.results.SubmitResult(ctx, matches[0].ID, models.OutcomeDraw)
	require.ErrorIs(t, err, ErrRoundAlreadyComplete)
}

func TestResultService_MatchNotFound(t *testing.T) {
	f := newFixture()
	f.seedSwiss(4)

	_, err := f.results.SubmitResult(context.Background(), 404, models.OutcomeDraw)
	require.ErrorIs(t, err, ErrMatchNotFound)
}
