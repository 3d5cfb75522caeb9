package services

import (
	"context"
	"testing"

	"github.com/crosstable/pairing-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundService_CompleteAdvancesToNextRound(t *testing.T) {
	f := newFixture()
	f.seedSwiss(4)
	ctx := context.Background()

	matches, err := f.pairing.Generate(ctx, 1, 1, 10, "")
	require.NoError(t, err)
	for _, m := range matches {
		_, err := f.results.SubmitResult(ctx, m.ID, models.OutcomeSideAWin)
		require.NoError(t, err)
	}

	completion, err := f.rounds.Complete(ctx, 1, 1, 10)
	require.NoError(t, err)
	require.NotNil(t, completion.NextRound)
	assert.Equal(t, 2, *completion.NextRound)
	assert.False(t, completion.SectionComplete)

	state, err := f.states.Get(ctx, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, models.RoundComplete, state)

	// Completion unblocks generation of the next round.
	_, err = f.pairing.Generate(ctx, 1, 2, 10, "")
	require.NoError(t, err)
}

func TestRoundService_CompleteRejectsPendingResults(t *testing.T) {
	f := newFixture()
	f.seedSwiss(4)
	ctx := context.Background()

	matches, err := f.pairing.Generate(ctx, 1, 1, 10, "")
	require.NoError(t, err)
	_, err = f.results.SubmitResult(ctx, matches[0].ID, models.OutcomeDraw)
	require.NoError(t, err)

	_, err = f.rounds.Complete(ctx, 1, 1, 10)
	require.ErrorIs(t, err, ErrRoundHasPendingResults)
}

func TestRoundService_CompleteIgnoresPendingByes(t *testing.T) {
	f := newFixture()
	f.seedSwiss(5)
	ctx := context.Background()

	matches, err := f.pairing.Generate(ctx, 1, 1, 10, "")
	require.NoError(t, err)
	for _, m := range matches {
		if m.IsBye {
			continue
		}
		_, err := f.results.SubmitResult(ctx, m.ID, models.OutcomeSideAWin)
		require.NoError(t, err)
	}

	_, err = f.rounds.Complete(ctx, 1, 1, 10)
	require.NoError(t, err, "a bye never blocks completion")
}

func TestRoundService_CompleteRequiresGeneratedRound(t *testing.T) {
	f := newFixture()
	f.seedSwiss(4)

	_, err := f.rounds.Complete(context.Background(), 1, 1, 10)
	require.ErrorIs(t, err, ErrRoundNotGenerated)
}

func TestRoundService_CompleteIsIdempotentRejected(t *testing.T) {
	f := newFixture()
	f.seedSwiss(4)
	ctx := context.Background()

	matches, err := f.pairing.Generate(ctx, 1, 1, 10, "")
	require.NoError(t, err)
	for _, m := range matches {
		_, err := f.results.SubmitResult(ctx, m.ID, models.OutcomeDraw)
		require.NoError(t, err)
	}
	_, err = f.rounds.Complete(ctx, 1, 1, 10)
	require.NoError(t, err)

	_, err = f.rounds.Complete(ctx, 1, 1, 10)
	require.ErrorIs(t, err, ErrRoundAlreadyComplete)
}

func TestRoundService_FinalRoundMarksSectionComplete(t *testing.T) {
	f := newFixture()
	f.seedSwiss(4)
	f.tournaments.tournaments[1].TotalRounds = 1
	ctx := context.Background()

	matches, err := f.pairing.Generate(ctx, 1, 1, 10, "")
	require.NoError(t, err)
	for _, m := range matches {
		_, err := f.results.SubmitResult(ctx, m.ID, models.OutcomeSideBWin)
		require.NoError(t, err)
	}

	completion, err := f.rounds.Complete(ctx, 1, 1, 10)
	require.NoError(t, err)
	assert.True(t, completion.SectionComplete)
	assert.Nil(t, completion.NextRound)
}

func TestRoundService_StatesFillsLadderWithEmpty(t *testing.T) {
	f := newFixture()
	f.seedSwiss(4)
	ctx := context.Background()

	_, err := f.pairing.Generate(ctx, 1, 1, 10, "")
	require.NoError(t, err)

	ladder, err := f.rounds.States(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, ladder, 4)

	assert.Equal(t, models.RoundGenerated, ladder[0].State)
	for _, st := range ladder[1:] {
		assert.Equal(t, models.RoundEmpty, st.State, "round %d", st.Round)
	}
}
