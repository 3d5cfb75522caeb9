package services

import (
	"context"
	"sync"
	"testing"

	"github.com/crosstable/pairing-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairingService_GenerateFirstRound(t *testing.T) {
	f := newFixture()
	f.seedSwiss(4)
	ctx := context.Background()

	matches, err := f.pairing.Generate(ctx, 1, 1, 10, "")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	for _, m := range matches {
		assert.NotZero(t, m.ID, "persisted matches carry ids")
		assert.Equal(t, 1, m.Round)
	}

	state, err := f.states.Get(ctx, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, models.RoundGenerated, state)
	assert.Equal(t, 1, f.recorder.count(10), "standings cache invalidated once")
}

func TestPairingService_GenerateRejectsExistingRound(t *testing.T) {
	f := newFixture()
	f.seedSwiss(4)
	ctx := context.Background()

	_, err := f.pairing.Generate(ctx, 1, 1, 10, "")
	require.NoError(t, err)

	_, err = f.pairing.Generate(ctx, 1, 1, 10, "")
	require.ErrorIs(t, err, ErrPairingsAlreadyExist)
}

func TestPairingService_GenerateRequiresPriorRoundComplete(t *testing.T) {
	f := newFixture()
	f.seedSwiss(4)
	ctx := context.Background()

	_, err := f.pairing.Generate(ctx, 1, 1, 10, "")
	require.NoError(t, err)

	_, err = f.pairing.Generate(ctx, 1, 2, 10, "")
	require.ErrorIs(t, err, ErrPriorRoundIncomplete)
}

func TestPairingService_GenerateValidation(t *testing.T) {
	f := newFixture()
	f.seedSwiss(4)
	ctx := context.Background()

	_, err := f.pairing.Generate(ctx, 1, 9, 10, "")
	assert.ErrorIs(t, err, ErrInvalidRound)

	_, err = f.pairing.Generate(ctx, 1, 1, 10, "elimination")
	assert.ErrorIs(t, err, ErrUnknownStrategy)

	_, err = f.pairing.Generate(ctx, 1, 1, 10, string(models.StrategyQuads))
	assert.ErrorIs(t, err, ErrQuadsWholeEvent)

	_, err = f.pairing.Generate(ctx, 2, 1, 10, "")
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	_, err = f.pairing.Generate(ctx, 1, 1, 99, "")
	assert.ErrorIs(t, err, ErrSectionNotFound)
}

func TestPairingService_SectionOfOtherTournamentReadsAsMissing(t *testing.T) {
	f := newFixture()
	f.seedSwiss(4)
	f.tournaments.tournaments[2] = &models.Tournament{
		ID: 2, TotalRounds: 4, Strategy: models.StrategySwiss, ByePoints: 1,
	}

	_, err := f.pairing.Generate(context.Background(), 2, 1, 10, "")
	require.ErrorIs(t, err, ErrSectionNotFound)
}

func TestPairingService_ConcurrentGenerateProducesOneRound(t *testing.T) {
	f := newFixture()
	f.seedSwiss(8)
	ctx := context.Background()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.pairing.Generate(ctx, 1, 1, 10, "")
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}()
	}
	wg.Wait()

	var success, duplicate int
	for _, err := range errs {
		switch {
		case err == nil:
			success++
		default:
			require.ErrorIs(t, err, ErrPairingsAlreadyExist)
			duplicate++
		}
	}
	assert.Equal(t, 1, success)
	assert.Equal(t, 1, duplicate)

	count, err := f.matches.CountBySectionRound(ctx, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, count, "the losing request wrote nothing")
}

func TestPairingService_GenerateQuads(t *testing.T) {
	f := newFixture()
	f.seedSwiss(4)
	f.tournaments.tournaments[1].Strategy = models.StrategyQuads
	ctx := context.Background()

	schedules, err := f.pairing.GenerateQuads(ctx, 1)
	require.NoError(t, err)
	require.Len(t, schedules[10], 6, "one quad plays six games over three rounds")

	for r := 1; r <= 3; r++ {
		state, err := f.states.Get(ctx, 10, r)
		require.NoError(t, err)
		assert.Equal(t, models.RoundGenerated, state, "round %d", r)
	}

	_, err = f.pairing.GenerateQuads(ctx, 1)
	require.ErrorIs(t, err, ErrPairingsAlreadyExist, "the cycle is generated once")
}

// playRounds submits a result for every pending game of the given rounds,
// won by the higher participant id, and completes each round.
func (f *fixture) playRounds(t *testing.T, from, to int) {
	t.Helper()
	ctx := context.Background()
	for r := from; r <= to; r++ {
		matches, err := f.matches.ListBySectionRound(ctx, 10, r)
		require.NoError(t, err)
		for _, m := range matches {
			if m.IsBye {
				continue
			}
			outcome := models.OutcomeSideAWin
			if *m.SideBID > *m.SideAID {
				outcome = models.OutcomeSideBWin
			}
			_, err := f.results.SubmitResult(ctx, m.ID, outcome)
			require.NoError(t, err)
		}
		_, err = f.rounds.Complete(ctx, 1, r, 10)
		require.NoError(t, err)
	}
}

func TestPairingService_GenerateQuadsSecondCycle(t *testing.T) {
	f := newFixture()
	f.seedSwiss(8)
	f.tournaments.tournaments[1].Strategy = models.StrategyQuads
	f.tournaments.tournaments[1].TotalRounds = 6
	ctx := context.Background()

	_, err := f.pairing.GenerateQuads(ctx, 1)
	require.NoError(t, err)
	f.playRounds(t, 1, 3)

	schedules, err := f.pairing.GenerateQuads(ctx, 1)
	require.NoError(t, err)
	cycle := schedules[10]
	require.Len(t, cycle, 12, "two new quads play three more rounds")

	roundFour := map[[2]int]bool{}
	for _, m := range cycle {
		require.GreaterOrEqual(t, m.Round, 4)
		require.LessOrEqual(t, m.Round, 6)
		if m.Round == 4 {
			a, b := *m.SideAID, *m.SideBID
			if a > b {
				a, b = b, a
			}
			roundFour[[2]int{a, b}] = true
		}
	}
	// Every cycle-one game went to the higher id, so the quads are
	// reassigned by score: {4,8,3,7} on top, {2,6,1,5} below.
	assert.Equal(t, map[[2]int]bool{
		{4, 7}: true, {3, 8}: true,
		{2, 5}: true, {1, 6}: true,
	}, roundFour)

	for r := 4; r <= 6; r++ {
		state, err := f.states.Get(ctx, 10, r)
		require.NoError(t, err)
		assert.Equal(t, models.RoundGenerated, state, "round %d", r)
	}

	_, err = f.pairing.GenerateQuads(ctx, 1)
	require.ErrorIs(t, err, ErrPairingsAlreadyExist, "cycle two is still in play")

	f.playRounds(t, 4, 6)
	_, err = f.pairing.GenerateQuads(ctx, 1)
	require.ErrorIs(t, err, ErrPairingsAlreadyExist, "no rounds remain")
}

func TestPairingService_GenerateQuadsTwoPlayerSectionCompletes(t *testing.T) {
	f := newFixture()
	f.seedSwiss(2)
	f.tournaments.tournaments[1].Strategy = models.StrategyQuads
	ctx := context.Background()

	schedules, err := f.pairing.GenerateQuads(ctx, 1)
	require.NoError(t, err)
	require.Len(t, schedules[10], 3, "two byes and one game")

	perRound := map[int]int{}
	for _, m := range schedules[10] {
		perRound[m.Round]++
	}
	assert.Equal(t, map[int]int{1: 2, 2: 1}, perRound, "no scheduled round is empty")

	state, err := f.states.Get(ctx, 10, 3)
	require.NoError(t, err)
	assert.Equal(t, models.RoundEmpty, state)

	// Both scheduled rounds can run to completion.
	f.playRounds(t, 1, 2)
	state, err = f.states.Get(ctx, 10, 2)
	require.NoError(t, err)
	assert.Equal(t, models.RoundComplete, state)
}

func TestPairingService_GenerateQuadsRequiresQuadSections(t *testing.T) {
	f := newFixture()
	f.seedSwiss(4)

	_, err := f.pairing.GenerateQuads(context.Background(), 1)
	require.ErrorIs(t, err, ErrNoQuadSections)
}

func TestPairingService_ResetClearsRound(t *testing.T) {
	f := newFixture()
	f.seedSwiss(4)
	ctx := context.Background()
	sectionID := 10

	_, err := f.pairing.Generate(ctx, 1, 1, 10, "")
	require.NoError(t, err)

	require.NoError(t, f.pairing.Reset(ctx, 1, 1, &sectionID))

	count, err := f.matches.CountBySectionRound(ctx, 10, 1)
	require.NoError(t, err)
	assert.Zero(t, count)

	state, err := f.states.Get(ctx, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, models.RoundEmpty, state)

	// The ledger is clean again, so the round can be regenerated.
	_, err = f.pairing.Generate(ctx, 1, 1, 10, "")
	require.NoError(t, err)
}

func TestPairingService_ResetRefusesWhenLaterRoundExists(t *testing.T) {
	f := newFixture()
	f.seedSwiss(4)
	ctx := context.Background()
	sectionID := 10

	matches, err := f.pairing.Generate(ctx, 1, 1, 10, "")
	require.NoError(t, err)
	for _, m := range matches {
		_, err := f.results.SubmitResult(ctx, m.ID, models.OutcomeSideAWin)
		require.NoError(t, err)
	}
	_, err = f.rounds.Complete(ctx, 1, 1, 10)
	require.NoError(t, err)
	_, err = f.pairing.Generate(ctx, 1, 2, 10, "")
	require.NoError(t, err)

	err = f.pairing.Reset(ctx, 1, 1, &sectionID)
	require.ErrorIs(t, err, ErrForwardRoundExists)

	// The later round can go first.
	require.NoError(t, f.pairing.Reset(ctx, 1, 2, &sectionID))
	require.NoError(t, f.pairing.Reset(ctx, 1, 1, &sectionID))
}

func TestPairingService_ListPairings(t *testing.T) {
	f := newFixture()
	f.seedSwiss(4)
	ctx := context.Background()
	sectionID := 10

	generated, err := f.pairing.Generate(ctx, 1, 1, 10, "")
	require.NoError(t, err)

	listed, err := f.pairing.ListPairings(ctx, 1, 1, &sectionID)
	require.NoError(t, err)
	assert.Len(t, listed, len(generated))

	all, err := f.pairing.ListPairings(ctx, 1, 1, nil)
	require.NoError(t, err)
	assert.Len(t, all, len(generated))
}

func TestPairingService_TeamPairingsGroupsBoards(t *testing.T) {
	f := newFixture()
	f.seedSwiss(4)
	f.tournaments.tournaments[1].Strategy = models.StrategyTeam
	teamA, teamB := 100, 200
	f.teams.teams = []*models.Team{
		{ID: teamA, SectionID: 10, Name: "Rooks"},
		{ID: teamB, SectionID: 10, Name: "Knights"},
	}
	for i, p := range f.participants.participants {
		teamID := teamA
		if i%2 == 1 {
			teamID = teamB
		}
		p.TeamID = &teamID
	}
	ctx := context.Background()

	_, err := f.pairing.Generate(ctx, 1, 1, 10, "")
	require.NoError(t, err)

	pairings, err := f.pairing.TeamPairings(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, pairings, 1)
	assert.Len(t, pairings[0].Boards, 2)
	require.NotNil(t, pairings[0].TeamBID)
	assert.NotEqual(t, pairings[0].TeamAID, *pairings[0].TeamBID)
}
