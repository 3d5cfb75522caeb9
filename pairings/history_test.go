package pairings

import (
	"testing"

	"github.com/crosstable/pairing-system/models"
	"github.com/stretchr/testify/assert"
)

func TestHistory_ScoresAndOpponents(t *testing.T) {
	tournament := testTournament(models.StrategySwiss)
	participants := []*models.Participant{
		testParticipant(1, 1800),
		testParticipant(2, 1700),
		testParticipant(3, 1600),
		testParticipant(4, 1500),
	}
	matches := []*models.Match{
		playedMatch(1, 1, 1, 2, models.OutcomeSideAWin),
		playedMatch(1, 2, 3, 4, models.OutcomeDraw),
		playedMatch(2, 1, 1, 3, models.OutcomeSideBForfeit),
	}

	h := NewHistory(tournament, participants, matches)

	assert.Equal(t, 1.0, h.Score(1))
	assert.Equal(t, 0.0, h.Score(2))
	assert.Equal(t, 1.5, h.Score(3), "draw plus forfeit win")
	assert.Equal(t, 0.5, h.Score(4))

	assert.True(t, h.HavePlayed(1, 2))
	assert.True(t, h.HavePlayed(2, 1))
	assert.True(t, h.HavePlayed(1, 3), "forfeited boards still count as met")
	assert.False(t, h.HavePlayed(1, 4))

	assert.Equal(t, 2, h.LastRound())
}

func TestHistory_PendingMatchesCountAsMetButNotScored(t *testing.T) {
	tournament := testTournament(models.StrategySwiss)
	participants := []*models.Participant{
		testParticipant(1, 1800),
		testParticipant(2, 1700),
	}
	matches := []*models.Match{
		playedMatch(1, 1, 1, 2, models.OutcomePending),
	}

	h := NewHistory(tournament, participants, matches)
	assert.True(t, h.HavePlayed(1, 2))
	assert.Zero(t, h.Score(1))
	assert.Zero(t, h.Score(2))
}

func TestHistory_ByeScoring(t *testing.T) {
	tournament := testTournament(models.StrategySwiss)
	tournament.ByePoints = 0.5
	participants := []*models.Participant{
		testParticipant(1, 1800),
		testParticipant(2, 1700),
		testParticipant(3, 1600),
	}
	matches := []*models.Match{
		playedMatch(1, 1, 1, 2, models.OutcomeSideAWin),
		byeFor(1, 2, 3),
	}

	h := NewHistory(tournament, participants, matches)
	assert.Equal(t, 0.5, h.Score(3), "bye scores the configured points")
	assert.True(t, h.HadBye(3))
	assert.False(t, h.HadBye(1))
	assert.False(t, h.HavePlayed(3, 1))
}

func TestHistory_RequestedByeScoresOnlyPlayedRounds(t *testing.T) {
	tournament := testTournament(models.StrategySwiss)
	sitter := testParticipant(3, 1600)
	sitter.ByeRounds = []int{1, 4}
	participants := []*models.Participant{
		testParticipant(1, 1800),
		testParticipant(2, 1700),
		sitter,
	}
	matches := []*models.Match{
		playedMatch(1, 1, 1, 2, models.OutcomeSideAWin),
	}

	h := NewHistory(tournament, participants, matches)
	assert.Equal(t, 0.5, h.Score(3), "round four has not happened yet")
}

func TestHistory_SideBalance(t *testing.T) {
	tournament := testTournament(models.StrategySwiss)
	participants := []*models.Participant{
		testParticipant(1, 1800),
		testParticipant(2, 1700),
		testParticipant(3, 1600),
	}
	matches := []*models.Match{
		playedMatch(1, 1, 1, 2, models.OutcomeSideAWin),
		playedMatch(2, 1, 1, 3, models.OutcomeSideAWin),
		playedMatch(3, 1, 2, 1, models.OutcomeSideAWin),
	}

	h := NewHistory(tournament, participants, matches)
	assert.Equal(t, 1, h.SideBalance(1), "two side A, one side B")
	assert.Equal(t, 0, h.SideBalance(2))
	assert.Equal(t, -1, h.SideBalance(3))
}
