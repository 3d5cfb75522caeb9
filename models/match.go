package models

import "time"

type MatchOutcome string

const (
	OutcomePending      MatchOutcome = "pending"
	OutcomeSideAWin     MatchOutcome = "side_a_win"
	OutcomeSideBWin     MatchOutcome = "side_b_win"
	OutcomeDraw         MatchOutcome = "draw"
	OutcomeSideAForfeit MatchOutcome = "side_a_win_forfeit"
	OutcomeSideBForfeit MatchOutcome = "side_b_win_forfeit"
	OutcomeDrawForfeit  MatchOutcome = "draw_forfeit"
)

func (o MatchOutcome) Valid() bool {
	switch o {
	case OutcomePending, OutcomeSideAWin, OutcomeSideBWin, OutcomeDraw,
		OutcomeSideAForfeit, OutcomeSideBForfeit, OutcomeDrawForfeit:
		return true
	}
	return false
}

// Decided reports whether the outcome is final, i.e. anything but pending.
func (o MatchOutcome) Decided() bool {
	return o != OutcomePending && o.Valid()
}

// Match is one board of one round. SideB is nil only for a bye.
type Match struct {
	ID           int `json:"id" db:"id"`
	TournamentID int `json:"tournament_id" db:"tournament_id"`
	SectionID    int `json:"section_id" db:"section_id"`
	Round        int `json:"round" db:"round"`
	Board        int `json:"board" db:"board"`

	SideAID *int `json:"side_a_id,omitempty" db:"side_a_id"`
	SideBID *int `json:"side_b_id,omitempty" db:"side_b_id"`

	Outcome MatchOutcome `json:"outcome" db:"outcome"`
	IsBye   bool         `json:"is_bye" db:"is_bye"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Involves reports whether the participant plays in this match.
func (m *Match) Involves(participantID int) bool {
	return (m.SideAID != nil && *m.SideAID == participantID) ||
		(m.SideBID != nil && *m.SideBID == participantID)
}

// OpponentOf returns the other side of the board, or nil for a bye or a
// participant not in the match.
func (m *Match) OpponentOf(participantID int) *int {
	if m.SideAID != nil && *m.SideAID == participantID {
		return m.SideBID
	}
	if m.SideBID != nil && *m.SideBID == participantID {
		return m.SideAID
	}
	return nil
}

// PointsFor returns the points the participant earned from this match.
// Byes score byePoints regardless of the stored outcome. Forfeit outcomes
// score the same as played results.
func (m *Match) PointsFor(participantID int, byePoints float64) float64 {
	if !m.Involves(participantID) {
		return 0
	}
	if m.IsBye {
		return byePoints
	}
	sideA := m.SideAID != nil && *m.SideAID == participantID
	switch m.Outcome {
	case OutcomeSideAWin, OutcomeSideAForfeit:
		if sideA {
			return 1
		}
	case OutcomeSideBWin, OutcomeSideBForfeit:
		if !sideA {
			return 1
		}
	case OutcomeDraw, OutcomeDrawForfeit:
		return 0.5
	}
	return 0
}
