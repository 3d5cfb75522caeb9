package models

// RoundCell is one round of a participant's standing row.
type RoundCell struct {
	Round      int     `json:"round"`
	OpponentID *int    `json:"opponent_id,omitempty"`
	Points     float64 `json:"points"`
	Bye        bool    `json:"bye"`
}

// TiebreakValue is one evaluated tiebreak. Most tiebreaks produce a single
// value; progressive score produces a vector compared lexicographically.
type TiebreakValue struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// StandingRow is a ranked standings entry. Rows are recomputed from the match
// ledger on every request, never patched incrementally.
type StandingRow struct {
	Rank          int             `json:"rank"`
	ParticipantID int             `json:"participant_id"`
	Participant   *Participant    `json:"participant,omitempty"`
	Score         float64         `json:"score"`
	Rounds        []RoundCell     `json:"rounds"`
	Tiebreaks     []TiebreakValue `json:"tiebreaks"`
}

// TeamStandingRow ranks teams by match points first, game points second.
type TeamStandingRow struct {
	Rank        int     `json:"rank"`
	TeamID      int     `json:"team_id"`
	Team        *Team   `json:"team,omitempty"`
	MatchPoints float64 `json:"match_points"`
	GamePoints  float64 `json:"game_points"`
	Wins        int     `json:"wins"`
	Draws       int     `json:"draws"`
	Losses      int     `json:"losses"`
}
