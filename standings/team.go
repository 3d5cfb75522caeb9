package standings

import (
	"sort"

	"github.com/crosstable/pairing-system/models"
)

// ComputeTeam ranks the teams of a section. Match points (2 for a round won
// on boards, 1 for a tied round, 0 for a loss; 2 for a team bye) order the
// table first; game points, aggregated from member totals per the scoring
// mode, break ties. A mode override applies the same mode to every team;
// with no override each team's own configuration is used.
func ComputeTeam(teams []*models.Team, participants []*models.Participant, matches []*models.Match, override *models.TeamScoringMode, overrideTopN int, cfg Config) []models.TeamStandingRow {
	teamOf := make(map[int]int)
	rosters := make(map[int][]*models.Participant)
	for _, p := range participants {
		if p.TeamID == nil {
			continue
		}
		teamOf[p.ID] = *p.TeamID
		rosters[*p.TeamID] = append(rosters[*p.TeamID], p)
	}

	memberScores := make(map[int]float64)
	byeTeams := make(map[int]map[int]bool) // team -> rounds with a team bye
	type roundKey struct{ round, team, opp int }
	roundGP := make(map[roundKey]float64)
	rounds := make(map[[2]int]map[int]bool) // (team, opp) -> rounds played

	lastRound := 0
	for _, m := range matches {
		if m.Round > lastRound {
			lastRound = m.Round
		}
	}

	for _, m := range matches {
		if m.IsBye {
			if m.SideAID != nil {
				memberScores[*m.SideAID] += cfg.ByePoints
				if t, ok := teamOf[*m.SideAID]; ok {
					if byeTeams[t] == nil {
						byeTeams[t] = make(map[int]bool)
					}
					byeTeams[t][m.Round] = true
				}
			}
			continue
		}
		if !m.Outcome.Decided() || m.SideAID == nil || m.SideBID == nil {
			continue
		}
		pa := m.PointsFor(*m.SideAID, cfg.ByePoints)
		pb := m.PointsFor(*m.SideBID, cfg.ByePoints)
		memberScores[*m.SideAID] += pa
		memberScores[*m.SideBID] += pb

		ta, okA := teamOf[*m.SideAID]
		tb, okB := teamOf[*m.SideBID]
		if !okA || !okB || ta == tb {
			continue
		}
		roundGP[roundKey{m.Round, ta, tb}] += pa
		roundGP[roundKey{m.Round, tb, ta}] += pb
		for _, pairKey := range [2][2]int{{ta, tb}, {tb, ta}} {
			if rounds[pairKey] == nil {
				rounds[pairKey] = make(map[int]bool)
			}
			rounds[pairKey][m.Round] = true
		}
	}

	for _, p := range participants {
		for _, r := range p.ByeRounds {
			if r >= 1 && r <= lastRound {
				memberScores[p.ID] += cfg.RequestedByePoints
			}
		}
	}

	rows := make([]models.TeamStandingRow, 0, len(teams))
	for _, team := range teams {
		row := models.TeamStandingRow{TeamID: team.ID, Team: team}

		mode, topN := team.Mode, team.TopN
		if override != nil {
			mode = *override
			topN = overrideTopN
		}
		row.GamePoints = teamGamePoints(rosters[team.ID], memberScores, mode, topN)

		for pair, rs := range rounds {
			if pair[0] != team.ID {
				continue
			}
			for r := range rs {
				own := roundGP[roundKey{r, pair[0], pair[1]}]
				opp := roundGP[roundKey{r, pair[1], pair[0]}]
				switch {
				case own > opp:
					row.MatchPoints += 2
					row.Wins++
				case own == opp:
					row.MatchPoints++
					row.Draws++
				default:
					row.Losses++
				}
			}
		}
		for range byeTeams[team.ID] {
			row.MatchPoints += 2
			row.Wins++
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].MatchPoints != rows[j].MatchPoints {
			return rows[i].MatchPoints > rows[j].MatchPoints
		}
		if rows[i].GamePoints != rows[j].GamePoints {
			return rows[i].GamePoints > rows[j].GamePoints
		}
		return rows[i].TeamID < rows[j].TeamID
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

// teamGamePoints aggregates member totals per the scoring mode. A top-N
// larger than the roster degrades to sum-all.
func teamGamePoints(roster []*models.Participant, memberScores map[int]float64, mode models.TeamScoringMode, topN int) float64 {
	totals := make([]float64, 0, len(roster))
	for _, p := range roster {
		totals = append(totals, memberScores[p.ID])
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(totals)))

	n := len(totals)
	if mode == models.ScoringSumTopN && topN > 0 && topN < n {
		n = topN
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += totals[i]
	}
	return sum
}
