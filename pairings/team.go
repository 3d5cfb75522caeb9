package pairings

import (
	"context"
	"sort"

	"github.com/crosstable/pairing-system/models"
)

// TeamGenerator pairs whole teams with the same ranking-and-backtracking
// logic the Swiss generator applies to individuals, then fills the boards of
// each team pairing by descending roster rating. Team scores used for the
// ranking are derived from the members' board results; the authoritative
// team standings live in the standings calculator.
type TeamGenerator struct{}

func NewTeamGenerator() Generator {
	return &TeamGenerator{}
}

func (g *TeamGenerator) Name() string {
	return "Team"
}

type teamEntry struct {
	team        *models.Team
	roster      []*models.Participant // active members, rating descending
	matchPoints float64
	gamePoints  float64
	avgRating   float64
}

func (g *TeamGenerator) Generate(ctx context.Context, params GenerateParams) ([]*models.Match, error) {
	teamOf := make(map[int]int) // participant -> team
	rosters := make(map[int][]*models.Participant)
	for _, p := range params.Participants {
		if p.Status != models.ParticipantActive || p.TeamID == nil {
			continue
		}
		teamOf[p.ID] = *p.TeamID
		rosters[*p.TeamID] = append(rosters[*p.TeamID], p)
	}

	entries := make([]*teamEntry, 0, len(params.Teams))
	for _, t := range params.Teams {
		roster := rosters[t.ID]
		if len(roster) == 0 {
			continue
		}
		sort.SliceStable(roster, func(i, j int) bool {
			if roster[i].RatingOrZero() != roster[j].RatingOrZero() {
				return roster[i].RatingOrZero() > roster[j].RatingOrZero()
			}
			return roster[i].Seed < roster[j].Seed
		})
		e := &teamEntry{team: t, roster: roster}
		total := 0
		for _, p := range roster {
			total += p.RatingOrZero()
		}
		e.avgRating = float64(total) / float64(len(roster))
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil, ErrInsufficientParticipants
	}

	mp, gp := teamPointsByTeam(params.Matches, teamOf, params.Tournament.ByePoints)
	for _, e := range entries {
		e.matchPoints = mp[e.team.ID]
		e.gamePoints = gp[e.team.ID]
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].matchPoints != entries[j].matchPoints {
			return entries[i].matchPoints > entries[j].matchPoints
		}
		if entries[i].gamePoints != entries[j].gamePoints {
			return entries[i].gamePoints > entries[j].gamePoints
		}
		if entries[i].avgRating != entries[j].avgRating {
			return entries[i].avgRating > entries[j].avgRating
		}
		return entries[i].team.ID < entries[j].team.ID
	})

	played := teamOpponents(params.Matches, teamOf)
	hadBye := teamByes(params.Matches, teamOf)

	var (
		pairs   [][2]*teamEntry
		byeTeam *teamEntry
		ok      bool
	)
	if len(entries)%2 == 0 {
		pairs, ok = pairTeams(entries, played)
		if !ok {
			return nil, ErrNoFeasiblePairing
		}
	} else {
		pairs, byeTeam, ok = pairTeamsWithBye(entries, played, hadBye)
		if !ok {
			return nil, ErrNoFeasiblePairing
		}
	}

	var matches []*models.Match
	board := 0
	for _, pair := range pairs {
		a, b := pair[0], pair[1]
		n := len(a.roster)
		if len(b.roster) < n {
			n = len(b.roster)
		}
		for i := 0; i < n; i++ {
			board++
			pa, pb := a.roster[i], b.roster[i]
			// Sides alternate down the boards so neither team plays a whole
			// round on one side.
			sideA, sideB := pa, pb
			if i%2 == 1 {
				sideA, sideB = pb, pa
			}
			matches = append(matches, &models.Match{
				TournamentID: params.Tournament.ID,
				SectionID:    params.Section.ID,
				Round:        params.Round,
				Board:        board,
				SideAID:      &sideA.ID,
				SideBID:      &sideB.ID,
				Outcome:      models.OutcomePending,
			})
		}
	}
	if byeTeam != nil {
		for _, p := range byeTeam.roster {
			board++
			matches = append(matches, byeMatch(params, params.Round, board, p))
		}
	}
	return matches, nil
}

// teamPointsByTeam derives accumulated match points (2/1/0 per round) and
// game points (sum of board results) from the individual board matches.
func teamPointsByTeam(matches []*models.Match, teamOf map[int]int, byePoints float64) (map[int]float64, map[int]float64) {
	type roundKey struct {
		round int
		teamA int
		teamB int
	}
	roundGP := make(map[roundKey]float64) // board points teamA earned vs teamB in round
	gamePoints := make(map[int]float64)

	for _, m := range matches {
		if m.IsBye {
			if m.SideAID != nil {
				if t, ok := teamOf[*m.SideAID]; ok {
					gamePoints[t] += m.PointsFor(*m.SideAID, byePoints)
				}
			}
			continue
		}
		if !m.Outcome.Decided() || m.SideAID == nil || m.SideBID == nil {
			continue
		}
		ta, okA := teamOf[*m.SideAID]
		tb, okB := teamOf[*m.SideBID]
		if !okA || !okB || ta == tb {
			continue
		}
		pa := m.PointsFor(*m.SideAID, byePoints)
		pb := m.PointsFor(*m.SideBID, byePoints)
		gamePoints[ta] += pa
		gamePoints[tb] += pb
		roundGP[roundKey{m.Round, ta, tb}] += pa
		roundGP[roundKey{m.Round, tb, ta}] += pb
	}

	matchPoints := make(map[int]float64)
	for k, pts := range roundGP {
		opp := roundGP[roundKey{k.round, k.teamB, k.teamA}]
		switch {
		case pts > opp:
			matchPoints[k.teamA] += 2
		case pts == opp:
			matchPoints[k.teamA]++
		}
	}
	return matchPoints, gamePoints
}

// teamOpponents derives which teams already met from the members' matches.
func teamOpponents(matches []*models.Match, teamOf map[int]int) map[int]map[int]bool {
	met := make(map[int]map[int]bool)
	for _, m := range matches {
		if m.IsBye || m.SideAID == nil || m.SideBID == nil {
			continue
		}
		ta, okA := teamOf[*m.SideAID]
		tb, okB := teamOf[*m.SideBID]
		if !okA || !okB || ta == tb {
			continue
		}
		if met[ta] == nil {
			met[ta] = make(map[int]bool)
		}
		if met[tb] == nil {
			met[tb] = make(map[int]bool)
		}
		met[ta][tb] = true
		met[tb][ta] = true
	}
	return met
}

func teamByes(matches []*models.Match, teamOf map[int]int) map[int]bool {
	byed := make(map[int]bool)
	for _, m := range matches {
		if m.IsBye && m.SideAID != nil {
			if t, ok := teamOf[*m.SideAID]; ok {
				byed[t] = true
			}
		}
	}
	return byed
}

func pairTeams(entries []*teamEntry, played map[int]map[int]bool) ([][2]*teamEntry, bool) {
	if len(entries) == 0 {
		return nil, true
	}
	first := entries[0]
	for j := 1; j < len(entries); j++ {
		opp := entries[j]
		if played[first.team.ID][opp.team.ID] {
			continue
		}
		rest := make([]*teamEntry, 0, len(entries)-2)
		rest = append(rest, entries[1:j]...)
		rest = append(rest, entries[j+1:]...)
		tail, ok := pairTeams(rest, played)
		if ok {
			return append([][2]*teamEntry{{first, opp}}, tail...), true
		}
	}
	return nil, false
}

func pairTeamsWithBye(entries []*teamEntry, played map[int]map[int]bool, hadBye map[int]bool) ([][2]*teamEntry, *teamEntry, bool) {
	candidates := make([]int, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if !hadBye[entries[i].team.ID] {
			candidates = append(candidates, i)
		}
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if hadBye[entries[i].team.ID] {
			candidates = append(candidates, i)
		}
	}
	for _, idx := range candidates {
		rest := make([]*teamEntry, 0, len(entries)-1)
		rest = append(rest, entries[:idx]...)
		rest = append(rest, entries[idx+1:]...)
		pairs, ok := pairTeams(rest, played)
		if ok {
			return pairs, entries[idx], true
		}
	}
	return nil, nil, false
}
