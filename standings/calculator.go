// Package standings derives ranked tables from the match ledger. Rows are
// recomputed from scratch on every call; nothing here mutates state.
package standings

import (
	"fmt"
	"sort"
	"strings"

	"github.com/crosstable/pairing-system/models"
)

// Config controls scoring and the tiebreak pipeline. Tiebreaks are applied
// left to right, and only to rows with exactly equal scores; rating and then
// participant id are the implicit final fallbacks, so the resulting order is
// always total.
type Config struct {
	ByePoints          float64
	RequestedByePoints float64
	Tiebreaks          []string
}

func DefaultConfig() Config {
	return Config{
		ByePoints:          1,
		RequestedByePoints: 0.5,
		Tiebreaks:          []string{TiebreakBuchholzCut1, TiebreakSonnebornBerger, TiebreakProgressive},
	}
}

// Fingerprint identifies a configuration for caching purposes.
func (c Config) Fingerprint() string {
	return fmt.Sprintf("%g|%g|%s", c.ByePoints, c.RequestedByePoints, strings.Join(c.Tiebreaks, ","))
}

// game is one decided, non-bye game from a participant's point of view.
type game struct {
	opponent int
	points   float64
}

// table is the shared computation context handed to tiebreak functions.
type table struct {
	cfg      Config
	rounds   int
	scores   map[int]float64
	perRound map[int]map[int]float64 // participant -> round -> points
	games    map[int][]game
}

// Compute builds the ranked standings of one section.
func Compute(participants []*models.Participant, matches []*models.Match, cfg Config) ([]models.StandingRow, error) {
	breaks, err := ForNames(cfg.Tiebreaks)
	if err != nil {
		return nil, err
	}

	t := buildTable(participants, matches, cfg)

	rows := make([]models.StandingRow, 0, len(participants))
	for _, p := range participants {
		row := models.StandingRow{
			ParticipantID: p.ID,
			Participant:   p,
			Score:         t.scores[p.ID],
			Rounds:        roundCells(p, matches, t),
		}
		for _, tb := range breaks {
			row.Tiebreaks = append(row.Tiebreaks, models.TiebreakValue{
				Name:   tb.Name(),
				Values: tb.Values(p.ID, t),
			})
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return lessRow(&rows[i], &rows[j])
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows, nil
}

// lessRow compares score, then each tiebreak vector lexicographically, then
// rating descending, then id ascending. No two distinct rows compare equal.
func lessRow(a, b *models.StandingRow) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	for k := range a.Tiebreaks {
		if c := compareVectors(a.Tiebreaks[k].Values, b.Tiebreaks[k].Values); c != 0 {
			return c > 0
		}
	}
	ra, rb := a.Participant.RatingOrZero(), b.Participant.RatingOrZero()
	if ra != rb {
		return ra > rb
	}
	return a.ParticipantID < b.ParticipantID
}

func compareVectors(a, b []float64) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		switch {
		case a[i] > b[i]:
			return 1
		case a[i] < b[i]:
			return -1
		}
	}
	switch {
	case len(a) > len(b):
		return 1
	case len(a) < len(b):
		return -1
	}
	return 0
}

func buildTable(participants []*models.Participant, matches []*models.Match, cfg Config) *table {
	t := &table{
		cfg:      cfg,
		scores:   make(map[int]float64),
		perRound: make(map[int]map[int]float64),
		games:    make(map[int][]game),
	}
	for _, m := range matches {
		if m.Round > t.rounds {
			t.rounds = m.Round
		}
	}

	addPoints := func(pid, round int, pts float64) {
		t.scores[pid] += pts
		if t.perRound[pid] == nil {
			t.perRound[pid] = make(map[int]float64)
		}
		t.perRound[pid][round] += pts
	}

	for _, m := range matches {
		if m.IsBye {
			if m.SideAID != nil {
				addPoints(*m.SideAID, m.Round, cfg.ByePoints)
			}
			continue
		}
		if !m.Outcome.Decided() {
			continue
		}
		if m.SideAID != nil && m.SideBID != nil {
			pa := m.PointsFor(*m.SideAID, cfg.ByePoints)
			pb := m.PointsFor(*m.SideBID, cfg.ByePoints)
			addPoints(*m.SideAID, m.Round, pa)
			addPoints(*m.SideBID, m.Round, pb)
			t.games[*m.SideAID] = append(t.games[*m.SideAID], game{opponent: *m.SideBID, points: pa})
			t.games[*m.SideBID] = append(t.games[*m.SideBID], game{opponent: *m.SideAID, points: pb})
		}
	}

	for _, p := range participants {
		for _, r := range p.ByeRounds {
			if r >= 1 && r <= t.rounds {
				addPoints(p.ID, r, cfg.RequestedByePoints)
			}
		}
	}
	return t
}

func roundCells(p *models.Participant, matches []*models.Match, t *table) []models.RoundCell {
	cells := make([]models.RoundCell, 0, t.rounds)
	for r := 1; r <= t.rounds; r++ {
		cell := models.RoundCell{Round: r}
		if p.RequestedBye(r) {
			cell.Bye = true
			cell.Points = t.cfg.RequestedByePoints
			cells = append(cells, cell)
			continue
		}
		for _, m := range matches {
			if m.Round != r || !m.Involves(p.ID) {
				continue
			}
			cell.Bye = m.IsBye
			cell.OpponentID = m.OpponentOf(p.ID)
			if m.IsBye || m.Outcome.Decided() {
				cell.Points = m.PointsFor(p.ID, t.cfg.ByePoints)
			}
			break
		}
		cells = append(cells, cell)
	}
	return cells
}

// ValidateTiebreaks rejects unknown tiebreak names before any computation.
func ValidateTiebreaks(names []string) error {
	_, err := ForNames(names)
	return err
}
