package services

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/crosstable/pairing-system/models"
	"github.com/crosstable/pairing-system/repositories"
)

// fakeTxRunner runs the unit of work directly; the in-memory repositories
// ignore the exec handle.
type fakeTxRunner struct{}

func (fakeTxRunner) RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return t, nil
}

type fakeSectionRepo struct {
	sections map[int]*models.Section
}

func (r *fakeSectionRepo) GetByID(ctx context.Context, id int) (*models.Section, error) {
	s, ok := r.sections[id]
	if !ok {
		return nil, repositories.ErrSectionNotFound
	}
	return s, nil
}

func (r *fakeSectionRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Section, error) {
	var out []*models.Section
	for id := 0; id < 1000; id++ {
		if s, ok := r.sections[id]; ok && s.TournamentID == tournamentID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeParticipantRepo struct {
	participants []*models.Participant
}

func (r *fakeParticipantRepo) GetByID(ctx context.Context, id int) (*models.Participant, error) {
	for _, p := range r.participants {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, repositories.ErrParticipantNotFound
}

func (r *fakeParticipantRepo) ListBySection(ctx context.Context, sectionID int, status *models.ParticipantStatus) ([]*models.Participant, error) {
	var out []*models.Participant
	for _, p := range r.participants {
		if p.SectionID != sectionID {
			continue
		}
		if status != nil && p.Status != *status {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type fakeMatchRepo struct {
	mu      sync.Mutex
	matches []*models.Match
	nextID  int
}

func (r *fakeMatchRepo) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, matches []*models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range matches {
		r.nextID++
		m.ID = r.nextID
		r.matches = append(r.matches, m)
	}
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.matches {
		if m.ID == id {
			copied := *m
			return &copied, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) ListBySectionRound(ctx context.Context, sectionID, round int) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Match
	for _, m := range r.matches {
		if m.SectionID == sectionID && m.Round == round {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) ListBySection(ctx context.Context, sectionID int) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Match
	for _, m := range r.matches {
		if m.SectionID == sectionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) ListByTournament(ctx context.Context, tournamentID int, round *int) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Match
	for _, m := range r.matches {
		if m.TournamentID != tournamentID {
			continue
		}
		if round != nil && m.Round != *round {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *fakeMatchRepo) CountBySectionRound(ctx context.Context, sectionID, round int) (int, error) {
	matches, _ := r.ListBySectionRound(ctx, sectionID, round)
	return len(matches), nil
}

func (r *fakeMatchRepo) UpdateOutcome(ctx context.Context, id int, outcome models.MatchOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.matches {
		if m.ID == id {
			m.Outcome = outcome
			return nil
		}
	}
	return repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) DeleteBySectionRound(ctx context.Context, exec repositories.SQLExecutor, sectionID, round int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.matches[:0]
	for _, m := range r.matches {
		if m.SectionID == sectionID && m.Round == round {
			continue
		}
		kept = append(kept, m)
	}
	r.matches = kept
	return nil
}

type fakeStateRepo struct {
	mu     sync.Mutex
	states map[[2]int]models.RoundState
}

func newFakeStateRepo() *fakeStateRepo {
	return &fakeStateRepo{states: make(map[[2]int]models.RoundState)}
}

func (r *fakeStateRepo) Get(ctx context.Context, sectionID, round int) (models.RoundState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.states[[2]int{sectionID, round}]; ok {
		return st, nil
	}
	return models.RoundEmpty, nil
}

func (r *fakeStateRepo) ListBySection(ctx context.Context, sectionID int) ([]*models.SectionRoundState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.SectionRoundState
	for round := 1; round <= 100; round++ {
		if st, ok := r.states[[2]int{sectionID, round}]; ok {
			out = append(out, &models.SectionRoundState{SectionID: sectionID, Round: round, State: st})
		}
	}
	return out, nil
}

func (r *fakeStateRepo) SetState(ctx context.Context, exec repositories.SQLExecutor, sectionID, round int, state models.RoundState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[[2]int{sectionID, round}] = state
	return nil
}

func (r *fakeStateRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, sectionID, round int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, [2]int{sectionID, round})
	return nil
}

type fakeTeamRepo struct {
	teams []*models.Team
}

func (r *fakeTeamRepo) ListBySection(ctx context.Context, sectionID int) ([]*models.Team, error) {
	var out []*models.Team
	for _, t := range r.teams {
		if t.SectionID == sectionID {
			out = append(out, t)
		}
	}
	return out, nil
}

// invalidationRecorder counts cache invalidations per section.
type invalidationRecorder struct {
	mu       sync.Mutex
	sections []int
}

func (r *invalidationRecorder) Invalidate(sectionID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sections = append(r.sections, sectionID)
}

func (r *invalidationRecorder) count(sectionID int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, id := range r.sections {
		if id == sectionID {
			n++
		}
	}
	return n
}

// fixture wires the full service stack over in-memory repositories.
type fixture struct {
	tournaments  *fakeTournamentRepo
	sections     *fakeSectionRepo
	participants *fakeParticipantRepo
	matches      *fakeMatchRepo
	states       *fakeStateRepo
	teams        *fakeTeamRepo
	recorder     *invalidationRecorder

	pairing PairingService
	rounds  RoundService
	results ResultService
}

func newFixture() *fixture {
	f := &fixture{
		tournaments:  &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament)},
		sections:     &fakeSectionRepo{sections: make(map[int]*models.Section)},
		participants: &fakeParticipantRepo{},
		matches:      &fakeMatchRepo{},
		states:       newFakeStateRepo(),
		teams:        &fakeTeamRepo{},
		recorder:     &invalidationRecorder{},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	locks := NewSectionLocker()
	f.pairing = NewPairingService(
		fakeTxRunner{},
		f.tournaments,
		f.sections,
		f.participants,
		f.matches,
		f.states,
		f.teams,
		f.recorder,
		locks,
		logger,
	)
	f.rounds = NewRoundService(
		fakeTxRunner{},
		f.tournaments,
		f.sections,
		f.matches,
		f.states,
		f.recorder,
		locks,
		logger,
	)
	f.results = NewResultService(f.matches, f.states, f.recorder, logger)
	return f
}

// seedSwiss sets up tournament 1 with one Swiss section (id 10) and an even
// field of rated participants.
func (f *fixture) seedSwiss(fieldSize int) {
	f.tournaments.tournaments[1] = &models.Tournament{
		ID:                 1,
		Name:               "City Championship",
		TotalRounds:        4,
		Strategy:           models.StrategySwiss,
		ByePoints:          1,
		RequestedByePoints: 0.5,
	}
	f.sections.sections[10] = &models.Section{ID: 10, TournamentID: 1, Name: "Open"}
	for i := 1; i <= fieldSize; i++ {
		rating := 2000 - i*50
		f.participants.participants = append(f.participants.participants, &models.Participant{
			ID:        i,
			SectionID: 10,
			Rating:    &rating,
			Status:    models.ParticipantActive,
			Seed:      i,
		})
	}
}
