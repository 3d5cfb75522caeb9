package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/crosstable/pairing-system/models"
	"github.com/crosstable/pairing-system/repositories"
	"github.com/crosstable/pairing-system/standings"
	"golang.org/x/sync/errgroup"
)

// SectionStandings is one section's ranked table.
type SectionStandings struct {
	Section *models.Section      `json:"section"`
	Rows    []models.StandingRow `json:"rows"`
}

// SectionTeamStandings is one section's ranked team table. Sections are
// never ranked against each other.
type SectionTeamStandings struct {
	Section *models.Section          `json:"section"`
	Rows    []models.TeamStandingRow `json:"rows"`
}

type StandingsService interface {
	// Standings computes ranked rows per section. A nil sectionID covers
	// every section of the tournament. A nil tiebreaks slice uses the
	// default pipeline.
	Standings(ctx context.Context, tournamentID int, sectionID *int, tiebreaks []string) ([]*SectionStandings, error)

	// TeamStandings computes team tables for every section that has teams.
	// A non-nil mode overrides each team's own scoring configuration.
	TeamStandings(ctx context.Context, tournamentID int, mode *models.TeamScoringMode, topN int) ([]*SectionTeamStandings, error)

	StandingsInvalidator
}

type standingsService struct {
	tournamentRepo  repositories.TournamentRepository
	sectionRepo     repositories.SectionRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	teamRepo        repositories.TeamRepository

	mu    sync.RWMutex
	cache map[int]map[string][]models.StandingRow // section -> config fingerprint -> rows
}

func NewStandingsService(
	tournamentRepo repositories.TournamentRepository,
	sectionRepo repositories.SectionRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
) StandingsService {
	return &standingsService{
		tournamentRepo:  tournamentRepo,
		sectionRepo:     sectionRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		teamRepo:        teamRepo,
		cache:           make(map[int]map[string][]models.StandingRow),
	}
}

func (s *standingsService) Standings(ctx context.Context, tournamentID int, sectionID *int, tiebreaks []string) ([]*SectionStandings, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	cfg := configFor(tournament, tiebreaks)
	if err := standings.ValidateTiebreaks(cfg.Tiebreaks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownTiebreak, err)
	}

	var sections []*models.Section
	if sectionID != nil {
		_, section, err := loadTournamentSection(ctx, s.tournamentRepo, s.sectionRepo, tournamentID, *sectionID)
		if err != nil {
			return nil, err
		}
		sections = []*models.Section{section}
	} else {
		sections, err = s.sectionRepo.ListByTournament(ctx, tournamentID)
		if err != nil {
			return nil, err
		}
	}

	result := make([]*SectionStandings, 0, len(sections))
	for _, section := range sections {
		rows, err := s.sectionRows(ctx, section, cfg)
		if err != nil {
			return nil, err
		}
		result = append(result, &SectionStandings{Section: section, Rows: rows})
	}
	return result, nil
}

func (s *standingsService) sectionRows(ctx context.Context, section *models.Section, cfg standings.Config) ([]models.StandingRow, error) {
	key := cfg.Fingerprint()
	s.mu.RLock()
	if rows, ok := s.cache[section.ID][key]; ok {
		s.mu.RUnlock()
		return rows, nil
	}
	s.mu.RUnlock()

	var (
		participants []*models.Participant
		matches      []*models.Match
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		participants, err = s.participantRepo.ListBySection(gCtx, section.ID, nil)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListBySection(gCtx, section.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows, err := standings.Compute(participants, matches, cfg)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.cache[section.ID] == nil {
		s.cache[section.ID] = make(map[string][]models.StandingRow)
	}
	s.cache[section.ID][key] = rows
	s.mu.Unlock()
	return rows, nil
}

func (s *standingsService) TeamStandings(ctx context.Context, tournamentID int, mode *models.TeamScoringMode, topN int) ([]*SectionTeamStandings, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if mode != nil && !mode.Valid() {
		return nil, fmt.Errorf("%w: unknown scoring mode %q", ErrValidationFailed, *mode)
	}

	sections, err := s.sectionRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	cfg := configFor(tournament, nil)

	result := make([]*SectionTeamStandings, 0, len(sections))
	for _, section := range sections {
		var (
			teams        []*models.Team
			participants []*models.Participant
			matches      []*models.Match
		)
		g, gCtx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			teams, err = s.teamRepo.ListBySection(gCtx, section.ID)
			return err
		})
		g.Go(func() error {
			var err error
			participants, err = s.participantRepo.ListBySection(gCtx, section.ID, nil)
			return err
		})
		g.Go(func() error {
			var err error
			matches, err = s.matchRepo.ListBySection(gCtx, section.ID)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		if len(teams) == 0 {
			continue
		}
		rows := standings.ComputeTeam(teams, participants, matches, mode, topN, cfg)
		result = append(result, &SectionTeamStandings{Section: section, Rows: rows})
	}
	return result, nil
}

// Invalidate drops every cached table of the section.
func (s *standingsService) Invalidate(sectionID int) {
	s.mu.Lock()
	delete(s.cache, sectionID)
	s.mu.Unlock()
}

func configFor(t *models.Tournament, tiebreaks []string) standings.Config {
	cfg := standings.DefaultConfig()
	cfg.ByePoints = t.ByePoints
	cfg.RequestedByePoints = t.RequestedByePoints
	if len(tiebreaks) > 0 {
		cfg.Tiebreaks = tiebreaks
	}
	return cfg
}
