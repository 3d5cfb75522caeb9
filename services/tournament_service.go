package services

import (
	"context"
	"errors"

	"github.com/crosstable/pairing-system/models"
	"github.com/crosstable/pairing-system/repositories"
)

// TournamentService exposes the read-only tournament structure the
// administrative layer needs to drive the engine.
type TournamentService interface {
	Get(ctx context.Context, id int) (*models.Tournament, error)
	ListSections(ctx context.Context, tournamentID int) ([]*models.Section, error)
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	sectionRepo    repositories.SectionRepository
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	sectionRepo repositories.SectionRepository,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		sectionRepo:    sectionRepo,
	}
}

func (s *tournamentService) Get(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	sections, err := s.sectionRepo.ListByTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	tournament.Sections = make([]models.Section, len(sections))
	for i, sec := range sections {
		tournament.Sections[i] = *sec
	}
	return tournament, nil
}

func (s *tournamentService) ListSections(ctx context.Context, tournamentID int) ([]*models.Section, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return s.sectionRepo.ListByTournament(ctx, tournamentID)
}
