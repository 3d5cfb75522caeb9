package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/crosstable/pairing-system/models"
)

var ErrSectionNotFound = errors.New("section not found")

type SectionRepository interface {
	GetByID(ctx context.Context, id int) (*models.Section, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Section, error)
}

type postgresSectionRepository struct {
	db *sql.DB
}

func NewPostgresSectionRepository(db *sql.DB) SectionRepository {
	return &postgresSectionRepository{db: db}
}

const sectionColumns = `id, tournament_id, name, min_rating, max_rating, strategy, created_at`

func (r *postgresSectionRepository) GetByID(ctx context.Context, id int) (*models.Section, error) {
	query := `SELECT ` + sectionColumns + ` FROM sections WHERE id = $1`

	s := &models.Section{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID,
		&s.TournamentID,
		&s.Name,
		&s.MinRating,
		&s.MaxRating,
		&s.Strategy,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSectionNotFound
		}
		return nil, fmt.Errorf("failed to scan section %d: %w", id, err)
	}
	return s, nil
}

func (r *postgresSectionRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Section, error) {
	query := `SELECT ` + sectionColumns + ` FROM sections WHERE tournament_id = $1 ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sections for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	sections := make([]*models.Section, 0)
	for rows.Next() {
		s := &models.Section{}
		if scanErr := rows.Scan(
			&s.ID,
			&s.TournamentID,
			&s.Name,
			&s.MinRating,
			&s.MaxRating,
			&s.Strategy,
			&s.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan section row: %w", scanErr)
		}
		sections = append(sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating section rows: %w", err)
	}
	return sections, nil
}
