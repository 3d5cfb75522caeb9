package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/crosstable/pairing-system/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrMatchInvalidRef    = errors.New("match references an unknown tournament, section, or participant")
	ErrMatchDuplicateSlot = errors.New("match conflicts with an existing board")
)

type MatchRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListBySectionRound(ctx context.Context, sectionID, round int) ([]*models.Match, error)
	ListBySection(ctx context.Context, sectionID int) ([]*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, round *int) ([]*models.Match, error)
	CountBySectionRound(ctx context.Context, sectionID, round int) (int, error)
	UpdateOutcome(ctx context.Context, id int, outcome models.MatchOutcome) error
	DeleteBySectionRound(ctx context.Context, exec SQLExecutor, sectionID, round int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, tournament_id, section_id, round, board, side_a_id, side_b_id, outcome, is_bye, created_at`

func (r *postgresMatchRepository) CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	query := `
		INSERT INTO matches
			(tournament_id, section_id, round, board, side_a_id, side_b_id, outcome, is_bye)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	for _, m := range matches {
		err := exec.QueryRowContext(ctx, query,
			m.TournamentID,
			m.SectionID,
			m.Round,
			m.Board,
			m.SideAID,
			m.SideBID,
			m.Outcome,
			m.IsBye,
		).Scan(&m.ID, &m.CreatedAt)
		if err != nil {
			return r.handleMatchError(err)
		}
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	m := &models.Match{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID,
		&m.TournamentID,
		&m.SectionID,
		&m.Round,
		&m.Board,
		&m.SideAID,
		&m.SideBID,
		&m.Outcome,
		&m.IsBye,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %d: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) ListBySectionRound(ctx context.Context, sectionID, round int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE section_id = $1 AND round = $2 ORDER BY board ASC`
	return r.list(ctx, query, sectionID, round)
}

func (r *postgresMatchRepository) ListBySection(ctx context.Context, sectionID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE section_id = $1 ORDER BY round ASC, board ASC`
	return r.list(ctx, query, sectionID)
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int, roundFilter *int) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	if roundFilter != nil {
		queryBuilder.WriteString(" AND round = $")
		queryBuilder.WriteString(strconv.Itoa(len(args) + 1))
		args = append(args, *roundFilter)
	}
	queryBuilder.WriteString(" ORDER BY section_id ASC, round ASC, board ASC")

	return r.list(ctx, queryBuilder.String(), args...)
}

func (r *postgresMatchRepository) CountBySectionRound(ctx context.Context, sectionID, round int) (int, error) {
	query := `SELECT COUNT(*) FROM matches WHERE section_id = $1 AND round = $2`

	var count int
	if err := r.db.QueryRowContext(ctx, query, sectionID, round).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matches for section %d round %d: %w", sectionID, round, err)
	}
	return count, nil
}

func (r *postgresMatchRepository) UpdateOutcome(ctx context.Context, id int, outcome models.MatchOutcome) error {
	query := `UPDATE matches SET outcome = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, outcome, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) DeleteBySectionRound(ctx context.Context, exec SQLExecutor, sectionID, round int) error {
	query := `DELETE FROM matches WHERE section_id = $1 AND round = $2`

	if _, err := exec.ExecContext(ctx, query, sectionID, round); err != nil {
		return fmt.Errorf("failed to delete matches for section %d round %d: %w", sectionID, round, err)
	}
	return nil
}

func (r *postgresMatchRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m := &models.Match{}
		if scanErr := rows.Scan(
			&m.ID,
			&m.TournamentID,
			&m.SectionID,
			&m.Round,
			&m.Board,
			&m.SideAID,
			&m.SideBID,
			&m.Outcome,
			&m.IsBye,
			&m.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match rows: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23503": // foreign_key_violation
			return ErrMatchInvalidRef
		case "23505": // unique_violation
			return ErrMatchDuplicateSlot
		}
	}
	return fmt.Errorf("match repository error: %w", err)
}
