package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/crosstable/pairing-system/models"
)

// RoundStateRepository persists the SectionRoundState ladder. A missing row
// is the Empty state, so Get never fails on absence. Mutating methods accept
// a nil exec to run against the repository's own handle outside a
// transaction.
type RoundStateRepository interface {
	Get(ctx context.Context, sectionID, round int) (models.RoundState, error)
	ListBySection(ctx context.Context, sectionID int) ([]*models.SectionRoundState, error)
	SetState(ctx context.Context, exec SQLExecutor, sectionID, round int, state models.RoundState) error
	Delete(ctx context.Context, exec SQLExecutor, sectionID, round int) error
}

type postgresRoundStateRepository struct {
	db *sql.DB
}

func NewPostgresRoundStateRepository(db *sql.DB) RoundStateRepository {
	return &postgresRoundStateRepository{db: db}
}

func (r *postgresRoundStateRepository) Get(ctx context.Context, sectionID, round int) (models.RoundState, error) {
	query := `SELECT state FROM section_round_states WHERE section_id = $1 AND round = $2`

	var state models.RoundState
	err := r.db.QueryRowContext(ctx, query, sectionID, round).Scan(&state)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.RoundEmpty, nil
		}
		return "", fmt.Errorf("failed to scan round state for section %d round %d: %w", sectionID, round, err)
	}
	return state, nil
}

func (r *postgresRoundStateRepository) ListBySection(ctx context.Context, sectionID int) ([]*models.SectionRoundState, error) {
	query := `
		SELECT section_id, round, state, updated_at
		FROM section_round_states
		WHERE section_id = $1
		ORDER BY round ASC`

	rows, err := r.db.QueryContext(ctx, query, sectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query round states for section %d: %w", sectionID, err)
	}
	defer rows.Close()

	states := make([]*models.SectionRoundState, 0)
	for rows.Next() {
		s := &models.SectionRoundState{}
		if scanErr := rows.Scan(&s.SectionID, &s.Round, &s.State, &s.UpdatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan round state row: %w", scanErr)
		}
		states = append(states, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating round state rows: %w", err)
	}
	return states, nil
}

func (r *postgresRoundStateRepository) SetState(ctx context.Context, exec SQLExecutor, sectionID, round int, state models.RoundState) error {
	if exec == nil {
		exec = r.db
	}
	query := `
		INSERT INTO section_round_states (section_id, round, state, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (section_id, round)
		DO UPDATE SET state = EXCLUDED.state, updated_at = NOW()`

	if _, err := exec.ExecContext(ctx, query, sectionID, round, state); err != nil {
		return fmt.Errorf("failed to set round state for section %d round %d: %w", sectionID, round, err)
	}
	return nil
}

func (r *postgresRoundStateRepository) Delete(ctx context.Context, exec SQLExecutor, sectionID, round int) error {
	if exec == nil {
		exec = r.db
	}
	query := `DELETE FROM section_round_states WHERE section_id = $1 AND round = $2`

	if _, err := exec.ExecContext(ctx, query, sectionID, round); err != nil {
		return fmt.Errorf("failed to delete round state for section %d round %d: %w", sectionID, round, err)
	}
	return nil
}
