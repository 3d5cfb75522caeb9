package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/crosstable/pairing-system/models"
)

// TeamRepository is the read side of the team roster. Teams are always
// consumed per section, so no point lookup is exposed.
type TeamRepository interface {
	ListBySection(ctx context.Context, sectionID int) ([]*models.Team, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

const teamColumns = `id, section_id, name, scoring_mode, top_n, created_at`

func (r *postgresTeamRepository) ListBySection(ctx context.Context, sectionID int) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE section_id = $1 ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, sectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams for section %d: %w", sectionID, err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		t := &models.Team{}
		if scanErr := rows.Scan(
			&t.ID,
			&t.SectionID,
			&t.Name,
			&t.Mode,
			&t.TopN,
			&t.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", scanErr)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team rows: %w", err)
	}
	return teams, nil
}
