package repositories

import (
	"context"

	"github.com/Dosada05/racket-club/models"
)

type TeamRepository interface {
	// ListByCompetition returns the roster in roster order.
	ListByCompetition(ctx context.Context, competitionID int) ([]models.Team, error)
}

type postgresTeamRepository struct {
	exec SQLExecutor
}

func NewPostgresTeamRepository(exec SQLExecutor) TeamRepository {
	return &postgresTeamRepository{exec: exec}
}

func (r *postgresTeamRepository) ListByCompetition(ctx context.Context, competitionID int) ([]models.Team, error) {
	query := `
		SELECT id, competition_id, name, seed, created_at
		FROM competition_teams
		WHERE competition_id = $1
		ORDER BY seed ASC NULLS LAST, id ASC`

	rows, err := r.exec.QueryContext(ctx, query, competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.CompetitionID, &t.Name, &t.Seed, &t.CreatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}
