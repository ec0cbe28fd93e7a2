package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/racket-club/models"
)

type CompetitionRepository interface {
	GetByID(ctx context.Context, id int) (*models.Competition, error)
	// LockForUpdate reads the row with SELECT ... FOR UPDATE. Generation guards
	// take this lock before checking for existing rows.
	LockForUpdate(ctx context.Context, id int) (*models.Competition, error)
	UpdateOutcome(ctx context.Context, id int, status models.CompetitionStatus, winnerTeamID *int) error
}

type postgresCompetitionRepository struct {
	exec SQLExecutor
}

func NewPostgresCompetitionRepository(exec SQLExecutor) CompetitionRepository {
	return &postgresCompetitionRepository{exec: exec}
}

const competitionColumns = `id, name, format, status, settings_json, winner_team_id, created_at`

func (r *postgresCompetitionRepository) GetByID(ctx context.Context, id int) (*models.Competition, error) {
	query := `SELECT ` + competitionColumns + ` FROM competitions WHERE id = $1`
	return r.scan(r.exec.QueryRowContext(ctx, query, id))
}

func (r *postgresCompetitionRepository) LockForUpdate(ctx context.Context, id int) (*models.Competition, error) {
	query := `SELECT ` + competitionColumns + ` FROM competitions WHERE id = $1 FOR UPDATE`
	return r.scan(r.exec.QueryRowContext(ctx, query, id))
}

func (r *postgresCompetitionRepository) UpdateOutcome(ctx context.Context, id int, status models.CompetitionStatus, winnerTeamID *int) error {
	query := `UPDATE competitions SET status = $1, winner_team_id = $2 WHERE id = $3`
	result, err := r.exec.ExecContext(ctx, query, status, winnerTeamID, id)
	if err != nil {
		return mapPQError(err)
	}
	return checkAffectedRows(result, ErrCompetitionNotFound)
}

func (r *postgresCompetitionRepository) scan(row *sql.Row) (*models.Competition, error) {
	c := &models.Competition{}
	err := row.Scan(&c.ID, &c.Name, &c.Format, &c.Status, &c.SettingsJSON, &c.WinnerTeamID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}
	return c, nil
}
