package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/racket-club/models"
	"github.com/lib/pq"
)

type GroupRepository interface {
	ListByCompetition(ctx context.Context, competitionID int) ([]models.Group, error)
	// BatchCreate stores groups with their members and fills the group IDs in place.
	BatchCreate(ctx context.Context, groups []models.Group) error
	DeleteByCompetition(ctx context.Context, competitionID int) error
}

type postgresGroupRepository struct {
	exec SQLExecutor
}

func NewPostgresGroupRepository(exec SQLExecutor) GroupRepository {
	return &postgresGroupRepository{exec: exec}
}

func (r *postgresGroupRepository) ListByCompetition(ctx context.Context, competitionID int) ([]models.Group, error) {
	query := `
		SELECT g.id, g.competition_id, g.name, gt.team_id, gt.seed
		FROM competition_groups g
		LEFT JOIN group_teams gt ON gt.group_id = g.id
		WHERE g.competition_id = $1
		ORDER BY g.id ASC, gt.position ASC`

	rows, err := r.exec.QueryContext(ctx, query, competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]models.Group, 0)
	for rows.Next() {
		var (
			g      models.Group
			teamID *int
			seed   *int
		)
		if err := rows.Scan(&g.ID, &g.CompetitionID, &g.Name, &teamID, &seed); err != nil {
			return nil, err
		}
		if n := len(groups); n == 0 || groups[n-1].ID != g.ID {
			g.Teams = []models.GroupTeam{}
			groups = append(groups, g)
		}
		if teamID != nil {
			last := &groups[len(groups)-1]
			last.Teams = append(last.Teams, models.GroupTeam{TeamID: *teamID, Seed: seed})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *postgresGroupRepository) BatchCreate(ctx context.Context, groups []models.Group) error {
	groupQuery := `
		INSERT INTO competition_groups (competition_id, name)
		VALUES ($1, $2)
		RETURNING id`
	membersQuery := `
		INSERT INTO group_teams (group_id, team_id, seed, position)
		SELECT $1, m.team_id, m.seed, m.position
		FROM unnest($2::int[], $3::int[]) WITH ORDINALITY AS m(team_id, seed, position)`

	for i := range groups {
		g := &groups[i]
		if err := r.exec.QueryRowContext(ctx, groupQuery, g.CompetitionID, g.Name).Scan(&g.ID); err != nil {
			return fmt.Errorf("insert group %s: %w", g.Name, mapPQError(err))
		}

		teamIDs := make([]int64, len(g.Teams))
		seeds := make([]sql.NullInt64, len(g.Teams))
		for j, t := range g.Teams {
			teamIDs[j] = int64(t.TeamID)
			if t.Seed != nil {
				seeds[j] = sql.NullInt64{Int64: int64(*t.Seed), Valid: true}
			}
		}
		if _, err := r.exec.ExecContext(ctx, membersQuery, g.ID, pq.Array(teamIDs), pq.Array(seeds)); err != nil {
			return fmt.Errorf("insert members of group %s: %w", g.Name, mapPQError(err))
		}
	}
	return nil
}

func (r *postgresGroupRepository) DeleteByCompetition(ctx context.Context, competitionID int) error {
	// group_teams rows go with ON DELETE CASCADE
	_, err := r.exec.ExecContext(ctx, `DELETE FROM competition_groups WHERE competition_id = $1`, competitionID)
	return mapPQError(err)
}
