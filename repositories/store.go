package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// Repositories is one consistent view of the entity store. Inside RunInTx
// every repository shares the same transaction.
type Repositories struct {
	Competitions  CompetitionRepository
	Teams         TeamRepository
	Matches       MatchRepository
	Groups        GroupRepository
	Standings     StandingRepository
	LeagueMatches LeagueMatchRepository
}

type Store interface {
	Repos() Repositories
	// RunInTx commits when fn returns nil and rolls back otherwise, so a
	// rejected operation leaves no partial writes.
	RunInTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

func newPostgresRepositories(exec SQLExecutor) Repositories {
	return Repositories{
		Competitions:  NewPostgresCompetitionRepository(exec),
		Teams:         NewPostgresTeamRepository(exec),
		Matches:       NewPostgresMatchRepository(exec),
		Groups:        NewPostgresGroupRepository(exec),
		Standings:     NewPostgresStandingRepository(exec),
		LeagueMatches: NewPostgresLeagueMatchRepository(exec),
	}
}

type PostgresStore struct {
	db     *sql.DB
	repos  Repositories
	logger *slog.Logger
}

func NewPostgresStore(db *sql.DB, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{db: db, repos: newPostgresRepositories(db), logger: logger}
}

func (s *PostgresStore) Repos() Repositories {
	return s.repos
}

func (s *PostgresStore) RunInTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.ErrorContext(ctx, "rollback failed", slog.Any("error", rbErr), slog.Any("cause", err))
				err = fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()

	err = fn(ctx, newPostgresRepositories(tx))
	return err
}
