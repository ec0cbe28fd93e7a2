package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/racket-club/models"
	"github.com/Dosada05/racket-club/repositories"
	"golang.org/x/sync/errgroup"
)

// Scope selects the whole competition or one group.
type Scope struct {
	GroupID *int
}

func (s Scope) String() string {
	if s.GroupID == nil {
		return "competition"
	}
	return fmt.Sprintf("group:%d", *s.GroupID)
}

// ParseScope accepts "", "competition" and "group:<id>".
func ParseScope(raw string) (Scope, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "competition" {
		return Scope{}, nil
	}
	if rest, ok := strings.CutPrefix(raw, "group:"); ok {
		id, err := strconv.Atoi(rest)
		if err == nil && id > 0 {
			return Scope{GroupID: &id}, nil
		}
	}
	return Scope{}, fmt.Errorf("%w: unknown standings scope %q", ErrValidationFailed, raw)
}

type StandingsService interface {
	GetStandings(ctx context.Context, competitionID int, scope Scope) ([]models.Standing, error)
}

type standingsService struct {
	store repositories.Store
}

func NewStandingsService(store repositories.Store) StandingsService {
	return &standingsService{store: store}
}

// GetStandings folds the current results on every call; it reads nothing but
// the stored matches and roster.
func (s *standingsService) GetStandings(ctx context.Context, competitionID int, scope Scope) ([]models.Standing, error) {
	repos := s.store.Repos()
	var (
		in    tableInput
		seed  []models.Standing
		teams []models.Team
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := repos.Competitions.GetByID(gCtx, competitionID)
		if err != nil {
			return mapRepoError(err)
		}
		settings, err := loadSettings(c)
		if err != nil {
			return err
		}
		in.competition, in.settings = c, settings
		return nil
	})
	g.Go(func() error {
		var err error
		seed, err = repos.Standings.ListSeed(gCtx, competitionID)
		return err
	})
	g.Go(func() error {
		var err error
		teams, err = repos.Teams.ListByCompetition(gCtx, competitionID)
		return err
	})
	g.Go(func() error {
		var err error
		in.matches, err = repos.Matches.ListByCompetition(gCtx, competitionID, repositories.MatchFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		in.leagueMatches, err = repos.LeagueMatches.ListByLeague(gCtx, competitionID)
		return err
	})
	g.Go(func() error {
		var err error
		in.groups, err = repos.Groups.ListByCompetition(gCtx, competitionID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	in.entries = entriesFromSeed(seed, teams)

	if scope.GroupID == nil {
		return competitionTable(in)
	}

	if err := requireFormat(in.competition, models.FormatGroupKnockout); err != nil {
		return nil, err
	}
	for _, group := range in.groups {
		if group.ID == *scope.GroupID {
			in.groups = []models.Group{group}
			tables, err := groupTables(in)
			if err != nil {
				return nil, err
			}
			return tables[0], nil
		}
	}
	return nil, fmt.Errorf("%w: %d in competition %d", ErrGroupNotFound, *scope.GroupID, competitionID)
}
