package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/racket-club/brackets"
	"github.com/Dosada05/racket-club/models"
	"github.com/Dosada05/racket-club/repositories"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type CompetitionService interface {
	GetCompetition(ctx context.Context, competitionID int) (*CompetitionView, error)
	ListMatches(ctx context.Context, competitionID int, filter repositories.MatchFilter) ([]*models.Match, error)
	ListGroups(ctx context.Context, competitionID int) ([]models.Group, error)

	GenerateBracket(ctx context.Context, competitionID int) ([]*models.Match, error)
	GenerateGroupStage(ctx context.Context, competitionID, numberOfGroups int) ([]models.Group, error)
	RegenerateGroupStage(ctx context.Context, competitionID, numberOfGroups int) ([]models.Group, error)
	GenerateKnockout(ctx context.Context, competitionID, teamsPerGroup int) ([]*models.Match, error)
}

// CompetitionView is a competition with its roster, groups and matches.
type CompetitionView struct {
	*models.Competition
	Settings *models.CompetitionSettings `json:"settings"`
	Teams    []models.Team               `json:"teams"`
	Groups   []models.Group              `json:"groups"`
	Matches  []*models.Match             `json:"matches"`
}

// GroupStagePayload is broadcast after a group stage is generated.
type GroupStagePayload struct {
	Groups  []models.Group  `json:"groups"`
	Matches []*models.Match `json:"matches"`
}

type competitionService struct {
	store  repositories.Store
	notify notifier
	logger *slog.Logger
}

func NewCompetitionService(store repositories.Store, events EventPublisher, snapshots SnapshotPublisher, logger *slog.Logger) CompetitionService {
	return &competitionService{
		store:  store,
		notify: notifier{events: events, snapshots: snapshots, logger: logger},
		logger: logger,
	}
}

func (s *competitionService) GetCompetition(ctx context.Context, competitionID int) (*CompetitionView, error) {
	repos := s.store.Repos()
	view := &CompetitionView{}

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
		view.Competition, view.Settings = c, settings
		return nil
	})
	g.Go(func() error {
		teams, err := repos.Teams.ListByCompetition(gCtx, competitionID)
		if err != nil {
			return fmt.Errorf("failed to list teams of competition %d: %w", competitionID, err)
		}
		view.Teams = teams
		return nil
	})
	g.Go(func() error {
		groups, err := repos.Groups.ListByCompetition(gCtx, competitionID)
		if err != nil {
			return fmt.Errorf("failed to list groups of competition %d: %w", competitionID, err)
		}
		view.Groups = groups
		return nil
	})
	g.Go(func() error {
		matches, err := repos.Matches.ListByCompetition(gCtx, competitionID, repositories.MatchFilter{})
		if err != nil {
			return fmt.Errorf("failed to list matches of competition %d: %w", competitionID, err)
		}
		view.Matches = matches
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

func (s *competitionService) ListMatches(ctx context.Context, competitionID int, filter repositories.MatchFilter) ([]*models.Match, error) {
	repos := s.store.Repos()
	if _, err := repos.Competitions.GetByID(ctx, competitionID); err != nil {
		return nil, mapRepoError(err)
	}
	return repos.Matches.ListByCompetition(ctx, competitionID, filter)
}

func (s *competitionService) ListGroups(ctx context.Context, competitionID int) ([]models.Group, error) {
	repos := s.store.Repos()
	if _, err := repos.Competitions.GetByID(ctx, competitionID); err != nil {
		return nil, mapRepoError(err)
	}
	return repos.Groups.ListByCompetition(ctx, competitionID)
}

func (s *competitionService) GenerateBracket(ctx context.Context, competitionID int) ([]*models.Match, error) {
	var matches []*models.Match
	err := s.store.RunInTx(ctx, func(ctx context.Context, repos repositories.Repositories) error {
		competition, err := repos.Competitions.LockForUpdate(ctx, competitionID)
		if err != nil {
			return mapRepoError(err)
		}
		if err := requireFormat(competition, models.FormatSingleElimination, models.FormatRoundRobin); err != nil {
			return err
		}
		if err := ensureNotGenerated(ctx, repos, competitionID); err != nil {
			return err
		}
		settings, err := loadSettings(competition)
		if err != nil {
			return err
		}
		teams, err := repos.Teams.ListByCompetition(ctx, competitionID)
		if err != nil {
			return err
		}

		generator, err := brackets.NewGenerator(competition.Format)
		if err != nil {
			return classifyEngineError(err)
		}
		matches, err = generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
			Competition:  competition,
			Settings:     settings,
			Teams:        teams,
			GenerationID: uuid.NewString(),
		})
		if err != nil {
			return classifyEngineError(fmt.Errorf("%s generator: %w", generator.GetName(), err))
		}

		if err := repos.Matches.BatchCreate(ctx, matches); err != nil {
			return mapInsertError(competitionID, "matches", err)
		}
		if err := seedStandings(ctx, repos, competitionID, rosterEntries(teams)); err != nil {
			return err
		}
		return repos.Competitions.UpdateOutcome(ctx, competitionID, models.CompetitionStatusActive, nil)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "bracket generated",
		slog.Int("competition_id", competitionID), slog.Int("matches", len(matches)))
	s.notify.publish(competitionID, brackets.EventBracketGenerated, matches)
	return matches, nil
}

func (s *competitionService) GenerateGroupStage(ctx context.Context, competitionID, numberOfGroups int) ([]models.Group, error) {
	return s.generateGroupStage(ctx, competitionID, numberOfGroups, false)
}

// RegenerateGroupStage replaces a group stage that has no completed match and
// no knockout yet.
func (s *competitionService) RegenerateGroupStage(ctx context.Context, competitionID, numberOfGroups int) ([]models.Group, error) {
	return s.generateGroupStage(ctx, competitionID, numberOfGroups, true)
}

func (s *competitionService) generateGroupStage(ctx context.Context, competitionID, numberOfGroups int, replace bool) ([]models.Group, error) {
	var (
		groups  []models.Group
		matches []*models.Match
	)
	err := s.store.RunInTx(ctx, func(ctx context.Context, repos repositories.Repositories) error {
		competition, err := repos.Competitions.LockForUpdate(ctx, competitionID)
		if err != nil {
			return mapRepoError(err)
		}
		if err := requireFormat(competition, models.FormatGroupKnockout); err != nil {
			return err
		}
		if replace {
			if err := purgeGroupStage(ctx, repos, competitionID); err != nil {
				return err
			}
		}
		if err := ensureNotGenerated(ctx, repos, competitionID); err != nil {
			return err
		}
		teams, err := repos.Teams.ListByCompetition(ctx, competitionID)
		if err != nil {
			return err
		}

		groups, err = brackets.BuildGroups(teams, numberOfGroups)
		if err != nil {
			return classifyEngineError(err)
		}
		for i := range groups {
			groups[i].CompetitionID = competitionID
		}
		if err := repos.Groups.BatchCreate(ctx, groups); err != nil {
			return mapInsertError(competitionID, "groups", err)
		}

		matches, err = brackets.BuildGroupMatches(groups)
		if err != nil {
			return classifyEngineError(err)
		}
		brackets.StampMatches(matches, competitionID, uuid.NewString())
		if err := repos.Matches.BatchCreate(ctx, matches); err != nil {
			return mapInsertError(competitionID, "matches", err)
		}
		if err := seedStandings(ctx, repos, competitionID, groupEntries(groups, teams)); err != nil {
			return err
		}
		return repos.Competitions.UpdateOutcome(ctx, competitionID, models.CompetitionStatusActive, nil)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "group stage generated",
		slog.Int("competition_id", competitionID),
		slog.Int("groups", len(groups)),
		slog.Int("matches", len(matches)),
		slog.Bool("replaced", replace))
	s.notify.publish(competitionID, brackets.EventGroupsGenerated, GroupStagePayload{Groups: groups, Matches: matches})
	return groups, nil
}

func purgeGroupStage(ctx context.Context, repos repositories.Repositories, competitionID int) error {
	knockout, err := repos.Matches.CountByCompetition(ctx, competitionID, repositories.StageFilter(models.StageKnockout))
	if err != nil {
		return err
	}
	if knockout > 0 {
		return fmt.Errorf("%w: competition %d already has a knockout bracket", ErrStageLocked, competitionID)
	}

	completed := repositories.StageFilter(models.StageGroup)
	status := models.MatchStatusCompleted
	completed.Status = &status
	played, err := repos.Matches.CountByCompetition(ctx, competitionID, completed)
	if err != nil {
		return err
	}
	if played > 0 {
		return fmt.Errorf("%w: %d group matches are already completed", ErrStageLocked, played)
	}

	if _, err := repos.Matches.DeleteByCompetition(ctx, competitionID, repositories.StageFilter(models.StageGroup)); err != nil {
		return err
	}
	if err := repos.Groups.DeleteByCompetition(ctx, competitionID); err != nil {
		return err
	}
	return repos.Standings.DeleteByCompetition(ctx, competitionID)
}

func (s *competitionService) GenerateKnockout(ctx context.Context, competitionID, teamsPerGroup int) ([]*models.Match, error) {
	var (
		matches []*models.Match
		table   []models.Standing
	)
	err := s.store.RunInTx(ctx, func(ctx context.Context, repos repositories.Repositories) error {
		competition, err := repos.Competitions.LockForUpdate(ctx, competitionID)
		if err != nil {
			return mapRepoError(err)
		}
		if err := requireFormat(competition, models.FormatGroupKnockout); err != nil {
			return err
		}
		existing, err := repos.Matches.CountByCompetition(ctx, competitionID, repositories.StageFilter(models.StageKnockout))
		if err != nil {
			return err
		}
		if existing > 0 {
			return &AlreadyGeneratedError{CompetitionID: competitionID, Existing: "knockout matches", Count: existing}
		}
		settings, err := loadSettings(competition)
		if err != nil {
			return err
		}

		groupMatches, err := repos.Matches.ListByCompetition(ctx, competitionID, repositories.StageFilter(models.StageGroup))
		if err != nil {
			return err
		}
		if !brackets.IsGroupStageComplete(groupMatches) {
			return fmt.Errorf("%w: %d of %d group matches have a winner",
				ErrGroupStageIncomplete, countDecided(groupMatches), len(groupMatches))
		}
		groups, err := repos.Groups.ListByCompetition(ctx, competitionID)
		if err != nil {
			return err
		}
		seed, err := repos.Standings.ListSeed(ctx, competitionID)
		if err != nil {
			return err
		}

		in := tableInput{
			competition: competition,
			settings:    settings,
			entries:     entriesFromSeed(seed, nil),
			groups:      groups,
			matches:     groupMatches,
		}
		tables, err := groupTables(in)
		if err != nil {
			return err
		}

		matches, err = brackets.Promote(tables, teamsPerGroup, brackets.PromoteOptions{
			Seeding:         settings.KnockoutSeeding,
			AutoAdvanceByes: settings.AutoAdvance(models.StageKnockout),
		})
		if err != nil {
			return classifyEngineError(err)
		}
		brackets.StampMatches(matches, competitionID, uuid.NewString())
		if err := repos.Matches.BatchCreate(ctx, matches); err != nil {
			return mapInsertError(competitionID, "knockout matches", err)
		}

		for _, t := range tables {
			table = append(table, t...)
		}
		return mapRepoError(repos.Standings.ReplaceRanks(ctx, competitionID, table))
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "knockout generated",
		slog.Int("competition_id", competitionID),
		slog.Int("teams_per_group", teamsPerGroup),
		slog.Int("matches", len(matches)))
	s.notify.publish(competitionID, brackets.EventKnockoutGenerated, matches)
	s.notify.standingsChanged(ctx, competitionID, table)
	return matches, nil
}

func countDecided(matches []*models.Match) int {
	n := 0
	for _, m := range matches {
		if m.WinnerID != nil {
			n++
		}
	}
	return n
}
