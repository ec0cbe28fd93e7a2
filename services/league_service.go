package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/racket-club/brackets"
	"github.com/Dosada05/racket-club/models"
	"github.com/Dosada05/racket-club/repositories"
	"github.com/Dosada05/racket-club/schedule"
	"github.com/Dosada05/racket-club/scoring"
	"github.com/google/uuid"
)

type LeagueService interface {
	ListLeagueMatches(ctx context.Context, leagueID int) ([]*models.LeagueMatch, error)
	GenerateLeagueSchedule(ctx context.Context, leagueID, rounds int) ([]*models.LeagueMatch, error)
	SubmitLeagueResult(ctx context.Context, leagueMatchID int, input SubmitResultInput) (*models.LeagueMatch, error)
}

type leagueService struct {
	store  repositories.Store
	notify notifier
	logger *slog.Logger
}

func NewLeagueService(store repositories.Store, events EventPublisher, snapshots SnapshotPublisher, logger *slog.Logger) LeagueService {
	return &leagueService{
		store:  store,
		notify: notifier{events: events, snapshots: snapshots, logger: logger},
		logger: logger,
	}
}

func (s *leagueService) ListLeagueMatches(ctx context.Context, leagueID int) ([]*models.LeagueMatch, error) {
	repos := s.store.Repos()
	if _, err := repos.Competitions.GetByID(ctx, leagueID); err != nil {
		return nil, mapRepoError(err)
	}
	return repos.LeagueMatches.ListByLeague(ctx, leagueID)
}

// scheduleParams reads the calendar settings of a league.
func scheduleParams(settings *models.CompetitionSettings) (schedule.Params, error) {
	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		return schedule.Params{}, fmt.Errorf("%w: timezone %q: %w", ErrValidationFailed, settings.Timezone, err)
	}
	if settings.StartDate == "" {
		return schedule.Params{}, fmt.Errorf("%w: start_date is required", ErrValidationFailed)
	}
	start, err := time.ParseInLocation("2006-01-02", settings.StartDate, loc)
	if err != nil {
		return schedule.Params{}, fmt.Errorf("%w: start_date %q is not YYYY-MM-DD", ErrValidationFailed, settings.StartDate)
	}
	weekday, err := schedule.ParseWeekday(settings.Weekday)
	if err != nil {
		return schedule.Params{}, classifyEngineError(err)
	}
	return schedule.Params{
		StartDate:     start,
		Weekday:       weekday,
		CourtsPerSlot: settings.CourtsPerSlot,
		TimeSlots:     settings.TimeSlots,
		Location:      loc,
	}, nil
}

func (s *leagueService) GenerateLeagueSchedule(ctx context.Context, leagueID, rounds int) ([]*models.LeagueMatch, error) {
	if rounds != 1 && rounds != 2 {
		return nil, fmt.Errorf("%w: rounds must be 1 or 2, got %d", ErrValidationFailed, rounds)
	}

	var matches []*models.LeagueMatch
	err := s.store.RunInTx(ctx, func(ctx context.Context, repos repositories.Repositories) error {
		league, err := repos.Competitions.LockForUpdate(ctx, leagueID)
		if err != nil {
			return mapRepoError(err)
		}
		if err := requireFormat(league, models.FormatLeague); err != nil {
			return err
		}
		if err := ensureNotGenerated(ctx, repos, leagueID); err != nil {
			return err
		}
		settings, err := loadSettings(league)
		if err != nil {
			return err
		}
		params, err := scheduleParams(settings)
		if err != nil {
			return err
		}
		teams, err := repos.Teams.ListByCompetition(ctx, leagueID)
		if err != nil {
			return err
		}
		entries := rosterEntries(teams)
		teamIDs := make([]int, len(entries))
		for i, e := range entries {
			teamIDs[i] = e.TeamID
		}

		pairings, err := brackets.BuildRoundRobin(teamIDs, brackets.RoundRobinOptions{DoubleRound: rounds == 2})
		if err != nil {
			return classifyEngineError(err)
		}
		slots, err := schedule.Allocate(pairings, params)
		if err != nil {
			return classifyEngineError(err)
		}

		roundsPerLeg := len(pairings) / rounds
		generationID := uuid.NewString()
		matches = make([]*models.LeagueMatch, len(slots))
		for i, slot := range slots {
			leg := 1
			if slot.Round > roundsPerLeg {
				leg = 2
			}
			matches[i] = &models.LeagueMatch{
				LeagueID:     leagueID,
				Round:        slot.Round,
				Leg:          leg,
				HomeTeamID:   slot.HomeTeamID,
				AwayTeamID:   slot.AwayTeamID,
				MatchDate:    slot.Date,
				TimeSlot:     slot.TimeSlot,
				Court:        slot.Court,
				Status:       models.MatchStatusPending,
				GenerationID: generationID,
			}
		}

		if err := repos.LeagueMatches.BatchCreate(ctx, matches); err != nil {
			return mapInsertError(leagueID, "league matches", err)
		}
		if err := seedStandings(ctx, repos, leagueID, entries); err != nil {
			return err
		}
		return repos.Competitions.UpdateOutcome(ctx, leagueID, models.CompetitionStatusActive, nil)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "league schedule generated",
		slog.Int("league_id", leagueID),
		slog.Int("rounds", rounds),
		slog.Int("matches", len(matches)))
	s.notify.publish(leagueID, brackets.EventScheduleGenerated, matches)
	return matches, nil
}

func (s *leagueService) SubmitLeagueResult(ctx context.Context, leagueMatchID int, input SubmitResultInput) (*models.LeagueMatch, error) {
	existing, err := s.store.Repos().LeagueMatches.GetByID(ctx, leagueMatchID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	var (
		match     *models.LeagueMatch
		table     []models.Standing
		unchanged bool
	)
	err = s.store.RunInTx(ctx, func(ctx context.Context, repos repositories.Repositories) error {
		league, err := repos.Competitions.LockForUpdate(ctx, existing.LeagueID)
		if err != nil {
			return mapRepoError(err)
		}
		match, err = repos.LeagueMatches.LockForUpdate(ctx, leagueMatchID)
		if err != nil {
			return mapRepoError(err)
		}
		settings, err := loadSettings(league)
		if err != nil {
			return err
		}

		rules := scoring.RulesFromSettings(settings)
		side, err := scoring.MatchWinner(input.Score, rules)
		if err != nil {
			return classifyEngineError(err)
		}
		tally, err := scoring.TallyScore(input.Score, rules)
		if err != nil {
			return classifyEngineError(err)
		}

		if match.IsCompleted() {
			if match.Score.Equal(&input.Score) {
				unchanged = true
				return nil
			}
			if !input.Correction {
				return &MatchAlreadyCompletedError{MatchID: match.ID, WinnerID: match.WinnerID}
			}
		}

		winnerID := match.HomeTeamID
		if side == scoring.Side2 {
			winnerID = match.AwayTeamID
		}
		match.Score = input.Score.Clone()
		match.HomeScore = models.IntPtr(tally.Sets1)
		match.AwayScore = models.IntPtr(tally.Sets2)
		match.WinnerID = models.IntPtr(winnerID)
		match.Status = models.MatchStatusCompleted
		if err := repos.LeagueMatches.UpdateResult(ctx, match); err != nil {
			return mapRepoError(err)
		}

		table, err = refreshStandings(ctx, repos, league, settings)
		return err
	})
	if err != nil {
		return nil, err
	}

	if unchanged {
		return match, nil
	}
	s.logger.InfoContext(ctx, "league result stored",
		slog.Int("league_id", existing.LeagueID),
		slog.Int("league_match_id", leagueMatchID),
		slog.Bool("correction", input.Correction))
	s.notify.publish(existing.LeagueID, brackets.EventMatchUpdated, match)
	s.notify.standingsChanged(ctx, existing.LeagueID, table)
	return match, nil
}
