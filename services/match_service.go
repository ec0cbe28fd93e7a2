package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/racket-club/brackets"
	"github.com/Dosada05/racket-club/models"
	"github.com/Dosada05/racket-club/repositories"
	"github.com/Dosada05/racket-club/scoring"
)

type MatchService interface {
	GetMatch(ctx context.Context, matchID int) (*models.Match, error)
	SubmitResult(ctx context.Context, matchID int, input SubmitResultInput) (*models.Match, error)
	ResolveBye(ctx context.Context, matchID int) (*models.Match, error)
}

// SubmitResultInput is a score for a match. A different score for a completed
// match is only accepted with Correction set.
type SubmitResultInput struct {
	Score      models.Score
	Correction bool
}

// MatchUpdatePayload is broadcast after a result is stored.
type MatchUpdatePayload struct {
	Match               *models.Match `json:"match"`
	NextMatch           *models.Match `json:"next_match,omitempty"`
	EliminatedTeamID    *int          `json:"eliminated_team_id,omitempty"`
	CompetitionWinnerID *int          `json:"competition_winner_id,omitempty"`
}

type matchService struct {
	store  repositories.Store
	notify notifier
	logger *slog.Logger
}

func NewMatchService(store repositories.Store, events EventPublisher, snapshots SnapshotPublisher, logger *slog.Logger) MatchService {
	return &matchService{
		store:  store,
		notify: notifier{events: events, snapshots: snapshots, logger: logger},
		logger: logger,
	}
}

type matchOutcome struct {
	payload   MatchUpdatePayload
	table     []models.Standing
	unchanged bool
}

func (s *matchService) GetMatch(ctx context.Context, matchID int) (*models.Match, error) {
	m, err := s.store.Repos().Matches.GetByID(ctx, matchID)
	return m, mapRepoError(err)
}

func (s *matchService) SubmitResult(ctx context.Context, matchID int, input SubmitResultInput) (*models.Match, error) {
	existing, err := s.store.Repos().Matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	var out matchOutcome
	err = s.store.RunInTx(ctx, func(ctx context.Context, repos repositories.Repositories) error {
		// competition first, then the match: the same order generation uses
		competition, err := repos.Competitions.LockForUpdate(ctx, existing.CompetitionID)
		if err != nil {
			return mapRepoError(err)
		}
		match, err := repos.Matches.LockForUpdate(ctx, matchID)
		if err != nil {
			return mapRepoError(err)
		}
		if match.Team1ID == nil || match.Team2ID == nil {
			return fmt.Errorf("%w: match %d", ErrMatchNotReady, matchID)
		}
		settings, err := loadSettings(competition)
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
		winnerID := *match.Team1ID
		if side == scoring.Side2 {
			winnerID = *match.Team2ID
		}

		if match.IsCompleted() {
			if match.Score.Equal(&input.Score) {
				out.payload.Match = match
				out.unchanged = true
				return nil
			}
			if !input.Correction {
				return &MatchAlreadyCompletedError{MatchID: match.ID, WinnerID: match.WinnerID}
			}
			if err := ensureCorrectable(ctx, repos, match); err != nil {
				return err
			}
		}

		match.Score = input.Score.Clone()
		match.WinnerID = models.IntPtr(winnerID)
		match.Team1Score = models.IntPtr(tally.Sets1)
		match.Team2Score = models.IntPtr(tally.Sets2)
		match.Status = models.MatchStatusCompleted
		if err := repos.Matches.Update(ctx, match); err != nil {
			return mapRepoError(err)
		}
		out.payload.Match = match

		if match.Stage.IsElimination() {
			if err := advanceWinner(ctx, repos, competition, match, &out); err != nil {
				return err
			}
		}
		if match.Stage != models.StageKnockout {
			out.table, err = refreshStandings(ctx, repos, competition, settings)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.unchanged {
		s.logger.InfoContext(ctx, "duplicate result ignored", slog.Int("match_id", matchID))
		return out.payload.Match, nil
	}
	s.logger.InfoContext(ctx, "match result stored",
		slog.Int("competition_id", existing.CompetitionID),
		slog.Int("match_id", matchID),
		slog.Int("winner_id", *out.payload.Match.WinnerID),
		slog.Bool("correction", input.Correction))
	s.notify.publish(existing.CompetitionID, brackets.EventMatchUpdated, out.payload)
	s.notify.standingsChanged(ctx, existing.CompetitionID, out.table)
	return out.payload.Match, nil
}

// ResolveBye completes a match that has a single team as a walkover for that team.
func (s *matchService) ResolveBye(ctx context.Context, matchID int) (*models.Match, error) {
	existing, err := s.store.Repos().Matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	var out matchOutcome
	err = s.store.RunInTx(ctx, func(ctx context.Context, repos repositories.Repositories) error {
		competition, err := repos.Competitions.LockForUpdate(ctx, existing.CompetitionID)
		if err != nil {
			return mapRepoError(err)
		}
		match, err := repos.Matches.LockForUpdate(ctx, matchID)
		if err != nil {
			return mapRepoError(err)
		}
		if !match.Stage.IsElimination() || (match.Team1ID == nil) == (match.Team2ID == nil) {
			return fmt.Errorf("%w: match %d is not a bye", ErrValidationFailed, matchID)
		}
		if match.IsCompleted() {
			out.payload.Match = match
			out.unchanged = true
			return nil
		}

		winner := match.Team1ID
		if winner == nil {
			winner = match.Team2ID
		}
		match.WinnerID = models.IntPtr(*winner)
		match.IsBye = true
		match.Status = models.MatchStatusCompleted
		if err := repos.Matches.Update(ctx, match); err != nil {
			return mapRepoError(err)
		}
		out.payload.Match = match
		return advanceWinner(ctx, repos, competition, match, &out)
	})
	if err != nil {
		return nil, err
	}

	if !out.unchanged {
		s.logger.InfoContext(ctx, "bye resolved", slog.Int("match_id", matchID), slog.Int("winner_id", *out.payload.Match.WinnerID))
		s.notify.publish(existing.CompetitionID, brackets.EventMatchUpdated, out.payload)
	}
	return out.payload.Match, nil
}

// advanceWinner moves the winner of an elimination match into its next match,
// or closes the competition when the match was the final of the last stage.
func advanceWinner(ctx context.Context, repos repositories.Repositories, competition *models.Competition, match *models.Match, out *matchOutcome) error {
	stageMatches, err := repos.Matches.ListByCompetition(ctx, competition.ID, repositories.StageFilter(match.Stage))
	if err != nil {
		return err
	}
	for i, m := range stageMatches {
		if m.ID == match.ID {
			stageMatches[i] = match
		}
	}

	out.payload.EliminatedTeamID = match.LoserID()

	next, err := brackets.Propagate(stageMatches, match)
	if err != nil {
		return classifyEngineError(err)
	}
	if next != nil {
		if err := repos.Matches.Update(ctx, next); err != nil {
			return mapRepoError(err)
		}
		out.payload.NextMatch = next
		return nil
	}

	if err := repos.Competitions.UpdateOutcome(ctx, competition.ID, models.CompetitionStatusCompleted, match.WinnerID); err != nil {
		return mapRepoError(err)
	}
	out.payload.CompetitionWinnerID = match.WinnerID
	return nil
}

// ensureCorrectable refuses to rewrite a result that later results depend on.
func ensureCorrectable(ctx context.Context, repos repositories.Repositories, match *models.Match) error {
	switch match.Stage {
	case models.StageMain, models.StageKnockout:
		stageMatches, err := repos.Matches.ListByCompetition(ctx, match.CompetitionID, repositories.StageFilter(match.Stage))
		if err != nil {
			return err
		}
		nextRound, nextPosition, _ := brackets.NextCoordinate(match.Round, match.Position)
		next := brackets.FindMatch(stageMatches, match.Stage, nextRound, nextPosition)
		if next != nil && next.IsCompleted() {
			return fmt.Errorf("%w: next match %d is already completed", ErrStageLocked, next.ID)
		}
	case models.StageGroup:
		knockout, err := repos.Matches.CountByCompetition(ctx, match.CompetitionID, repositories.StageFilter(models.StageKnockout))
		if err != nil {
			return err
		}
		if knockout > 0 {
			return fmt.Errorf("%w: the knockout was already drawn from this group stage", ErrStageLocked)
		}
	}
	return nil
}
