package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/racket-club/brackets"
	"github.com/Dosada05/racket-club/models"
	"github.com/Dosada05/racket-club/repositories"
	"github.com/Dosada05/racket-club/schedule"
	"github.com/Dosada05/racket-club/scoring"
	"github.com/Dosada05/racket-club/standings"
)

// EventPublisher delivers change events to live subscribers of a competition.
// *brackets.Hub implements it.
type EventPublisher interface {
	Publish(competitionID int, eventType string, payload interface{})
}

// SnapshotPublisher stores a copy of a standings table outside the database.
type SnapshotPublisher interface {
	PublishStandings(ctx context.Context, competitionID int, table []models.Standing) (string, error)
}

// notifier bundles the after-commit side effects. Failures are logged and never
// undo the committed operation.
type notifier struct {
	events    EventPublisher
	snapshots SnapshotPublisher
	logger    *slog.Logger
}

func (n notifier) publish(competitionID int, eventType string, payload interface{}) {
	if n.events == nil {
		return
	}
	n.events.Publish(competitionID, eventType, payload)
}

func (n notifier) standingsChanged(ctx context.Context, competitionID int, table []models.Standing) {
	if table == nil {
		return
	}
	n.publish(competitionID, brackets.EventStandingsUpdated, table)
	if n.snapshots == nil {
		return
	}
	url, err := n.snapshots.PublishStandings(ctx, competitionID, table)
	if err != nil {
		msg := "standings snapshot upload failed"
		if url != "" {
			msg = "old standings snapshots not pruned"
		}
		n.logger.WarnContext(ctx, msg, slog.Int("competition_id", competitionID), slog.Any("error", err))
		if url == "" {
			return
		}
	}
	n.logger.InfoContext(ctx, "standings snapshot uploaded",
		slog.Int("competition_id", competitionID), slog.String("url", url))
}

func mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrCompetitionNotFound):
		return ErrCompetitionNotFound
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrLeagueMatchNotFound):
		return ErrLeagueMatchNotFound
	case errors.Is(err, repositories.ErrGroupNotFound):
		return ErrGroupNotFound
	case errors.Is(err, repositories.ErrStandingNotFound):
		return fmt.Errorf("%w: %w", ErrIntegrity, err)
	}
	return err
}

var validationErrors = []error{
	brackets.ErrInsufficientTeams,
	brackets.ErrInsufficientTeamsForGroups,
	brackets.ErrInvalidGroupCount,
	brackets.ErrInvalidQualifierCount,
	brackets.ErrUnsupportedFormat,
	brackets.ErrDuplicateTeam,
	brackets.ErrInvalidTeamID,
	scoring.ErrInvalidScore,
	schedule.ErrInvalidSchedule,
}

var integrityErrors = []error{
	brackets.ErrBracketCoordinateMissing,
	brackets.ErrWinnerNotInMatch,
	brackets.ErrNoWinner,
	standings.ErrWinnerNotInMatch,
	standings.ErrUnknownTeam,
	standings.ErrDuplicateEntry,
}

// classifyEngineError tags errors of the pure engine packages with the service
// taxonomy while keeping the original error in the chain.
func classifyEngineError(err error) error {
	if err == nil {
		return nil
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return fmt.Errorf("%w: %w", ErrValidationFailed, err)
		}
	}
	for _, target := range integrityErrors {
		if errors.Is(err, target) {
			return fmt.Errorf("%w: %w", ErrIntegrity, err)
		}
	}
	return err
}

func loadSettings(c *models.Competition) (*models.CompetitionSettings, error) {
	settings, err := c.Settings()
	if err != nil {
		return nil, fmt.Errorf("%w: competition %d settings: %w", ErrValidationFailed, c.ID, err)
	}
	return settings, nil
}

func requireFormat(c *models.Competition, formats ...models.CompetitionFormat) error {
	for _, f := range formats {
		if c.Format == f {
			return nil
		}
	}
	return fmt.Errorf("%w: competition %d is %s", ErrWrongFormat, c.ID, c.Format)
}

// ensureNotGenerated is the at-most-once guard. It must run after the
// competition row is locked so the check and the inserts cannot interleave.
func ensureNotGenerated(ctx context.Context, repos repositories.Repositories, competitionID int) error {
	matches, err := repos.Matches.CountByCompetition(ctx, competitionID, repositories.MatchFilter{})
	if err != nil {
		return err
	}
	if matches > 0 {
		return &AlreadyGeneratedError{CompetitionID: competitionID, Existing: "matches", Count: matches}
	}
	leagueMatches, err := repos.LeagueMatches.CountByLeague(ctx, competitionID)
	if err != nil {
		return err
	}
	if leagueMatches > 0 {
		return &AlreadyGeneratedError{CompetitionID: competitionID, Existing: "league matches", Count: leagueMatches}
	}
	rows, err := repos.Standings.CountByCompetition(ctx, competitionID)
	if err != nil {
		return err
	}
	if rows > 0 {
		return &AlreadyGeneratedError{CompetitionID: competitionID, Existing: "standings", Count: rows}
	}
	return nil
}

// mapInsertError turns a unique violation raised by a racing generation into
// the same error the guard returns.
func mapInsertError(competitionID int, what string, err error) error {
	if errors.Is(err, repositories.ErrDuplicateRow) {
		return &AlreadyGeneratedError{CompetitionID: competitionID, Existing: what}
	}
	return err
}

// seedStandings creates the zeroed table rows in roster order.
func seedStandings(ctx context.Context, repos repositories.Repositories, competitionID int, entries []standings.Entry) error {
	rows := make([]models.Standing, len(entries))
	for i, e := range entries {
		rows[i] = models.Standing{CompetitionID: competitionID, TeamID: e.TeamID, GroupID: e.GroupID}
	}
	return mapInsertError(competitionID, "standings", repos.Standings.BatchCreate(ctx, rows))
}

func rosterEntries(teams []models.Team) []standings.Entry {
	roster := append([]models.Team(nil), teams...)
	models.SortRoster(roster)
	entries := make([]standings.Entry, len(roster))
	for i, t := range roster {
		entries[i] = standings.Entry{TeamID: t.ID, TeamName: t.Name}
	}
	return entries
}

func groupEntries(groups []models.Group, teams []models.Team) []standings.Entry {
	names := make(map[int]string, len(teams))
	for _, t := range teams {
		names[t.ID] = t.Name
	}
	entries := make([]standings.Entry, 0, len(teams))
	for _, g := range groups {
		groupID := g.ID
		for _, gt := range g.Teams {
			entries = append(entries, standings.Entry{TeamID: gt.TeamID, TeamName: names[gt.TeamID], GroupID: &groupID})
		}
	}
	return entries
}

// entriesFromSeed keeps the stored seed order; before generation the roster is used.
func entriesFromSeed(seed []models.Standing, teams []models.Team) []standings.Entry {
	if len(seed) == 0 {
		return rosterEntries(teams)
	}
	entries := make([]standings.Entry, len(seed))
	for i, s := range seed {
		entries[i] = standings.Entry{TeamID: s.TeamID, TeamName: s.TeamName, GroupID: s.GroupID}
	}
	return entries
}

// tableInput is everything the standings fold of one competition reads.
type tableInput struct {
	competition   *models.Competition
	settings      *models.CompetitionSettings
	entries       []standings.Entry
	groups        []models.Group
	matches       []*models.Match
	leagueMatches []*models.LeagueMatch
}

func (in tableInput) config() standings.Config {
	return standings.ConfigFromSettings(in.competition.ID, in.settings)
}

// competitionTable ranks every team of the competition together.
func competitionTable(in tableInput) ([]models.Standing, error) {
	var results []standings.Result
	switch in.competition.Format {
	case models.FormatLeague:
		results = standings.FromLeagueMatches(in.leagueMatches)
	case models.FormatRoundRobin:
		results = standings.FromMatches(in.matches, models.StageRoundRobin)
	case models.FormatSingleElimination:
		results = standings.FromMatches(in.matches, models.StageMain)
	case models.FormatGroupKnockout:
		results = standings.FromMatches(in.matches, models.StageGroup)
	}
	table, err := standings.Compute(in.entries, results, in.config())
	return table, classifyEngineError(err)
}

func groupTables(in tableInput) ([][]models.Standing, error) {
	tables, err := standings.ByGroup(in.groups, in.entries, standings.FromMatches(in.matches, models.StageGroup), in.config())
	return tables, classifyEngineError(err)
}

// storedTable is the table persisted into the standings rows: per group ranks for
// group competitions, one overall ranking otherwise.
func storedTable(in tableInput) ([]models.Standing, error) {
	if in.competition.Format != models.FormatGroupKnockout {
		return competitionTable(in)
	}
	tables, err := groupTables(in)
	if err != nil {
		return nil, err
	}
	flat := make([]models.Standing, 0, len(in.entries))
	for _, t := range tables {
		flat = append(flat, t...)
	}
	return flat, nil
}

// refreshStandings recomputes and stores the table inside the caller's transaction.
func refreshStandings(ctx context.Context, repos repositories.Repositories, competition *models.Competition, settings *models.CompetitionSettings) ([]models.Standing, error) {
	in := tableInput{competition: competition, settings: settings}

	seed, err := repos.Standings.ListSeed(ctx, competition.ID)
	if err != nil {
		return nil, err
	}
	if len(seed) == 0 {
		return nil, nil
	}
	in.entries = entriesFromSeed(seed, nil)

	if competition.Format == models.FormatLeague {
		if in.leagueMatches, err = repos.LeagueMatches.ListByLeague(ctx, competition.ID); err != nil {
			return nil, err
		}
	} else if in.matches, err = repos.Matches.ListByCompetition(ctx, competition.ID, repositories.MatchFilter{}); err != nil {
		return nil, err
	}
	if competition.Format == models.FormatGroupKnockout {
		if in.groups, err = repos.Groups.ListByCompetition(ctx, competition.ID); err != nil {
			return nil, err
		}
	}

	table, err := storedTable(in)
	if err != nil {
		return nil, err
	}
	if err := repos.Standings.ReplaceRanks(ctx, competition.ID, table); err != nil {
		return nil, mapRepoError(err)
	}
	return table, nil
}
