package standings

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Dosada05/racket-club/models"
	"github.com/Dosada05/racket-club/scoring"
)

var (
	ErrWinnerNotInMatch = errors.New("recorded winner is not one of the match teams")
	ErrUnknownTeam      = errors.New("result references a team outside the roster")
	ErrDuplicateEntry   = errors.New("team listed twice in the roster")
)

// Entry is one roster row. Roster order is the final tiebreak.
type Entry struct {
	TeamID   int
	TeamName string
	GroupID  *int
}

// Result is a completed, scored match reduced to what the fold needs.
type Result struct {
	Team1ID  int
	Team2ID  int
	WinnerID int
	Score    models.Score
	GroupID  *int
}

type Config struct {
	CompetitionID int
	PointsPerWin  int
	PointsPerLoss int
	Rules         scoring.Rules
}

// ConfigFromSettings builds the fold configuration of a competition.
func ConfigFromSettings(competitionID int, s *models.CompetitionSettings) Config {
	return Config{
		CompetitionID: competitionID,
		PointsPerWin:  s.PointsPerWin,
		PointsPerLoss: s.PointsPerLoss,
		Rules:         scoring.RulesFromSettings(s),
	}
}

// FromMatches keeps the completed matches of the given stages that have two
// teams, a winner and a score. With no stages every stage is accepted.
func FromMatches(matches []*models.Match, stages ...models.MatchStage) []Result {
	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		if !m.IsCompleted() || m.Team1ID == nil || m.Team2ID == nil || m.WinnerID == nil || m.Score == nil {
			continue
		}
		if len(stages) > 0 && !stageIn(m.Stage, stages) {
			continue
		}
		results = append(results, Result{
			Team1ID:  *m.Team1ID,
			Team2ID:  *m.Team2ID,
			WinnerID: *m.WinnerID,
			Score:    *m.Score,
			GroupID:  m.GroupID,
		})
	}
	return results
}

func FromLeagueMatches(matches []*models.LeagueMatch) []Result {
	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		if !m.IsCompleted() || m.WinnerID == nil || m.Score == nil {
			continue
		}
		results = append(results, Result{
			Team1ID:  m.HomeTeamID,
			Team2ID:  m.AwayTeamID,
			WinnerID: *m.WinnerID,
			Score:    *m.Score,
		})
	}
	return results
}

func stageIn(stage models.MatchStage, stages []models.MatchStage) bool {
	for _, s := range stages {
		if s == stage {
			return true
		}
	}
	return false
}

type row struct {
	standing models.Standing
	index    int
}

// Compute folds results into one ranked table over entries. The output only
// depends on its inputs, so repeated calls return identical tables.
func Compute(entries []Entry, results []Result, cfg Config) ([]models.Standing, error) {
	rows := make([]*row, len(entries))
	byTeam := make(map[int]*row, len(entries))
	for i, e := range entries {
		if _, dup := byTeam[e.TeamID]; dup {
			return nil, fmt.Errorf("%w: team %d", ErrDuplicateEntry, e.TeamID)
		}
		r := &row{
			index: i,
			standing: models.Standing{
				CompetitionID: cfg.CompetitionID,
				TeamID:        e.TeamID,
				TeamName:      e.TeamName,
				GroupID:       e.GroupID,
			},
		}
		rows[i] = r
		byTeam[e.TeamID] = r
	}

	for i, res := range results {
		home, ok1 := byTeam[res.Team1ID]
		away, ok2 := byTeam[res.Team2ID]
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("%w: result %d (%d vs %d)", ErrUnknownTeam, i, res.Team1ID, res.Team2ID)
		}
		if res.WinnerID != res.Team1ID && res.WinnerID != res.Team2ID {
			return nil, fmt.Errorf("%w: result %d winner %d", ErrWinnerNotInMatch, i, res.WinnerID)
		}
		tally, err := scoring.TallyScore(res.Score, cfg.Rules)
		if err != nil {
			return nil, fmt.Errorf("result %d: %w", i, err)
		}

		applyTally(&home.standing, tally.Sets1, tally.Sets2, tally.Games1, tally.Games2)
		applyTally(&away.standing, tally.Sets2, tally.Sets1, tally.Games2, tally.Games1)

		winner, loser := home, away
		if res.WinnerID == res.Team2ID {
			winner, loser = away, home
		}
		winner.standing.Wins++
		winner.standing.Points += cfg.PointsPerWin
		loser.standing.Losses++
		loser.standing.Points += cfg.PointsPerLoss
	}

	for _, r := range rows {
		r.standing.SetsDiff = r.standing.SetsWon - r.standing.SetsLost
		r.standing.GamesDiff = r.standing.GamesWon - r.standing.GamesLost
	}

	sort.Slice(rows, func(i, j int) bool { return less(rows[i], rows[j]) })

	table := make([]models.Standing, len(rows))
	for i, r := range rows {
		r.standing.Rank = i + 1
		table[i] = r.standing
	}
	return table, nil
}

func applyTally(s *models.Standing, setsWon, setsLost, gamesWon, gamesLost int) {
	s.Played++
	s.SetsWon += setsWon
	s.SetsLost += setsLost
	s.GamesWon += gamesWon
	s.GamesLost += gamesLost
}

// less orders by points, set difference, game difference, then roster index.
// Roster indexes are unique, so no two rows ever compare equal.
func less(a, b *row) bool {
	if a.standing.Points != b.standing.Points {
		return a.standing.Points > b.standing.Points
	}
	if a.standing.SetsDiff != b.standing.SetsDiff {
		return a.standing.SetsDiff > b.standing.SetsDiff
	}
	if a.standing.GamesDiff != b.standing.GamesDiff {
		return a.standing.GamesDiff > b.standing.GamesDiff
	}
	return a.index < b.index
}

// ByGroup ranks each group separately, in the order groups are given. Group
// members keep their in-group seed order as roster order; names come from entries.
func ByGroup(groups []models.Group, entries []Entry, results []Result, cfg Config) ([][]models.Standing, error) {
	names := make(map[int]string, len(entries))
	for _, e := range entries {
		names[e.TeamID] = e.TeamName
	}

	tables := make([][]models.Standing, 0, len(groups))
	for _, g := range groups {
		groupID := g.ID
		members := make(map[int]bool, len(g.Teams))
		groupEntries := make([]Entry, 0, len(g.Teams))
		for _, gt := range g.Teams {
			members[gt.TeamID] = true
			groupEntries = append(groupEntries, Entry{TeamID: gt.TeamID, TeamName: names[gt.TeamID], GroupID: &groupID})
		}

		var groupResults []Result
		for _, res := range results {
			if res.GroupID != nil {
				if *res.GroupID == groupID {
					groupResults = append(groupResults, res)
				}
				continue
			}
			if members[res.Team1ID] && members[res.Team2ID] {
				groupResults = append(groupResults, res)
			}
		}

		table, err := Compute(groupEntries, groupResults, cfg)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", g.Name, err)
		}
		tables = append(tables, table)
	}
	return tables, nil
}
