package brackets

import (
	"fmt"

	"github.com/Dosada05/racket-club/models"
)

// BuildGroups distributes the seeded roster over numberOfGroups groups in snake order:
// forward through A..K, then backward K..A, and so on.
func BuildGroups(teams []models.Team, numberOfGroups int) ([]models.Group, error) {
	if numberOfGroups < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidGroupCount, numberOfGroups)
	}
	if len(teams) < numberOfGroups*2 {
		return nil, fmt.Errorf("%w: %d groups need at least %d teams, got %d",
			ErrInsufficientTeamsForGroups, numberOfGroups, numberOfGroups*2, len(teams))
	}
	if err := checkTeamIDs(models.TeamIDs(teams)); err != nil {
		return nil, err
	}

	roster := make([]models.Team, len(teams))
	copy(roster, teams)
	models.SortRoster(roster)

	groups := make([]models.Group, numberOfGroups)
	for i := range groups {
		groups[i] = models.Group{
			Name:  models.GroupLabel(i),
			Teams: make([]models.GroupTeam, 0, len(roster)/numberOfGroups+1),
		}
	}

	for i, team := range roster {
		pass, idx := i/numberOfGroups, i%numberOfGroups
		if pass%2 == 1 {
			idx = numberOfGroups - 1 - idx
		}
		groups[idx].Teams = append(groups[idx].Teams, models.GroupTeam{TeamID: team.ID, Seed: team.Seed})
	}
	return groups, nil
}

// BuildGroupMatches pairs every two teams of each group once. All matches are round 1
// and positions run across the whole competition so (stage, round, position) stays unique.
// Groups must already carry their persisted IDs.
func BuildGroupMatches(groups []models.Group) ([]*models.Match, error) {
	matches := make([]*models.Match, 0)
	position := 0
	for _, g := range groups {
		rounds, err := BuildRoundRobin(g.TeamIDs(), RoundRobinOptions{})
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", g.Name, err)
		}
		groupID := g.ID
		for _, round := range rounds {
			for _, p := range round {
				position++
				matches = append(matches, &models.Match{
					Stage:    models.StageGroup,
					Round:    1,
					Position: position,
					Team1ID:  models.IntPtr(p.Team1ID),
					Team2ID:  models.IntPtr(p.Team2ID),
					Status:   models.MatchStatusPending,
					GroupID:  models.IntPtr(groupID),
				})
			}
		}
	}
	return matches, nil
}
