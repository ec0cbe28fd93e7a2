package brackets

import (
	"fmt"

	"github.com/Dosada05/racket-club/models"
)

type PromoteOptions struct {
	Seeding         string
	AutoAdvanceByes bool
}

// IsGroupStageComplete reports whether group matches exist and every one has a winner.
func IsGroupStageComplete(matches []*models.Match) bool {
	found := false
	for _, m := range matches {
		if m.Stage != models.StageGroup {
			continue
		}
		found = true
		if m.WinnerID == nil {
			return false
		}
	}
	return found
}

// Qualifiers takes the top teamsPerGroup of every ranked group. With group order
// seeding the result is A1, A2, B1, B2...; cross seeding is described at crossSeed.
func Qualifiers(standingsByGroup [][]models.Standing, teamsPerGroup int, seeding string) ([]int, error) {
	if teamsPerGroup < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQualifierCount, teamsPerGroup)
	}
	for i, ranking := range standingsByGroup {
		if len(ranking) < teamsPerGroup {
			return nil, fmt.Errorf("%w: group %s has %d teams, %d qualify",
				ErrInsufficientTeams, models.GroupLabel(i), len(ranking), teamsPerGroup)
		}
	}

	qualified := make([]int, 0, len(standingsByGroup)*teamsPerGroup)
	if seeding == models.KnockoutSeedingCross {
		for rank := 0; rank < teamsPerGroup; rank++ {
			for _, ranking := range standingsByGroup {
				qualified = append(qualified, ranking[rank].TeamID)
			}
		}
		return crossSeed(qualified), nil
	}

	for _, ranking := range standingsByGroup {
		for rank := 0; rank < teamsPerGroup; rank++ {
			qualified = append(qualified, ranking[rank].TeamID)
		}
	}
	return qualified, nil
}

// crossSeed orders a rank-major list so the best qualifiers take the byes and the rest
// meet first against last (A1 v B2, B1 v A2 for two groups of two).
func crossSeed(ranked []int) []int {
	n := len(ranked)
	if n < 2 {
		return ranked
	}
	byes := (1 << uint(RoundsFor(n))) - n
	byeTeams, rest := ranked[:byes], ranked[byes:]

	out := make([]int, 0, n)
	for i, j := 0, len(rest)-1; i < j; i, j = i+1, j-1 {
		out = append(out, rest[i], rest[j])
	}
	return append(out, byeTeams...)
}

// Promote builds the knockout bracket from final group rankings.
func Promote(standingsByGroup [][]models.Standing, teamsPerGroup int, opts PromoteOptions) ([]*models.Match, error) {
	qualified, err := Qualifiers(standingsByGroup, teamsPerGroup, opts.Seeding)
	if err != nil {
		return nil, err
	}
	return BuildSingleElimination(qualified, EliminationOptions{
		Stage:           models.StageKnockout,
		AutoAdvanceByes: opts.AutoAdvanceByes,
	})
}
