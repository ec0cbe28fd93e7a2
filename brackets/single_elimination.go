package brackets

import (
	"context"
	"fmt"
	"math/bits"
	"sort"

	"github.com/Dosada05/racket-club/models"
)

type EliminationOptions struct {
	Stage           models.MatchStage
	AutoAdvanceByes bool
}

type SingleEliminationGenerator struct {
}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error) {
	teams := make([]models.Team, len(params.Teams))
	copy(teams, params.Teams)
	models.SortRoster(teams)

	matches, err := BuildSingleElimination(models.TeamIDs(teams), EliminationOptions{
		Stage:           models.StageMain,
		AutoAdvanceByes: params.Settings.AutoAdvance(models.StageMain),
	})
	if err != nil {
		return nil, err
	}
	StampMatches(matches, params.Competition.ID, params.GenerationID)
	return matches, nil
}

// RoundsFor returns ceil(log2(n)), the number of rounds a bracket of n teams needs.
func RoundsFor(n int) int {
	if n < 2 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// BuildSingleElimination lays out every match of a bracket, 2^rounds-1 in total.
// The first round has 2^(rounds-1) matches: teams fill them two per match in roster
// order until the remaining teams exactly cover the remaining matches, which then
// hold one team each (a bye). Later rounds start with empty slots.
func BuildSingleElimination(teamIDs []int, opts EliminationOptions) ([]*models.Match, error) {
	n := len(teamIDs)
	if n < 2 {
		return nil, fmt.Errorf("%w: single elimination needs at least 2, got %d", ErrInsufficientTeams, n)
	}
	if err := checkTeamIDs(teamIDs); err != nil {
		return nil, err
	}
	if opts.Stage == "" {
		opts.Stage = models.StageMain
	}

	numRounds := RoundsFor(n)
	sizeOfFullBracket := 1 << uint(numRounds)
	firstRoundMatches := sizeOfFullBracket / 2
	fullMatches := n - firstRoundMatches

	allMatches := make([]*models.Match, 0, sizeOfFullBracket-1)

	idx := 0
	for p := 1; p <= firstRoundMatches; p++ {
		m := newBracketMatch(opts.Stage, 1, p)
		m.Team1ID = models.IntPtr(teamIDs[idx])
		idx++
		if p <= fullMatches {
			m.Team2ID = models.IntPtr(teamIDs[idx])
			idx++
		} else {
			m.IsBye = true
		}
		allMatches = append(allMatches, m)
	}

	for r := 2; r <= numRounds; r++ {
		matchesInRound := sizeOfFullBracket >> uint(r)
		for p := 1; p <= matchesInRound; p++ {
			allMatches = append(allMatches, newBracketMatch(opts.Stage, r, p))
		}
	}

	if opts.AutoAdvanceByes {
		for _, m := range allMatches {
			if !m.IsBye {
				continue
			}
			m.WinnerID = models.IntPtr(*m.Team1ID)
			m.Status = models.MatchStatusCompleted
			if _, err := Propagate(allMatches, m); err != nil {
				return nil, fmt.Errorf("advancing bye R%dM%d: %w", m.Round, m.Position, err)
			}
		}
	}

	sort.SliceStable(allMatches, func(i, j int) bool {
		if allMatches[i].Round != allMatches[j].Round {
			return allMatches[i].Round < allMatches[j].Round
		}
		return allMatches[i].Position < allMatches[j].Position
	})

	return allMatches, nil
}

func newBracketMatch(stage models.MatchStage, round, position int) *models.Match {
	return &models.Match{
		Stage:    stage,
		Round:    round,
		Position: position,
		Status:   models.MatchStatusPending,
	}
}

// NextCoordinate is where the winner of (round, position) plays next and in which slot.
func NextCoordinate(round, position int) (nextRound, nextPosition, slot int) {
	slot = 2
	if position%2 == 1 {
		slot = 1
	}
	return round + 1, (position + 1) / 2, slot
}

// Propagate writes the winner of completed into the slot it feeds in the next round
// and returns the updated match. The final has no successor and returns nil.
func Propagate(matches []*models.Match, completed *models.Match) (*models.Match, error) {
	if !completed.Stage.IsElimination() {
		return nil, nil
	}
	if completed.WinnerID == nil {
		return nil, fmt.Errorf("%w: R%dM%d", ErrNoWinner, completed.Round, completed.Position)
	}
	if !completed.HasTeam(*completed.WinnerID) {
		return nil, fmt.Errorf("%w: team %d in R%dM%d", ErrWinnerNotInMatch, *completed.WinnerID, completed.Round, completed.Position)
	}

	if completed.Round >= FinalRound(matches, completed.Stage) {
		return nil, nil
	}

	nextRound, nextPosition, slot := NextCoordinate(completed.Round, completed.Position)
	next := FindMatch(matches, completed.Stage, nextRound, nextPosition)
	if next == nil {
		return nil, fmt.Errorf("%w: R%dM%d feeds R%dM%d", ErrBracketCoordinateMissing,
			completed.Round, completed.Position, nextRound, nextPosition)
	}

	winner := *completed.WinnerID
	if slot == 1 {
		next.Team1ID = &winner
	} else {
		next.Team2ID = &winner
	}
	return next, nil
}

// FinalRound is the highest round of a stage, 0 when the stage has no matches.
func FinalRound(matches []*models.Match, stage models.MatchStage) int {
	final := 0
	for _, m := range matches {
		if m.Stage == stage && m.Round > final {
			final = m.Round
		}
	}
	return final
}

func FindMatch(matches []*models.Match, stage models.MatchStage, round, position int) *models.Match {
	for _, m := range matches {
		if m.Stage == stage && m.Round == round && m.Position == position {
			return m
		}
	}
	return nil
}

func checkTeamIDs(teamIDs []int) error {
	seen := make(map[int]struct{}, len(teamIDs))
	for _, id := range teamIDs {
		if id <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidTeamID, id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateTeam, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
