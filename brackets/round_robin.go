package brackets

import (
	"context"
	"fmt"

	"github.com/Dosada05/racket-club/models"
)

// ByeTeamID pads an odd roster; a team paired with it rests that round.
const ByeTeamID = 0

type Pairing struct {
	Team1ID int `json:"team1_id"`
	Team2ID int `json:"team2_id"`
}

func (p Pairing) IsBye() bool {
	return p.Team1ID == ByeTeamID || p.Team2ID == ByeTeamID
}

func (p Pairing) Swapped() Pairing {
	return Pairing{Team1ID: p.Team2ID, Team2ID: p.Team1ID}
}

type RoundRobinOptions struct {
	DoubleRound bool
	// KeepByes emits the resting team of each round paired with ByeTeamID.
	KeepByes bool
}

// BuildRoundRobin pairs every team with every other one using the circle method.
// The first team stays fixed while the others rotate one position per round, and
// position i meets position n-1-i. An odd roster is padded with ByeTeamID, so it
// takes n rounds instead of n-1. A double round repeats every round with sides swapped.
func BuildRoundRobin(teamIDs []int, opts RoundRobinOptions) ([][]Pairing, error) {
	if len(teamIDs) < 2 {
		return nil, fmt.Errorf("%w: round robin needs at least 2, got %d", ErrInsufficientTeams, len(teamIDs))
	}
	if err := checkTeamIDs(teamIDs); err != nil {
		return nil, err
	}

	circle := make([]int, len(teamIDs), len(teamIDs)+1)
	copy(circle, teamIDs)
	if len(circle)%2 == 1 {
		circle = append(circle, ByeTeamID)
	}
	n := len(circle)

	rounds := make([][]Pairing, 0, n-1)
	for r := 0; r < n-1; r++ {
		round := make([]Pairing, 0, n/2)
		for i := 0; i < n/2; i++ {
			p := Pairing{Team1ID: circle[i], Team2ID: circle[n-1-i]}
			// alternate sides of the fixed team so it does not always play first
			if i == 0 && r%2 == 1 {
				p = p.Swapped()
			}
			if p.IsBye() {
				if !opts.KeepByes {
					continue
				}
				if p.Team1ID == ByeTeamID {
					p = p.Swapped()
				}
			}
			round = append(round, p)
		}
		rounds = append(rounds, round)

		last := circle[n-1]
		copy(circle[2:], circle[1:n-1])
		circle[1] = last
	}

	if opts.DoubleRound {
		firstLeg := len(rounds)
		for r := 0; r < firstLeg; r++ {
			mirrored := make([]Pairing, len(rounds[r]))
			for i, p := range rounds[r] {
				if p.IsBye() {
					mirrored[i] = p
					continue
				}
				mirrored[i] = p.Swapped()
			}
			rounds = append(rounds, mirrored)
		}
	}

	return rounds, nil
}

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() BracketGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateBracket creates one pending match per pairing; the round of a match is its
// circle-method round and positions restart in every round.
func (g *RoundRobinGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error) {
	teams := make([]models.Team, len(params.Teams))
	copy(teams, params.Teams)
	models.SortRoster(teams)

	rounds, err := BuildRoundRobin(models.TeamIDs(teams), RoundRobinOptions{
		DoubleRound: params.Settings.NumberOfRounds == 2,
	})
	if err != nil {
		return nil, err
	}

	matches := make([]*models.Match, 0)
	for r, round := range rounds {
		for i, p := range round {
			m := &models.Match{
				Stage:    models.StageRoundRobin,
				Round:    r + 1,
				Position: i + 1,
				Team1ID:  models.IntPtr(p.Team1ID),
				Team2ID:  models.IntPtr(p.Team2ID),
				Status:   models.MatchStatusPending,
			}
			matches = append(matches, m)
		}
	}
	StampMatches(matches, params.Competition.ID, params.GenerationID)
	return matches, nil
}
