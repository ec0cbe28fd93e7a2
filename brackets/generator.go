package brackets

import (
	"context"
	"fmt"

	"github.com/Dosada05/racket-club/models"
)

type GenerateBracketParams struct {
	Competition  *models.Competition
	Settings     *models.CompetitionSettings
	Teams        []models.Team
	GenerationID string
}

// BracketGenerator turns a roster into the initial match set of one competition format.
type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error)

	GetName() string
}

// NewGenerator picks the generator of a format that is produced in one step.
func NewGenerator(format models.CompetitionFormat) (BracketGenerator, error) {
	switch format {
	case models.FormatSingleElimination:
		return NewSingleEliminationGenerator(), nil
	case models.FormatRoundRobin:
		return NewRoundRobinGenerator(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// StampMatches sets the owning competition and generation batch on every match.
func StampMatches(matches []*models.Match, competitionID int, generationID string) {
	for _, m := range matches {
		m.CompetitionID = competitionID
		m.GenerationID = generationID
	}
}
