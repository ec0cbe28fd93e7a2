package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/racket-club/brackets"
)

var (
	ErrNotFound            = errors.New("requested resource not found")
	ErrCompetitionNotFound = fmt.Errorf("competition: %w", ErrNotFound)
	ErrMatchNotFound       = fmt.Errorf("match: %w", ErrNotFound)
	ErrLeagueMatchNotFound = fmt.Errorf("league match: %w", ErrNotFound)
	ErrGroupNotFound       = fmt.Errorf("group: %w", ErrNotFound)

	// Input validation: rejected before any write.
	ErrValidationFailed = errors.New("validation failed")
	ErrWrongFormat      = errors.New("operation does not apply to this competition format")

	// State preconditions.
	ErrAlreadyGenerated      = errors.New("competition already generated")
	ErrGroupStageIncomplete  = brackets.ErrGroupStageIncomplete
	ErrMatchAlreadyCompleted = errors.New("match already completed")
	ErrStageLocked           = errors.New("stage is locked by later results")
	ErrMatchNotReady         = errors.New("match does not have two teams yet")

	// Integrity errors are fatal for the operation that hit them.
	ErrIntegrity = errors.New("stored data is inconsistent")

	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AlreadyGeneratedError names what was found when a generation guard tripped.
type AlreadyGeneratedError struct {
	CompetitionID int
	Existing      string
	Count         int
}

func (e *AlreadyGeneratedError) Error() string {
	return fmt.Sprintf("competition %d already has %d %s", e.CompetitionID, e.Count, e.Existing)
}

func (e *AlreadyGeneratedError) Is(target error) bool {
	return target == ErrAlreadyGenerated
}

type MatchAlreadyCompletedError struct {
	MatchID  int
	WinnerID *int
}

func (e *MatchAlreadyCompletedError) Error() string {
	if e.WinnerID == nil {
		return fmt.Sprintf("match %d is already completed", e.MatchID)
	}
	return fmt.Sprintf("match %d is already completed with winner %d; submit a correction to change it", e.MatchID, *e.WinnerID)
}

func (e *MatchAlreadyCompletedError) Is(target error) bool {
	return target == ErrMatchAlreadyCompleted
}
