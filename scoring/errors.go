package scoring

import (
	"errors"
	"fmt"
)

// ErrInvalidScore is matched by every *ScoreError.
var ErrInvalidScore = errors.New("invalid score")

type Reason string

const (
	ReasonGamesOutOfRange               Reason = "GamesOutOfRange"
	ReasonGamesTied                     Reason = "GamesTied"
	ReasonSetNotFinished                Reason = "SetNotFinished"
	ReasonInvalidSevenGameOpponentScore Reason = "InvalidSevenGameOpponentScore"
	ReasonMissingRequiredTiebreak       Reason = "MissingRequiredTiebreak"
	ReasonUnexpectedTiebreak            Reason = "UnexpectedTiebreak"
	ReasonTiebreakTied                  Reason = "TiebreakTied"
	ReasonTiebreakWinnerMismatch        Reason = "TiebreakWinnerMismatch"
	ReasonNoSets                        Reason = "NoSets"
	ReasonTooManySets                   Reason = "TooManySets"
	ReasonNoMajorityWinner              Reason = "NoMajorityWinner"
)

// MatchLevel is the SetIndex of errors that concern the whole match.
const MatchLevel = -1

type ScoreError struct {
	Reason   Reason
	SetIndex int
	Detail   string
}

func (e *ScoreError) Error() string {
	if e.SetIndex == MatchLevel {
		return fmt.Sprintf("invalid score: %s: %s", e.Reason, e.Detail)
	}
	return fmt.Sprintf("invalid score: set %d: %s: %s", e.SetIndex+1, e.Reason, e.Detail)
}

func (e *ScoreError) Is(target error) bool {
	return target == ErrInvalidScore
}

func setError(reason Reason, detail string, args ...interface{}) *ScoreError {
	return &ScoreError{Reason: reason, SetIndex: 0, Detail: fmt.Sprintf(detail, args...)}
}

func matchError(reason Reason, detail string, args ...interface{}) *ScoreError {
	return &ScoreError{Reason: reason, SetIndex: MatchLevel, Detail: fmt.Sprintf(detail, args...)}
}
