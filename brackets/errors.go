package brackets

import "errors"

var (
	ErrInsufficientTeams          = errors.New("not enough teams")
	ErrInsufficientTeamsForGroups = errors.New("not enough teams for the requested number of groups")
	ErrInvalidGroupCount          = errors.New("number of groups must be at least 1")
	ErrInvalidQualifierCount      = errors.New("teams per group must be at least 1")
	ErrUnsupportedFormat          = errors.New("unsupported competition format")
	ErrDuplicateTeam              = errors.New("team listed more than once")
	ErrInvalidTeamID              = errors.New("invalid team id")
	ErrGroupStageIncomplete       = errors.New("group stage is not complete")
	ErrBracketCoordinateMissing   = errors.New("next bracket match does not exist")
	ErrWinnerNotInMatch           = errors.New("winner is not one of the match teams")
	ErrNoWinner                   = errors.New("match has no winner")
)
