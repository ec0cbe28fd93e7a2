package models

import "time"

// Standing is a team's aggregated record inside a competition or group.
type Standing struct {
	ID            int       `json:"-" db:"id"`
	CompetitionID int       `json:"competition_id" db:"competition_id"`
	TeamID        int       `json:"team_id" db:"team_id"`
	TeamName      string    `json:"team_name,omitempty" db:"-"`
	GroupID       *int      `json:"group_id,omitempty" db:"group_id"`
	Rank          int       `json:"rank" db:"rank"`
	Played        int       `json:"played" db:"played"`
	Wins          int       `json:"wins" db:"wins"`
	Losses        int       `json:"losses" db:"losses"`
	Points        int       `json:"points" db:"points"`
	SetsWon       int       `json:"sets_won" db:"sets_won"`
	SetsLost      int       `json:"sets_lost" db:"sets_lost"`
	GamesWon      int       `json:"games_won" db:"games_won"`
	GamesLost     int       `json:"games_lost" db:"games_lost"`
	SetsDiff      int       `json:"sets_diff" db:"-"`
	GamesDiff     int       `json:"games_diff" db:"-"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
