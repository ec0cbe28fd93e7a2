package models

import "time"

// LeagueMatch is one leg of a dated league fixture.
type LeagueMatch struct {
	ID           int         `json:"id" db:"id"`
	LeagueID     int         `json:"league_id" db:"league_id"`
	Round        int         `json:"round" db:"round"`
	Leg          int         `json:"leg" db:"leg"`
	HomeTeamID   int         `json:"home_team_id" db:"home_team_id"`
	AwayTeamID   int         `json:"away_team_id" db:"away_team_id"`
	MatchDate    time.Time   `json:"match_date" db:"match_date"`
	TimeSlot     string      `json:"time_slot" db:"time_slot"`
	Court        int         `json:"court" db:"court"`
	Score        *Score      `json:"score,omitempty" db:"score"`
	HomeScore    *int        `json:"home_score" db:"home_score"`
	AwayScore    *int        `json:"away_score" db:"away_score"`
	WinnerID     *int        `json:"winner_id" db:"winner_id"`
	Status       MatchStatus `json:"status" db:"status"`
	GenerationID string      `json:"generation_id" db:"generation_id"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

func (m *LeagueMatch) IsCompleted() bool {
	return m.Status == MatchStatusCompleted
}

func (m *LeagueMatch) Clone() *LeagueMatch {
	if m == nil {
		return nil
	}
	c := *m
	c.Score = m.Score.Clone()
	c.HomeScore = cloneInt(m.HomeScore)
	c.AwayScore = cloneInt(m.AwayScore)
	c.WinnerID = cloneInt(m.WinnerID)
	return &c
}
