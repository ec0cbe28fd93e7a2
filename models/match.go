package models

import "time"

type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusCompleted MatchStatus = "completed"
)

// MatchStage separates independent coordinate spaces inside one competition.
type MatchStage string

const (
	StageMain       MatchStage = "main"
	StageRoundRobin MatchStage = "round_robin"
	StageGroup      MatchStage = "group"
	StageKnockout   MatchStage = "knockout"
)

// IsElimination reports whether winners of this stage move on to a next-round match.
func (s MatchStage) IsElimination() bool {
	return s == StageMain || s == StageKnockout
}

type Match struct {
	ID            int         `json:"id" db:"id"`
	CompetitionID int         `json:"competition_id" db:"competition_id"`
	Stage         MatchStage  `json:"stage" db:"stage"`
	Round         int         `json:"round" db:"round"`
	Position      int         `json:"position" db:"position"`
	Team1ID       *int        `json:"team1_id" db:"team1_id"`
	Team2ID       *int        `json:"team2_id" db:"team2_id"`
	WinnerID      *int        `json:"winner_id" db:"winner_id"`
	Team1Score    *int        `json:"team1_score" db:"team1_score"`
	Team2Score    *int        `json:"team2_score" db:"team2_score"`
	Score         *Score      `json:"score,omitempty" db:"score"`
	Status        MatchStatus `json:"status" db:"status"`
	GroupID       *int        `json:"group_id,omitempty" db:"group_id"`
	IsBye         bool        `json:"is_bye" db:"is_bye"`
	GenerationID  string      `json:"generation_id" db:"generation_id"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}

func (m *Match) IsCompleted() bool {
	return m.Status == MatchStatusCompleted
}

// HasTeam reports whether teamID occupies one of the two slots.
func (m *Match) HasTeam(teamID int) bool {
	return (m.Team1ID != nil && *m.Team1ID == teamID) || (m.Team2ID != nil && *m.Team2ID == teamID)
}

// LoserID returns the team that did not win, nil for byes and pending matches.
func (m *Match) LoserID() *int {
	if m.WinnerID == nil || m.Team1ID == nil || m.Team2ID == nil {
		return nil
	}
	if *m.WinnerID == *m.Team1ID {
		return m.Team2ID
	}
	return m.Team1ID
}

// Clone returns a deep copy; engine functions never alias caller data.
func (m *Match) Clone() *Match {
	if m == nil {
		return nil
	}
	c := *m
	c.Team1ID = cloneInt(m.Team1ID)
	c.Team2ID = cloneInt(m.Team2ID)
	c.WinnerID = cloneInt(m.WinnerID)
	c.Team1Score = cloneInt(m.Team1Score)
	c.Team2Score = cloneInt(m.Team2Score)
	c.GroupID = cloneInt(m.GroupID)
	c.Score = m.Score.Clone()
	return &c
}

func IntPtr(v int) *int {
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func EqualIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
