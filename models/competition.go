package models

import (
	"encoding/json"
	"time"
)

type CompetitionFormat string

const (
	FormatSingleElimination CompetitionFormat = "single_elimination"
	FormatRoundRobin        CompetitionFormat = "round_robin"
	FormatGroupKnockout     CompetitionFormat = "group_knockout"
	FormatLeague            CompetitionFormat = "league"
)

func (f CompetitionFormat) Valid() bool {
	switch f {
	case FormatSingleElimination, FormatRoundRobin, FormatGroupKnockout, FormatLeague:
		return true
	}
	return false
}

// CompetitionStatus mirrors the competition_status enum in the database.
type CompetitionStatus string

const (
	CompetitionStatusDraft     CompetitionStatus = "draft"
	CompetitionStatusActive    CompetitionStatus = "active"
	CompetitionStatusCompleted CompetitionStatus = "completed"
)

const (
	KnockoutSeedingGroupOrder = "group_order"
	KnockoutSeedingCross      = "cross"
)

// CompetitionSettings is the parsed form of Competition.SettingsJSON.
type CompetitionSettings struct {
	PointsPerWin    int   `json:"points_per_win"`
	PointsPerLoss   int   `json:"points_per_loss"`
	NumberOfRounds  int   `json:"number_of_rounds"` // 1 single round robin, 2 double
	BestOf          int   `json:"best_of"`
	SuperTiebreak   bool  `json:"super_tiebreak"`
	TiebreakAt      int   `json:"tiebreak_at"`
	AutoAdvanceByes *bool `json:"auto_advance_byes,omitempty"`

	KnockoutSeeding string `json:"knockout_seeding,omitempty"`

	StartDate     string   `json:"start_date,omitempty"` // YYYY-MM-DD
	Weekday       string   `json:"weekday,omitempty"`
	CourtsPerSlot int      `json:"courts_per_slot,omitempty"`
	TimeSlots     []string `json:"time_slots,omitempty"`
	Timezone      string   `json:"timezone,omitempty"`
}

type Competition struct {
	ID           int               `json:"id" db:"id"`
	Name         string            `json:"name" db:"name"`
	Format       CompetitionFormat `json:"format" db:"format"`
	Status       CompetitionStatus `json:"status" db:"status"`
	SettingsJSON *string           `json:"-" db:"settings_json"`
	WinnerTeamID *int              `json:"winner_team_id,omitempty" db:"winner_team_id"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
}

// Settings parses SettingsJSON and fills the format defaults.
func (c *Competition) Settings() (*CompetitionSettings, error) {
	settings := CompetitionSettings{}
	if c.SettingsJSON != nil && *c.SettingsJSON != "" {
		if err := json.Unmarshal([]byte(*c.SettingsJSON), &settings); err != nil {
			return nil, err
		}
	}

	if settings.PointsPerWin <= 0 {
		settings.PointsPerWin = c.defaultPointsPerWin()
	}
	if settings.PointsPerLoss < 0 {
		settings.PointsPerLoss = 0
	}
	if settings.NumberOfRounds < 1 || settings.NumberOfRounds > 2 {
		settings.NumberOfRounds = 1
	}
	if settings.BestOf != 1 && settings.BestOf != 3 && settings.BestOf != 5 {
		settings.BestOf = 3
	}
	if settings.TiebreakAt <= 0 {
		settings.TiebreakAt = 6
	}
	if settings.KnockoutSeeding != KnockoutSeedingCross {
		settings.KnockoutSeeding = KnockoutSeedingGroupOrder
	}
	if settings.Timezone == "" {
		settings.Timezone = "UTC"
	}
	return &settings, nil
}

// AutoAdvance resolves the bye policy for a bracket stage. Single elimination
// advances byes unless told otherwise; a group knockout leaves them open.
func (s *CompetitionSettings) AutoAdvance(stage MatchStage) bool {
	if s.AutoAdvanceByes != nil {
		return *s.AutoAdvanceByes
	}
	return stage == StageMain
}

func (c *Competition) defaultPointsPerWin() int {
	if c.Format == FormatGroupKnockout {
		return 2
	}
	return 3
}

func (c *Competition) Clone() *Competition {
	if c == nil {
		return nil
	}
	cp := *c
	cp.WinnerTeamID = cloneInt(c.WinnerTeamID)
	if c.SettingsJSON != nil {
		s := *c.SettingsJSON
		cp.SettingsJSON = &s
	}
	return &cp
}
