package models

import (
	"sort"
	"time"
)

// Team is a roster entry of a competition.
type Team struct {
	ID            int       `json:"id" db:"id"`
	CompetitionID int       `json:"competition_id" db:"competition_id"`
	Name          string    `json:"name" db:"name"`
	Seed          *int      `json:"seed,omitempty" db:"seed"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// SortRoster orders teams by seed ascending, unseeded teams last, ties by ID.
func SortRoster(teams []Team) {
	sort.SliceStable(teams, func(i, j int) bool {
		a, b := teams[i], teams[j]
		switch {
		case a.Seed != nil && b.Seed != nil && *a.Seed != *b.Seed:
			return *a.Seed < *b.Seed
		case a.Seed != nil && b.Seed == nil:
			return true
		case a.Seed == nil && b.Seed != nil:
			return false
		}
		return a.ID < b.ID
	})
}

func TeamIDs(teams []Team) []int {
	ids := make([]int, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
	}
	return ids
}
