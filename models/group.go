package models

type GroupTeam struct {
	TeamID int  `json:"team_id" db:"team_id"`
	Seed   *int `json:"seed,omitempty" db:"seed"`
}

// Group is an immutable partition of a competition's teams.
type Group struct {
	ID            int         `json:"id" db:"id"`
	CompetitionID int         `json:"competition_id" db:"competition_id"`
	Name          string      `json:"name" db:"name"`
	Teams         []GroupTeam `json:"teams" db:"-"`
}

func (g *Group) TeamIDs() []int {
	ids := make([]int, len(g.Teams))
	for i, t := range g.Teams {
		ids[i] = t.TeamID
	}
	return ids
}

// GroupLabel returns A, B, ... Z, AA, AB, ... for a zero based index.
func GroupLabel(i int) string {
	label := ""
	for i >= 0 {
		label = string(rune('A'+i%26)) + label
		i = i/26 - 1
	}
	return label
}

func (g Group) Clone() Group {
	c := g
	c.Teams = make([]GroupTeam, len(g.Teams))
	for i, t := range g.Teams {
		c.Teams[i] = GroupTeam{TeamID: t.TeamID, Seed: cloneInt(t.Seed)}
	}
	return c
}
