package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// Tiebreak is the points record of a set tiebreak or of a match super-tiebreak.
type Tiebreak struct {
	Points1 int `json:"points1"`
	Points2 int `json:"points2"`
}

type Set struct {
	Games1   int       `json:"games1"`
	Games2   int       `json:"games2"`
	Tiebreak *Tiebreak `json:"tiebreak,omitempty"`
}

// Score is the full result of a match: played sets plus an optional deciding super-tiebreak.
type Score struct {
	Sets          []Set     `json:"sets"`
	SuperTiebreak *Tiebreak `json:"super_tiebreak,omitempty"`
}

func (s *Score) Clone() *Score {
	if s == nil {
		return nil
	}
	c := &Score{Sets: make([]Set, len(s.Sets))}
	for i, set := range s.Sets {
		c.Sets[i] = Set{Games1: set.Games1, Games2: set.Games2}
		if set.Tiebreak != nil {
			tb := *set.Tiebreak
			c.Sets[i].Tiebreak = &tb
		}
	}
	if s.SuperTiebreak != nil {
		stb := *s.SuperTiebreak
		c.SuperTiebreak = &stb
	}
	return c
}

// Equal compares two scores field by field; nil equals only nil.
func (s *Score) Equal(o *Score) bool {
	if s == nil || o == nil {
		return s == nil && o == nil
	}
	if len(s.Sets) != len(o.Sets) || !equalTiebreak(s.SuperTiebreak, o.SuperTiebreak) {
		return false
	}
	for i := range s.Sets {
		a, b := s.Sets[i], o.Sets[i]
		if a.Games1 != b.Games1 || a.Games2 != b.Games2 || !equalTiebreak(a.Tiebreak, b.Tiebreak) {
			return false
		}
	}
	return true
}

func equalTiebreak(a, b *Tiebreak) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Value stores the score as JSONB.
func (s *Score) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *Score) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported score column type %T", src)
	}
	if len(raw) == 0 {
		return errors.New("empty score column")
	}
	return json.Unmarshal(raw, s)
}
