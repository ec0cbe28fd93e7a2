package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/racket-club/brackets"
)

var ErrInvalidSchedule = errors.New("invalid schedule parameters")

type Params struct {
	StartDate     time.Time
	Weekday       time.Weekday
	CourtsPerSlot int
	TimeSlots     []string // HH:MM, in play order
	Location      *time.Location
}

// Slot is a pairing placed on a date, time and court.
type Slot struct {
	Round      int
	HomeTeamID int
	AwayTeamID int
	Date       time.Time
	TimeSlot   string
	Court      int
}

type clock struct {
	hour, minute int
}

// Allocate places every non-bye pairing of every round. A day holds
// CourtsPerSlot matches per time slot; overflow moves to the next week and
// each round starts one week after the previous round's last day.
func Allocate(rounds [][]brackets.Pairing, params Params) ([]Slot, error) {
	if params.CourtsPerSlot < 1 {
		return nil, fmt.Errorf("%w: courts per slot must be positive, got %d", ErrInvalidSchedule, params.CourtsPerSlot)
	}
	if len(params.TimeSlots) == 0 {
		return nil, fmt.Errorf("%w: at least one time slot is required", ErrInvalidSchedule)
	}
	clocks := make([]clock, len(params.TimeSlots))
	for i, raw := range params.TimeSlots {
		c, err := parseClock(raw)
		if err != nil {
			return nil, err
		}
		clocks[i] = c
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}

	capacity := params.CourtsPerSlot * len(clocks)
	day := FirstWeekday(params.StartDate.In(loc), params.Weekday)

	var slots []Slot
	for r, round := range rounds {
		used := 0
		for _, p := range round {
			if p.IsBye() {
				continue
			}
			if used == capacity {
				day = day.AddDate(0, 0, 7)
				used = 0
			}
			slotIdx := used / params.CourtsPerSlot
			c := clocks[slotIdx]
			slots = append(slots, Slot{
				Round:      r + 1,
				HomeTeamID: p.Team1ID,
				AwayTeamID: p.Team2ID,
				Date:       time.Date(day.Year(), day.Month(), day.Day(), c.hour, c.minute, 0, 0, loc),
				TimeSlot:   params.TimeSlots[slotIdx],
				Court:      used%params.CourtsPerSlot + 1,
			})
			used++
		}
		day = day.AddDate(0, 0, 7)
	}
	return slots, nil
}

// FirstWeekday returns midnight of the first wd on or after t, in t's location.
func FirstWeekday(t time.Time, wd time.Weekday) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(wd) - int(day.Weekday()) + 7) % 7
	return day.AddDate(0, 0, offset)
}

func parseClock(raw string) (clock, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(raw))
	if err != nil {
		return clock{}, fmt.Errorf("%w: time slot %q is not HH:MM", ErrInvalidSchedule, raw)
	}
	return clock{hour: t.Hour(), minute: t.Minute()}, nil
}

// ParseWeekday accepts English day names, full or three-letter, in any case.
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || (len(name) == 3 && strings.HasPrefix(full, name)) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("%w: unknown weekday %q", ErrInvalidSchedule, s)
}
