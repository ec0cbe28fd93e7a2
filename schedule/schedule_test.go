package schedule

import (
	"testing"
	"time"

	"github.com/Dosada05/racket-club/brackets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFirstWeekday(t *testing.T) {
	// 2024-05-01 is a Wednesday
	start := date(2024, time.May, 1)
	assert.Equal(t, date(2024, time.May, 1), FirstWeekday(start, time.Wednesday))
	assert.Equal(t, date(2024, time.May, 4), FirstWeekday(start, time.Saturday))
	assert.Equal(t, date(2024, time.May, 6), FirstWeekday(start.Add(15*time.Hour), time.Monday))
}

func TestAllocate_FillsCourtsThenSlotsThenWeeks(t *testing.T) {
	rounds := [][]brackets.Pairing{
		{{Team1ID: 1, Team2ID: 2}, {Team1ID: 3, Team2ID: 4}, {Team1ID: 5, Team2ID: 6}, {Team1ID: 7, Team2ID: 8}, {Team1ID: 9, Team2ID: 10}},
		{{Team1ID: 1, Team2ID: 3}},
	}
	slots, err := Allocate(rounds, Params{
		StartDate:     date(2024, time.May, 1),
		Weekday:       time.Saturday,
		CourtsPerSlot: 2,
		TimeSlots:     []string{"18:00", "19:30"},
	})
	require.NoError(t, err)
	require.Len(t, slots, 6)

	type placed struct {
		day   int
		slot  string
		court int
	}
	got := make([]placed, len(slots))
	for i, s := range slots {
		got[i] = placed{s.Date.Day(), s.TimeSlot, s.Court}
	}
	assert.Equal(t, []placed{
		{4, "18:00", 1}, {4, "18:00", 2}, {4, "19:30", 1}, {4, "19:30", 2},
		{11, "18:00", 1},
		{18, "18:00", 1},
	}, got)

	assert.Equal(t, 19, slots[2].Date.Hour())
	assert.Equal(t, 30, slots[2].Date.Minute())
	assert.Equal(t, 2, slots[5].Round)
	assert.Equal(t, 1, slots[5].HomeTeamID)
	assert.Equal(t, 3, slots[5].AwayTeamID)
}

func TestAllocate_SkipsByesAndUsesLocation(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)

	rounds := [][]brackets.Pairing{{{Team1ID: 1, Team2ID: brackets.ByeTeamID}, {Team1ID: 2, Team2ID: 3}}}
	slots, err := Allocate(rounds, Params{
		StartDate:     date(2024, time.June, 3),
		Weekday:       time.Sunday,
		CourtsPerSlot: 1,
		TimeSlots:     []string{"10:00"},
		Location:      loc,
	})
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, time.Date(2024, time.June, 9, 10, 0, 0, 0, loc), slots[0].Date)
	assert.Equal(t, "2024-06-09T08:00:00Z", slots[0].Date.UTC().Format(time.RFC3339))
}

func TestAllocate_InvalidParams(t *testing.T) {
	rounds := [][]brackets.Pairing{{{Team1ID: 1, Team2ID: 2}}}
	base := Params{StartDate: date(2024, time.May, 1), CourtsPerSlot: 1, TimeSlots: []string{"09:00"}}

	p := base
	p.CourtsPerSlot = 0
	_, err := Allocate(rounds, p)
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	p = base
	p.TimeSlots = nil
	_, err = Allocate(rounds, p)
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	p = base
	p.TimeSlots = []string{"9pm"}
	_, err = Allocate(rounds, p)
	assert.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestParseWeekday(t *testing.T) {
	for in, want := range map[string]time.Weekday{
		"Saturday": time.Saturday,
		" monday ": time.Monday,
		"thu":      time.Thursday,
		"SUN":      time.Sunday,
	} {
		got, err := ParseWeekday(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseWeekday("someday")
	assert.ErrorIs(t, err, ErrInvalidSchedule)
}
