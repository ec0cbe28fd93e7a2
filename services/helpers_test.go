package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/Dosada05/racket-club/models"
	"github.com/Dosada05/racket-club/repositories"
	"github.com/stretchr/testify/require"
)

type publishedEvent struct {
	competitionID int
	eventType     string
	payload       interface{}
}

type eventRecorder struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (r *eventRecorder) Publish(competitionID int, eventType string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, publishedEvent{competitionID, eventType, payload})
}

func (r *eventRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.eventType
	}
	return out
}

type snapshotRecorder struct {
	mu     sync.Mutex
	tables map[int][]models.Standing
}

func (r *snapshotRecorder) PublishStandings(ctx context.Context, competitionID int, table []models.Standing) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tables == nil {
		r.tables = map[int][]models.Standing{}
	}
	r.tables[competitionID] = table
	return "https://snapshots.example/standings.json", nil
}

type fixture struct {
	store     *repositories.MemoryStore
	events    *eventRecorder
	snapshots *snapshotRecorder

	competitions CompetitionService
	matches      MatchService
	standings    StandingsService
	leagues      LeagueService
}

func newFixture() *fixture {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repositories.NewMemoryStore()
	events := &eventRecorder{}
	snapshots := &snapshotRecorder{}
	return &fixture{
		store:        store,
		events:       events,
		snapshots:    snapshots,
		competitions: NewCompetitionService(store, events, snapshots, logger),
		matches:      NewMatchService(store, events, snapshots, logger),
		standings:    NewStandingsService(store),
		leagues:      NewLeagueService(store, events, snapshots, logger),
	}
}

// addCompetition creates a competition with n teams seeded 1..n and returns
// the competition ID and the team IDs in seed order.
func (f *fixture) addCompetition(format models.CompetitionFormat, settings string, n int) (int, []int) {
	c := models.Competition{Name: string(format) + " cup", Format: format}
	if settings != "" {
		c.SettingsJSON = &settings
	}
	id := f.store.AddCompetition(c)
	teams := make([]int, n)
	for i := range teams {
		teams[i] = f.store.AddTeam(models.Team{
			CompetitionID: id,
			Name:          "Team " + models.GroupLabel(i),
			Seed:          models.IntPtr(i + 1),
		})
	}
	return id, teams
}

func (f *fixture) listMatches(t *testing.T, competitionID int, filter repositories.MatchFilter) []*models.Match {
	t.Helper()
	matches, err := f.store.Repos().Matches.ListByCompetition(context.Background(), competitionID, filter)
	require.NoError(t, err)
	return matches
}

func straight(team1Wins bool) models.Score {
	if team1Wins {
		return models.Score{Sets: []models.Set{{Games1: 6, Games2: 2}, {Games1: 6, Games2: 3}}}
	}
	return models.Score{Sets: []models.Set{{Games1: 2, Games2: 6}, {Games1: 3, Games2: 6}}}
}

// lowerIDWins submits a straight-sets win for the team with the lower ID.
func (f *fixture) lowerIDWins(t *testing.T, m *models.Match) *models.Match {
	t.Helper()
	updated, err := f.matches.SubmitResult(context.Background(), m.ID, SubmitResultInput{Score: straight(*m.Team1ID < *m.Team2ID)})
	require.NoError(t, err)
	return updated
}
