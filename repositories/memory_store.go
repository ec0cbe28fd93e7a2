package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/racket-club/models"
)

type memoryState struct {
	nextID        int
	competitions  map[int]*models.Competition
	teams         map[int][]models.Team
	matches       map[int]*models.Match
	groups        map[int]models.Group
	standings     map[int][]models.Standing
	leagueMatches map[int]*models.LeagueMatch
}

func newMemoryState() *memoryState {
	return &memoryState{
		competitions:  map[int]*models.Competition{},
		teams:         map[int][]models.Team{},
		matches:       map[int]*models.Match{},
		groups:        map[int]models.Group{},
		standings:     map[int][]models.Standing{},
		leagueMatches: map[int]*models.LeagueMatch{},
	}
}

func (s *memoryState) clone() *memoryState {
	c := newMemoryState()
	c.nextID = s.nextID
	for id, comp := range s.competitions {
		c.competitions[id] = comp.Clone()
	}
	for id, teams := range s.teams {
		c.teams[id] = append([]models.Team(nil), teams...)
	}
	for id, m := range s.matches {
		c.matches[id] = m.Clone()
	}
	for id, g := range s.groups {
		c.groups[id] = g.Clone()
	}
	for id, rows := range s.standings {
		c.standings[id] = append([]models.Standing(nil), rows...)
	}
	for id, m := range s.leagueMatches {
		c.leagueMatches[id] = m.Clone()
	}
	return c
}

func (s *memoryState) id() int {
	s.nextID++
	return s.nextID
}

// MemoryStore keeps every entity in process memory. A transaction works on a
// private copy of the state that replaces the shared one on commit, so readers
// outside the transaction only ever see committed data.
type MemoryStore struct {
	txMu  sync.Mutex
	mu    sync.RWMutex
	state *memoryState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemoryState()}
}

func (s *MemoryStore) Repos() Repositories {
	return s.repos(memoryScope{s: s})
}

func (s *MemoryStore) repos(scope memoryScope) Repositories {
	return Repositories{
		Competitions:  &memoryCompetitionRepository{scope},
		Teams:         &memoryTeamRepository{scope},
		Matches:       &memoryMatchRepository{scope},
		Groups:        &memoryGroupRepository{scope},
		Standings:     &memoryStandingRepository{scope},
		LeagueMatches: &memoryLeagueMatchRepository{scope},
	}
}

func (s *MemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	working := s.state.clone()
	s.mu.RUnlock()

	if err := fn(ctx, s.repos(memoryScope{s: s, tx: working})); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = working
	s.mu.Unlock()
	return nil
}

// memoryScope resolves the state a repository works on: the private copy of
// a running transaction, or the committed state.
type memoryScope struct {
	s  *MemoryStore
	tx *memoryState
}

func (m memoryScope) read(fn func(st *memoryState)) {
	if m.tx != nil {
		fn(m.tx)
		return
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	fn(m.s.state)
}

// write applies fn atomically. Outside a transaction it is serialized with
// RunInTx so a commit never drops it.
func (m memoryScope) write(fn func(st *memoryState) error) error {
	if m.tx != nil {
		return fn(m.tx)
	}
	m.s.txMu.Lock()
	defer m.s.txMu.Unlock()

	m.s.mu.RLock()
	working := m.s.state.clone()
	m.s.mu.RUnlock()
	if err := fn(working); err != nil {
		return err
	}
	m.s.mu.Lock()
	m.s.state = working
	m.s.mu.Unlock()
	return nil
}

// AddCompetition stores c and returns its new ID.
func (s *MemoryStore) AddCompetition(c models.Competition) int {
	_ = memoryScope{s: s}.write(func(st *memoryState) error {
		c.ID = st.id()
		if c.Status == "" {
			c.Status = models.CompetitionStatusDraft
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = time.Now().UTC()
		}
		st.competitions[c.ID] = c.Clone()
		return nil
	})
	return c.ID
}

// AddTeam appends a team to the roster of t.CompetitionID and returns its new ID.
func (s *MemoryStore) AddTeam(t models.Team) int {
	_ = memoryScope{s: s}.write(func(st *memoryState) error {
		t.ID = st.id()
		if t.CreatedAt.IsZero() {
			t.CreatedAt = time.Now().UTC()
		}
		st.teams[t.CompetitionID] = append(st.teams[t.CompetitionID], t)
		return nil
	})
	return t.ID
}

type fixtureCompetition struct {
	Name     string                   `json:"name"`
	Format   models.CompetitionFormat `json:"format"`
	Settings json.RawMessage          `json:"settings"`
	Teams    []struct {
		Name string `json:"name"`
		Seed *int   `json:"seed"`
	} `json:"teams"`
}

// LoadFixture seeds competitions and rosters from a JSON array of
// {name, format, settings, teams: [{name, seed}]} objects.
func (s *MemoryStore) LoadFixture(r io.Reader) error {
	var fixtures []fixtureCompetition
	if err := json.NewDecoder(r).Decode(&fixtures); err != nil {
		return fmt.Errorf("decode fixture: %w", err)
	}
	for _, f := range fixtures {
		if !f.Format.Valid() {
			return fmt.Errorf("fixture %q: unknown format %q", f.Name, f.Format)
		}
		c := models.Competition{Name: f.Name, Format: f.Format}
		if len(f.Settings) > 0 {
			settings := string(f.Settings)
			c.SettingsJSON = &settings
		}
		id := s.AddCompetition(c)
		for _, t := range f.Teams {
			s.AddTeam(models.Team{CompetitionID: id, Name: t.Name, Seed: t.Seed})
		}
	}
	return nil
}

type memoryCompetitionRepository struct{ memoryScope }

func (r *memoryCompetitionRepository) GetByID(ctx context.Context, id int) (*models.Competition, error) {
	var found *models.Competition
	r.read(func(st *memoryState) {
		if c, ok := st.competitions[id]; ok {
			found = c.Clone()
		}
	})
	if found == nil {
		return nil, ErrCompetitionNotFound
	}
	return found, nil
}

// LockForUpdate is a plain read: RunInTx already serializes transactions.
func (r *memoryCompetitionRepository) LockForUpdate(ctx context.Context, id int) (*models.Competition, error) {
	return r.GetByID(ctx, id)
}

func (r *memoryCompetitionRepository) UpdateOutcome(ctx context.Context, id int, status models.CompetitionStatus, winnerTeamID *int) error {
	return r.write(func(st *memoryState) error {
		c, ok := st.competitions[id]
		if !ok {
			return ErrCompetitionNotFound
		}
		c.Status = status
		c.WinnerTeamID = cloneIntPtr(winnerTeamID)
		return nil
	})
}

type memoryTeamRepository struct{ memoryScope }

func (r *memoryTeamRepository) ListByCompetition(ctx context.Context, competitionID int) ([]models.Team, error) {
	var teams []models.Team
	r.read(func(st *memoryState) {
		teams = append([]models.Team{}, st.teams[competitionID]...)
	})
	models.SortRoster(teams)
	return teams, nil
}

type memoryMatchRepository struct{ memoryScope }

func (r *memoryMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	var found *models.Match
	r.read(func(st *memoryState) {
		if m, ok := st.matches[id]; ok {
			found = m.Clone()
		}
	})
	if found == nil {
		return nil, ErrMatchNotFound
	}
	return found, nil
}

func (r *memoryMatchRepository) LockForUpdate(ctx context.Context, id int) (*models.Match, error) {
	return r.GetByID(ctx, id)
}

func (r *memoryMatchRepository) ListByCompetition(ctx context.Context, competitionID int, filter MatchFilter) ([]*models.Match, error) {
	matches := make([]*models.Match, 0)
	r.read(func(st *memoryState) {
		for _, m := range st.matches {
			if m.CompetitionID == competitionID && filter.Matches(m) {
				matches = append(matches, m.Clone())
			}
		}
	})

	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Stage != b.Stage {
			return a.Stage < b.Stage
		}
		if a.Round != b.Round {
			return a.Round < b.Round
		}
		return a.Position < b.Position
	})
	return matches, nil
}

func (r *memoryMatchRepository) CountByCompetition(ctx context.Context, competitionID int, filter MatchFilter) (int, error) {
	matches, err := r.ListByCompetition(ctx, competitionID, filter)
	return len(matches), err
}

func (r *memoryMatchRepository) BatchCreate(ctx context.Context, matches []*models.Match) error {
	type coordinate struct {
		competitionID int
		stage         models.MatchStage
		round, pos    int
	}
	return r.write(func(st *memoryState) error {
		taken := map[coordinate]bool{}
		for _, m := range st.matches {
			taken[coordinate{m.CompetitionID, m.Stage, m.Round, m.Position}] = true
		}

		now := time.Now().UTC()
		for _, m := range matches {
			key := coordinate{m.CompetitionID, m.Stage, m.Round, m.Position}
			if taken[key] {
				return fmt.Errorf("insert match %s R%dM%d: %w", m.Stage, m.Round, m.Position, ErrDuplicateRow)
			}
			if _, ok := st.competitions[m.CompetitionID]; !ok {
				return fmt.Errorf("insert match: %w: competition %d", ErrReferenceInvalid, m.CompetitionID)
			}
			taken[key] = true
			m.ID = st.id()
			m.UpdatedAt = now
			st.matches[m.ID] = m.Clone()
		}
		return nil
	})
}

func (r *memoryMatchRepository) Update(ctx context.Context, m *models.Match) error {
	return r.write(func(st *memoryState) error {
		stored, ok := st.matches[m.ID]
		if !ok {
			return ErrMatchNotFound
		}
		m.UpdatedAt = time.Now().UTC()
		updated := m.Clone()
		// coordinates and generation are immutable
		updated.CompetitionID, updated.Stage, updated.Round, updated.Position = stored.CompetitionID, stored.Stage, stored.Round, stored.Position
		updated.GroupID, updated.GenerationID = stored.GroupID, stored.GenerationID
		st.matches[m.ID] = updated
		return nil
	})
}

func (r *memoryMatchRepository) DeleteByCompetition(ctx context.Context, competitionID int, filter MatchFilter) (int64, error) {
	var deleted int64
	err := r.write(func(st *memoryState) error {
		for id, m := range st.matches {
			if m.CompetitionID == competitionID && filter.Matches(m) {
				delete(st.matches, id)
				deleted++
			}
		}
		return nil
	})
	return deleted, err
}

type memoryGroupRepository struct{ memoryScope }

func (r *memoryGroupRepository) ListByCompetition(ctx context.Context, competitionID int) ([]models.Group, error) {
	groups := make([]models.Group, 0)
	r.read(func(st *memoryState) {
		for _, g := range st.groups {
			if g.CompetitionID == competitionID {
				groups = append(groups, g.Clone())
			}
		}
	})
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups, nil
}

func (r *memoryGroupRepository) BatchCreate(ctx context.Context, groups []models.Group) error {
	return r.write(func(st *memoryState) error {
		for i := range groups {
			groups[i].ID = st.id()
			st.groups[groups[i].ID] = groups[i].Clone()
		}
		return nil
	})
}

func (r *memoryGroupRepository) DeleteByCompetition(ctx context.Context, competitionID int) error {
	return r.write(func(st *memoryState) error {
		for id, g := range st.groups {
			if g.CompetitionID == competitionID {
				delete(st.groups, id)
			}
		}
		return nil
	})
}

type memoryStandingRepository struct{ memoryScope }

func (r *memoryStandingRepository) BatchCreate(ctx context.Context, standings []models.Standing) error {
	return r.write(func(st *memoryState) error {
		now := time.Now().UTC()
		for i := range standings {
			s := &standings[i]
			for _, existing := range st.standings[s.CompetitionID] {
				if existing.TeamID == s.TeamID {
					return fmt.Errorf("insert standing for team %d: %w", s.TeamID, ErrDuplicateRow)
				}
			}
			s.ID = st.id()
			s.UpdatedAt = now
			st.standings[s.CompetitionID] = append(st.standings[s.CompetitionID], *s)
		}
		return nil
	})
}

func (r *memoryStandingRepository) ListSeed(ctx context.Context, competitionID int) ([]models.Standing, error) {
	var rows []models.Standing
	r.read(func(st *memoryState) {
		rows = append([]models.Standing{}, st.standings[competitionID]...)
		names := map[int]string{}
		for _, t := range st.teams[competitionID] {
			names[t.ID] = t.Name
		}
		for i := range rows {
			rows[i].TeamName = names[rows[i].TeamID]
		}
	})
	return rows, nil
}

func (r *memoryStandingRepository) ReplaceRanks(ctx context.Context, competitionID int, table []models.Standing) error {
	return r.write(func(st *memoryState) error {
		rows := st.standings[competitionID]
		index := make(map[int]int, len(rows))
		for i, row := range rows {
			index[row.TeamID] = i
		}
		now := time.Now().UTC()
		for _, s := range table {
			i, ok := index[s.TeamID]
			if !ok {
				return fmt.Errorf("team %d: %w", s.TeamID, ErrStandingNotFound)
			}
			row := &rows[i]
			row.Rank, row.Played, row.Wins, row.Losses, row.Points = s.Rank, s.Played, s.Wins, s.Losses, s.Points
			row.SetsWon, row.SetsLost, row.GamesWon, row.GamesLost = s.SetsWon, s.SetsLost, s.GamesWon, s.GamesLost
			row.SetsDiff, row.GamesDiff = s.SetsDiff, s.GamesDiff
			row.UpdatedAt = now
		}
		return nil
	})
}

func (r *memoryStandingRepository) CountByCompetition(ctx context.Context, competitionID int) (int, error) {
	var n int
	r.read(func(st *memoryState) { n = len(st.standings[competitionID]) })
	return n, nil
}

func (r *memoryStandingRepository) DeleteByCompetition(ctx context.Context, competitionID int) error {
	return r.write(func(st *memoryState) error {
		delete(st.standings, competitionID)
		return nil
	})
}

type memoryLeagueMatchRepository struct{ memoryScope }

func (r *memoryLeagueMatchRepository) GetByID(ctx context.Context, id int) (*models.LeagueMatch, error) {
	var found *models.LeagueMatch
	r.read(func(st *memoryState) {
		if m, ok := st.leagueMatches[id]; ok {
			found = m.Clone()
		}
	})
	if found == nil {
		return nil, ErrLeagueMatchNotFound
	}
	return found, nil
}

func (r *memoryLeagueMatchRepository) LockForUpdate(ctx context.Context, id int) (*models.LeagueMatch, error) {
	return r.GetByID(ctx, id)
}

func (r *memoryLeagueMatchRepository) ListByLeague(ctx context.Context, leagueID int) ([]*models.LeagueMatch, error) {
	matches := make([]*models.LeagueMatch, 0)
	r.read(func(st *memoryState) {
		for _, m := range st.leagueMatches {
			if m.LeagueID == leagueID {
				matches = append(matches, m.Clone())
			}
		}
	})
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Round != b.Round {
			return a.Round < b.Round
		}
		if !a.MatchDate.Equal(b.MatchDate) {
			return a.MatchDate.Before(b.MatchDate)
		}
		if a.Court != b.Court {
			return a.Court < b.Court
		}
		return a.ID < b.ID
	})
	return matches, nil
}

func (r *memoryLeagueMatchRepository) CountByLeague(ctx context.Context, leagueID int) (int, error) {
	matches, err := r.ListByLeague(ctx, leagueID)
	return len(matches), err
}

func (r *memoryLeagueMatchRepository) BatchCreate(ctx context.Context, matches []*models.LeagueMatch) error {
	return r.write(func(st *memoryState) error {
		now := time.Now().UTC()
		for _, m := range matches {
			if _, ok := st.competitions[m.LeagueID]; !ok {
				return fmt.Errorf("insert league match: %w: league %d", ErrReferenceInvalid, m.LeagueID)
			}
			m.ID = st.id()
			m.UpdatedAt = now
			st.leagueMatches[m.ID] = m.Clone()
		}
		return nil
	})
}

func (r *memoryLeagueMatchRepository) UpdateResult(ctx context.Context, m *models.LeagueMatch) error {
	return r.write(func(st *memoryState) error {
		stored, ok := st.leagueMatches[m.ID]
		if !ok {
			return ErrLeagueMatchNotFound
		}
		m.UpdatedAt = time.Now().UTC()
		stored.Score = m.Score.Clone()
		stored.HomeScore = cloneIntPtr(m.HomeScore)
		stored.AwayScore = cloneIntPtr(m.AwayScore)
		stored.WinnerID = cloneIntPtr(m.WinnerID)
		stored.Status = m.Status
		stored.UpdatedAt = m.UpdatedAt
		return nil
	})
}

func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	return models.IntPtr(*p)
}
