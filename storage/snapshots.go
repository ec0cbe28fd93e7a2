package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Dosada05/racket-club/models"
	"github.com/google/uuid"
)

type standingsDocument struct {
	CompetitionID int               `json:"competition_id"`
	GeneratedAt   time.Time         `json:"generated_at"`
	Standings     []models.Standing `json:"standings"`
}

// StandingsSnapshots uploads every published standings table as an immutable
// JSON object and returns its public URL. Only the newest retain objects of a
// competition are kept; older ones are deleted after a successful upload.
type StandingsSnapshots struct {
	uploader FileUploader
	prefix   string
	retain   int
	now      func() time.Time

	mu        sync.Mutex
	published map[int][]string
}

// NewStandingsSnapshots returns a publisher writing under prefix. retain <= 0 keeps every snapshot.
func NewStandingsSnapshots(uploader FileUploader, prefix string, retain int) *StandingsSnapshots {
	if prefix == "" {
		prefix = "standings"
	}
	return &StandingsSnapshots{
		uploader:  uploader,
		prefix:    prefix,
		retain:    retain,
		now:       time.Now,
		published: map[int][]string{},
	}
}

// SnapshotKey is <prefix>/<competition>/<unix seconds>-<uuid>.json so keys of one
// competition list in publication order.
func (s *StandingsSnapshots) SnapshotKey(competitionID int, at time.Time) string {
	return fmt.Sprintf("%s/%d/%d-%s.json", s.prefix, competitionID, at.Unix(), uuid.NewString())
}

func (s *StandingsSnapshots) PublishStandings(ctx context.Context, competitionID int, table []models.Standing) (string, error) {
	at := s.now().UTC()
	body, err := json.Marshal(standingsDocument{CompetitionID: competitionID, GeneratedAt: at, Standings: table})
	if err != nil {
		return "", fmt.Errorf("failed to encode standings of competition %d: %w", competitionID, err)
	}

	key := s.SnapshotKey(competitionID, at)
	result, err := s.uploader.Upload(ctx, key, ObjectMeta{
		ContentType:  "application/json",
		CacheControl: "public, max-age=31536000, immutable",
	}, bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	if err := s.prune(ctx, competitionID, key); err != nil {
		return result.Location, err
	}
	return result.Location, nil
}

// prune records key and deletes the snapshots that fell out of the retention window.
// A key that fails to delete stays tracked and is retried on the next publish.
func (s *StandingsSnapshots) prune(ctx context.Context, competitionID int, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := append(s.published[competitionID], key)
	if s.retain <= 0 || len(keys) <= s.retain {
		s.published[competitionID] = keys
		return nil
	}

	stale, kept := keys[:len(keys)-s.retain], keys[len(keys)-s.retain:]
	var failed []string
	var errs []error
	for _, old := range stale {
		if err := s.uploader.Delete(ctx, old); err != nil {
			failed = append(failed, old)
			errs = append(errs, err)
		}
	}
	s.published[competitionID] = append(failed, kept...)
	if len(errs) > 0 {
		return fmt.Errorf("failed to delete %d old standings snapshots of competition %d: %w", len(errs), competitionID, errors.Join(errs...))
	}
	return nil
}
