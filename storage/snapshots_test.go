package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/racket-club/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryUploader struct {
	base      *url.URL
	objects   map[string][]byte
	meta      map[string]ObjectMeta
	err       error
	deleteErr error
}

func newMemoryUploader(t *testing.T) *memoryUploader {
	base, err := url.Parse("https://cdn.club.test/public/")
	require.NoError(t, err)
	return &memoryUploader{base: base, objects: map[string][]byte{}, meta: map[string]ObjectMeta{}}
}

func (u *memoryUploader) Upload(ctx context.Context, key string, meta ObjectMeta, r io.Reader) (*UploadResult, error) {
	if u.err != nil {
		return nil, u.err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	u.objects[key] = body
	u.meta[key] = meta
	return &UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *memoryUploader) Delete(ctx context.Context, key string) error {
	if u.deleteErr != nil {
		return u.deleteErr
	}
	delete(u.objects, key)
	return nil
}

func (u *memoryUploader) GetPublicURL(key string) string {
	return PublicURL(u.base, key)
}

func TestStandingsSnapshots_PublishStandings(t *testing.T) {
	uploader := newMemoryUploader(t)
	snapshots := NewStandingsSnapshots(uploader, "", 0)
	snapshots.now = func() time.Time { return time.Unix(1767225600, 0) }

	table := []models.Standing{
		{CompetitionID: 3, TeamID: 11, TeamName: "Baseliners", Rank: 1, Points: 6, Wins: 2, Played: 2},
		{CompetitionID: 3, TeamID: 12, TeamName: "Volley Club", Rank: 2, Played: 2, Losses: 2},
	}
	location, err := snapshots.PublishStandings(context.Background(), 3, table)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(location, "https://cdn.club.test/public/standings/3/1767225600-"), location)
	require.Len(t, uploader.objects, 1)

	for key, body := range uploader.objects {
		assert.True(t, strings.HasSuffix(key, ".json"))
		assert.Equal(t, "application/json", uploader.meta[key].ContentType)

		var doc standingsDocument
		require.NoError(t, json.Unmarshal(body, &doc))
		assert.Equal(t, 3, doc.CompetitionID)
		require.Len(t, doc.Standings, 2)
		assert.Equal(t, "Baseliners", doc.Standings[0].TeamName)
	}
}

func TestStandingsSnapshots_UploadError(t *testing.T) {
	uploader := newMemoryUploader(t)
	uploader.err = errors.New("bucket unavailable")
	_, err := NewStandingsSnapshots(uploader, "snapshots", 1).PublishStandings(context.Background(), 1, nil)
	assert.ErrorContains(t, err, "bucket unavailable")
}

func TestStandingsSnapshots_PrunesOldSnapshots(t *testing.T) {
	uploader := newMemoryUploader(t)
	snapshots := NewStandingsSnapshots(uploader, "", 2)
	ctx := context.Background()

	var locations []string
	for i := 0; i < 3; i++ {
		location, err := snapshots.PublishStandings(ctx, 4, nil)
		require.NoError(t, err)
		locations = append(locations, location)
	}
	_, err := snapshots.PublishStandings(ctx, 5, nil)
	require.NoError(t, err)

	require.Len(t, uploader.objects, 3)
	for _, location := range locations[1:] {
		key := strings.TrimPrefix(location, "https://cdn.club.test/public/")
		assert.Contains(t, uploader.objects, key)
	}
	assert.NotContains(t, uploader.objects, strings.TrimPrefix(locations[0], "https://cdn.club.test/public/"))
}

func TestStandingsSnapshots_FailedDeleteIsRetried(t *testing.T) {
	uploader := newMemoryUploader(t)
	snapshots := NewStandingsSnapshots(uploader, "", 1)
	ctx := context.Background()

	first, err := snapshots.PublishStandings(ctx, 7, nil)
	require.NoError(t, err)

	uploader.deleteErr = errors.New("access denied")
	second, err := snapshots.PublishStandings(ctx, 7, nil)
	assert.ErrorContains(t, err, "access denied")
	assert.NotEmpty(t, second)
	require.Len(t, uploader.objects, 2)

	uploader.deleteErr = nil
	third, err := snapshots.PublishStandings(ctx, 7, nil)
	require.NoError(t, err)
	require.Len(t, uploader.objects, 1)
	for _, gone := range []string{first, second} {
		assert.NotContains(t, uploader.objects, strings.TrimPrefix(gone, "https://cdn.club.test/public/"))
	}
	assert.Contains(t, uploader.objects, strings.TrimPrefix(third, "https://cdn.club.test/public/"))
}

func TestPublicURL(t *testing.T) {
	base, err := url.Parse("https://pub.r2.dev/")
	require.NoError(t, err)
	assert.Equal(t, "https://pub.r2.dev/standings/1/a.json", PublicURL(base, "/standings/1/a.json"))
	assert.Equal(t, "", PublicURL(base, ""))
	assert.Equal(t, "", PublicURL(nil, "key"))
}
