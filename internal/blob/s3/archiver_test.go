package s3blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Calibrhq/calibr-app-sub000/internal/domain"
)

type captureWriter struct {
	path        string
	contentType string
	data        []byte
	err         error
}

func (c *captureWriter) Put(ctx context.Context, path string, data io.Reader, contentType string) error {
	if c.err != nil {
		return c.err
	}
	c.path = path
	c.contentType = contentType
	buf, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	c.data = buf
	return nil
}

type listStore struct {
	domain.SnapshotStore
	snaps []domain.LeaderboardSnapshot
	err   error
}

func (s *listStore) ListBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.LeaderboardSnapshot, error) {
	return s.snaps, s.err
}

func TestArchiveSnapshots_UploadsJSONL(t *testing.T) {
	taken := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	store := &listStore{snaps: []domain.LeaderboardSnapshot{
		{ID: "s1", Window: domain.WindowAll, TakenAt: taken},
		{ID: "s2", Window: domain.WindowWeek, TakenAt: taken.Add(time.Hour)},
	}}
	writer := &captureWriter{}

	cutoff := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	count, err := NewSnapshotArchiver(writer, store).ArchiveSnapshots(context.Background(), cutoff)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	require.Equal(t, "archive/snapshots/2026-08/2026-08-01T00-00-00Z.jsonl", writer.path)
	require.Equal(t, "application/x-ndjson", writer.contentType)

	lines := strings.Split(strings.TrimSpace(string(writer.data)), "\n")
	require.Len(t, lines, 2, "one JSON object per line")
	require.True(t, bytes.HasPrefix([]byte(lines[0]), []byte("{")))
}

func TestArchiveSnapshots_NothingToArchive(t *testing.T) {
	writer := &captureWriter{}
	count, err := NewSnapshotArchiver(writer, &listStore{}).ArchiveSnapshots(context.Background(), time.Now())
	require.NoError(t, err)
	require.Zero(t, count)
	require.Empty(t, writer.path, "no upload when history is empty")
}

func TestArchiveSnapshots_UploadFailure(t *testing.T) {
	store := &listStore{snaps: []domain.LeaderboardSnapshot{{ID: "s1"}}}
	writer := &captureWriter{err: errors.New("bucket gone")}

	_, err := NewSnapshotArchiver(writer, store).ArchiveSnapshots(context.Background(), time.Now())
	require.Error(t, err)
}

func TestArchiveSnapshots_QueryFailure(t *testing.T) {
	store := &listStore{err: errors.New("db down")}
	_, err := NewSnapshotArchiver(&captureWriter{}, store).ArchiveSnapshots(context.Background(), time.Now())
	require.Error(t, err)
}
