package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Calibrhq/calibr-app-sub000/internal/domain"
)

// SnapshotArchiver implements domain.Archiver by querying the snapshot store
// for aged records, serializing them to JSONL, and uploading the result to
// S3.
//
// Deletion of the archived snapshots from the primary store is intentionally
// NOT performed here. That is a separate, explicit step to be executed after
// the archive has been verified.
type SnapshotArchiver struct {
	writer    domain.BlobWriter
	snapshots domain.SnapshotStore
}

// NewSnapshotArchiver creates a new SnapshotArchiver.
func NewSnapshotArchiver(writer domain.BlobWriter, snapshots domain.SnapshotStore) *SnapshotArchiver {
	return &SnapshotArchiver{
		writer:    writer,
		snapshots: snapshots,
	}
}

// ArchiveSnapshots queries all snapshots taken before the cutoff, serializes
// them to JSONL, and uploads the file to S3 at
// archive/snapshots/YYYY-MM/<cutoff>.jsonl. It returns the count of archived
// snapshots; zero with a nil error means there was nothing to archive.
func (a *SnapshotArchiver) ArchiveSnapshots(ctx context.Context, before time.Time) (int64, error) {
	snaps, err := a.snapshots.ListBefore(ctx, before, 0)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive snapshots query: %w", err)
	}
	if len(snaps) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(snaps)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive snapshots marshal: %w", err)
	}

	path := archivePath(before)
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive snapshots upload: %w", err)
	}

	return int64(len(snaps)), nil
}

// archivePath builds the S3 key for an archive file, partitioned by the
// year-month of the cutoff time.
//
//	archive/snapshots/2026-08/2026-08-01T00-00-00Z.jsonl
func archivePath(before time.Time) string {
	return fmt.Sprintf(
		"archive/snapshots/%s/%s.jsonl",
		before.UTC().Format("2006-01"),
		before.UTC().Format("2006-01-02T15-04-05Z"),
	)
}

// marshalJSONL serialises a slice of values as newline-delimited JSON (JSONL).
// Each element is marshalled as a single compact JSON line followed by '\n'.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// Compile-time interface check.
var _ domain.Archiver = (*SnapshotArchiver)(nil)
