package domain

import (
	"context"
	"io"
	"time"
)

// BlobWriter writes objects to cold storage (S3-compatible).
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

// Archiver moves aged snapshot history from the primary store to cold
// storage. ArchiveSnapshots uploads everything taken before the cutoff and
// returns how many snapshots were exported; deletion from the primary store
// is a separate, explicit step executed after the archive succeeded.
type Archiver interface {
	ArchiveSnapshots(ctx context.Context, before time.Time) (int64, error)
}
