// Package storage reads and writes objects in gocloud.dev buckets.
package storage

import (
	"context"
	"fmt"
	"io"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	apperrors "github.com/DavidCuy/p2p-solution-sls-backend/internal/errors"

	// Register blob drivers
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// ErrObjectNotFound indicates the object key does not exist in the bucket.
var ErrObjectNotFound = apperrors.Wrap(apperrors.ErrNotFound, "object not found")

// Bucket wraps a gocloud.dev bucket.
type Bucket struct {
	bucket *blob.Bucket
}

// OpenBucket opens the bucket at url (e.g. "s3://bucket?region=us-east-1",
// "file:///tmp/imports" or "mem://").
func OpenBucket(ctx context.Context, url string) (*Bucket, error) {
	bucket, err := blob.OpenBucket(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket: %w", err)
	}
	return NewBucket(bucket), nil
}

// NewBucket wraps an already opened bucket.
func NewBucket(bucket *blob.Bucket) *Bucket {
	return &Bucket{bucket: bucket}
}

// Open returns a reader for key. The caller must close it.
func (b *Bucket) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	reader, err := b.bucket.NewReader(ctx, key, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, apperrors.Wrap(ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("failed to open object %s: %w", key, err)
	}
	return reader, nil
}

// Write stores data under key.
func (b *Bucket) Write(ctx context.Context, key string, data []byte, contentType string) error {
	opts := &blob.WriterOptions{ContentType: contentType}
	if err := b.bucket.WriteAll(ctx, key, data, opts); err != nil {
		return fmt.Errorf("failed to write object %s: %w", key, err)
	}
	return nil
}

// Close releases the bucket.
func (b *Bucket) Close() error {
	return b.bucket.Close()
}
