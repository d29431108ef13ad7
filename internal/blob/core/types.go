// Package core defines the abstractions shared by the asset blob storage
// backends. Map assets (background images, tile sheets) are stored as opaque
// blobs keyed by asset id; the document only carries the key.
package core

import (
	"context"
	"errors"
	"io"
	"time"
)

// Driver identifies a concrete blob storage backend implementation.
type Driver string

const (
	// DriverFilesystem stores blobs under a local directory (default, dev).
	DriverFilesystem Driver = "fs"
	// DriverS3 stores blobs in an S3 / MinIO compatible bucket.
	DriverS3 Driver = "s3"
	// DriverMemory keeps blobs in process memory, for tests.
	DriverMemory Driver = "memory"
)

// PutOptions specifies optional parameters for Put.
type PutOptions struct {
	ContentType string            // MIME type, e.g. image/png
	Metadata    map[string]string // small flat key-value user metadata
}

// SignedURLOptions holds options for generating a pre-signed URL.
type SignedURLOptions struct {
	Method  string        // GET|PUT (only GET used internally)
	Expiry  time.Duration // default 15m
	Headers map[string]string
}

// Info describes a stored blob.
type Info struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size_bytes"`
	ContentType  string            `json:"content_type,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified"`
	URL          string            `json:"url,omitempty"`
}

// Store is a thin S3-like abstraction over asset blob backends.
type Store interface {
	// Put stores a new blob at key. Fails if the key already exists.
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	// Get retrieves the blob contents and metadata.
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	// Head returns metadata only.
	Head(ctx context.Context, key string) (Info, error)
	// Delete removes a blob. Returns (false, nil) if not found.
	Delete(ctx context.Context, key string) (bool, error)
	// List returns blobs whose key has the given prefix, ordered by key.
	List(ctx context.Context, prefix string) ([]Info, error)
	// PresignURL returns a time-limited URL for the key, or ErrUnsupported.
	PresignURL(ctx context.Context, key string, opts SignedURLOptions) (string, error)
	// Driver reports the configured backend.
	Driver() Driver
}

// ErrUnsupported is returned when an optional capability is not available.
var ErrUnsupported = errors.New("blobstore: unsupported operation")
