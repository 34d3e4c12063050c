// Package storage wraps the object store, metadata store, and parameter
// store behind small interfaces so components receive explicit clients and
// tests can substitute fakes.
package storage

import (
	"context"
	"time"

	"github.com/hozaki45/NEXUS-ENA/internal/model"
)

// ObjectEntry is one listing entry from the object store.
type ObjectEntry struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStore is the object-storage surface the pipeline uses. All writes
// request server-side encryption.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string, metadata map[string]string) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string, limit int) ([]ObjectEntry, error)
	Head(ctx context.Context, key string) (map[string]string, error)
	HealthCheck(ctx context.Context) error
}

// MetadataStore is the append-only collection-status store. Records are
// keyed by source name (partition) and timestamp (sort).
type MetadataStore interface {
	Put(ctx context.Context, rec model.MetadataRecord) error
	QueryRecent(ctx context.Context, source string, limit int) ([]model.MetadataRecord, error)
	ScanSince(ctx context.Context, cutoff time.Time, limit int) ([]model.MetadataRecord, error)
	HealthCheck(ctx context.Context) error
}

// ParameterStore provides decrypt-on-read access to stored secrets.
type ParameterStore interface {
	Get(ctx context.Context, name string) (string, error)
}
