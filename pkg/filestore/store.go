// Package filestore implements the blob store the engine fetches dataset
// files from: a filesystem-backed object store plus an optional Redis
// read-through cache. Memoization of fetched files belongs here, outside
// the engine, which stays stateless per invocation.
package filestore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a file reference does not resolve
var ErrNotFound = errors.New("file not found")

// Store resolves a dataset's file reference to its raw text
type Store interface {
	Fetch(ctx context.Context, ref string) (string, error)
}

// WritableStore additionally accepts uploads
type WritableStore interface {
	Store
	Put(ctx context.Context, ref string, content string) error
	Delete(ctx context.Context, ref string) error
}
