// Package store defines the optional full-text index kept in sync with the
// markdown content tree.
package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("entry not indexed")

// ErrEmptyQuery is returned by Search for a blank query.
var ErrEmptyQuery = errors.New("query must not be empty")

type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	UpsertEntry(ctx context.Context, e EntryInput) error
	RemoveStale(ctx context.Context, kind string, currentSources []string) (int64, error)
	SourceHashes(ctx context.Context, kind string) (map[string]string, error)

	GetEntry(ctx context.Context, kind, slug string) (*Entry, error)
	ListEntries(ctx context.Context, kind, tag string) ([]EntrySummary, error)
	Search(ctx context.Context, query, kind string) ([]SearchResult, error)
}
