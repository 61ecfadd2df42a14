// Package ingest syncs the full-text index with the content tree.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"ftlnomad/internal/content"
	"ftlnomad/internal/store"
)

// Store is the subset of store.Store that ingestion writes through.
type Store interface {
	EnsureSchema(ctx context.Context) error
	UpsertEntry(ctx context.Context, e store.EntryInput) error
	RemoveStale(ctx context.Context, kind string, currentSources []string) (int64, error)
	SourceHashes(ctx context.Context, kind string) (map[string]string, error)
}

type Result struct {
	EntriesUpserted int
	EntriesRemoved  int
	FilesSkipped    int
	// MissingKinds lists kinds whose directory does not exist. Their indexed
	// rows are left untouched.
	MissingKinds []content.Kind
	Errors       []error
}

type Options struct {
	// Full re-indexes every file regardless of stored hashes.
	Full   bool
	Logger *slog.Logger
}

// Library is the source of collections to index.
type Library interface {
	Collections() []content.Collection
}

func Run(ctx context.Context, lib Library, db Store, options Options) (*Result, error) {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	result := &Result{}
	for _, coll := range lib.Collections() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := syncKind(ctx, coll, db, options, result, logger); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// syncKind indexes one collection. Only store and context failures abort the
// run; per-file problems land in result.Errors.
func syncKind(ctx context.Context, coll content.Collection, db Store, options Options, result *Result, logger *slog.Logger) error {
	kind := string(coll.Kind())

	files, err := coll.Sources(ctx)
	if errors.Is(err, content.ErrRootMissing) {
		logger.Warn("content directory missing", "kind", kind)
		result.MissingKinds = append(result.MissingKinds, coll.Kind())
		return nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		result.Errors = append(result.Errors, fmt.Errorf("listing %s: %w", kind, err))
		return nil
	}

	existingHashes := map[string]string{}
	if !options.Full {
		existingHashes, err = db.SourceHashes(ctx, kind)
		if err != nil {
			return fmt.Errorf("get source hashes for %s: %w", kind, err)
		}
	}

	for _, name := range files {
		data, err := coll.ReadSource(name)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("reading %s %s: %w", kind, name, err))
			continue
		}
		hash := computeHash(data)
		if existing, ok := existingHashes[name]; ok && existing == hash {
			result.FilesSkipped++
			continue
		}

		entry, err := coll.LoadEntry(name)
		if err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		input, err := entryInput(entry, hash)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("encoding %s %s: %w", kind, name, err))
			continue
		}
		if err := db.UpsertEntry(ctx, input); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("upserting %s %s: %w", kind, name, err))
			continue
		}
		logger.Debug("indexed entry", "kind", kind, "slug", input.Slug, "source", name)
		result.EntriesUpserted++
	}

	removed, err := db.RemoveStale(ctx, kind, files)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("removing stale entries for %s: %w", kind, err))
		return nil
	}
	result.EntriesRemoved += int(removed)
	return nil
}

// entryInput flattens a decoded record into an index row. Fields carries the
// record's JSON form without the body, which is stored separately.
func entryInput(entry content.Entry, hash string) (store.EntryInput, error) {
	meta := entry.EntryMeta()

	encoded, err := json.Marshal(entry)
	if err != nil {
		return store.EntryInput{}, err
	}
	fields := make(map[string]any)
	if err := json.Unmarshal(encoded, &fields); err != nil {
		return store.EntryInput{}, err
	}
	for _, key := range []string{"kind", "slug", "source", "tags", "content"} {
		delete(fields, key)
	}

	title := meta.Title
	if title == "" {
		title = meta.Slug
	}
	return store.EntryInput{
		Kind:       string(meta.Kind),
		Slug:       meta.Slug,
		Title:      title,
		Source:     meta.Source,
		SourceHash: hash,
		Tags:       meta.Tags,
		Fields:     fields,
		Body:       meta.Content,
	}, nil
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
