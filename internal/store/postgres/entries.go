package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"ftlnomad/internal/store"
)

func (c *Client) UpsertEntry(ctx context.Context, e store.EntryInput) error {
	fields := e.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshaling fields: %w", err)
	}
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}

	query := `
INSERT INTO entries (kind, slug, title, source, source_hash, tags, fields, body, indexed_at, search_vector)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(),
    setweight(to_tsvector('simple', coalesce($3, '')), 'A') ||
    setweight(to_tsvector('english', array_to_string($6::text[], ' ')), 'B') ||
    setweight(to_tsvector('english', coalesce($8, '')), 'C')
)
ON CONFLICT (kind, source) DO UPDATE SET
    slug = EXCLUDED.slug,
    title = EXCLUDED.title,
    source_hash = EXCLUDED.source_hash,
    tags = EXCLUDED.tags,
    fields = EXCLUDED.fields,
    body = EXCLUDED.body,
    indexed_at = now(),
    search_vector = EXCLUDED.search_vector
`
	_, err = c.pool.Exec(ctx, query,
		e.Kind,
		e.Slug,
		e.Title,
		e.Source,
		e.SourceHash,
		tags,
		fieldsJSON,
		e.Body,
	)
	if err != nil {
		return fmt.Errorf("upserting entry %s/%s: %w", e.Kind, e.Slug, err)
	}
	return nil
}

// GetEntry returns the entry for slug. When several sources share the slug
// the lexically last source wins.
func (c *Client) GetEntry(ctx context.Context, kind, slug string) (*store.Entry, error) {
	query := `
SELECT kind, slug, title, source, source_hash, tags, fields, body
FROM entries
WHERE kind = $1 AND slug = $2
ORDER BY source DESC
LIMIT 1
`
	var e store.Entry
	var fieldsJSON []byte
	err := c.pool.QueryRow(ctx, query, kind, slug).Scan(
		&e.Kind, &e.Slug, &e.Title, &e.Source, &e.SourceHash, &e.Tags, &fieldsJSON, &e.Body,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", store.ErrNotFound, kind, slug)
	}
	if err != nil {
		return nil, fmt.Errorf("getting entry: %w", err)
	}
	if len(fieldsJSON) > 0 {
		if err := json.Unmarshal(fieldsJSON, &e.Fields); err != nil {
			return nil, fmt.Errorf("unmarshaling fields: %w", err)
		}
	}
	if e.Fields == nil {
		e.Fields = map[string]any{}
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	return &e, nil
}

func (c *Client) ListEntries(ctx context.Context, kind, tag string) ([]store.EntrySummary, error) {
	query := `
SELECT kind, slug, title, tags
FROM entries
WHERE ($1 = '' OR kind = $1)
  AND ($2 = '' OR $2 = ANY(tags))
ORDER BY kind, slug, source
`
	rows, err := c.pool.Query(ctx, query, kind, tag)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	summaries := []store.EntrySummary{}
	for rows.Next() {
		var s store.EntrySummary
		if err := rows.Scan(&s.Kind, &s.Slug, &s.Title, &s.Tags); err != nil {
			return nil, fmt.Errorf("scanning entry summary: %w", err)
		}
		if s.Tags == nil {
			s.Tags = []string{}
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}
	return summaries, nil
}
