package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"ftlnomad/internal/store"
)

func (c *Client) UpsertEntry(ctx context.Context, e store.EntryInput) error {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("marshaling tags: %w", err)
	}
	fields := e.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshaling fields: %w", err)
	}

	query := `
	INSERT INTO entries (kind, slug, title, source, source_hash, tags, fields, body, indexed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
	ON CONFLICT (kind, source) DO UPDATE SET
		slug = excluded.slug,
		title = excluded.title,
		source_hash = excluded.source_hash,
		tags = excluded.tags,
		fields = excluded.fields,
		body = excluded.body,
		indexed_at = datetime('now')
	`
	_, err = c.db.ExecContext(ctx, query,
		e.Kind,
		e.Slug,
		e.Title,
		e.Source,
		e.SourceHash,
		string(tagsJSON),
		string(fieldsJSON),
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
	WHERE kind = ? AND slug = ?
	ORDER BY source DESC
	LIMIT 1
	`
	var e store.Entry
	var tagsJSON, fieldsJSON string
	err := c.db.QueryRowContext(ctx, query, kind, slug).Scan(
		&e.Kind, &e.Slug, &e.Title, &e.Source, &e.SourceHash, &tagsJSON, &fieldsJSON, &e.Body,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", store.ErrNotFound, kind, slug)
	}
	if err != nil {
		return nil, fmt.Errorf("getting entry: %w", err)
	}
	if e.Tags, err = decodeTags(tagsJSON); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &e.Fields); err != nil {
		return nil, fmt.Errorf("unmarshaling fields: %w", err)
	}
	if e.Fields == nil {
		e.Fields = map[string]any{}
	}
	return &e, nil
}

func (c *Client) ListEntries(ctx context.Context, kind, tag string) ([]store.EntrySummary, error) {
	query := `
	SELECT kind, slug, title, tags
	FROM entries e
	WHERE (? = '' OR e.kind = ?)
	  AND (? = '' OR EXISTS (SELECT 1 FROM json_each(e.tags) WHERE json_each.value = ?))
	ORDER BY e.kind, e.slug, e.source
	`
	rows, err := c.db.QueryContext(ctx, query, kind, kind, tag, tag)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	summaries := []store.EntrySummary{}
	for rows.Next() {
		var s store.EntrySummary
		var tagsJSON string
		if err := rows.Scan(&s.Kind, &s.Slug, &s.Title, &tagsJSON); err != nil {
			return nil, fmt.Errorf("scanning entry summary: %w", err)
		}
		if s.Tags, err = decodeTags(tagsJSON); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}
	return summaries, nil
}

func decodeTags(raw string) ([]string, error) {
	tags := []string{}
	if raw == "" {
		return tags, nil
	}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("unmarshaling tags: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}
