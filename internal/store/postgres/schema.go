package postgres

import (
	"context"
	"fmt"
)

// All statements run in one implicit transaction. IF NOT EXISTS keeps
// repeated runs idempotent.
const ddl = `
CREATE TABLE IF NOT EXISTS entries (
    id            BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    kind          TEXT NOT NULL,
    slug          TEXT NOT NULL,
    title         TEXT NOT NULL DEFAULT '',
    source        TEXT NOT NULL,
    source_hash   TEXT NOT NULL DEFAULT '',
    tags          TEXT[] DEFAULT '{}',
    fields        JSONB DEFAULT '{}',
    body          TEXT DEFAULT '',
    indexed_at    TIMESTAMPTZ DEFAULT now(),
    search_vector TSVECTOR,
    CONSTRAINT uq_entry_source UNIQUE (kind, source)
);

CREATE INDEX IF NOT EXISTS idx_entries_search ON entries USING GIN (search_vector);
CREATE INDEX IF NOT EXISTS idx_entries_kind ON entries (kind);
CREATE INDEX IF NOT EXISTS idx_entries_kind_slug ON entries (kind, slug);
CREATE INDEX IF NOT EXISTS idx_entries_tags ON entries USING GIN (tags);
`

func (c *Client) EnsureSchema(ctx context.Context) error {
	if _, err := c.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
