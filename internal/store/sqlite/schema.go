package sqlite

import (
	"context"
	"fmt"
	"strings"
)

const ddl = `
CREATE TABLE IF NOT EXISTS entries (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	kind        TEXT NOT NULL,
	slug        TEXT NOT NULL,
	title       TEXT NOT NULL DEFAULT '',
	source      TEXT NOT NULL,
	source_hash TEXT NOT NULL DEFAULT '',
	tags        TEXT DEFAULT '[]',
	fields      TEXT DEFAULT '{}',
	body        TEXT DEFAULT '',
	indexed_at  TEXT DEFAULT (datetime('now')),
	CONSTRAINT uq_entry_source UNIQUE (kind, source)
);

CREATE INDEX IF NOT EXISTS idx_entries_kind ON entries (kind);
CREATE INDEX IF NOT EXISTS idx_entries_kind_slug ON entries (kind, slug);

CREATE VIRTUAL TABLE IF NOT EXISTS entries_fts USING fts5(
	title,
	tags,
	body,
	content=entries,
	content_rowid=id
);

CREATE TRIGGER IF NOT EXISTS entries_ai AFTER INSERT ON entries BEGIN
	INSERT INTO entries_fts(rowid, title, tags, body)
	VALUES (new.id, new.title, new.tags, new.body);
END;

CREATE TRIGGER IF NOT EXISTS entries_ad AFTER DELETE ON entries BEGIN
	INSERT INTO entries_fts(entries_fts, rowid, title, tags, body)
	VALUES ('delete', old.id, old.title, old.tags, old.body);
END;

CREATE TRIGGER IF NOT EXISTS entries_au AFTER UPDATE ON entries BEGIN
	INSERT INTO entries_fts(entries_fts, rowid, title, tags, body)
	VALUES ('delete', old.id, old.title, old.tags, old.body);
	INSERT INTO entries_fts(rowid, title, tags, body)
	VALUES (new.id, new.title, new.tags, new.body);
END;
`

func (c *Client) EnsureSchema(ctx context.Context) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(ddl) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}
	return nil
}

// splitStatements breaks ddl on lines ending in ";". Trigger bodies end their
// inner statements with ";" too, so a statement stays open until its BEGIN is
// closed by END.
func splitStatements(ddl string) []string {
	var statements []string
	var current strings.Builder
	depth := 0

	for _, line := range strings.Split(ddl, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		upper := strings.ToUpper(stripped)
		if strings.HasSuffix(upper, " BEGIN") {
			depth++
		}
		if upper == "END;" && depth > 0 {
			depth--
		}
		if depth == 0 && strings.HasSuffix(stripped, ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}

	if strings.TrimSpace(current.String()) != "" {
		statements = append(statements, current.String())
	}
	return statements
}
