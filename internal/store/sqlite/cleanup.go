package sqlite

import (
	"context"
	"fmt"
	"strings"
)

// RemoveStale deletes every entry of kind whose source is not listed. An
// empty list clears the kind.
func (c *Client) RemoveStale(ctx context.Context, kind string, currentSources []string) (int64, error) {
	query := "DELETE FROM entries WHERE kind = ?"
	args := []any{kind}
	if len(currentSources) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(currentSources)), ",")
		query += " AND source NOT IN (" + placeholders + ")"
		for _, src := range currentSources {
			args = append(args, src)
		}
	}

	result, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("removing stale entries: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting removed entries: %w", err)
	}
	return removed, nil
}

func (c *Client) SourceHashes(ctx context.Context, kind string) (map[string]string, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT source, source_hash FROM entries WHERE kind = ?", kind)
	if err != nil {
		return nil, fmt.Errorf("querying source hashes: %w", err)
	}
	defer rows.Close()

	hashes := make(map[string]string)
	for rows.Next() {
		var source, hash string
		if err := rows.Scan(&source, &hash); err != nil {
			return nil, fmt.Errorf("scanning source hash: %w", err)
		}
		hashes[source] = hash
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating source hashes: %w", err)
	}
	return hashes, nil
}
