package postgres

import (
	"context"
	"fmt"
)

// RemoveStale deletes every entry of kind whose source is not listed. An
// empty list clears the kind.
func (c *Client) RemoveStale(ctx context.Context, kind string, currentSources []string) (int64, error) {
	if currentSources == nil {
		currentSources = []string{}
	}
	tag, err := c.pool.Exec(ctx,
		"DELETE FROM entries WHERE kind = $1 AND NOT (source = ANY($2))",
		kind, currentSources,
	)
	if err != nil {
		return 0, fmt.Errorf("removing stale entries: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (c *Client) SourceHashes(ctx context.Context, kind string) (map[string]string, error) {
	rows, err := c.pool.Query(ctx, "SELECT source, source_hash FROM entries WHERE kind = $1", kind)
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
