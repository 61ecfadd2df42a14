package sqlite

import (
	"context"
	"fmt"
	"strings"

	"ftlnomad/internal/store"
)

// Search runs a web-search style query against titles, tags and bodies.
// bm25 ranks better matches lower, so the score is negated.
func (c *Client) Search(ctx context.Context, query, kind string) ([]store.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, store.ErrEmptyQuery
	}
	ftsQuery := convertWebsearchToFTS5(query)
	if ftsQuery == "" {
		return []store.SearchResult{}, nil
	}

	sqlQuery := `
	SELECT e.kind, e.slug, e.title, e.tags,
		   -bm25(entries_fts, 10.0, 4.0, 1.0) AS score,
		   snippet(entries_fts, 2, '**', '**', '...', 40) AS snippet
	FROM entries_fts
	JOIN entries e ON entries_fts.rowid = e.id
	WHERE entries_fts MATCH ?
	  AND (? = '' OR e.kind = ?)
	ORDER BY score DESC, e.title ASC
	LIMIT ?
	`
	rows, err := c.db.QueryContext(ctx, sqlQuery, ftsQuery, kind, kind, store.SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("searching entries: %w", err)
	}
	defer rows.Close()

	results := []store.SearchResult{}
	for rows.Next() {
		var r store.SearchResult
		var tagsJSON string
		if err := rows.Scan(&r.Kind, &r.Slug, &r.Title, &tagsJSON, &r.Score, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		if r.Tags, err = decodeTags(tagsJSON); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search results: %w", err)
	}
	return results, nil
}

type queryItem struct {
	text    string
	prefix  bool
	negated bool
	op      string
}

// convertWebsearchToFTS5 rewrites the syntax accepted by Postgres
// websearch_to_tsquery into an FTS5 MATCH expression. Every term is quoted so
// punctuation such as "ross-128" cannot break the FTS5 grammar. FTS5 NOT is
// binary, so a leading negation is dropped.
func convertWebsearchToFTS5(query string) string {
	var out []string
	pending := ""
	for _, item := range scanQuery(query) {
		if item.op != "" {
			if len(out) > 0 {
				pending = item.op
			}
			continue
		}
		term := `"` + item.text + `"`
		if item.prefix {
			term += "*"
		}
		switch {
		case item.negated && len(out) == 0:
			continue
		case item.negated:
			out = append(out, "NOT", term)
		case len(out) > 0:
			if pending == "" {
				pending = "AND"
			}
			out = append(out, pending, term)
		default:
			out = append(out, term)
		}
		pending = ""
	}
	return strings.Join(out, " ")
}

func scanQuery(query string) []queryItem {
	var items []queryItem
	var current strings.Builder
	inQuote := false

	flushWord := func() {
		word := current.String()
		current.Reset()
		if word == "" {
			return
		}
		switch upper := strings.ToUpper(word); upper {
		case "AND", "OR", "NOT":
			items = append(items, queryItem{op: upper})
			return
		}
		item := queryItem{}
		if strings.HasPrefix(word, "-") {
			item.negated = true
			word = word[1:]
		}
		if strings.HasSuffix(word, "*") {
			item.prefix = true
			word = strings.TrimRight(word, "*")
		}
		if word == "" {
			return
		}
		item.text = word
		items = append(items, item)
	}
	flushPhrase := func() {
		phrase := strings.Join(strings.Fields(current.String()), " ")
		current.Reset()
		if phrase != "" {
			items = append(items, queryItem{text: phrase})
		}
	}

	for _, ch := range query {
		switch {
		case ch == '"' && inQuote:
			inQuote = false
			flushPhrase()
		case ch == '"':
			flushWord()
			inQuote = true
		case inQuote:
			current.WriteRune(ch)
		case ch == ' ' || ch == '\t' || ch == '\n':
			flushWord()
		default:
			current.WriteRune(ch)
		}
	}
	if inQuote {
		flushPhrase()
	} else {
		flushWord()
	}
	return items
}
