package store

// EntryInput is one decoded source file. Rows are keyed by (Kind, Source);
// several sources may share a slug.
type EntryInput struct {
	Kind       string
	Slug       string
	Title      string
	Source     string
	SourceHash string
	Tags       []string
	Fields     map[string]any
	Body       string
}

type Entry struct {
	Kind       string         `json:"kind"`
	Slug       string         `json:"slug"`
	Title      string         `json:"title"`
	Source     string         `json:"source"`
	SourceHash string         `json:"sourceHash"`
	Tags       []string       `json:"tags"`
	Fields     map[string]any `json:"fields"`
	Body       string         `json:"body"`
}

type EntrySummary struct {
	Kind  string   `json:"kind"`
	Slug  string   `json:"slug"`
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

type SearchResult struct {
	Kind    string   `json:"kind"`
	Slug    string   `json:"slug"`
	Title   string   `json:"title"`
	Tags    []string `json:"tags"`
	Score   float64  `json:"score"`
	Snippet string   `json:"snippet"`
}

// SearchLimit caps the rows returned by Search.
const SearchLimit = 50
