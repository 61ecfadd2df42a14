package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"ftlnomad/internal/parser"
)

// Directories with this name are never listed or resolved.
const hiddenDir = "hidden"

const defaultConcurrency = 16

var markdownExtensions = []string{".md", ".markdown"}

// Decoder builds a typed record from a parsed document. meta already carries
// kind, slug, source, tags and body.
type Decoder[T Entry] func(doc *parser.Document, meta Meta) (T, error)

// Definition describes one content kind.
type Definition[T Entry] struct {
	Kind       Kind
	Extensions []string
	Decode     Decoder[T]
	Compare    func(a, b T) int
}

type Options struct {
	Slug        SlugStrategy
	Concurrency int
}

// Repository lists and resolves the entries of one kind below an fs.FS root.
// Every call re-reads the files; nothing is cached between calls.
type Repository[T Entry] struct {
	fsys        fs.FS
	def         Definition[T]
	slug        SlugStrategy
	concurrency int
}

func NewRepository[T Entry](fsys fs.FS, def Definition[T], opts Options) *Repository[T] {
	if len(def.Extensions) == 0 {
		def.Extensions = markdownExtensions
	}
	if opts.Slug == "" {
		opts.Slug = SlugFilename
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	return &Repository[T]{
		fsys:        fsys,
		def:         def,
		slug:        opts.Slug,
		concurrency: opts.Concurrency,
	}
}

func (r *Repository[T]) Kind() Kind {
	return r.def.Kind
}

func (r *Repository[T]) SlugStrategy() SlugStrategy {
	return r.slug
}

// Collision records several files that resolve to one slug. The last source
// is the one Get returns.
type Collision struct {
	Slug    string   `json:"slug"`
	Sources []string `json:"sources"`
}

// Snapshot is the result of one scan.
type Snapshot[T any] struct {
	Entries    []T
	Collisions []Collision

	bySlug map[string]T
}

func (s *Snapshot[T]) Lookup(slug string) (T, bool) {
	v, ok := s.bySlug[slug]
	return v, ok
}

// List returns every entry in the kind's canonical order.
func (r *Repository[T]) List(ctx context.Context) ([]T, error) {
	snap, err := r.Scan(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Entries, nil
}

// Scan reads every file of the kind concurrently. A file that cannot be read
// or decoded fails the whole scan with a *SourceError.
func (r *Repository[T]) Scan(ctx context.Context) (*Snapshot[T], error) {
	if err := r.checkRoot(); err != nil {
		return nil, err
	}

	files, err := r.discover(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]T, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, name := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entry, err := r.load(name)
			if err != nil {
				return err
			}
			entries[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := &Snapshot[T]{bySlug: make(map[string]T, len(entries))}
	sources := make(map[string][]string)
	var order []string
	for _, entry := range entries {
		meta := entry.EntryMeta()
		if _, seen := sources[meta.Slug]; !seen {
			order = append(order, meta.Slug)
		}
		sources[meta.Slug] = append(sources[meta.Slug], meta.Source)
		snap.bySlug[meta.Slug] = entry
	}
	for _, slug := range order {
		if len(sources[slug]) > 1 {
			snap.Collisions = append(snap.Collisions, Collision{Slug: slug, Sources: sources[slug]})
		}
	}

	if r.def.Compare != nil {
		slices.SortStableFunc(entries, r.def.Compare)
	}
	snap.Entries = entries
	return snap, nil
}

// Get resolves one entry by slug. Unknown or malformed slugs yield an error
// matching ErrNotFound.
func (r *Repository[T]) Get(ctx context.Context, slug string) (T, error) {
	var zero T
	if err := r.checkRoot(); err != nil {
		return zero, err
	}

	canonical, rel, err := CanonicalSlug(slug)
	if err != nil {
		return zero, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	if r.slug == SlugPath {
		name, ok := r.resolvePath(rel)
		if !ok {
			return zero, ErrNotFound
		}
		return r.load(name)
	}

	if strings.Contains(canonical, "/") {
		return zero, ErrNotFound
	}
	files, err := r.discover(ctx)
	if err != nil {
		return zero, err
	}
	match := ""
	for _, name := range files {
		if SlugFor(r.slug, name, r.def.Extensions) == canonical {
			match = name
		}
	}
	if match == "" {
		return zero, ErrNotFound
	}
	return r.load(match)
}

// resolvePath finds the file whose path without extension is rel. Only rel's
// own directory is read, and extensions match case-insensitively as they do
// in discovery. When several files share the stem the last in walk order wins.
func (r *Repository[T]) resolvePath(rel string) (string, bool) {
	dir, stem := path.Split(rel)
	dir = strings.TrimSuffix(dir, "/")
	if dir == "" {
		dir = "."
	}
	entries, err := fs.ReadDir(r.fsys, dir)
	if err != nil {
		return "", false
	}
	match := ""
	for _, entry := range entries {
		if entry.IsDir() || !hasExtension(entry.Name(), r.def.Extensions) {
			continue
		}
		if trimExtension(entry.Name(), r.def.Extensions) == stem {
			match = path.Join(dir, entry.Name())
		}
	}
	return match, match != ""
}

// Sources lists the files of the kind, relative to its root, in walk order.
func (r *Repository[T]) Sources(ctx context.Context) ([]string, error) {
	if err := r.checkRoot(); err != nil {
		return nil, err
	}
	return r.discover(ctx)
}

// ReadSource returns the raw bytes of one file named by Sources.
func (r *Repository[T]) ReadSource(name string) ([]byte, error) {
	if !r.validSource(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSlug, name)
	}
	if r.fsys == nil {
		return nil, ErrRootMissing
	}
	return fs.ReadFile(r.fsys, name)
}

// Load decodes one file named by Sources.
func (r *Repository[T]) Load(name string) (T, error) {
	var zero T
	if !r.validSource(name) {
		return zero, &SourceError{Kind: r.def.Kind, Path: name, Err: ErrInvalidSlug}
	}
	if r.fsys == nil {
		return zero, ErrRootMissing
	}
	return r.load(name)
}

func (r *Repository[T]) validSource(name string) bool {
	if !fs.ValidPath(name) || name == "." || !hasExtension(name, r.def.Extensions) {
		return false
	}
	dir, _ := path.Split(name)
	return !slices.Contains(strings.Split(dir, "/"), hiddenDir)
}

func (r *Repository[T]) checkRoot() error {
	if r.fsys == nil {
		return ErrRootMissing
	}
	info, err := fs.Stat(r.fsys, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrRootMissing
		}
		return fmt.Errorf("%s root: %w", r.def.Kind, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %w", ErrRootMissing, errNotADirectory)
	}
	return nil
}

// discover walks the kind root in lexical order and returns matching files.
func (r *Repository[T]) discover(ctx context.Context) ([]string, error) {
	var files []string
	err := fs.WalkDir(r.fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if name != "." && d.Name() == hiddenDir {
				return fs.SkipDir
			}
			return nil
		}
		if !hasExtension(d.Name(), r.def.Extensions) {
			return nil
		}
		files = append(files, name)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", r.def.Kind, err)
	}
	return files, nil
}

func (r *Repository[T]) load(name string) (T, error) {
	var zero T
	doc, err := r.parse(name)
	if err != nil {
		return zero, &SourceError{Kind: r.def.Kind, Path: name, Err: err}
	}

	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}
	meta := Meta{
		Kind:    r.def.Kind,
		Slug:    SlugFor(r.slug, name, r.def.Extensions),
		Source:  name,
		Tags:    tags,
		Content: doc.Body,
	}

	entry, err := r.def.Decode(doc, meta)
	if err != nil {
		return zero, &SourceError{Kind: r.def.Kind, Path: name, Err: err}
	}
	return entry, nil
}

func (r *Repository[T]) parse(name string) (*parser.Document, error) {
	if strings.EqualFold(path.Ext(name), ".json") {
		data, err := fs.ReadFile(r.fsys, name)
		if err != nil {
			return nil, err
		}
		doc, err := parser.ParseJSON(data)
		if err != nil {
			return nil, err
		}
		doc.SourceFile = name
		return doc, nil
	}
	return parser.ParseFS(r.fsys, name)
}

func (r *Repository[T]) ListEntries(ctx context.Context) ([]Entry, error) {
	entries, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, len(entries))
	for i, entry := range entries {
		out[i] = entry
	}
	return out, nil
}

func (r *Repository[T]) GetEntry(ctx context.Context, slug string) (Entry, error) {
	entry, err := r.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *Repository[T]) LoadEntry(name string) (Entry, error) {
	entry, err := r.Load(name)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *Repository[T]) ScanEntries(ctx context.Context) (*Snapshot[Entry], error) {
	snap, err := r.Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := &Snapshot[Entry]{
		Entries:    make([]Entry, len(snap.Entries)),
		Collisions: snap.Collisions,
		bySlug:     make(map[string]Entry, len(snap.bySlug)),
	}
	for i, entry := range snap.Entries {
		out.Entries[i] = entry
	}
	for slug, entry := range snap.bySlug {
		out.bySlug[slug] = entry
	}
	return out, nil
}
