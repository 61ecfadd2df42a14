package content

import (
	"context"
	"errors"
	"fmt"
)

type Kind string

const (
	KindCrew   Kind = "crew"
	KindNPC    Kind = "npc"
	KindLog    Kind = "log"
	KindLore   Kind = "lore"
	KindSystem Kind = "system"
)

var Kinds = []Kind{KindCrew, KindNPC, KindLog, KindLore, KindSystem}

func ParseKind(value string) (Kind, error) {
	for _, kind := range Kinds {
		if string(kind) == value {
			return kind, nil
		}
	}
	switch value {
	case "npcs":
		return KindNPC, nil
	case "logs", "mission-logs":
		return KindLog, nil
	case "systems":
		return KindSystem, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, value)
}

// Meta is shared by every record kind.
type Meta struct {
	Kind    Kind     `json:"kind"`
	Slug    string   `json:"slug"`
	Source  string   `json:"source"`
	Tags    []string `json:"tags"`
	Content string   `json:"content"`
	Title   string   `json:"-"`
}

func (m Meta) EntryMeta() Meta {
	return m
}

type Entry interface {
	EntryMeta() Meta
}

var (
	ErrNotFound      = errors.New("content entry not found")
	ErrRootMissing   = errors.New("content root does not exist")
	ErrInvalidSlug   = errors.New("invalid slug")
	ErrMissingField  = errors.New("required field missing")
	ErrInvalidField  = errors.New("invalid field value")
	ErrUnknownKind   = errors.New("unknown content kind")
	errNotADirectory = errors.New("content root is not a directory")
)

// SourceError reports a file that could not be read or decoded.
type SourceError struct {
	Kind Kind
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Path, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Lenient collapses any failure into an empty listing.
func Lenient[T any](entries []T, err error) []T {
	if err != nil || entries == nil {
		return []T{}
	}
	return entries
}

// Collection is the kind-agnostic view of a repository.
type Collection interface {
	Kind() Kind
	SlugStrategy() SlugStrategy
	ListEntries(ctx context.Context) ([]Entry, error)
	GetEntry(ctx context.Context, slug string) (Entry, error)
	ScanEntries(ctx context.Context) (*Snapshot[Entry], error)
	Sources(ctx context.Context) ([]string, error)
	ReadSource(name string) ([]byte, error)
	LoadEntry(name string) (Entry, error)
}
