package content

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"ftlnomad/internal/config"
)

// Library holds one repository per kind.
type Library struct {
	Crew    *Repository[CrewMember]
	NPCs    *Repository[NPC]
	Logs    *Repository[MissionLog]
	Lore    *Repository[LoreEntry]
	Systems *Repository[StarSystem]

	paths map[Kind]string
}

// NewLibrary opens the content and asset roots named in cfg on disk.
func NewLibrary(cfg config.ContentConfig) (*Library, error) {
	if strings.TrimSpace(cfg.Root) == "" {
		return nil, fmt.Errorf("content root is required")
	}
	var assets fs.FS
	if cfg.Assets != "" {
		assets = os.DirFS(cfg.Assets)
	}
	return NewLibraryFS(os.DirFS(cfg.Root), assets, cfg)
}

// NewLibraryFS builds a library over root, with kind directories resolved
// from cfg.Kinds. Kinds absent from cfg use their default directory.
func NewLibraryFS(root, assets fs.FS, cfg config.ContentConfig) (*Library, error) {
	lib := &Library{paths: make(map[Kind]string, len(Kinds))}
	opts := make(map[Kind]Options, len(Kinds))
	subs := make(map[Kind]fs.FS, len(Kinds))

	for _, kind := range Kinds {
		kc, ok := cfg.Kinds[string(kind)]
		if !ok {
			kc = defaultKindConfig(kind)
		}
		dir := path.Clean(strings.TrimPrefix(kc.Path, "./"))
		if dir == "" || dir == "." {
			dir = defaultKindConfig(kind).Path
		}
		slug, err := ParseSlugStrategy(kc.Slug)
		if err != nil {
			return nil, fmt.Errorf("kind %s: %w", kind, err)
		}
		sub, err := fs.Sub(root, dir)
		if err != nil {
			return nil, fmt.Errorf("kind %s: %w", kind, err)
		}
		lib.paths[kind] = dir
		subs[kind] = sub
		opts[kind] = Options{Slug: slug, Concurrency: cfg.Concurrency}
	}

	images := NewImageResolver(assets)
	lib.Crew = NewRepository(subs[KindCrew], CrewDefinition(images), opts[KindCrew])
	lib.NPCs = NewRepository(subs[KindNPC], NPCDefinition(), opts[KindNPC])
	lib.Logs = NewRepository(subs[KindLog], LogDefinition(), opts[KindLog])
	lib.Lore = NewRepository(subs[KindLore], LoreDefinition(), opts[KindLore])
	lib.Systems = NewRepository(subs[KindSystem], SystemDefinition(), opts[KindSystem])
	return lib, nil
}

func defaultKindConfig(kind Kind) config.KindConfig {
	return config.Default("").Content.Kinds[string(kind)]
}

// Collection returns the kind-agnostic view of one repository.
func (l *Library) Collection(kind Kind) (Collection, error) {
	switch kind {
	case KindCrew:
		return l.Crew, nil
	case KindNPC:
		return l.NPCs, nil
	case KindLog:
		return l.Logs, nil
	case KindLore:
		return l.Lore, nil
	case KindSystem:
		return l.Systems, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Collections returns every kind in declaration order.
func (l *Library) Collections() []Collection {
	return []Collection{l.Crew, l.NPCs, l.Logs, l.Lore, l.Systems}
}

// Dir is the directory of kind relative to the content root.
func (l *Library) Dir(kind Kind) string {
	return l.paths[kind]
}
