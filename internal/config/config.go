package config

import (
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type ProjectConfig struct {
	Project  string         `yaml:"project"`
	Version  int            `yaml:"version"`
	Content  ContentConfig  `yaml:"content"`
	Server   ServerConfig   `yaml:"server"`
	Grid     GridConfig     `yaml:"grid"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ContentConfig struct {
	Root        string                `yaml:"root" env:"FTLNOMAD_CONTENT_ROOT"`
	Assets      string                `yaml:"assets" env:"FTLNOMAD_CONTENT_ASSETS"`
	Concurrency int                   `yaml:"concurrency" env:"FTLNOMAD_CONTENT_CONCURRENCY"`
	Kinds       map[string]KindConfig `yaml:"kinds"`
}

type KindConfig struct {
	Path string `yaml:"path"`
	Slug string `yaml:"slug"`
}

type ServerConfig struct {
	Addr         string          `yaml:"addr" env:"FTLNOMAD_SERVER_ADDR"`
	ReadTimeout  time.Duration   `yaml:"read_timeout" env:"FTLNOMAD_SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration   `yaml:"write_timeout" env:"FTLNOMAD_SERVER_WRITE_TIMEOUT"`
	IdleTimeout  time.Duration   `yaml:"idle_timeout" env:"FTLNOMAD_SERVER_IDLE_TIMEOUT"`
	CORSOrigins  []string        `yaml:"cors_origins" env:"FTLNOMAD_SERVER_CORS_ORIGINS" envSeparator:","`
	CookieSecure bool            `yaml:"cookie_secure" env:"FTLNOMAD_SERVER_COOKIE_SECURE"`
	RateLimit    RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled" env:"FTLNOMAD_RATE_LIMIT_ENABLED"`
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"FTLNOMAD_RATE_LIMIT_RPS"`
	Burst             int     `yaml:"burst" env:"FTLNOMAD_RATE_LIMIT_BURST"`
	TrustProxy        bool    `yaml:"trust_proxy" env:"FTLNOMAD_RATE_LIMIT_TRUST_PROXY"`
}

type GridConfig struct {
	HexSize     float64 `yaml:"hex_size" env:"FTLNOMAD_GRID_HEX_SIZE"`
	MaxRadius   int     `yaml:"max_radius" env:"FTLNOMAD_GRID_MAX_RADIUS"`
	SearchLimit int     `yaml:"search_limit" env:"FTLNOMAD_GRID_SEARCH_LIMIT"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"FTLNOMAD_DATABASE_DSN"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"FTLNOMAD_LOG_LEVEL"`
	Format string `yaml:"format" env:"FTLNOMAD_LOG_FORMAT"`
}

const (
	SlugFilename = "filename"
	SlugPath     = "path"
)

// Kind names accepted under content.kinds.
var KindNames = []string{"crew", "npc", "log", "lore", "system"}

var defaultKinds = map[string]KindConfig{
	"crew":   {Path: "crew", Slug: SlugFilename},
	"npc":    {Path: "npcs", Slug: SlugFilename},
	"log":    {Path: "logs", Slug: SlugPath},
	"lore":   {Path: "lore", Slug: SlugFilename},
	"system": {Path: "systems", Slug: SlugFilename},
}

func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: parse env: %w", err)
	}

	cfg.applyDefaults()

	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return &cfg, nil
}

// Default returns a configuration rooted at contentRoot with every default applied.
func Default(contentRoot string) *ProjectConfig {
	cfg := &ProjectConfig{
		Project: "ftl-nomad",
		Version: 1,
		Content: ContentConfig{Root: contentRoot},
	}
	cfg.applyDefaults()
	return cfg
}

func (c *ProjectConfig) applyDefaults() {
	if c.Content.Concurrency <= 0 {
		c.Content.Concurrency = 16
	}
	if c.Content.Kinds == nil {
		c.Content.Kinds = make(map[string]KindConfig)
	}
	for name, def := range defaultKinds {
		kind := c.Content.Kinds[name]
		if strings.TrimSpace(kind.Path) == "" {
			kind.Path = def.Path
		}
		if strings.TrimSpace(kind.Slug) == "" {
			kind.Slug = def.Slug
		}
		c.Content.Kinds[name] = kind
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.RateLimit.RequestsPerSecond == 0 {
		c.Server.RateLimit.RequestsPerSecond = 10
	}
	if c.Server.RateLimit.Burst == 0 {
		c.Server.RateLimit.Burst = 20
	}

	if c.Grid.HexSize == 0 {
		c.Grid.HexSize = 40
	}
	if c.Grid.MaxRadius == 0 {
		c.Grid.MaxRadius = 30
	}
	if c.Grid.SearchLimit == 0 {
		c.Grid.SearchLimit = 10
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if strings.TrimSpace(cfg.Content.Root) == "" {
		return fmt.Errorf("content root is required")
	}

	seenPaths := make(map[string]string)
	for name, kind := range cfg.Content.Kinds {
		if !isKnownKind(name) {
			return fmt.Errorf("unknown content kind: %s", name)
		}
		if kind.Slug != SlugFilename && kind.Slug != SlugPath {
			return fmt.Errorf("kind %s: unknown slug strategy %q", name, kind.Slug)
		}
		clean := path.Clean(strings.TrimPrefix(kind.Path, "./"))
		if clean == "." || strings.HasPrefix(clean, "..") || path.IsAbs(clean) {
			return fmt.Errorf("kind %s: path must be a sub-directory of the content root", name)
		}
		if other, exists := seenPaths[clean]; exists {
			return fmt.Errorf("kinds %s and %s share path %s", other, name, clean)
		}
		seenPaths[clean] = name
	}

	if cfg.Grid.HexSize < 0 {
		return fmt.Errorf("grid hex_size must be positive")
	}
	if cfg.Grid.MaxRadius < 1 {
		return fmt.Errorf("grid max_radius must be at least 1")
	}
	if cfg.Grid.SearchLimit < 1 {
		return fmt.Errorf("grid search_limit must be at least 1")
	}

	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format: %s", cfg.Logging.Format)
	}

	if cfg.Database.DSN != "" && !strings.HasPrefix(cfg.Database.DSN, "sqlite://") &&
		!strings.HasPrefix(cfg.Database.DSN, "postgres://") && !strings.HasPrefix(cfg.Database.DSN, "postgresql://") {
		return fmt.Errorf("database dsn must use sqlite:// or postgres://")
	}

	return nil
}

func isKnownKind(name string) bool {
	for _, known := range KindNames {
		if known == name {
			return true
		}
	}
	return false
}
