package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"ftlnomad/internal/config"
	"ftlnomad/internal/content"
	"ftlnomad/internal/logger"
	"ftlnomad/internal/starmap"
)

const defaultConfigPath = "ftlnomad.yaml"

var (
	configPath string
	dotEnvPath string
)

// loadDotEnv fills unset environment variables from path. A missing file is
// not an error; existing variables are never overridden.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func loadConfig() (*config.ProjectConfig, error) {
	return config.LoadProjectConfig(configPath)
}

func newLogger(cfg *config.ProjectConfig) *slog.Logger {
	return logger.New(cfg.Logging)
}

func openLibrary(cfg *config.ProjectConfig) (*content.Library, error) {
	return content.NewLibrary(cfg.Content)
}

func newEngine(cfg *config.ProjectConfig, lib *content.Library, log *slog.Logger) *starmap.Engine {
	return starmap.NewEngine(lib.Systems, starmap.Options{
		MaxRadius:   cfg.Grid.MaxRadius,
		SearchLimit: cfg.Grid.SearchLimit,
		Logger:      log.With("component", "starmap"),
	})
}

// assetsFS is the directory served under /images/, or nil when unset.
func assetsFS(cfg *config.ProjectConfig) fs.FS {
	if cfg.Content.Assets == "" {
		return nil
	}
	return os.DirFS(cfg.Content.Assets)
}
