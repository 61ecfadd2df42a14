package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ftlnomad/internal/config"
	"ftlnomad/internal/store"
	"ftlnomad/internal/store/postgres"
	"ftlnomad/internal/store/sqlite"
)

var errNoDatabase = errors.New("database.dsn is not configured")

// openStore picks the driver from the DSN scheme.
func openStore(ctx context.Context, cfg *config.ProjectConfig) (store.Store, error) {
	dsn := strings.TrimSpace(cfg.Database.DSN)
	switch {
	case dsn == "":
		return nil, errNoDatabase
	case strings.HasPrefix(dsn, "sqlite://"):
		client, err := sqlite.New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return client, nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		client, err := postgres.New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	return nil, fmt.Errorf("unsupported database DSN scheme in %q", redactDSN(dsn))
}

// redactDSN drops everything after the scheme so credentials never reach
// error output.
func redactDSN(dsn string) string {
	if scheme, _, ok := strings.Cut(dsn, "://"); ok {
		return scheme + "://..."
	}
	return "..."
}
