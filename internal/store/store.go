// Package store persists the finalized relationship table. Three
// backends share one interface: a CSV artifact for file-based runs, an
// embedded SQLite database, and PostgreSQL for shared deployments.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/proven-connections/connections-cli/internal/model"
)

// Store defines the persistence interface for the relationship table.
// Save replaces the full table; Load returns it sorted by vendor name
// then client name.
type Store interface {
	Load(ctx context.Context) ([]model.Relationship, error)
	Save(ctx context.Context, rels []model.Relationship) error
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a store for the given driver. The dsn is a file path
// for csv and sqlite, and a connection string for postgres.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "csv":
		return NewCSV(dsn), nil
	case "sqlite":
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, dsn, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
