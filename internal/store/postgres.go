package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/proven-connections/connections-cli/internal/db"
	"github.com/proven-connections/connections-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS relationships (
	vendor_name       TEXT NOT NULL,
	vendor_domain     TEXT NOT NULL DEFAULT '',
	vendor_logo       TEXT NOT NULL DEFAULT '',
	vendor_lat        DOUBLE PRECISION,
	vendor_lng        DOUBLE PRECISION,
	client_name       TEXT NOT NULL,
	client_domain     TEXT NOT NULL DEFAULT '',
	client_logo       TEXT NOT NULL DEFAULT '',
	client_lat        DOUBLE PRECISION,
	client_lng        DOUBLE PRECISION,
	vendor_proven_url TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_relationships_vendor ON relationships(vendor_name);
CREATE INDEX IF NOT EXISTS idx_relationships_client ON relationships(client_name);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// Save replaces the full relationship table, bulk-loading the new rows
// with COPY.
func (s *PostgresStore) Save(ctx context.Context, rels []model.Relationship) error {
	if _, err := s.pool.Exec(ctx, `TRUNCATE relationships`); err != nil {
		return eris.Wrap(err, "postgres: truncate relationships")
	}

	rows := make([][]any, 0, len(rels))
	for _, rel := range rels {
		rows = append(rows, []any{
			rel.Vendor.Name, rel.Vendor.Domain, rel.Vendor.Logo,
			rel.Vendor.Lat, rel.Vendor.Lng,
			rel.Client.Name, rel.Client.Domain, rel.Client.Logo,
			rel.Client.Lat, rel.Client.Lng,
			rel.ProvenURL,
		})
	}

	_, err := db.CopyFrom(ctx, s.pool, "relationships", csvColumns, rows)
	return eris.Wrap(err, "postgres: save relationships")
}

// Load returns the table sorted by vendor name then client name.
func (s *PostgresStore) Load(ctx context.Context) ([]model.Relationship, error) {
	rows, err := s.pool.Query(ctx, `SELECT
		vendor_name, vendor_domain, vendor_logo, vendor_lat, vendor_lng,
		client_name, client_domain, client_logo, client_lat, client_lng,
		vendor_proven_url
	FROM relationships ORDER BY vendor_name, client_name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load relationships")
	}
	defer rows.Close()

	var rels []model.Relationship
	for rows.Next() {
		var rel model.Relationship
		err := rows.Scan(
			&rel.Vendor.Name, &rel.Vendor.Domain, &rel.Vendor.Logo,
			&rel.Vendor.Lat, &rel.Vendor.Lng,
			&rel.Client.Name, &rel.Client.Domain, &rel.Client.Logo,
			&rel.Client.Lat, &rel.Client.Lng,
			&rel.ProvenURL,
		)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan relationship")
		}
		rels = append(rels, rel)
	}
	return rels, eris.Wrap(rows.Err(), "postgres: iterate relationships")
}
