package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/proven-connections/connections-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS relationships (
	vendor_name       TEXT NOT NULL,
	vendor_domain     TEXT NOT NULL DEFAULT '',
	vendor_logo       TEXT NOT NULL DEFAULT '',
	vendor_lat        REAL,
	vendor_lng        REAL,
	client_name       TEXT NOT NULL,
	client_domain     TEXT NOT NULL DEFAULT '',
	client_logo       TEXT NOT NULL DEFAULT '',
	client_lat        REAL,
	client_lng        REAL,
	vendor_proven_url TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_relationships_vendor ON relationships(vendor_name);
CREATE INDEX IF NOT EXISTS idx_relationships_client ON relationships(client_name);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save replaces the full relationship table in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, rels []model.Relationship) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM relationships`); err != nil {
		return eris.Wrap(err, "sqlite: clear relationships")
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO relationships (
		vendor_name, vendor_domain, vendor_logo, vendor_lat, vendor_lng,
		client_name, client_domain, client_logo, client_lat, client_lng,
		vendor_proven_url
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close()

	for _, rel := range rels {
		_, err := stmt.ExecContext(ctx,
			rel.Vendor.Name, rel.Vendor.Domain, rel.Vendor.Logo,
			nullCoord(rel.Vendor.Lat), nullCoord(rel.Vendor.Lng),
			rel.Client.Name, rel.Client.Domain, rel.Client.Logo,
			nullCoord(rel.Client.Lat), nullCoord(rel.Client.Lng),
			rel.ProvenURL,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert %s -> %s", rel.Vendor.Name, rel.Client.Name)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit")
}

// Load returns the table sorted by vendor name then client name.
func (s *SQLiteStore) Load(ctx context.Context) ([]model.Relationship, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		vendor_name, vendor_domain, vendor_logo, vendor_lat, vendor_lng,
		client_name, client_domain, client_logo, client_lat, client_lng,
		vendor_proven_url
	FROM relationships ORDER BY vendor_name, client_name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load relationships")
	}
	defer rows.Close()

	var rels []model.Relationship
	for rows.Next() {
		var rel model.Relationship
		var vLat, vLng, cLat, cLng sql.NullFloat64
		err := rows.Scan(
			&rel.Vendor.Name, &rel.Vendor.Domain, &rel.Vendor.Logo, &vLat, &vLng,
			&rel.Client.Name, &rel.Client.Domain, &rel.Client.Logo, &cLat, &cLng,
			&rel.ProvenURL,
		)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan relationship")
		}
		rel.Vendor.Lat, rel.Vendor.Lng = coordPtr(vLat), coordPtr(vLng)
		rel.Client.Lat, rel.Client.Lng = coordPtr(cLat), coordPtr(cLng)
		rels = append(rels, rel)
	}
	return rels, eris.Wrap(rows.Err(), "sqlite: iterate relationships")
}

func nullCoord(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func coordPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
