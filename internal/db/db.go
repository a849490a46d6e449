package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens the row-store and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:autoqcm.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/autoqcm?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS user_roles (
  user_id TEXT PRIMARY KEY,
  role TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS qcm_usage (
  user_id TEXT NOT NULL,
  model TEXT NOT NULL,
  generated_count INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (user_id, model)
);

CREATE TABLE IF NOT EXISTS qcm_tests (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  name TEXT,
  qcm_json TEXT NOT NULL,
  score INTEGER,
  created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_qcm_tests_user ON qcm_tests (user_id, created_at);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS user_roles (
  user_id TEXT PRIMARY KEY,
  role TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS qcm_usage (
  user_id TEXT NOT NULL,
  model TEXT NOT NULL,
  generated_count INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (user_id, model)
);

CREATE TABLE IF NOT EXISTS qcm_tests (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  name TEXT,
  qcm_json TEXT NOT NULL,
  score INTEGER,
  created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_qcm_tests_user ON qcm_tests (user_id, created_at);
`
