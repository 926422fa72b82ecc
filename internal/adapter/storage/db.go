// Package storage opens the catalogue database and provides the shared
// plumbing (querier, transactions, error mapping, migrations) used by repos.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/heartmarshall/recobot/internal/config"
)

// Dialect describes the SQL flavour of an open database.
type Dialect struct {
	Name        string
	driverName  string
	goose       goose.Dialect
	placeholder sq.PlaceholderFormat
}

var (
	DialectSQLite   = Dialect{Name: config.DriverSQLite, driverName: "sqlite", goose: goose.DialectSQLite3, placeholder: sq.Question}
	DialectPostgres = Dialect{Name: config.DriverPostgres, driverName: "pgx", goose: goose.DialectPostgres, placeholder: sq.Dollar}
)

// DialectFor returns the dialect of a configured driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case config.DriverSQLite:
		return DialectSQLite, nil
	case config.DriverPostgres:
		return DialectPostgres, nil
	}
	return Dialect{}, fmt.Errorf("unsupported database driver %q", driver)
}

// DB is an open catalogue database together with its dialect.
type DB struct {
	sql     *sql.DB
	dialect Dialect
}

// Open connects to the database described by cfg, applies connection
// settings and pings it for fail-fast validation.
//
// SQLite is limited to a single connection: writers are serialized by the
// driver and WAL keeps readers unblocked.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn := cfg.DSN
	if dialect.Name == config.DriverSQLite {
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}
		dsn = sqliteDSN(dsn, cfg)
	}

	sqlDB, err := sql.Open(dialect.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect.Name, err)
	}

	if dialect.Name == config.DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping %s database: %w", dialect.Name, err)
	}

	return &DB{sql: sqlDB, dialect: dialect}, nil
}

// Dialect returns the SQL flavour of the database.
func (d *DB) Dialect() Dialect { return d.dialect }

// SQL exposes the underlying handle for migrations and transactions.
func (d *DB) SQL() *sql.DB { return d.sql }

// Builder returns a squirrel statement builder using the dialect's placeholders.
func (d *DB) Builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(d.dialect.placeholder)
}

// Ping checks that the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

// Close releases all connections.
func (d *DB) Close() error {
	return d.sql.Close()
}

func sqliteDSN(dsn string, cfg config.DatabaseConfig) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
		dsn, sep, cfg.BusyTimeout.Milliseconds())
}

// ensureDir creates the parent directory of a plain SQLite file path.
func ensureDir(dsn string) error {
	if strings.HasPrefix(dsn, "file:") || strings.HasPrefix(dsn, ":memory:") {
		return nil
	}
	dir := filepath.Dir(dsn)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create database dir: %w", err)
	}
	return nil
}
