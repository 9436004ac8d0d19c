// Package engine provides a thin wrapper over sqlx.DB for sqlite and postgres,
// with per-dialect queries and table initialization.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	_ "modernc.org/sqlite" // sqlite driver loaded here
)

// Type is a type of database engine
type Type string

// enum of supported database engines
const (
	Unknown  Type = ""
	Sqlite   Type = "sqlite"
	Postgres Type = "postgres"
)

// SQL is a wrapper for sqlx.DB with type and group id.
// Group id allows keeping data of different instances in the same database.
type SQL struct {
	sqlx.DB
	gid    string
	dbType Type
}

// RWLocker is a read-write locker interface, satisfied by sync.RWMutex
type RWLocker interface {
	sync.Locker
	RLock()
	RUnlock()
}

// NoopLocker is a locker for engines with their own concurrency control
type NoopLocker struct{}

// Lock does nothing
func (NoopLocker) Lock() {}

// Unlock does nothing
func (NoopLocker) Unlock() {}

// RLock does nothing
func (NoopLocker) RLock() {}

// RUnlock does nothing
func (NoopLocker) RUnlock() {}

// TableConfig defines a table with its queries
type TableConfig struct {
	Name          string
	CreateTable   DBCmd
	CreateIndexes DBCmd
	QueriesMap    *QueryMap
}

// New makes an engine from the connection url. Sqlite is detected by file://, file: and sqlite://
// prefixes, .db and .sqlite suffixes or :memory:, postgres by postgres:// and postgresql:// prefixes.
func New(ctx context.Context, connURL, gid string) (*SQL, error) {
	log.Printf("[DEBUG] new database engine, gid: %s", gid)
	if connURL == "" {
		return &SQL{}, errors.New("connection URL is empty")
	}

	switch {
	case connURL == ":memory:":
		return NewSqlite(connURL, gid)
	case strings.HasPrefix(connURL, "file://"):
		return NewSqlite(strings.TrimPrefix(connURL, "file://"), gid)
	case strings.HasPrefix(connURL, "file:"):
		return NewSqlite(strings.TrimPrefix(connURL, "file:"), gid)
	case strings.HasPrefix(connURL, "sqlite://"):
		return NewSqlite(strings.TrimPrefix(connURL, "sqlite://"), gid)
	case strings.HasSuffix(connURL, ".sqlite") || strings.HasSuffix(connURL, ".db"):
		return NewSqlite(connURL, gid)
	case strings.HasPrefix(connURL, "postgres://") || strings.HasPrefix(connURL, "postgresql://"):
		return NewPostgres(ctx, connURL, gid)
	}
	return &SQL{}, fmt.Errorf("unsupported database type in connection string %q", connURL)
}

// NewSqlite makes sqlite engine for the file
func NewSqlite(file, gid string) (*SQL, error) {
	log.Printf("[INFO] sqlite database, file: %s", file)
	db, err := sqlx.Connect("sqlite", file)
	if err != nil {
		return &SQL{}, err
	}
	// single connection, sqlite doesn't support concurrent writes and :memory: is per-connection
	db.SetMaxOpenConns(1)
	return &SQL{DB: *db, gid: gid, dbType: Sqlite}, nil
}

// NewPostgres makes postgres engine. The database is created if it doesn't exist.
func NewPostgres(ctx context.Context, connURL, gid string) (*SQL, error) {
	u, err := url.Parse(connURL)
	if err != nil {
		return &SQL{}, fmt.Errorf("invalid postgres connection url: %w", err)
	}
	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return &SQL{}, errors.New("database name not specified")
	}
	log.Printf("[INFO] postgres database, host: %s, db: %s", u.Host, dbName)

	if err = ensurePostgresDB(ctx, *u, dbName); err != nil {
		return &SQL{}, err
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", connURL)
	if err != nil {
		return &SQL{}, fmt.Errorf("failed to connect to postgres database %s: %w", dbName, err)
	}
	return &SQL{DB: *db, gid: gid, dbType: Postgres}, nil
}

// ensurePostgresDB connects to the maintenance database and creates dbName if missing
func ensurePostgresDB(ctx context.Context, u url.URL, dbName string) error {
	u.Path = "/postgres"
	admin, err := sqlx.ConnectContext(ctx, "postgres", u.String())
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer admin.Close()

	var exists bool
	if err = admin.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", dbName); err != nil {
		return fmt.Errorf("failed to check database %s: %w", dbName, err)
	}
	if exists {
		return nil
	}
	if _, err = admin.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(dbName)); err != nil {
		return fmt.Errorf("failed to create database %s: %w", dbName, err)
	}
	log.Printf("[INFO] created postgres database %s", dbName)
	return nil
}

// GID returns the group id
func (e *SQL) GID() string {
	return e.gid
}

// Type returns the database engine type
func (e *SQL) Type() Type {
	return e.dbType
}

// MakeLock makes a locker for the engine, sqlite needs write serialization, postgres doesn't
func (e *SQL) MakeLock() RWLocker {
	if e.dbType == Sqlite {
		return new(sync.RWMutex)
	}
	return &NoopLocker{}
}

// InitTable creates the table and its indexes in one transaction
func InitTable(ctx context.Context, db *SQL, cfg TableConfig) error {
	if db == nil {
		return errors.New("db connection is nil")
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback() //nolint

	createTable, err := cfg.QueriesMap.Pick(db.Type(), cfg.CreateTable)
	if err != nil {
		return fmt.Errorf("failed to get create table query: %w", err)
	}
	if _, err = tx.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create %s table: %w", cfg.Name, err)
	}

	createIndexes, err := cfg.QueriesMap.Pick(db.Type(), cfg.CreateIndexes)
	if err != nil {
		return fmt.Errorf("failed to get create indexes query: %w", err)
	}
	if _, err = tx.ExecContext(ctx, createIndexes); err != nil {
		return fmt.Errorf("failed to create %s indexes: %w", cfg.Name, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
