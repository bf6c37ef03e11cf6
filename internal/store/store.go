// Package store is the device-resident persistence layer: the three
// domain collections plus sync bookkeeping, in a flat key/value table.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Pre-schema (fresh file)
// 1 - Initial kv schema
const currentSchemaVersion = 1

// Persisted keys. The layout is one key per collection and one per
// bookkeeping value.
const (
	keyGoals    = "cached_goals"
	keyStudies  = "cached_studies"
	keySessions = "cached_sessions"

	// keyLastSync is bumped on every local save AND on successful remote
	// sync - the source behavior conflates the two (see keyLastRemoteSync).
	keyLastSync = "last_sync_time"

	// keyLastRemoteSync is written only on full remote-sync success.
	// Diagnostic companion to keyLastSync; the due-check does not use it.
	keyLastRemoteSync = "last_remote_sync_time"

	// keyMigrationDone marks the one-time cache migration as complete.
	keyMigrationDone = "migration_completed"
)

// Store provides durable per-device storage for the practice cache.
// Uses SQLite with WAL mode for concurrent read access.
//
// Load/save are synchronous and must be called from the single logical
// thread that owns the domain model; the sync reconciler may read
// concurrently (its snapshot is one SELECT per collection).
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithNow overrides the wall clock used for sync bookkeeping.
// Tests pin it; production uses time.Now.
func WithNow(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open creates or opens the cache database at path.
// Applies required pragmas and migrations automatically; idempotent.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}
	return nil
}

// querier is the subset of *sql.DB and *sql.Tx the read path needs.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// get reads one key; ok=false when the key has never been written.
func (s *Store) get(ctx context.Context, key string) (string, bool, error) {
	return getFrom(ctx, s.db, key)
}

func getFrom(ctx context.Context, q querier, key string) (string, bool, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read key %s: %w", key, err)
	}
	return value, true, nil
}

// set upserts one key.
func (s *Store) set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("write key %s: %w", key, err)
	}
	return nil
}

// LastSyncTime returns the bookkeeping timestamp (epoch seconds).
// ok=false means nothing has ever been saved or synced.
func (s *Store) LastSyncTime(ctx context.Context) (int64, bool, error) {
	return s.getEpoch(ctx, keyLastSync)
}

// LastRemoteSyncTime returns the diagnostic remote-sync timestamp.
func (s *Store) LastRemoteSyncTime(ctx context.Context) (int64, bool, error) {
	return s.getEpoch(ctx, keyLastRemoteSync)
}

// TouchLastSync records now as the last-sync bookkeeping timestamp.
// Called by every save and by the reconciler on full success.
func (s *Store) TouchLastSync(ctx context.Context) error {
	return s.setEpoch(ctx, keyLastSync, s.now().Unix())
}

// TouchLastRemoteSync records a completed remote sync.
func (s *Store) TouchLastRemoteSync(ctx context.Context) error {
	return s.setEpoch(ctx, keyLastRemoteSync, s.now().Unix())
}

// MigrationCompleted reports whether the one-time cache migration ran.
func (s *Store) MigrationCompleted(ctx context.Context) (bool, error) {
	v, ok, err := s.get(ctx, keyMigrationDone)
	return ok && v == "true", err
}

// SetMigrationCompleted marks the one-time cache migration as done.
func (s *Store) SetMigrationCompleted(ctx context.Context) error {
	return s.set(ctx, keyMigrationDone, "true")
}

func (s *Store) getEpoch(ctx context.Context, key string) (int64, bool, error) {
	v, ok, err := s.get(ctx, key)
	if err != nil || !ok {
		return 0, false, err
	}
	var epoch int64
	if _, err := fmt.Sscanf(v, "%d", &epoch); err != nil {
		return 0, false, nil // unreadable bookkeeping degrades to "never"
	}
	return epoch, true, nil
}

func (s *Store) setEpoch(ctx context.Context, key string, epoch int64) error {
	return s.set(ctx, key, fmt.Sprintf("%d", epoch))
}
