package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteSlot is a Slot backed by a single row of a local SQLite database.
type SQLiteSlot struct {
	db  *sqlx.DB
	key string
}

// NewSQLiteSlot opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
// The slot reads and writes the row named StorageKey.
func NewSQLiteSlot(dbPath string) (*SQLiteSlot, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Each :memory: connection is its own database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteSlot{db: db, key: StorageKey}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteSlot) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteSlot) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// Load returns the stored value, or ok=false when the row does not exist.
func (s *SQLiteSlot) Load(ctx context.Context) ([]byte, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, "SELECT value FROM kv WHERE key = ?", s.key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading slot %s: %w", s.key, err)
	}
	return []byte(value), true, nil
}

// Save replaces the stored value.
func (s *SQLiteSlot) Save(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO kv (key, value, size, updated_at)
		VALUES (?, ?, ?, ?)`,
		s.key, string(data), len(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("writing slot %s: %w", s.key, err)
	}
	return nil
}

// SlotInfo describes the stored row.
type SlotInfo struct {
	UpdatedAt time.Time `db:"updated_at"`
	Size      int       `db:"size"`
}

// Info reports when the slot was last written and how many bytes it
// holds. ok is false when nothing has been saved yet.
func (s *SQLiteSlot) Info(ctx context.Context) (SlotInfo, bool, error) {
	var info SlotInfo
	err := s.db.GetContext(ctx, &info, "SELECT updated_at, size FROM kv WHERE key = ?", s.key)
	if errors.Is(err, sql.ErrNoRows) {
		return SlotInfo{}, false, nil
	}
	if err != nil {
		return SlotInfo{}, false, fmt.Errorf("reading slot info %s: %w", s.key, err)
	}
	return info, true, nil
}
