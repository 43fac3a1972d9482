package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicate         = errors.New("duplicate")
	ErrSlotFull          = errors.New("slot full")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// DB wraps sql.DB for the venue store.
type DB struct {
	*sql.DB
	path   string
	logger *zerolog.Logger
}

// NewDB opens the database at path and runs migrations.
//
// Transactions are opened with BEGIN IMMEDIATE so a write transaction holds
// the database write lock from its first statement; concurrent writers wait
// on the busy timeout instead of interleaving their reads.
func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate"
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := createTables(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	logger.Info().Str("path", path).Msg("database initialized")

	return &DB{DB: sqlDB, path: path, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS schedule_days (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date TEXT NOT NULL UNIQUE,
			open BOOLEAN NOT NULL DEFAULT 1,
			note TEXT,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS service_windows (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			day_id INTEGER NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			FOREIGN KEY (day_id) REFERENCES schedule_days(id) ON DELETE CASCADE,
			UNIQUE (day_id, start_time, end_time)
		)`,

		// No foreign key to schedule_days: a reservation outlives schedule edits.
		`CREATE TABLE IF NOT EXISTS reservations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date TEXT NOT NULL,
			time TEXT NOT NULL,
			party_size INTEGER NOT NULL,
			customer_name TEXT NOT NULL,
			customer_phone TEXT,
			customer_email TEXT,
			notes TEXT,
			status TEXT NOT NULL DEFAULT 'PENDING',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS menu_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			type TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			price_cents INTEGER,
			category TEXT,
			region TEXT,
			glass_price_cents INTEGER,
			bottle_price_cents INTEGER,
			image_url TEXT,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			updated_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS menu_categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			category TEXT NOT NULL,
			subcategory TEXT NOT NULL DEFAULT '',
			orden INTEGER NOT NULL DEFAULT 0,
			UNIQUE (category, subcategory)
		)`,

		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			date_start DATETIME NOT NULL,
			date_end DATETIME,
			timezone TEXT NOT NULL DEFAULT 'Europe/Madrid',
			description TEXT NOT NULL,
			category TEXT NOT NULL,
			image_url TEXT NOT NULL,
			location_name TEXT,
			is_published BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS project_contacts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT,
			company TEXT,
			subject TEXT NOT NULL,
			message TEXT NOT NULL,
			consent BOOLEAN NOT NULL DEFAULT 0,
			source TEXT,
			is_read BOOLEAN NOT NULL DEFAULT 0,
			read_at DATETIME,
			created_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS app_config (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_service_windows_day ON service_windows(day_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_slot ON reservations(date, time, status)`,
		`CREATE INDEX IF NOT EXISTS idx_menu_items_type_active ON menu_items(type, is_active)`,
		`CREATE INDEX IF NOT EXISTS idx_events_published_start ON events(is_published, date_start)`,
		`CREATE INDEX IF NOT EXISTS idx_events_category ON events(category)`,
		`CREATE INDEX IF NOT EXISTS idx_project_contacts_created ON project_contacts(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_project_contacts_read ON project_contacts(is_read)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration %s: %w", trimSQL(q), err)
		}
	}
	return nil
}

// WithTx runs fn inside a transaction. It commits when fn returns nil and
// rolls back on error or panic.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

func (db *DB) Close() error {
	return db.DB.Close()
}

func trimSQL(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
