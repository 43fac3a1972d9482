package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"taberna/internal/model"
)

// DefaultConfig holds the keys seeded on startup.
var DefaultConfig = map[string]string{
	model.ConfigReservationsActive: "false",
	model.ConfigContactPhone:       "",
	model.ConfigContactMail:        "@",
}

// EnsureConfigDefaults inserts missing default keys without touching
// existing values.
func (db *DB) EnsureConfigDefaults(ctx context.Context) error {
	ts := now()
	return db.WithTx(ctx, func(tx *sql.Tx) error {
		for k, v := range DefaultConfig {
			if _, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO app_config (key, value, updated_at) VALUES (?, ?, ?)",
				k, v, ts,
			); err != nil {
				return fmt.Errorf("seed config %s: %w", k, err)
			}
		}
		return nil
	})
}

func (db *DB) ListConfig(ctx context.Context) ([]model.ConfigEntry, error) {
	rows, err := db.QueryContext(ctx, "SELECT key, value, updated_at FROM app_config ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("list config: %w", err)
	}
	defer rows.Close()

	var out []model.ConfigEntry
	for rows.Next() {
		var e model.ConfigEntry
		if err := rows.Scan(&e.Key, &e.Value, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (db *DB) GetConfig(ctx context.Context, key string) (*model.ConfigEntry, error) {
	var e model.ConfigEntry
	err := db.QueryRowContext(ctx,
		"SELECT key, value, updated_at FROM app_config WHERE key = ?", key,
	).Scan(&e.Key, &e.Value, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get config: %w", err)
	}
	return &e, nil
}

// SetConfig upserts a key.
func (db *DB) SetConfig(ctx context.Context, key, value string) (*model.ConfigEntry, error) {
	ts := now()
	_, err := db.ExecContext(ctx, `
		INSERT INTO app_config (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("set config: %w", err)
	}
	return &model.ConfigEntry{Key: key, Value: value, UpdatedAt: ts}, nil
}
