package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"taberna/internal/model"
)

const eventColumns = `id, title, date_start, date_end, timezone, description, category,
	image_url, location_name, is_published, created_at, updated_at`

// CreateEvent inserts an event and sets its id and timestamps.
func (db *DB) CreateEvent(ctx context.Context, ev *model.Event) error {
	if ev.Timezone == "" {
		ev.Timezone = model.DefaultTimezone
	}
	ts := now()
	res, err := db.ExecContext(ctx, `
		INSERT INTO events (
			title, date_start, date_end, timezone, description, category,
			image_url, location_name, is_published, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.Title, ev.DateStart.UTC(), nullTime(ev.DateEnd), ev.Timezone, ev.Description,
		ev.Category, ev.ImageURL, nullString(ev.LocationName), ev.IsPublished, ts, ts,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	if ev.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	ev.CreatedAt = ts
	ev.UpdatedAt = ts
	return nil
}

// GetEvent returns an event; when publishedOnly is set drafts are not found.
func (db *DB) GetEvent(ctx context.Context, id int64, publishedOnly bool) (*model.Event, error) {
	query := "SELECT " + eventColumns + " FROM events WHERE id = ?"
	if publishedOnly {
		query += " AND is_published = 1"
	}
	ev, err := scanEvent(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return ev, err
}

// UpdateEvent overwrites all editable fields of an event.
func (db *DB) UpdateEvent(ctx context.Context, ev *model.Event) error {
	if ev.Timezone == "" {
		ev.Timezone = model.DefaultTimezone
	}
	res, err := db.ExecContext(ctx, `
		UPDATE events SET
			title = ?, date_start = ?, date_end = ?, timezone = ?, description = ?,
			category = ?, image_url = ?, location_name = ?, is_published = ?, updated_at = ?
		WHERE id = ?`,
		ev.Title, ev.DateStart.UTC(), nullTime(ev.DateEnd), ev.Timezone, ev.Description,
		ev.Category, ev.ImageURL, nullString(ev.LocationName), ev.IsPublished, now(), ev.ID,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return expectAffected(res)
}

// SetEventPublished toggles publication.
func (db *DB) SetEventPublished(ctx context.Context, id int64, published bool) error {
	res, err := db.ExecContext(ctx,
		"UPDATE events SET is_published = ?, updated_at = ? WHERE id = ?",
		published, now(), id,
	)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return expectAffected(res)
}

// DeleteEvent removes an event.
func (db *DB) DeleteEvent(ctx context.Context, id int64) error {
	res, err := db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return expectAffected(res)
}

// ListEvents returns one page of events matching f.
func (db *DB) ListEvents(ctx context.Context, f model.EventFilter) ([]model.Event, error) {
	var conds []string
	var args []any
	if f.Published != nil {
		conds = append(conds, "is_published = ?")
		args = append(args, *f.Published)
	}
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	if f.From != nil {
		conds = append(conds, "date_start >= ?")
		args = append(args, f.From.UTC())
	}
	if f.To != nil {
		conds = append(conds, "date_start < ?")
		args = append(args, f.To.UTC())
	}

	query := "SELECT " + eventColumns + " FROM events"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	if f.Desc {
		query += " ORDER BY date_start DESC, id DESC"
	} else {
		query += " ORDER BY date_start, id"
	}
	limit := f.Limit
	if limit <= 0 {
		limit = -1
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, f.Offset)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []model.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ev)
	}
	return out, rows.Err()
}

func scanEvent(row rowScanner) (*model.Event, error) {
	var ev model.Event
	var end sql.NullTime
	var location sql.NullString
	if err := row.Scan(
		&ev.ID, &ev.Title, &ev.DateStart, &end, &ev.Timezone, &ev.Description, &ev.Category,
		&ev.ImageURL, &location, &ev.IsPublished, &ev.CreatedAt, &ev.UpdatedAt,
	); err != nil {
		return nil, err
	}
	ev.DateEnd = timePtr(end)
	ev.LocationName = location.String
	return &ev, nil
}
