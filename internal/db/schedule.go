package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"taberna/internal/model"
)

// GetScheduleDay returns the day for date with its windows ordered by start.
func (db *DB) GetScheduleDay(ctx context.Context, date string) (*model.ScheduleDay, error) {
	var d model.ScheduleDay
	var note sql.NullString
	err := db.QueryRowContext(ctx, `
		SELECT id, date, open, note, updated_at
		FROM schedule_days
		WHERE date = ?`,
		date,
	).Scan(&d.ID, &d.Date, &d.Open, &note, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get schedule day: %w", err)
	}
	d.Note = stringPtr(note)

	windows, err := db.windowsForDays(ctx, `WHERE day_id = ?`, d.ID)
	if err != nil {
		return nil, err
	}
	d.Windows = windows[d.ID]
	if d.Windows == nil {
		d.Windows = []model.ServiceWindow{}
	}
	return &d, nil
}

// ListScheduleDays returns days within [from, to] ordered by date. Empty
// bounds are open.
func (db *DB) ListScheduleDays(ctx context.Context, from, to string) ([]model.ScheduleDay, error) {
	where, args := dateRange("date", from, to)
	rows, err := db.QueryContext(ctx, `
		SELECT id, date, open, note, updated_at
		FROM schedule_days `+where+`
		ORDER BY date`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list schedule days: %w", err)
	}
	defer rows.Close()

	var days []model.ScheduleDay
	for rows.Next() {
		var d model.ScheduleDay
		var note sql.NullString
		if err := rows.Scan(&d.ID, &d.Date, &d.Open, &note, &d.UpdatedAt); err != nil {
			return nil, err
		}
		d.Note = stringPtr(note)
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	dayWhere, dayArgs := dateRange("d.date", from, to)
	windows, err := db.windowsForDays(ctx,
		`WHERE day_id IN (SELECT d.id FROM schedule_days d `+dayWhere+`)`, dayArgs...)
	if err != nil {
		return nil, err
	}
	for i := range days {
		days[i].Windows = windows[days[i].ID]
		if days[i].Windows == nil {
			days[i].Windows = []model.ServiceWindow{}
		}
	}
	return days, nil
}

func (db *DB) windowsForDays(ctx context.Context, where string, args ...any) (map[int64][]model.ServiceWindow, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, day_id, start_time, end_time
		FROM service_windows `+where+`
		ORDER BY day_id, start_time, end_time`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list service windows: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]model.ServiceWindow)
	for rows.Next() {
		var w model.ServiceWindow
		if err := rows.Scan(&w.ID, &w.DayID, &w.Start, &w.End); err != nil {
			return nil, err
		}
		out[w.DayID] = append(out[w.DayID], w)
	}
	return out, rows.Err()
}

// UpsertScheduleDay creates the day or updates its open flag and note.
func (db *DB) UpsertScheduleDay(ctx context.Context, date string, open bool, note string) (*model.ScheduleDay, error) {
	_, err := db.ExecContext(ctx, `
		INSERT INTO schedule_days (date, open, note, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			open = excluded.open,
			note = excluded.note,
			updated_at = excluded.updated_at`,
		date, open, nullString(note), now(),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert schedule day: %w", err)
	}
	return db.GetScheduleDay(ctx, date)
}

// AddServiceWindow adds a window to date, creating an open day when missing.
func (db *DB) AddServiceWindow(ctx context.Context, date, start, end string) (int64, error) {
	var id int64
	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		var dayID int64
		err := tx.QueryRowContext(ctx, "SELECT id FROM schedule_days WHERE date = ?", date).Scan(&dayID)
		if errors.Is(err, sql.ErrNoRows) {
			res, err := tx.ExecContext(ctx,
				"INSERT INTO schedule_days (date, open, updated_at) VALUES (?, 1, ?)",
				date, now(),
			)
			if err != nil {
				return fmt.Errorf("create schedule day: %w", err)
			}
			if dayID, err = res.LastInsertId(); err != nil {
				return err
			}
		} else if err != nil {
			return fmt.Errorf("find schedule day: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			"INSERT INTO service_windows (day_id, start_time, end_time) VALUES (?, ?, ?)",
			dayID, start, end,
		)
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		if err != nil {
			return fmt.Errorf("insert service window: %w", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	return id, err
}

// DeleteScheduleDay removes a day; its windows cascade.
func (db *DB) DeleteScheduleDay(ctx context.Context, date string) error {
	res, err := db.ExecContext(ctx, "DELETE FROM schedule_days WHERE date = ?", date)
	if err != nil {
		return fmt.Errorf("delete schedule day: %w", err)
	}
	return expectAffected(res)
}

func dateRange(column, from, to string) (string, []any) {
	var where string
	var args []any
	if from != "" {
		where = "WHERE " + column + " >= ?"
		args = append(args, from)
	}
	if to != "" {
		if where == "" {
			where = "WHERE "
		} else {
			where += " AND "
		}
		where += column + " <= ?"
		args = append(args, to)
	}
	return where, args
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
