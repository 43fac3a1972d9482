package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"taberna/internal/model"
)

const reservationColumns = `id, date, time, party_size, customer_name, customer_phone,
	customer_email, notes, status, created_at, updated_at`

// activeStatusSQL is the IN-list of statuses that occupy a slot.
var activeStatusSQL = func() string {
	quoted := make([]string, len(model.ActiveStatuses))
	for i, s := range model.ActiveStatuses {
		quoted[i] = "'" + string(s) + "'"
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}()

// CountActiveByTime returns the number of active reservations per time of
// day for date in a single grouped query.
func (db *DB) CountActiveByTime(ctx context.Context, date string) (map[string]int, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT time, COUNT(*)
		FROM reservations
		WHERE date = ? AND status IN `+activeStatusSQL+`
		GROUP BY time`,
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("count reservations: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		counts[t] = n
	}
	return counts, rows.Err()
}

// CreateReservationIfBelow inserts r as PENDING when fewer than capacity
// active reservations exist for its (date, time). The count and the insert
// share one immediate transaction, so concurrent callers are serialized by
// the database write lock. Returns ErrSlotFull when the slot is at capacity.
func (db *DB) CreateReservationIfBelow(ctx context.Context, r *model.Reservation, capacity int) error {
	if r == nil {
		return fmt.Errorf("reservation is nil")
	}

	return db.WithTx(ctx, func(tx *sql.Tx) error {
		var count int
		err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM reservations
			WHERE date = ? AND time = ? AND status IN `+activeStatusSQL,
			r.Date, r.Time,
		).Scan(&count)
		if err != nil {
			return fmt.Errorf("count slot: %w", err)
		}
		if count >= capacity {
			return ErrSlotFull
		}

		ts := now()
		res, err := tx.ExecContext(ctx, `
			INSERT INTO reservations (
				date, time, party_size, customer_name, customer_phone,
				customer_email, notes, status, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.Date, r.Time, r.PartySize, r.CustomerName, nullString(r.CustomerPhone),
			nullString(r.CustomerEmail), nullString(r.Notes), model.StatusPending, ts, ts,
		)
		if err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}

		r.ID = id
		r.Status = model.StatusPending
		r.CreatedAt = ts
		r.UpdatedAt = ts
		return nil
	})
}

// GetReservation returns a reservation by row id.
func (db *DB) GetReservation(ctx context.Context, id int64) (*model.Reservation, error) {
	row := db.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE id = ?", id)
	r, err := scanReservation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

// UpdateReservationStatus moves a reservation to status when its current
// status is one of from. Returns ErrNotFound for unknown ids and
// ErrInvalidTransition when the current status is not allowed.
func (db *DB) UpdateReservationStatus(
	ctx context.Context,
	id int64,
	from []model.ReservationStatus,
	to model.ReservationStatus,
) (*model.Reservation, error) {
	var out *model.Reservation
	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		current, err := scanReservation(tx.QueryRowContext(ctx,
			"SELECT "+reservationColumns+" FROM reservations WHERE id = ?", id))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		allowed := false
		for _, s := range from {
			if current.Status == s {
				allowed = true
				break
			}
		}
		if !allowed {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, to)
		}

		ts := now()
		if _, err := tx.ExecContext(ctx,
			"UPDATE reservations SET status = ?, updated_at = ? WHERE id = ?",
			to, ts, id,
		); err != nil {
			return fmt.Errorf("update reservation status: %w", err)
		}
		current.Status = to
		current.UpdatedAt = ts
		out = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReservationFilter narrows ListReservations. Zero values match everything.
type ReservationFilter struct {
	Date   string
	Status model.ReservationStatus
	Limit  int
	Offset int
}

// ListReservations returns reservations ordered by date and time.
func (db *DB) ListReservations(ctx context.Context, f ReservationFilter) ([]model.Reservation, error) {
	var conds []string
	var args []any
	if f.Date != "" {
		conds = append(conds, "date = ?")
		args = append(args, f.Date)
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}

	query := "SELECT " + reservationColumns + " FROM reservations"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY date, time, id"
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var out []model.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*model.Reservation, error) {
	var r model.Reservation
	var phone, email, notes sql.NullString
	var status string
	if err := row.Scan(
		&r.ID, &r.Date, &r.Time, &r.PartySize, &r.CustomerName, &phone,
		&email, &notes, &status, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return nil, err
	}
	r.CustomerPhone = phone.String
	r.CustomerEmail = email.String
	r.Notes = notes.String
	r.Status = model.ReservationStatus(status)
	return &r, nil
}
