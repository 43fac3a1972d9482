package db

import (
	"context"
	"database/sql"
	"fmt"

	"taberna/internal/model"
)

// CreateContact stores a project lead.
func (db *DB) CreateContact(ctx context.Context, c *model.ProjectContact) error {
	ts := now()
	res, err := db.ExecContext(ctx, `
		INSERT INTO project_contacts (
			name, email, phone, company, subject, message, consent, source, is_read, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?)`,
		c.Name, c.Email, nullString(c.Phone), nullString(c.Company), c.Subject, c.Message,
		c.Consent, nullString(c.Source), ts,
	)
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	c.CreatedAt = ts
	c.IsRead = false
	c.ReadAt = nil
	return nil
}

// ListContacts returns leads newest first.
func (db *DB) ListContacts(ctx context.Context, limit, offset int) ([]model.ProjectContact, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, email, phone, company, subject, message, consent, source,
			is_read, read_at, created_at
		FROM project_contacts
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var out []model.ProjectContact
	for rows.Next() {
		var c model.ProjectContact
		var phone, company, source sql.NullString
		var readAt sql.NullTime
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Email, &phone, &company, &c.Subject, &c.Message,
			&c.Consent, &source, &c.IsRead, &readAt, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		c.Phone = phone.String
		c.Company = company.String
		c.Source = source.String
		c.ReadAt = timePtr(readAt)
		out = append(out, c)
	}
	return out, rows.Err()
}

// ContactStats returns the total and unread lead counts.
func (db *DB) ContactStats(ctx context.Context) (total, unread int, err error) {
	err = db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_read = 0 THEN 1 ELSE 0 END), 0)
		FROM project_contacts`,
	).Scan(&total, &unread)
	if err != nil {
		return 0, 0, fmt.Errorf("contact stats: %w", err)
	}
	return total, unread, nil
}

// MarkContactRead flags a lead as read. Marking twice keeps the first read_at.
func (db *DB) MarkContactRead(ctx context.Context, id int64) error {
	res, err := db.ExecContext(ctx, `
		UPDATE project_contacts
		SET is_read = 1, read_at = COALESCE(read_at, ?)
		WHERE id = ?`,
		now(), id,
	)
	if err != nil {
		return fmt.Errorf("mark contact read: %w", err)
	}
	return expectAffected(res)
}
