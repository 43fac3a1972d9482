package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"taberna/internal/model"
)

const menuColumns = `id, type, name, description, price_cents, category, region,
	glass_price_cents, bottle_price_cents, image_url, is_active, updated_at`

// CreateMenuItem inserts an item and sets its id.
func (db *DB) CreateMenuItem(ctx context.Context, it *model.MenuItem) error {
	if it == nil {
		return fmt.Errorf("menu item is nil")
	}
	ts := now()
	res, err := db.ExecContext(ctx, `
		INSERT INTO menu_items (
			type, name, description, price_cents, category, region,
			glass_price_cents, bottle_price_cents, image_url, is_active, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.Type, it.Name, nullString(it.Description), nullInt64(it.PriceCents),
		nullString(it.Category), nullString(it.Region), nullInt64(it.GlassPriceCents),
		nullInt64(it.BottlePriceCents), nullString(it.ImageURL), it.IsActive, ts,
	)
	if err != nil {
		return fmt.Errorf("insert menu item: %w", err)
	}
	if it.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	it.UpdatedAt = ts
	return nil
}

// GetMenuItem returns an item of the given type.
func (db *DB) GetMenuItem(ctx context.Context, id int64, typ model.MenuItemType) (*model.MenuItem, error) {
	row := db.QueryRowContext(ctx,
		"SELECT "+menuColumns+" FROM menu_items WHERE id = ? AND type = ?", id, typ)
	it, err := scanMenuItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return it, err
}

// UpdateMenuItem overwrites all editable fields of an item.
func (db *DB) UpdateMenuItem(ctx context.Context, it *model.MenuItem) error {
	ts := now()
	res, err := db.ExecContext(ctx, `
		UPDATE menu_items SET
			name = ?, description = ?, price_cents = ?, category = ?, region = ?,
			glass_price_cents = ?, bottle_price_cents = ?, image_url = ?,
			is_active = ?, updated_at = ?
		WHERE id = ? AND type = ?`,
		it.Name, nullString(it.Description), nullInt64(it.PriceCents), nullString(it.Category),
		nullString(it.Region), nullInt64(it.GlassPriceCents), nullInt64(it.BottlePriceCents),
		nullString(it.ImageURL), it.IsActive, ts, it.ID, it.Type,
	)
	if err != nil {
		return fmt.Errorf("update menu item: %w", err)
	}
	if err := expectAffected(res); err != nil {
		return err
	}
	it.UpdatedAt = ts
	return nil
}

// DeleteMenuItem removes an item; typ must match the stored type.
func (db *DB) DeleteMenuItem(ctx context.Context, id int64, typ model.MenuItemType) error {
	res, err := db.ExecContext(ctx, "DELETE FROM menu_items WHERE id = ? AND type = ?", id, typ)
	if err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	return expectAffected(res)
}

// ListActiveMenuItems returns active items, optionally of a single type.
func (db *DB) ListActiveMenuItems(ctx context.Context, typ model.MenuItemType) ([]model.MenuItem, error) {
	query := "SELECT " + menuColumns + " FROM menu_items WHERE is_active = 1"
	var args []any
	if typ != "" {
		query += " AND type = ?"
		args = append(args, typ)
	}
	query += " ORDER BY id"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	defer rows.Close()

	var items []model.MenuItem
	for rows.Next() {
		it, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// CreateMenuCategory inserts a category row. Duplicate (category,
// subcategory) pairs return ErrDuplicate.
func (db *DB) CreateMenuCategory(ctx context.Context, c *model.MenuCategory) error {
	res, err := db.ExecContext(ctx,
		"INSERT INTO menu_categories (category, subcategory, orden) VALUES (?, ?, ?)",
		c.Category, c.Subcategory, c.Order,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert menu category: %w", err)
	}
	c.ID, err = res.LastInsertId()
	return err
}

// ListMenuCategories returns categories ordered for display.
func (db *DB) ListMenuCategories(ctx context.Context) ([]model.MenuCategory, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, category, subcategory, orden
		FROM menu_categories
		ORDER BY orden, category, subcategory`)
	if err != nil {
		return nil, fmt.Errorf("list menu categories: %w", err)
	}
	defer rows.Close()

	var out []model.MenuCategory
	for rows.Next() {
		var c model.MenuCategory
		if err := rows.Scan(&c.ID, &c.Category, &c.Subcategory, &c.Order); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanMenuItem(row rowScanner) (*model.MenuItem, error) {
	var it model.MenuItem
	var typ string
	var desc, category, region, image sql.NullString
	var price, glass, bottle sql.NullInt64
	if err := row.Scan(
		&it.ID, &typ, &it.Name, &desc, &price, &category, &region,
		&glass, &bottle, &image, &it.IsActive, &it.UpdatedAt,
	); err != nil {
		return nil, err
	}
	it.Type = model.MenuItemType(typ)
	it.Description = desc.String
	it.Category = category.String
	it.Region = region.String
	it.ImageURL = image.String
	it.PriceCents = int64Ptr(price)
	it.GlassPriceCents = int64Ptr(glass)
	it.BottlePriceCents = int64Ptr(bottle)
	return &it, nil
}
