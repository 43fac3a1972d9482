package db

import (
	"context"
	"database/sql"
	"fmt"
)

// AuditTableNames lists the tables included in admin exports.
var AuditTableNames = []string{
	"schedule_days",
	"service_windows",
	"reservations",
	"menu_items",
	"menu_categories",
	"events",
	"project_contacts",
	"app_config",
}

// GetTableNames returns the exportable tables.
func (db *DB) GetTableNames(ctx context.Context) ([]string, error) {
	return AuditTableNames, nil
}

// GetTableData returns all rows of an exportable table with its columns.
func (db *DB) GetTableData(ctx context.Context, tableName string) (data []map[string]any, columns []string, err error) {
	valid := false
	for _, t := range AuditTableNames {
		if t == tableName {
			valid = true
			break
		}
	}
	if !valid {
		return nil, nil, fmt.Errorf("invalid table name: %s", tableName)
	}

	var rows *sql.Rows
	rows, err = db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return nil, nil, err
	}
	for rows.Next() {
		var cid, notNull, pk int
		var name, typeName string
		var dflt sql.NullString
		if err = rows.Scan(&cid, &name, &typeName, &notNull, &dflt, &pk); err != nil {
			rows.Close()
			return nil, nil, err
		}
		columns = append(columns, name)
	}
	rows.Close()

	if len(columns) == 0 {
		return nil, nil, fmt.Errorf("table %s has no columns", tableName)
	}

	dataRows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s ORDER BY 1", tableName))
	if err != nil {
		return nil, nil, err
	}
	defer dataRows.Close()

	for dataRows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err = dataRows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		data = append(data, row)
	}
	return data, columns, dataRows.Err()
}
