// Package export renders database tables as an XLSX workbook.
package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// TableSource provides the tables to export.
type TableSource interface {
	GetTableNames(ctx context.Context) ([]string, error)
	GetTableData(ctx context.Context, tableName string) ([]map[string]any, []string, error)
}

// Workbook wraps an excelize file that is filled one sheet at a time.
type Workbook struct {
	file         *excelize.File
	currentSheet string
	currentRow   int
}

func NewWorkbook() *Workbook {
	return &Workbook{file: excelize.NewFile()}
}

// AddSheet starts a new sheet and makes it current.
func (w *Workbook) AddSheet(name string) error {
	// Excel limit.
	if len(name) > 31 {
		name = name[:31]
	}

	if w.currentSheet == "" {
		if err := w.file.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("rename sheet %s: %w", name, err)
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}

	w.currentSheet = name
	w.currentRow = 1
	return nil
}

// WriteHeader writes bold column headers to the current sheet.
func (w *Workbook) WriteHeader(columns []string) error {
	row := make([]any, len(columns))
	for i, c := range columns {
		row[i] = c
	}
	if err := w.WriteRow(row); err != nil {
		return err
	}

	style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil && len(columns) > 0 {
		start, _ := excelize.CoordinatesToCellName(1, w.currentRow-1)
		end, _ := excelize.CoordinatesToCellName(len(columns), w.currentRow-1)
		_ = w.file.SetCellStyle(w.currentSheet, start, end, style)
	}
	return nil
}

// WriteRow writes one data row to the current sheet.
func (w *Workbook) WriteRow(row []any) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}
	cell, err := excelize.CoordinatesToCellName(1, w.currentRow)
	if err != nil {
		return err
	}
	if err := w.file.SetSheetRow(w.currentSheet, cell, &row); err != nil {
		return err
	}
	w.currentRow++
	return nil
}

func (w *Workbook) Write(out io.Writer) error {
	return w.file.Write(out)
}

func (w *Workbook) Close() error {
	return w.file.Close()
}

// Tables writes every table of src to out as one sheet per table.
func Tables(ctx context.Context, src TableSource, out io.Writer) error {
	names, err := src.GetTableNames(ctx)
	if err != nil {
		return fmt.Errorf("list tables: %w", err)
	}

	wb := NewWorkbook()
	defer wb.Close()

	for _, name := range names {
		rows, columns, err := src.GetTableData(ctx, name)
		if err != nil {
			return fmt.Errorf("read table %s: %w", name, err)
		}
		if err := wb.AddSheet(name); err != nil {
			return err
		}
		if err := wb.WriteHeader(columns); err != nil {
			return err
		}
		for _, r := range rows {
			values := make([]any, len(columns))
			for i, c := range columns {
				values[i] = cellValue(r[c])
			}
			if err := wb.WriteRow(values); err != nil {
				return err
			}
		}
	}
	return wb.Write(out)
}

// Filename returns the download name for an export taken at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("taberna_%s.xlsx", t.UTC().Format("20060102_150405"))
}

func cellValue(v any) any {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	case []byte:
		return string(x)
	default:
		return x
	}
}
