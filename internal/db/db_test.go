package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := NewDB(filepath.Join(t.TempDir(), "taberna.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func seedDay(t *testing.T, d *DB, date string, open bool, windows ...[2]string) {
	t.Helper()
	ctx := context.Background()
	_, err := d.UpsertScheduleDay(ctx, date, open, "")
	require.NoError(t, err)
	for _, w := range windows {
		_, err := d.AddServiceWindow(ctx, date, w[0], w[1])
		require.NoError(t, err)
	}
}

func zerologNop() zerolog.Logger { return zerolog.Nop() }
