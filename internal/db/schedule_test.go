package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleDay_Lifecycle(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	_, err := d.GetScheduleDay(ctx, "2025-06-01")
	assert.ErrorIs(t, err, ErrNotFound)

	seedDay(t, d, "2025-06-01", true, [2]string{"20:00", "23:00"}, [2]string{"13:00", "16:00"})

	day, err := d.GetScheduleDay(ctx, "2025-06-01")
	require.NoError(t, err)
	assert.True(t, day.Open)
	assert.Nil(t, day.Note)
	require.Len(t, day.Windows, 2)
	assert.Equal(t, "13:00", day.Windows[0].Start)
	assert.Equal(t, "20:00", day.Windows[1].Start)

	// Upsert keeps windows and flips the open flag.
	_, err = d.UpsertScheduleDay(ctx, "2025-06-01", false, "private event")
	require.NoError(t, err)
	day, err = d.GetScheduleDay(ctx, "2025-06-01")
	require.NoError(t, err)
	assert.False(t, day.Open)
	require.NotNil(t, day.Note)
	assert.Equal(t, "private event", *day.Note)
	assert.Len(t, day.Windows, 2)
}

func TestAddServiceWindow(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	id, err := d.AddServiceWindow(ctx, "2025-06-02", "12:00", "15:00")
	require.NoError(t, err)
	assert.Positive(t, id)

	day, err := d.GetScheduleDay(ctx, "2025-06-02")
	require.NoError(t, err)
	assert.True(t, day.Open, "day created by a window insert is open")

	_, err = d.AddServiceWindow(ctx, "2025-06-02", "12:00", "15:00")
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestDeleteScheduleDay_CascadesWindows(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	seedDay(t, d, "2025-06-03", true, [2]string{"12:00", "15:00"})

	require.NoError(t, d.DeleteScheduleDay(ctx, "2025-06-03"))

	var n int
	require.NoError(t, d.QueryRowContext(ctx, "SELECT COUNT(*) FROM service_windows").Scan(&n))
	assert.Zero(t, n)

	assert.ErrorIs(t, d.DeleteScheduleDay(ctx, "2025-06-03"), ErrNotFound)
}

func TestListScheduleDays_Range(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	seedDay(t, d, "2025-06-01", true, [2]string{"12:00", "15:00"})
	seedDay(t, d, "2025-06-05", true)
	seedDay(t, d, "2025-06-10", false)

	days, err := d.ListScheduleDays(ctx, "2025-06-02", "2025-06-10")
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "2025-06-05", days[0].Date)
	assert.Equal(t, "2025-06-10", days[1].Date)
	assert.NotNil(t, days[0].Windows)

	all, err := d.ListScheduleDays(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
