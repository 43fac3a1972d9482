package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReservationStatus(t *testing.T) {
	tests := []struct {
		status   ReservationStatus
		active   bool
		terminal bool
	}{
		{StatusPending, true, false},
		{StatusConfirmed, true, false},
		{StatusCancelled, false, true},
		{StatusRejected, false, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.active, tt.status.IsActive())
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
			assert.True(t, tt.status.Valid())
		})
	}
	assert.False(t, ReservationStatus("pending").Valid())
}
