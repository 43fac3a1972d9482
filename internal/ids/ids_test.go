package ids

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	assert.Equal(t, "food_12", Encode(Food, 12))
	assert.Equal(t, "wine_3", Encode(Wine, 3))
	assert.Equal(t, "resv_1", Encode(Reservation, 1))
	assert.Equal(t, "lead_40", Encode(Lead, 40))
	assert.Equal(t, "evt_7", Encode(Event, 7))
}

func TestDecode(t *testing.T) {
	id, err := Decode(Reservation, "resv_42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	tests := []struct {
		name   string
		kind   Kind
		public string
	}{
		{"wrong kind", Reservation, "evt_42"},
		{"no separator", Reservation, "resv42"},
		{"empty suffix", Reservation, "resv_"},
		{"non numeric", Reservation, "resv_abc"},
		{"signed", Reservation, "resv_+4"},
		{"negative", Reservation, "resv_-4"},
		{"zero", Event, "evt_0"},
		{"unknown prefix", Food, "dish_1"},
		{"overflow", Lead, "lead_99999999999999999999"},
		{"empty", Lead, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.kind, tt.public)
			assert.True(t, errors.Is(err, ErrMalformed), "got %v", err)
		})
	}
}

func TestParse(t *testing.T) {
	kind, id, err := Parse("wine_9")
	require.NoError(t, err)
	assert.Equal(t, Wine, kind)
	assert.Equal(t, int64(9), id)
}
