package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"7pm", "19:00"},
		{"7:30pm", "19:30"},
		{"7:30 PM", "19:30"},
		{"12pm", "12:00"},
		{"12am", "00:00"},
		{"12:15am", "00:15"},
		{"1am", "01:00"},
		{"19:30", "19:30"},
		{"9:05", "09:05"},
		{"00:00", "00:00"},
		{" 23:59 ", "23:59"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeTime(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeTimeRejects(t *testing.T) {
	for _, in := range []string{"", "noon", "13pm", "0am", "7:60pm", "24:00", "19:7", "7", "7:30xm"} {
		t.Run(in, func(t *testing.T) {
			_, err := NormalizeTime(in)
			assert.ErrorIs(t, err, ErrInvalidTime)
		})
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2026-02-28")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-28", got)

	for _, in := range []string{"2026-2-28", "28/02/2026", "2026-02-30", "2026-13-01", ""} {
		_, err := ParseDate(in)
		assert.ErrorIs(t, err, ErrInvalidDate, in)
	}
}

func TestValidScrimID(t *testing.T) {
	assert.True(t, validScrimID("123456"))
	assert.False(t, validScrimID("12345"))
	assert.False(t, validScrimID("12345a"))
	assert.False(t, validScrimID("1234567"))
	assert.False(t, validScrimID("-12345"))
	assert.False(t, validScrimID("1234.5"))
	assert.False(t, validScrimID(""))
}
