package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsMarketOpen(t *testing.T) {
	ny := GetMarketTimeLocation()

	tests := []struct {
		name string
		at   time.Time
		open bool
	}{
		{"mid-session tuesday", time.Date(2025, 6, 3, 11, 0, 0, 0, ny), true},
		{"opening minute", time.Date(2025, 6, 3, 9, 30, 0, 0, ny), true},
		{"one minute before open", time.Date(2025, 6, 3, 9, 29, 0, 0, ny), false},
		{"closing bell is closed", time.Date(2025, 6, 3, 16, 0, 0, 0, ny), false},
		{"saturday midday", time.Date(2025, 6, 7, 12, 0, 0, 0, ny), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.open, IsMarketOpen(tt.at))
		})
	}
}

func TestIsWeekend(t *testing.T) {
	ny := GetMarketTimeLocation()
	assert.True(t, IsWeekend(time.Date(2025, 6, 7, 10, 0, 0, 0, ny)))
	assert.True(t, IsWeekend(time.Date(2025, 6, 8, 10, 0, 0, 0, ny)))
	assert.False(t, IsWeekend(time.Date(2025, 6, 9, 10, 0, 0, 0, ny)))
}

func TestTruncateToDay(t *testing.T) {
	ny := GetMarketTimeLocation()
	got := TruncateToDay(time.Date(2025, 6, 3, 15, 42, 7, 999, ny))
	assert.Equal(t, time.Date(2025, 6, 3, 0, 0, 0, 0, ny), got)
	assert.Equal(t, ny, got.Location())
}
