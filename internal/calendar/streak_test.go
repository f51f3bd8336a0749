package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreak(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)
	day := func(d, h int) time.Time { return time.Date(2024, 5, d, h, 0, 0, 0, time.UTC) }

	tests := []struct {
		name string
		ts   []time.Time
		want int
	}{
		{"no entries", nil, 0},
		{"today only", []time.Time{day(10, 8)}, 1},
		{"three days through today", []time.Time{day(10, 8), day(9, 23), day(8, 1)}, 3},
		{"multiple entries same day", []time.Time{day(10, 8), day(10, 9), day(9, 10)}, 2},
		{"starts yesterday", []time.Time{day(9, 8), day(8, 8), day(7, 8)}, 3},
		{"gap breaks streak", []time.Time{day(10, 8), day(9, 8), day(7, 8)}, 2},
		{"stale entries", []time.Time{day(7, 8), day(6, 8)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Streak(tt.ts, now, time.UTC))
		})
	}
}

func TestCountByDate(t *testing.T) {
	ny, err := LoadLocation("America/New_York")
	require.NoError(t, err)

	ts := []time.Time{
		time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 10, 2, 0, 0, 0, time.UTC), // 2024-05-09 in New York
		time.Date(2024, 5, 9, 20, 0, 0, 0, time.UTC),
	}

	assert.Equal(t, map[string]int{"2024-05-10": 2, "2024-05-09": 1}, CountByDate(ts, time.UTC))
	assert.Equal(t, map[string]int{"2024-05-10": 1, "2024-05-09": 2}, CountByDate(ts, ny))
	assert.Empty(t, CountByDate(nil, time.UTC))
}

func TestStreakUsesLocalDays(t *testing.T) {
	ny, err := LoadLocation("America/New_York")
	require.NoError(t, err)

	// 2024-05-10 02:00 UTC is still 2024-05-09 in New York.
	now := time.Date(2024, 5, 10, 2, 0, 0, 0, time.UTC)
	ts := []time.Time{
		time.Date(2024, 5, 10, 1, 0, 0, 0, time.UTC), // May 9 local
		time.Date(2024, 5, 8, 20, 0, 0, 0, time.UTC), // May 8 local
	}

	assert.Equal(t, 2, Streak(ts, now, ny))
	assert.Equal(t, 0, Streak(ts[1:], now, time.UTC))
}

func TestStreakAcrossDSTChange(t *testing.T) {
	ny, err := LoadLocation("America/New_York")
	require.NoError(t, err)

	now := time.Date(2026, 3, 9, 12, 0, 0, 0, ny)
	ts := []time.Time{
		time.Date(2026, 3, 9, 9, 0, 0, 0, ny),
		time.Date(2026, 3, 8, 9, 0, 0, 0, ny),
		time.Date(2026, 3, 7, 9, 0, 0, 0, ny),
	}
	assert.Equal(t, 3, Streak(ts, now, ny))
}
