package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		day  string
		want string
	}{
		{"monday maps to itself", "2024-06-03", "2024-06-03"},
		{"wednesday maps back to monday", "2024-06-05", "2024-06-03"},
		{"sunday maps back six days", "2024-06-09", "2024-06-03"},
		{"saturday", "2024-06-08", "2024-06-03"},
		{"year boundary", "2025-01-01", "2024-12-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day, err := ParseDay(tt.day)
			require.NoError(t, err)
			assert.Equal(t, tt.want, FormatDay(WeekStart(day)))
		})
	}
}

func TestWeekEnd(t *testing.T) {
	day, err := ParseDay("2024-06-05")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-09", FormatDay(WeekEnd(day)))
}

func TestParseDayRejectsGarbage(t *testing.T) {
	_, err := ParseDay("06/05/2024")
	assert.Error(t, err)

	_, err = ParseDay("2024-6-5")
	assert.Error(t, err)
}

func TestDaysBetween(t *testing.T) {
	from, _ := ParseDay("2024-06-01")
	to, _ := ParseDay("2024-06-30")

	assert.Equal(t, 30, DaysBetween(from, to))
	assert.Equal(t, 1, DaysBetween(from, from))
	assert.Equal(t, 0, DaysBetween(to, from))
}

func TestEachDay(t *testing.T) {
	from, _ := ParseDay("2024-02-27")
	to, _ := ParseDay("2024-03-01")

	assert.Equal(t, []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01"}, EachDay(from, to))
}

func TestTruncateDropsClock(t *testing.T) {
	at := time.Date(2024, 6, 5, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, "2024-06-05", FormatDay(Truncate(at)))
}
