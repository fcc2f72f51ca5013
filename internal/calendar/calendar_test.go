package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 14, 30, 0, 0, time.UTC)
}

func collect(today time.Time, limit int) []string {
	var out []string
	for d := range Candidates(today, limit) {
		out = append(out, d.Format(DateLayout))
	}
	return out
}

func TestPreviousTradingDay(t *testing.T) {
	tests := []struct {
		name  string
		today time.Time
		want  string
	}{
		{"friday -> thursday", date(2026, 10, 16), "2026-10-15"},
		{"monday -> friday", date(2026, 10, 19), "2026-10-16"},
		{"sunday -> friday", date(2026, 10, 18), "2026-10-16"},
		{"saturday -> friday", date(2026, 10, 17), "2026-10-16"},
		{"tuesday -> monday", date(2026, 10, 20), "2026-10-19"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PreviousTradingDay(tt.today).Format(DateLayout)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCandidates_SkipsWeekends(t *testing.T) {
	// Tuesday: Mon, Fri, Thu, Wed, Tue
	got := collect(date(2026, 10, 20), 5)
	assert.Equal(t, []string{
		"2026-10-19",
		"2026-10-16",
		"2026-10-15",
		"2026-10-14",
		"2026-10-13",
	}, got)

	for d := range Candidates(date(2026, 10, 20), 5) {
		assert.False(t, IsWeekend(d), "weekend candidate %s", d.Format(DateLayout))
	}
}

func TestCandidates_BoundedAndDistinct(t *testing.T) {
	got := collect(date(2026, 10, 18), 5)
	require.Len(t, got, 5)

	seen := make(map[string]bool)
	for _, d := range got {
		assert.False(t, seen[d], "duplicate candidate %s", d)
		seen[d] = true
	}
}

func TestCandidates_StopsEarly(t *testing.T) {
	n := 0
	for range Candidates(date(2026, 10, 16), 5) {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestCandidates_ZeroLimit(t *testing.T) {
	assert.Empty(t, collect(date(2026, 10, 16), 0))
}

func TestAdjustToWeekday(t *testing.T) {
	assert.Equal(t, "2026-10-16", AdjustToWeekday(date(2026, 10, 18)).Format(DateLayout))
	assert.Equal(t, "2026-10-14", AdjustToWeekday(date(2026, 10, 14)).Format(DateLayout))
}
