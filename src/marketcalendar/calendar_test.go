package marketcalendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func istZone(t *testing.T) *time.Location {
	t.Helper()

	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		loc = time.FixedZone("IST", 5*3600+1800)
	}
	return loc
}

// 2026-02-02 is a regular Monday trading day.
func istTime(t *testing.T, hour, minute int) time.Time {
	t.Helper()
	return time.Date(2026, 2, 2, hour, minute, 0, 0, istZone(t))
}

func TestStatusAtSessionBoundaries(t *testing.T) {
	c := New(false)

	tests := []struct {
		name     string
		at       time.Time
		expected Status
	}{
		{"before pre-market", istTime(t, 8, 59), StatusClosedOffHours},
		{"pre-market start", istTime(t, 9, 0), StatusPreMarket},
		{"last pre-market minute", istTime(t, 9, 14), StatusPreMarket},
		{"open bell", istTime(t, 9, 15), StatusOpen},
		{"mid session", istTime(t, 12, 30), StatusOpen},
		{"closing bell inclusive", istTime(t, 15, 30), StatusOpen},
		{"post-market", istTime(t, 15, 31), StatusPostMarket},
		{"post-market end", istTime(t, 16, 0), StatusClosedOffHours},
		{"evening", istTime(t, 22, 0), StatusClosedOffHours},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, c.StatusAt(tc.at))
		})
	}
}

func TestStatusAtWeekendAndHoliday(t *testing.T) {
	c := New(false)
	loc := istZone(t)

	saturday := time.Date(2026, 2, 7, 11, 0, 0, 0, loc)
	assert.Equal(t, StatusClosedWeekend, c.StatusAt(saturday))

	// Republic Day 2026 falls on a Monday.
	holiday := time.Date(2026, 1, 26, 11, 0, 0, 0, loc)
	assert.Equal(t, StatusClosedHoliday, c.StatusAt(holiday))
}

func TestStatusAtIsIdempotent(t *testing.T) {
	c := New(false)
	at := istTime(t, 10, 45)

	first := c.StatusAt(at)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, c.StatusAt(at))
	}
}

func TestStatusAtConvertsFromUTC(t *testing.T) {
	c := New(false)

	// 05:00 UTC is 10:30 IST, mid session.
	utc := time.Date(2026, 2, 2, 5, 0, 0, 0, time.UTC)
	assert.Equal(t, StatusOpen, c.StatusAt(utc))
}

func TestCanTradeAt(t *testing.T) {
	c := New(false)

	assert.True(t, c.CanTradeAt(istTime(t, 10, 0)))
	assert.False(t, c.CanTradeAt(istTime(t, 9, 5)), "pre-market does not permit trading")
	assert.False(t, c.CanTradeAt(istTime(t, 15, 45)), "post-market does not permit trading")
}

func TestCanTradeAtOverride(t *testing.T) {
	c := New(true)
	loc := istZone(t)

	sundayNight := time.Date(2026, 2, 1, 23, 0, 0, 0, loc)
	assert.True(t, c.CanTradeAt(sundayNight))
	assert.True(t, c.Override())

	// Status reporting stays truthful even when the gate is bypassed.
	assert.Equal(t, StatusClosedWeekend, c.StatusAt(sundayNight))
}

func TestNextOpenAfter(t *testing.T) {
	c := New(false)
	loc := istZone(t)

	t.Run("friday evening rolls to monday", func(t *testing.T) {
		fridayEvening := time.Date(2026, 2, 6, 16, 0, 0, 0, loc)
		next := c.NextOpenAfter(fridayEvening)
		require.Equal(t, time.Date(2026, 2, 9, 9, 15, 0, 0, loc), next)
	})

	t.Run("holiday rolls to next trading day", func(t *testing.T) {
		republicDay := time.Date(2026, 1, 26, 10, 0, 0, 0, loc)
		next := c.NextOpenAfter(republicDay)
		require.Equal(t, time.Date(2026, 1, 27, 9, 15, 0, 0, loc), next)
	})

	t.Run("early morning opens same day", func(t *testing.T) {
		earlyMonday := time.Date(2026, 2, 2, 7, 0, 0, 0, loc)
		next := c.NextOpenAfter(earlyMonday)
		require.Equal(t, time.Date(2026, 2, 2, 9, 15, 0, 0, loc), next)
	})
}

func TestStateAt(t *testing.T) {
	c := New(false)

	open := c.StateAt(istTime(t, 11, 0))
	assert.True(t, open.IsOpen)
	assert.Equal(t, StatusOpen, open.Status)
	assert.True(t, open.NextOpen.IsZero())

	closed := c.StateAt(istTime(t, 20, 0))
	assert.False(t, closed.IsOpen)
	assert.Equal(t, StatusClosedOffHours, closed.Status)
	assert.False(t, closed.NextOpen.IsZero())
	assert.NotEmpty(t, closed.Message)
}
