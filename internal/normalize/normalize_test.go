package normalize

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frozen(t *testing.T, at time.Time) {
	t.Helper()
	SetClock(clockwork.NewFakeClockAt(at))
	t.Cleanup(func() { SetClock(nil) })
}

func TestDateTime(t *testing.T) {
	frozen(t, time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))

	tests := []struct {
		name     string
		dateText string
		timeText string
		wantDate string
		wantTime string
	}{
		{
			name:     "weekday month day year with trailing time",
			dateText: "Sunday, Feb 01, 2026 7:00p",
			wantDate: "2026-02-01",
			wantTime: "7:00 PM",
		},
		{
			name:     "month day year",
			dateText: "February 1, 2026",
			wantDate: "2026-02-01",
		},
		{
			name:     "abbreviated month",
			dateText: "Feb 1, 2026",
			wantDate: "2026-02-01",
		},
		{
			name:     "slash format short year",
			dateText: "02/15/26",
			wantDate: "2026-02-15",
		},
		{
			name:     "slash format full year",
			dateText: "2/15/2026",
			wantDate: "2026-02-15",
		},
		{
			name:     "day first",
			dateText: "15 February 2026",
			wantDate: "2026-02-15",
		},
		{
			name:     "iso date",
			dateText: "2026-02-15",
			wantDate: "2026-02-15",
		},
		{
			name:     "separate time text",
			dateText: "Feb 1, 2026",
			timeText: "Doors at 6:30pm",
			wantDate: "2026-02-01",
			wantTime: "6:30 PM",
		},
		{
			name:     "morning time",
			dateText: "Feb 1, 2026 10:00am",
			wantDate: "2026-02-01",
			wantTime: "10:00 AM",
		},
		{
			name:     "yearless future date assumes current year",
			dateText: "Mar 20",
			wantDate: "2026-03-20",
		},
		{
			name:     "yearless past date rolls to next year",
			dateText: "Jan 2",
			wantDate: "2027-01-02",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := DateTime(tt.dateText, tt.timeText, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDate, res.Date.Format("2006-01-02"))
			assert.Equal(t, tt.wantTime, res.Time)
			assert.True(t, res.EndDate.IsZero())
		})
	}
}

func TestDateTimeISOOffsetKeepsWallDate(t *testing.T) {
	// The calendar date a site prints is the date in its own zone; an
	// explicit offset must not shift it.
	for _, input := range []string{
		"2026-02-01T19:00:00-05:00",
		"2026-02-01T19:00:00+09:00",
		"2026-02-01T19:00:00Z",
	} {
		res, err := DateTime(input, "", nil)
		require.NoError(t, err, input)
		assert.Equal(t, "2026-02-01", res.Date.Format("2006-01-02"), input)
		assert.Equal(t, "7:00 PM", res.Time, input)
	}
}

func TestDateTimeRange(t *testing.T) {
	frozen(t, time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))

	res, err := DateTime("Feb 1, 2026 - Feb 3, 2026", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "2026-02-01", res.Date.Format("2006-01-02"))
	assert.Equal(t, "2026-02-03", res.EndDate.Format("2006-01-02"))

	// A span crossing the year boundary rolls the end date forward.
	res, err = DateTime("Dec 30 - Jan 2", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "2026-12-30", res.Date.Format("2006-01-02"))
	assert.Equal(t, "2027-01-02", res.EndDate.Format("2006-01-02"))
}

func TestDateTimeUnparsed(t *testing.T) {
	for _, input := range []string{"", "every other Thursday", "soon", "TBD"} {
		_, err := DateTime(input, "", nil)
		require.Error(t, err, "input %q", input)
		assert.True(t, errors.Is(err, ErrUnparsedDate), "input %q", input)
	}
}

func TestDateTimeCustomFormats(t *testing.T) {
	// A source-specific list is honored and nothing else is attempted.
	res, err := DateTime("01.02.2026", "", []string{"02.01.2006"})
	require.NoError(t, err)
	assert.Equal(t, "2026-02-01", res.Date.Format("2006-01-02"))

	_, err = DateTime("Feb 1, 2026", "", []string{"02.01.2006"})
	assert.True(t, errors.Is(err, ErrUnparsedDate))
}
