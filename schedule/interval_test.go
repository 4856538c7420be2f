package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/tact/errors"
)

func TestParseInterval(t *testing.T) {
	tests := []struct {
		descriptor string
		want       time.Duration
	}{
		{"daily", 24 * time.Hour},
		{"weekly", 7 * 24 * time.Hour},
		{"hourly", time.Hour},
		{"every 15 minutes", 15 * time.Minute},
		{"every 1 minute", time.Minute},
		{"every 2 hours", 2 * time.Hour},
		{"every 1 hour", time.Hour},
		{"every 3 days", 3 * 24 * time.Hour},
		{"every 1 day", 24 * time.Hour},
		{"DAILY", 24 * time.Hour},
		{"  Every 10 Minutes  ", 10 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.descriptor, func(t *testing.T) {
			got, err := ParseInterval(tt.descriptor)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseIntervalUnparsable(t *testing.T) {
	for _, descriptor := range []string{
		"",
		"sometimes",
		"every minute",          // missing count
		"every five minutes",    // non-numeric count
		"every 15 fortnights",   // unknown unit
		"every 15",              // missing unit
		"daily at 9am",          // trailing garbage
		"every -5 minutes",      // negative count
		"monthly",               // unrecognized keyword
	} {
		t.Run(descriptor, func(t *testing.T) {
			_, err := ParseInterval(descriptor)
			require.Error(t, err)
			assert.True(t, errors.IsUnparsableSchedule(err))
		})
	}
}

func TestNextRunFuture(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ref := now.Add(-10 * time.Minute)

	next := NextRun("hourly", ref, now)
	require.NotNil(t, next)
	assert.Equal(t, ref.Add(time.Hour), *next)
	assert.True(t, next.After(now))
}

func TestNextRunCatchUp(t *testing.T) {
	// Reference far enough back that ref+interval has already passed;
	// the result re-bases from now instead of replaying missed slots.
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ref := now.Add(-3 * time.Hour)

	next := NextRun("hourly", ref, now)
	require.NotNil(t, next)
	assert.Equal(t, now.Add(time.Hour), *next)
}

func TestNextRunExactBoundary(t *testing.T) {
	// ref+interval landing exactly on now counts as passed
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ref := now.Add(-time.Hour)

	next := NextRun("hourly", ref, now)
	require.NotNil(t, next)
	assert.Equal(t, now.Add(time.Hour), *next)
}

func TestNextRunUnparsable(t *testing.T) {
	now := time.Now()
	assert.Nil(t, NextRun("whenever", now, now))
}
