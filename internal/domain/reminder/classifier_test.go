package reminder_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/library-api/internal/domain/reminder"
)

func TestClassifyUTC(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		dueAt time.Time
		want  reminder.Bucket
	}{
		{"due in two days early morning", time.Date(2026, 3, 12, 0, 5, 0, 0, time.UTC), reminder.BucketDueSoon},
		{"due in two days late evening", time.Date(2026, 3, 12, 23, 59, 0, 0, time.UTC), reminder.BucketDueSoon},
		{"due tomorrow", time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC), reminder.BucketNone},
		{"due in three days", time.Date(2026, 3, 13, 12, 0, 0, 0, time.UTC), reminder.BucketNone},
		{"due today", time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC), reminder.BucketNone},
		{"due yesterday", time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC), reminder.BucketNone},
		{"due two days ago", time.Date(2026, 3, 8, 23, 0, 0, 0, time.UTC), reminder.BucketLate},
		{"due three days ago", time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC), reminder.BucketLate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reminder.Classify(now, tt.dueAt, time.UTC))
		})
	}
}

func TestClassifyUsesLocalCalendarDays(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 09:00 local on March 10th.
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, loc)
	// 23:30 local on March 12th is already March 13th in UTC.
	dueAt := time.Date(2026, 3, 12, 23, 30, 0, 0, loc)

	assert.Equal(t, reminder.BucketDueSoon, reminder.Classify(now, dueAt, loc))
	assert.Equal(t, reminder.BucketNone, reminder.Classify(now, dueAt, time.UTC))
}

func TestClassifyNilLocationDefaultsToUTC(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, reminder.BucketDueSoon, reminder.Classify(now, now.AddDate(0, 0, 2), nil))
}

func TestBucketString(t *testing.T) {
	assert.Equal(t, "due_soon", reminder.BucketDueSoon.String())
	assert.Equal(t, "late", reminder.BucketLate.String())
	assert.Equal(t, "none", reminder.BucketNone.String())
}
