package crontab

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/library-api/internal/domain/reminder"
)

type mockRunner struct {
	RunFunc func(ctx context.Context, now time.Time) (*reminder.RunReport, error)
}

func (m *mockRunner) Run(ctx context.Context, now time.Time) (*reminder.RunReport, error) {
	return m.RunFunc(ctx, now)
}

func TestDueInConfiguredLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	c := NewCrontab(&mockRunner{}, Config{Location: loc, Hour: 9, Minute: 0}, zerolog.Nop())

	// 13:00 UTC is 09:00 EDT in June.
	assert.True(t, c.Due(time.Date(2026, 6, 1, 13, 0, 30, 0, time.UTC)))
	assert.False(t, c.Due(time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)))
	assert.False(t, c.Due(time.Date(2026, 6, 1, 13, 1, 0, 0, time.UTC)))
	// 14:00 UTC is 09:00 EST in January.
	assert.True(t, c.Due(time.Date(2026, 1, 15, 14, 0, 0, 0, time.UTC)))
}

func TestTickRunsOnlyAtConfiguredMinute(t *testing.T) {
	var runs []time.Time
	runner := &mockRunner{RunFunc: func(ctx context.Context, now time.Time) (*reminder.RunReport, error) {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		runs = append(runs, now)
		return &reminder.RunReport{}, nil
	}}
	c := NewCrontab(runner, Config{Location: time.UTC, Hour: 9, Minute: 0, Timeout: time.Minute}, zerolog.Nop())

	c.now = func() time.Time { return time.Date(2026, 3, 10, 8, 59, 0, 0, time.UTC) }
	assert.False(t, c.tick(context.Background()))

	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return at }
	assert.True(t, c.tick(context.Background()))
	require.Len(t, runs, 1)
	assert.Equal(t, at, runs[0])
}

func TestTickSkipsWhileRunning(t *testing.T) {
	c := NewCrontab(&mockRunner{RunFunc: func(context.Context, time.Time) (*reminder.RunReport, error) {
		t.Fatal("must not run while another run is active")
		return nil, nil
	}}, Config{Hour: 9}, zerolog.Nop())
	c.now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }
	c.running.Store(true)

	assert.False(t, c.tick(context.Background()))
}

func TestTickSurvivesRunError(t *testing.T) {
	c := NewCrontab(&mockRunner{RunFunc: func(context.Context, time.Time) (*reminder.RunReport, error) {
		return nil, errors.New("db down")
	}}, Config{Hour: 9}, zerolog.Nop())
	c.now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }

	assert.True(t, c.tick(context.Background()))
	assert.False(t, c.running.Load())
}

func TestRunStopsWithContext(t *testing.T) {
	c := NewCrontab(&mockRunner{}, Config{Hour: 9}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("crontab did not stop")
	}
}
