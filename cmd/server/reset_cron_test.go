package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berkedogan/tasks-api/internal/platform/logger"
	"github.com/berkedogan/tasks-api/internal/service"
)

type fakeResetRunner struct {
	calls int
	err   error
}

func (f *fakeResetRunner) Reset(ctx context.Context) (*service.ResetResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &service.ResetResult{Hidden: 2, Recycled: 1, Rescheduled: 1}, nil
}

func TestNewResetCron_EmptySchedule(t *testing.T) {
	c, err := newResetCron("", &fakeResetRunner{}, nil)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestNewResetCron_InvalidSchedule(t *testing.T) {
	_, err := newResetCron("every morning", &fakeResetRunner{}, nil)
	assert.Error(t, err)
}

func TestNewResetCron_RunsReset(t *testing.T) {
	var buf bytes.Buffer
	runner := &fakeResetRunner{}

	c, err := newResetCron("0 0 * * *", runner, logger.New(&buf, "info"))
	require.NoError(t, err)
	require.NotNil(t, c)

	entries := c.Entries()
	require.Len(t, entries, 1)
	entries[0].Job.Run()

	assert.Equal(t, 1, runner.calls)
	assert.Contains(t, buf.String(), "scheduled reset completed")
	assert.Contains(t, buf.String(), `"hidden":2`)
}

func TestRunScheduledReset_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	runner := &fakeResetRunner{err: errors.New("connection refused")}

	runScheduledReset(runner, logger.New(&buf, "info"))

	assert.Equal(t, 1, runner.calls)
	assert.Contains(t, buf.String(), "scheduled reset failed")
}
