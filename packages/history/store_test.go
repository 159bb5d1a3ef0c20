package history

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testini/testini/packages/core/runner"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), DefaultFilename))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleRun() *runner.RunResult {
	return &runner.RunResult{
		Results: []*runner.CaseResult{
			{ID: "tests/test_fleet.suite::test_assign", Status: runner.StatusPassed, Duration: 120 * time.Millisecond},
			{ID: "tests/test_fleet.suite::test_remove", Status: runner.StatusFailed, Duration: 80 * time.Millisecond, Err: errors.New("exit status 1")},
			{ID: "tests/test_backup.suite::test_restore", Status: runner.StatusSkipped},
		},
		Passed:   1,
		Failed:   1,
		Skipped:  1,
		Duration: 1200 * time.Millisecond,
	}
}

func TestStore_RecordAndList(t *testing.T) {
	store := openStore(t)

	id, err := store.Record(sampleRun())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	sessions, err := store.List(10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, id, sessions[0].ID)
	assert.Equal(t, 1, sessions[0].Passed)
	assert.Equal(t, 1, sessions[0].Failed)
	assert.Equal(t, 1200*time.Millisecond, sessions[0].Duration)
}

func TestStore_RecordBackdatesStart(t *testing.T) {
	store := openStore(t)

	id, err := store.Record(sampleRun())
	require.NoError(t, err)

	sess, err := store.Session(id)
	require.NoError(t, err)
	// Session start is when the run began, one run duration ago.
	assert.WithinDuration(t, time.Now().Add(-1200*time.Millisecond), sess.StartedAt, 500*time.Millisecond)
}

func TestStore_Cases(t *testing.T) {
	store := openStore(t)

	id, err := store.Record(sampleRun())
	require.NoError(t, err)

	records, err := store.Cases(id)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, runner.StatusPassed, records[0].Status)
	assert.Equal(t, "exit status 1", records[1].Error)
	assert.Equal(t, runner.StatusSkipped, records[2].Status)
}

func TestStore_Session(t *testing.T) {
	store := openStore(t)

	id, err := store.Record(sampleRun())
	require.NoError(t, err)

	sess, err := store.Session(id)
	require.NoError(t, err)
	assert.Equal(t, id, sess.ID)

	_, err = store.Session("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown session")
}

func TestStore_ListNewestFirst(t *testing.T) {
	store := openStore(t)

	first, err := store.Record(sampleRun())
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := store.Record(sampleRun())
	require.NoError(t, err)

	sessions, err := store.List(10)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, second, sessions[0].ID)
	assert.Equal(t, first, sessions[1].ID)
}

func TestStore_Clear(t *testing.T) {
	store := openStore(t)

	_, err := store.Record(sampleRun())
	require.NoError(t, err)
	require.NoError(t, store.Clear())

	sessions, err := store.List(10)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestDurationStats(t *testing.T) {
	store := openStore(t)

	for i := 0; i < 5; i++ {
		_, err := store.Record(sampleRun())
		require.NoError(t, err)
	}

	stats, err := store.DurationStats("")
	require.NoError(t, err)
	assert.EqualValues(t, 10, stats.Samples) // skipped cases excluded
	assert.GreaterOrEqual(t, stats.P95, stats.P50)

	perCase, err := store.DurationStats("tests/test_fleet.suite::test_assign")
	require.NoError(t, err)
	assert.EqualValues(t, 5, perCase.Samples)
	assert.InDelta(t, 120*time.Millisecond, float64(perCase.P50), float64(5*time.Millisecond))
}

func TestDurationStats_Empty(t *testing.T) {
	store := openStore(t)

	_, err := store.DurationStats("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no recorded runs")
}
