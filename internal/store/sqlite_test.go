package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uls-digital/migrate-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_CreateAndGetRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "jdoe", "/data/batch-2024-06")
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "jdoe", got.Operator)
	assert.Equal(t, "/data/batch-2024-06", got.BatchDir)
	assert.Equal(t, model.RunStatusRunning, got.Status)
	assert.Nil(t, got.Summary)
}

func TestSQLite_GetRun_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetRun(context.Background(), "nope")
	require.Error(t, err)
}

func TestSQLite_CompleteRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "jdoe", "/data/batch")
	require.NoError(t, err)

	summary := &model.RunSummary{Files: 3, Ready: 120, Excluded: 4, Warned: 7, Skipped: 2}
	require.NoError(t, st.CompleteRun(ctx, run.ID, model.RunStatusComplete, summary, ""))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Summary)
	assert.Equal(t, 120, got.Summary.Ready)
	assert.Equal(t, 4, got.Summary.Excluded)
	assert.Empty(t, got.Error)
}

func TestSQLite_CompleteRun_WithError(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "jdoe", "/data/batch")
	require.NoError(t, err)

	require.NoError(t, st.CompleteRun(ctx, run.ID, model.RunStatusFailed, nil, "read source: permission denied"))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, "read source: permission denied", got.Error)
	assert.Nil(t, got.Summary)
}

func TestSQLite_CompleteRun_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.CompleteRun(context.Background(), "absent", model.RunStatusComplete, nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_ListRuns_Filters(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	a, err := st.CreateRun(ctx, "alice", "/data/a")
	require.NoError(t, err)
	_, err = st.CreateRun(ctx, "bob", "/data/b")
	require.NoError(t, err)
	require.NoError(t, st.CompleteRun(ctx, a.ID, model.RunStatusCancelled, nil, ""))

	all, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	cancelled, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusCancelled})
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, a.ID, cancelled[0].ID)

	byOp, err := st.ListRuns(ctx, RunFilter{Operator: "bob"})
	require.NoError(t, err)
	require.Len(t, byOp, 1)
	assert.Equal(t, "bob", byOp[0].Operator)

	limited, err := st.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
