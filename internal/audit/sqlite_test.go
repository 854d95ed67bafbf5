package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigil-gate/vigil/internal/model"
)

func TestSQLiteRecorder_RecordAndRecent(t *testing.T) {
	rec, err := NewSQLiteRecorder(":memory:")
	require.NoError(t, err)
	defer func() { _ = rec.Close() }()

	ctx := context.Background()
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	for i, raw := range []string{"first", "second", "third"} {
		r := sampleRecord()
		r.ID = raw
		r.Raw = raw
		r.At = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, rec.Record(ctx, r))
	}

	got, err := rec.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Most recent first.
	assert.Equal(t, "third", got[0].Raw)
	assert.Equal(t, "second", got[1].Raw)

	assert.Equal(t, model.ActionScanAppointment, got[0].Action)
	assert.Equal(t, model.CategoryAppointment, got[0].Category)
	assert.Equal(t, model.RoleVigile, got[0].Operator.Role)
	assert.True(t, got[0].Granted)
}

func TestSQLiteRecorder_RecentDefaultLimit(t *testing.T) {
	rec, err := NewSQLiteRecorder(":memory:")
	require.NoError(t, err)
	defer func() { _ = rec.Close() }()

	ctx := context.Background()
	for i := 0; i < 15; i++ {
		r := sampleRecord()
		r.At = time.Now().Add(time.Duration(i) * time.Second)
		require.NoError(t, rec.Record(ctx, r))
	}

	got, err := rec.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, got, 10)
}

func TestSQLiteRecorder_EmptySpool(t *testing.T) {
	rec, err := NewSQLiteRecorder(":memory:")
	require.NoError(t, err)
	defer func() { _ = rec.Close() }()

	got, err := rec.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteRecorder_ZeroTimestampDefaults(t *testing.T) {
	rec, err := NewSQLiteRecorder(":memory:")
	require.NoError(t, err)
	defer func() { _ = rec.Close() }()

	r := sampleRecord()
	r.At = time.Time{}
	require.NoError(t, rec.Record(context.Background(), r))

	got, err := rec.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].At.IsZero())
}

func TestSQLiteRecorder_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "audit.db")

	rec, err := NewSQLiteRecorder(dbPath)
	require.NoError(t, err)
	defer func() { _ = rec.Close() }()

	require.NoError(t, rec.Record(context.Background(), sampleRecord()))

	got, err := rec.Recent(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
