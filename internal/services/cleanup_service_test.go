package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubtoros/toros-backend/internal/metrics"
	"github.com/clubtoros/toros-backend/internal/storage"
	"github.com/clubtoros/toros-backend/internal/wizard"
)

func TestCleanupRunOnce(t *testing.T) {
	dir := t.TempDir()
	spool, err := storage.NewSpool(dir, 0)
	require.NoError(t, err)

	oldRef, _, err := spool.Stage(strings.NewReader("old"))
	require.NoError(t, err)
	freshRef, _, err := spool.Stage(strings.NewReader("fresh"))
	require.NoError(t, err)
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, oldRef), old, old))

	sessions := wizard.NewInMemorySessionStore(time.Hour)
	require.NoError(t, sessions.Save(context.Background(), &wizard.Session{ID: "stale", UpdatedAt: time.Now().Add(-2 * time.Hour)}))
	require.NoError(t, sessions.Save(context.Background(), &wizard.Session{ID: "live", UpdatedAt: time.Now()}))

	m := metrics.NewNop()
	svc := NewCleanupService(spool, sessions, 24*time.Hour, m, nil)
	files, swept := svc.RunOnce()

	assert.Equal(t, 1, files)
	assert.Equal(t, 1, swept)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StagedFilesRemoved))
	_, err = spool.Read(freshRef)
	assert.NoError(t, err)
	_, err = spool.Read(oldRef)
	assert.Error(t, err)
}

func TestCleanupWithoutSessionSweeper(t *testing.T) {
	spool, err := storage.NewSpool(t.TempDir(), 0)
	require.NoError(t, err)

	files, sessions := NewCleanupService(spool, nil, time.Hour, nil, nil).RunOnce()
	assert.Zero(t, files)
	assert.Zero(t, sessions)
}

func TestCleanupStartRejectsBadSchedule(t *testing.T) {
	spool, err := storage.NewSpool(t.TempDir(), 0)
	require.NoError(t, err)

	svc := NewCleanupService(spool, nil, time.Hour, nil, nil)
	assert.Error(t, svc.Start("every now and then"))

	require.NoError(t, svc.Start("@every 1h"))
	<-svc.Stop().Done()
}

func TestCleanupDropsFinishedProgress(t *testing.T) {
	spool, err := storage.NewSpool(t.TempDir(), 0)
	require.NoError(t, err)

	clock := time.Date(2025, time.August, 1, 10, 0, 0, 0, time.UTC)
	progress := NewProgressTracker()
	progress.now = func() time.Time { return clock }
	progress.Begin("done")
	progress.Report("done", "foto_jugador", "Foto del jugador", 1)
	progress.Finish("done")
	progress.Begin("running")

	clock = clock.Add(48 * time.Hour)
	progress.Begin("recent")
	progress.Finish("recent")

	svc := NewCleanupService(spool, nil, 24*time.Hour, nil, func() time.Time { return clock }).WithProgress(progress)
	svc.RunOnce()

	assert.Empty(t, progress.Get("done").Slots)
	assert.False(t, progress.Get("done").Uploading)
	assert.True(t, progress.Get("running").Uploading)
	progress.mu.RLock()
	defer progress.mu.RUnlock()
	assert.NotContains(t, progress.sessions, "done")
	assert.Contains(t, progress.sessions, "recent")
}
