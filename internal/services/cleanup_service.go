package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/clubtoros/toros-backend/internal/metrics"
)

// StagedFileSweeper removes staged files older than a cutoff.
type StagedFileSweeper interface {
	RemoveOlderThan(cutoff time.Time) (int, error)
}

// SessionSweeper drops expired wizard sessions.
type SessionSweeper interface {
	Sweep() int
}

// ProgressPruner drops upload progress of sessions idle since a cutoff.
type ProgressPruner interface {
	RemoveOlderThan(cutoff time.Time) int
}

// CleanupService periodically removes staged attachments of abandoned
// sessions, and expired sessions when the store needs sweeping.
type CleanupService struct {
	cron     *cron.Cron
	files    StagedFileSweeper
	sessions SessionSweeper
	progress ProgressPruner
	maxAge   time.Duration
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewCleanupService creates a new CleanupService. sessions may be nil.
func NewCleanupService(files StagedFileSweeper, sessions SessionSweeper, maxAge time.Duration, m *metrics.Metrics, now func() time.Time) *CleanupService {
	if now == nil {
		now = time.Now
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &CleanupService{
		cron:     cron.New(),
		files:    files,
		sessions: sessions,
		maxAge:   maxAge,
		metrics:  m,
		now:      now,
	}
}

// WithProgress makes each sweep also drop stale upload progress.
func (s *CleanupService) WithProgress(p ProgressPruner) *CleanupService {
	s.progress = p
	return s
}

// Start schedules the sweep with a cron spec such as "@every 1h".
func (s *CleanupService) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, func() { s.RunOnce() }); err != nil {
		return fmt.Errorf("schedule cleanup %q: %w", schedule, err)
	}
	s.cron.Start()
	slog.Info("Cleanup job scheduled", "schedule", schedule, "maxAge", s.maxAge)
	return nil
}

// Stop stops the scheduler. The returned context is done once a running
// sweep has finished.
func (s *CleanupService) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce performs one sweep and returns how many files and sessions were
// removed.
func (s *CleanupService) RunOnce() (files, sessions int) {
	cutoff := s.now().Add(-s.maxAge)
	files, err := s.files.RemoveOlderThan(cutoff)
	if err != nil {
		slog.Error("Failed to sweep staged files", "error", err)
	}
	s.metrics.AddStagedFilesRemoved(files)

	if s.sessions != nil {
		sessions = s.sessions.Sweep()
	}
	progress := 0
	if s.progress != nil {
		progress = s.progress.RemoveOlderThan(cutoff)
	}
	if files > 0 || sessions > 0 || progress > 0 {
		slog.Info("Cleanup sweep finished", "stagedFiles", files, "sessions", sessions, "progress", progress)
	}
	return files, sessions
}
