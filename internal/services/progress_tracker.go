package services

import (
	"sync"
	"time"
)

// UploadProgress is the upload state of one submission.
type UploadProgress struct {
	Uploading bool               `json:"uploading"`
	Current   string             `json:"current_upload,omitempty"`
	Slots     map[string]float64 `json:"slots"`
}

// ProgressTracker publishes upload progress per wizard session. It is read by
// the progress endpoint while the submission writes to it.
type ProgressTracker struct {
	mu       sync.RWMutex
	sessions map[string]UploadProgress
	touched  map[string]time.Time
	now      func() time.Time
}

// NewProgressTracker creates an empty tracker.
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{
		sessions: make(map[string]UploadProgress),
		touched:  make(map[string]time.Time),
		now:      time.Now,
	}
}

// Begin resets the progress of a session.
func (t *ProgressTracker) Begin(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[sessionID] = UploadProgress{Uploading: true, Slots: map[string]float64{}}
	t.touched[sessionID] = t.now()
}

// Report records the fraction transferred for slot and makes label the
// current upload.
func (t *ProgressTracker) Report(sessionID, slot, label string, fraction float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.sessions[sessionID]
	if !ok {
		p = UploadProgress{Uploading: true, Slots: map[string]float64{}}
	}
	p.Current = label
	p.Slots[slot] = fraction
	t.sessions[sessionID] = p
	t.touched[sessionID] = t.now()
}

// Finish clears the current upload label and keeps the last fractions.
func (t *ProgressTracker) Finish(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.sessions[sessionID]
	if !ok {
		return
	}
	p.Uploading = false
	p.Current = ""
	t.sessions[sessionID] = p
	t.touched[sessionID] = t.now()
}

// RemoveOlderThan drops finished sessions last updated before cutoff and
// returns how many were dropped. Running uploads are kept.
func (t *ProgressTracker) RemoveOlderThan(cutoff time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	removed := 0
	for id, p := range t.sessions {
		if p.Uploading || !t.touched[id].Before(cutoff) {
			continue
		}
		delete(t.sessions, id)
		delete(t.touched, id)
		removed++
	}
	return removed
}

// Get returns a copy of the session's progress.
func (t *ProgressTracker) Get(sessionID string) UploadProgress {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p := t.sessions[sessionID]
	slots := make(map[string]float64, len(p.Slots))
	for k, v := range p.Slots {
		slots[k] = v
	}
	p.Slots = slots
	return p
}
