package queue

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/vitalsync/internal/transmit"
)

// SyncStatus is a snapshot of the background sync state.
type SyncStatus struct {
	Pending   int       `json:"pending"`
	LastSync  time.Time `json:"last_sync,omitempty"`
	LastSent  int       `json:"last_sent"`
	LastError string    `json:"last_error,omitempty"`
}

// Syncer drains the offline queue when connectivity returns. The queue
// mutex serializes it against the live ingestion path, so a drain and a
// fallback store never interleave.
type Syncer struct {
	queue    *Queue
	backend  transmit.Backend
	probe    transmit.Probe
	interval time.Duration
	log      *slog.Logger

	mu       sync.Mutex
	lastSync time.Time
	lastSent int
	lastErr  error
}

// NewSyncer creates a Syncer polling at the given interval (default 30s).
func NewSyncer(q *Queue, backend transmit.Backend, probe transmit.Probe, interval time.Duration, log *slog.Logger) *Syncer {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Syncer{queue: q, backend: backend, probe: probe, interval: interval, log: log}
}

// Run polls until the context is cancelled.
func (s *Syncer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.syncOnce(ctx)
		}
	}
}

func (s *Syncer) syncOnce(ctx context.Context) {
	pending, err := s.queue.Pending()
	if err != nil {
		s.log.Error("sync: pending count failed", "error", err)
		return
	}
	if pending == 0 || !s.probe.Online() {
		return
	}

	sent, err := s.queue.Drain(ctx, s.backend)

	s.mu.Lock()
	s.lastSync = time.Now()
	s.lastSent = sent
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.log.Warn("sync: drain stopped", "sent", sent, "error", err)
		return
	}
	if sent > 0 {
		s.log.Info("sync: queue drained", "sent", sent)
	}
}

// Status reports the current pending count and the last drain outcome.
func (s *Syncer) Status() SyncStatus {
	pending, err := s.queue.Pending()

	s.mu.Lock()
	defer s.mu.Unlock()

	st := SyncStatus{
		Pending:  pending,
		LastSync: s.lastSync,
		LastSent: s.lastSent,
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	if err != nil {
		st.LastError = err.Error()
	}
	return st
}
