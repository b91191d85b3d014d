package queue

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/claude/vitalsync/internal/models"
)

type flipProbe struct {
	mu     sync.Mutex
	online bool
}

func (p *flipProbe) Online() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online
}

func (p *flipProbe) set(v bool) {
	p.mu.Lock()
	p.online = v
	p.mu.Unlock()
}

func TestSyncerDrainsOnConnectivityReturn(t *testing.T) {
	q := openTestQueue(t)
	batch := []models.Metric{metric(models.MetricHeartRate, 70), metric(models.MetricSpO2, 98)}
	if err := q.StoreMetrics(batch); err != nil {
		t.Fatalf("storing: %v", err)
	}

	backend := &recordingBackend{}
	probe := &flipProbe{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewSyncer(q, backend, probe, time.Millisecond, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	// Offline: several poll ticks must leave the queue untouched.
	time.Sleep(20 * time.Millisecond)
	if n, _ := q.Pending(); n != 2 {
		t.Fatalf("offline pending = %d, want 2", n)
	}

	probe.set(true)

	deadline := time.Now().Add(2 * time.Second)
	for {
		if n, _ := q.Pending(); n == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("queue not drained after connectivity returned")
		}
		time.Sleep(time.Millisecond)
	}

	st := s.Status()
	if st.LastSent != 2 {
		t.Errorf("last_sent = %d, want 2", st.LastSent)
	}
	if st.LastError != "" {
		t.Errorf("last_error = %q, want empty", st.LastError)
	}
	if st.LastSync.IsZero() {
		t.Error("last_sync not recorded")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on context cancel")
	}
}
