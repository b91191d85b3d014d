package buffer

import (
	"testing"
	"time"

	"github.com/claude/vitalsync/internal/models"
)

func point(t time.Time, hr float64) models.HistoricalPoint {
	return models.HistoricalPoint{Timestamp: t, HeartRate: hr}
}

func TestAppendCapBound(t *testing.T) {
	ts := New(100, time.Hour)
	now := time.Now()
	for i := range 150 {
		ts.Append(point(now.Add(time.Duration(i)*time.Millisecond), float64(i)))
	}

	if ts.Len() != 100 {
		t.Fatalf("len = %d, want 100", ts.Len())
	}
	// The oldest 50 were evicted; retained points are 50..149.
	snap := ts.Snapshot()
	if snap[0].HeartRate != 50 {
		t.Errorf("oldest retained = %g, want 50", snap[0].HeartRate)
	}
	if snap[len(snap)-1].HeartRate != 149 {
		t.Errorf("newest retained = %g, want 149", snap[len(snap)-1].HeartRate)
	}
}

func TestAppendWindowBound(t *testing.T) {
	ts := New(1000, time.Hour)
	now := time.Now()
	ts.Append(point(now.Add(-2*time.Hour), 1))
	ts.Append(point(now.Add(-90*time.Minute), 2))
	ts.Append(point(now.Add(-time.Minute), 3))

	// The third append prunes both stale points.
	if ts.Len() != 1 {
		t.Fatalf("len = %d, want 1", ts.Len())
	}
	latest, ok := ts.Latest()
	if !ok || latest.HeartRate != 3 {
		t.Errorf("latest = %+v, ok = %v", latest, ok)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	ts := New(10, time.Hour)
	now := time.Now()
	ts.Append(point(now, 1))

	snap := ts.Snapshot()
	ts.Append(point(now.Add(time.Second), 2))

	if len(snap) != 1 {
		t.Fatalf("snapshot len = %d, want 1", len(snap))
	}
	snap[0].HeartRate = 99
	if latest, _ := ts.Latest(); latest.HeartRate == 99 {
		t.Error("mutating a snapshot leaked into the series")
	}
}

func TestSince(t *testing.T) {
	ts := New(10, time.Hour)
	now := time.Now()
	ts.Append(point(now.Add(-30*time.Minute), 1))
	ts.Append(point(now.Add(-10*time.Minute), 2))
	ts.Append(point(now, 3))

	got := ts.Since(now.Add(-15 * time.Minute))
	if len(got) != 2 {
		t.Fatalf("since returned %d points, want 2", len(got))
	}
	if got[0].HeartRate != 2 || got[1].HeartRate != 3 {
		t.Errorf("since points = %+v", got)
	}
}

func TestLatestEmpty(t *testing.T) {
	ts := New(0, 0) // defaults
	if _, ok := ts.Latest(); ok {
		t.Error("Latest on empty series reported ok")
	}
	if ts.Len() != 0 {
		t.Errorf("len = %d, want 0", ts.Len())
	}
}
