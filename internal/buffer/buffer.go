// Package buffer holds the bounded in-memory time series that feeds
// chart aggregation.
package buffer

import (
	"sync"
	"time"

	"github.com/claude/vitalsync/internal/models"
)

const (
	DefaultCap    = 1000
	DefaultWindow = 24 * time.Hour
)

// TimeSeries is an append-only sequence of historical points, bounded
// by a sliding age window and a maximum entry count. Appends and the
// pruning they trigger happen under one lock, so no reader ever
// observes an over-cap or stale-window state.
type TimeSeries struct {
	mu     sync.RWMutex
	points []models.HistoricalPoint
	cap    int
	window time.Duration
}

// New creates a TimeSeries. Non-positive cap or window fall back to the
// defaults.
func New(capacity int, window time.Duration) *TimeSeries {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &TimeSeries{cap: capacity, window: window}
}

// Append pushes a point, drops everything older than the window, then
// drops the oldest excess entries beyond the cap.
func (ts *TimeSeries) Append(p models.HistoricalPoint) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.points = append(ts.points, p)

	cutoff := time.Now().Add(-ts.window)
	kept := ts.points[:0]
	for _, pt := range ts.points {
		if !pt.Timestamp.Before(cutoff) {
			kept = append(kept, pt)
		}
	}
	ts.points = kept

	if excess := len(ts.points) - ts.cap; excess > 0 {
		ts.points = append(ts.points[:0], ts.points[excess:]...)
	}
}

// Snapshot returns a point-in-time copy of the series. Callers may hold
// and iterate it freely while appends continue.
func (ts *TimeSeries) Snapshot() []models.HistoricalPoint {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	out := make([]models.HistoricalPoint, len(ts.points))
	copy(out, ts.points)
	return out
}

// Since returns a copy of the points at or after the given time.
func (ts *TimeSeries) Since(t time.Time) []models.HistoricalPoint {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	var out []models.HistoricalPoint
	for _, p := range ts.points {
		if !p.Timestamp.Before(t) {
			out = append(out, p)
		}
	}
	return out
}

// Latest returns the most recent point, or false when the buffer is
// empty.
func (ts *TimeSeries) Latest() (models.HistoricalPoint, bool) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	if len(ts.points) == 0 {
		return models.HistoricalPoint{}, false
	}
	return ts.points[len(ts.points)-1], true
}

// Len reports the current number of retained points.
func (ts *TimeSeries) Len() int {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return len(ts.points)
}
