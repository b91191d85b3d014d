// Package transmit decides where a batch of mapped metrics goes: the
// backend when the network is up, the offline queue when it is not, and
// the offline queue as fallback when a send fails.
package transmit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/vitalsync/internal/models"
)

// Backend submits metric batches to the remote metrics endpoint.
type Backend interface {
	SubmitBatch(ctx context.Context, metrics []models.Metric) (*models.BatchResult, error)
}

// Store persists metrics locally until connectivity returns.
type Store interface {
	StoreMetrics(metrics []models.Metric) error
}

// Probe reports current network reachability.
type Probe interface {
	Online() bool
}

// Status tags a routing outcome.
type Status string

const (
	// StatusSent means the backend accepted the batch.
	StatusSent Status = "sent"
	// StatusQueued means the batch was persisted to the offline queue.
	StatusQueued Status = "queued"
	// StatusNoValidMetrics means the caller handed over an empty batch;
	// no network or storage call was made.
	StatusNoValidMetrics Status = "no_valid_metrics"
)

// Result describes what happened to a batch.
type Result struct {
	Status  Status              `json:"status"`
	Backend *models.BatchResult `json:"backend,omitempty"`
	Queued  int                 `json:"queued,omitempty"`

	// Requeued marks a batch that landed in the offline queue after a
	// failed send. If the backend accepted part of the batch before
	// failing, a later drain may double-count those entries; the router
	// flags this instead of de-duplicating.
	Requeued bool `json:"requeued,omitempty"`
}

// TransportError wraps a failure that never reached the backend.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transport: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// RejectedError carries a backend rejection (HTTP 4xx/5xx) with the
// response detail, so callers can tell "never sent" from "refused".
type RejectedError struct {
	StatusCode int
	Detail     string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("backend rejected batch (status %d): %s", e.StatusCode, e.Detail)
}

// Router routes metric batches. All collaborators are injected; there
// is no ambient state.
type Router struct {
	backend Backend
	store   Store
	probe   Probe
	timeout time.Duration
	log     *slog.Logger
}

// NewRouter creates a Router. timeout bounds each backend call; a
// non-positive value falls back to 30s.
func NewRouter(backend Backend, store Store, probe Probe, timeout time.Duration, log *slog.Logger) *Router {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Router{backend: backend, store: store, probe: probe, timeout: timeout, log: log}
}

// Send routes one batch. An empty batch returns the no_valid_metrics
// sentinel without touching the network or the queue. On a failed send
// the batch is persisted before the error is propagated, so no data is
// lost; a failed persist after a failed send is the one genuinely lossy
// path and is logged at error level.
func (r *Router) Send(ctx context.Context, metrics []models.Metric) (Result, error) {
	if len(metrics) == 0 {
		return Result{Status: StatusNoValidMetrics}, nil
	}

	if !r.probe.Online() {
		if err := r.store.StoreMetrics(metrics); err != nil {
			r.log.Error("offline store failed, batch lost", "count", len(metrics), "error", err)
			return Result{}, fmt.Errorf("storing offline batch: %w", err)
		}
		r.log.Info("offline, batch queued", "count", len(metrics))
		return Result{Status: StatusQueued, Queued: len(metrics)}, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.backend.SubmitBatch(callCtx, metrics)
	if err == nil {
		return Result{Status: StatusSent, Backend: res}, nil
	}

	var rejected *RejectedError
	if errors.As(err, &rejected) {
		r.log.Warn("backend rejected batch, queueing for retry",
			"count", len(metrics), "status", rejected.StatusCode, "detail", rejected.Detail)
	} else {
		r.log.Warn("send failed before reaching backend, queueing for retry",
			"count", len(metrics), "error", err)
	}

	if storeErr := r.store.StoreMetrics(metrics); storeErr != nil {
		r.log.Error("fallback store failed, batch lost", "count", len(metrics), "error", storeErr)
		return Result{}, errors.Join(err, fmt.Errorf("storing fallback batch: %w", storeErr))
	}

	return Result{Status: StatusQueued, Queued: len(metrics), Requeued: true}, err
}
