// Package queue is the durable local buffer holding metrics that could
// not be sent. It is the last line of defense against data loss, backed
// by SQLite so queued metrics survive process restarts.
package queue

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/claude/vitalsync/internal/models"
	"github.com/claude/vitalsync/internal/transmit"
)

// drainBatchSize bounds how many rows one drain submit carries.
const drainBatchSize = 100

// Queue is the offline metric store. All writes — from the ingestion
// path and from the sync worker — are serialized by one mutex.
type Queue struct {
	db  *sql.DB
	mu  sync.Mutex
	log *slog.Logger
}

// Compile-time check: Queue satisfies the router's storage port.
var _ transmit.Store = (*Queue)(nil)

// Open opens (or creates) the queue database at dir/queue.db.
func Open(dir string, log *slog.Logger) (*Queue, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating queue dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "queue.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening queue db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging queue db: %w", err)
	}

	return &Queue{db: db, log: log}, nil
}

// RunMigrations applies all pending migrations to the queue database.
func RunMigrations(dir, migrationsPath string) error {
	dbPath := filepath.Join(dir, "queue.db")
	m, err := migrate.New("file://"+migrationsPath, "sqlite://"+dbPath)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// StoreMetrics persists a batch under a fresh batch ID, preserving the
// batch's internal order.
func (q *Queue) StoreMetrics(metrics []models.Metric) error {
	if len(metrics) == 0 {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	tx, err := q.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning store tx: %w", err)
	}
	defer tx.Rollback()

	batchID := uuid.NewString()
	for _, m := range metrics {
		_, err := tx.Exec(
			`INSERT INTO pending_metrics (batch_id, metric_type, value, unit, sensor_model, recorded_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			batchID, string(m.Type), m.Value, m.Unit, m.SensorModel, m.RecordedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("inserting pending metric: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing store tx: %w", err)
	}

	q.log.Info("metrics queued", "batch_id", batchID, "count", len(metrics))
	return nil
}

// Pending reports the number of queued metrics.
func (q *Queue) Pending() (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var count int
	if err := q.db.QueryRow(`SELECT COUNT(*) FROM pending_metrics`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting pending metrics: %w", err)
	}
	return count, nil
}

// pendingRow is one queued metric with its row identity.
type pendingRow struct {
	id     int64
	metric models.Metric
}

// Drain sends queued metrics to the backend in queued order, deleting
// rows only after their batch is accepted. It stops at the first
// failure and reports how many metrics were sent.
func (q *Queue) Drain(ctx context.Context, backend transmit.Backend) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	sent := 0
	for {
		rows, err := q.loadBatch()
		if err != nil {
			return sent, err
		}
		if len(rows) == 0 {
			return sent, nil
		}

		metrics := make([]models.Metric, len(rows))
		ids := make([]int64, len(rows))
		for i, r := range rows {
			metrics[i] = r.metric
			ids[i] = r.id
		}

		if _, err := backend.SubmitBatch(ctx, metrics); err != nil {
			return sent, fmt.Errorf("draining batch: %w", err)
		}

		if err := q.deleteRows(ids); err != nil {
			return sent, err
		}
		sent += len(rows)
	}
}

func (q *Queue) loadBatch() ([]pendingRow, error) {
	rows, err := q.db.Query(
		`SELECT id, metric_type, value, unit, sensor_model, recorded_at
		 FROM pending_metrics ORDER BY id LIMIT ?`, drainBatchSize)
	if err != nil {
		return nil, fmt.Errorf("loading pending metrics: %w", err)
	}
	defer rows.Close()

	var out []pendingRow
	for rows.Next() {
		var r pendingRow
		var typ, recordedAt string
		if err := rows.Scan(&r.id, &typ, &r.metric.Value, &r.metric.Unit, &r.metric.SensorModel, &recordedAt); err != nil {
			return nil, fmt.Errorf("scanning pending metric: %w", err)
		}
		r.metric.Type = models.MetricType(typ)
		ts, err := time.Parse(time.RFC3339, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing recorded_at %q: %w", recordedAt, err)
		}
		r.metric.RecordedAt = models.RecordedAt{Time: ts}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q *Queue) deleteRows(ids []int64) error {
	tx, err := q.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning delete tx: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		if _, err := tx.Exec(`DELETE FROM pending_metrics WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting sent metric %d: %w", id, err)
		}
	}
	return tx.Commit()
}

// Close closes the queue database.
func (q *Queue) Close() error {
	return q.db.Close()
}
