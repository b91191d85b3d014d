package mcp

import (
	"fmt"
	"time"

	"github.com/claude/vitalsync/internal/buffer"
	"github.com/claude/vitalsync/internal/chart"
	"github.com/claude/vitalsync/internal/models"
	"github.com/claude/vitalsync/internal/queue"
)

// DataSource is the data access surface the MCP tools run against.
type DataSource interface {
	TimeSeries(since time.Time) []models.HistoricalPoint
	ChartData(metric, period, method string) ([]models.ChartDataPoint, error)
	QueueStatus() queue.SyncStatus
	LatestReading() (models.HistoricalPoint, bool)
}

// GatewayData implements DataSource over the live gateway state.
type GatewayData struct {
	series *buffer.TimeSeries
	syncer *queue.Syncer
}

// Compile-time check: GatewayData satisfies DataSource.
var _ DataSource = (*GatewayData)(nil)

// NewGatewayData creates a DataSource over the buffer and sync worker.
func NewGatewayData(series *buffer.TimeSeries, syncer *queue.Syncer) *GatewayData {
	return &GatewayData{series: series, syncer: syncer}
}

func (g *GatewayData) TimeSeries(since time.Time) []models.HistoricalPoint {
	if since.IsZero() {
		return g.series.Snapshot()
	}
	return g.series.Since(since)
}

func (g *GatewayData) ChartData(metricName, period, method string) ([]models.ChartDataPoint, error) {
	snapshot := g.series.Snapshot()
	raw := make([]models.ChartDataPoint, 0, len(snapshot))
	for i, p := range snapshot {
		v, ok := p.MetricValue(metricName)
		if !ok {
			return nil, fmt.Errorf("unknown metric %q", metricName)
		}
		raw = append(raw, models.ChartDataPoint{X: i, Y: v, Timestamp: p.Timestamp})
	}

	opts := chart.Optimal(period)
	if method != "" {
		opts.Method = chart.Method(method)
	}
	return chart.Aggregate(raw, opts), nil
}

func (g *GatewayData) QueueStatus() queue.SyncStatus {
	return g.syncer.Status()
}

func (g *GatewayData) LatestReading() (models.HistoricalPoint, bool) {
	return g.series.Latest()
}
