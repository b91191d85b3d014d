package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// MetricType identifies a backend metric record type.
type MetricType string

const (
	MetricHeartRate       MetricType = "heart_rate"
	MetricSpO2            MetricType = "spo2"
	MetricSkinTemperature MetricType = "skin_temperature"
	MetricSteps           MetricType = "steps"
	MetricSleep           MetricType = "sleep"
)

// unitByType is the fixed metric_type → unit binding. A Metric carrying
// any other unit for its type is a defect.
var unitByType = map[MetricType]string{
	MetricHeartRate:       "bpm",
	MetricSpO2:            "%",
	MetricSkinTemperature: "°C",
	MetricSteps:           "steps",
	MetricSleep:           "hours",
}

// UnitFor returns the canonical unit for a metric type.
func UnitFor(t MetricType) (string, bool) {
	u, ok := unitByType[t]
	return u, ok
}

// RecordedAt handles the backend timestamp format (ISO 8601 / RFC 3339).
type RecordedAt struct {
	time.Time
}

func (t RecordedAt) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

func (t *RecordedAt) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("cannot parse timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

// Metric is a single typed, unit-tagged health measurement destined for
// the backend. ID is assigned server-side and only populated on records
// echoed back in a BatchResult.
type Metric struct {
	ID          string     `json:"id,omitempty"`
	Type        MetricType `json:"metric_type"`
	Value       float64    `json:"value"`
	Unit        string     `json:"unit"`
	SensorModel string     `json:"sensor_model"`
	RecordedAt  RecordedAt `json:"timestamp"`
}

// MetricBatch is the request body for the backend's batch-create endpoint.
type MetricBatch struct {
	Metrics []Metric `json:"metrics"`
}

// BatchResult is the backend's per-batch response.
type BatchResult struct {
	TotalProcessed int      `json:"total_processed"`
	Successful     int      `json:"successful"`
	Failed         int      `json:"failed"`
	CreatedMetrics []Metric `json:"created_metrics,omitempty"`
}
