package models

import "time"

// HistoricalPoint is one entry in the in-memory charting buffer.
type HistoricalPoint struct {
	Timestamp      time.Time `json:"timestamp"`
	HeartRate      float64   `json:"heartRate"`
	OxygenLevel    float64   `json:"oxygenLevel"`
	Temperature    float64   `json:"temperature"`
	FingerDetected bool      `json:"fingerDetected"`
	Sleeping       bool      `json:"sleeping"`
	ActivityKmh    float64   `json:"activityKmh"`
	Steps          float64   `json:"steps"`
	IdleSeconds    float64   `json:"idleSeconds"`
	SleepHours     float64   `json:"sleepHours"`
}

// PointFromReading builds a HistoricalPoint from a decoded reading.
func PointFromReading(r SensorReading) HistoricalPoint {
	return HistoricalPoint{
		Timestamp:      r.Timestamp,
		HeartRate:      r.HeartRate,
		OxygenLevel:    r.SpO2,
		Temperature:    r.Temperature,
		FingerDetected: r.FingerDetected,
		Sleeping:       r.Sleeping,
		ActivityKmh:    r.ActivityKmh,
		Steps:          r.Steps,
		IdleSeconds:    r.IdleSeconds,
		SleepHours:     r.SleepHours,
	}
}

// MetricValue selects a point field by its chart metric name. The name
// set is shared by every query surface exposing per-metric charts.
func (p HistoricalPoint) MetricValue(name string) (float64, bool) {
	switch name {
	case "heartRate":
		return p.HeartRate, true
	case "oxygenLevel", "spo2":
		return p.OxygenLevel, true
	case "temperature":
		return p.Temperature, true
	case "steps":
		return p.Steps, true
	case "activityKmh":
		return p.ActivityKmh, true
	case "sleepHours":
		return p.SleepHours, true
	case "idleSeconds":
		return p.IdleSeconds, true
	default:
		return 0, false
	}
}

// ChartDataPoint is a transient plot point produced by aggregation.
// X is an index or bucket key; Label is the human-readable axis label.
type ChartDataPoint struct {
	X         any       `json:"x"`
	Y         float64   `json:"y"`
	Timestamp time.Time `json:"timestamp,omitempty"`
	Label     string    `json:"label,omitempty"`
}
