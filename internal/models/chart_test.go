package models

import (
	"testing"
	"time"
)

func TestMetricValue(t *testing.T) {
	p := HistoricalPoint{
		Timestamp:   time.Now(),
		HeartRate:   72,
		OxygenLevel: 98,
		Temperature: 36.5,
		ActivityKmh: 4.2,
		Steps:       5000,
		IdleSeconds: 120,
		SleepHours:  7.5,
	}

	tests := []struct {
		name string
		want float64
	}{
		{"heartRate", 72},
		{"spo2", 98},
		{"oxygenLevel", 98},
		{"temperature", 36.5},
		{"steps", 5000},
		{"activityKmh", 4.2},
		{"sleepHours", 7.5},
		{"idleSeconds", 120},
	}
	for _, tt := range tests {
		got, ok := p.MetricValue(tt.name)
		if !ok {
			t.Errorf("MetricValue(%q) not found", tt.name)
			continue
		}
		if got != tt.want {
			t.Errorf("MetricValue(%q) = %g, want %g", tt.name, got, tt.want)
		}
	}

	if _, ok := p.MetricValue("bogus"); ok {
		t.Error("MetricValue accepted an unknown name")
	}
}

func TestPointFromReading(t *testing.T) {
	ts := time.Date(2023, 10, 1, 12, 0, 0, 0, time.UTC)
	r := SensorReading{
		HeartRate:      72,
		SpO2:           98,
		Temperature:    36.5,
		FingerDetected: true,
		SleepHours:     7.5,
		Sleeping:       true,
		ActivityKmh:    4.2,
		Steps:          5000,
		Timestamp:      ts,
		IdleSeconds:    120,
	}

	p := PointFromReading(r)
	if !p.Timestamp.Equal(ts) {
		t.Errorf("timestamp = %v, want %v", p.Timestamp, ts)
	}
	if p.OxygenLevel != r.SpO2 {
		t.Errorf("oxygenLevel = %g, want %g", p.OxygenLevel, r.SpO2)
	}
	if !p.FingerDetected || !p.Sleeping {
		t.Errorf("boolean fields lost: %+v", p)
	}
	if p.IdleSeconds != 120 || p.SleepHours != 7.5 {
		t.Errorf("fields lost: %+v", p)
	}
}
