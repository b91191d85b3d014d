package models

import "time"

// Field names a SensorReading field as it appears in device payloads.
type Field string

const (
	FieldHeartRate      Field = "heartRate"
	FieldSpO2           Field = "spo2"
	FieldTemperature    Field = "temperature"
	FieldFingerDetected Field = "fingerDetected"
	FieldSleepHours     Field = "sleepHours"
	FieldSleeping       Field = "sleeping"
	FieldActivityKmh    Field = "activityKmh"
	FieldSteps          Field = "steps"
	FieldTimestamp      Field = "timestamp"
	FieldIdleSeconds    Field = "idleSeconds"
)

// FieldSet records which fields were actually present in a raw payload.
// Absent fields decode to zero values; downstream stages must not treat
// those zeros as measurements.
type FieldSet map[Field]bool

// Has reports whether the field was present in the source payload.
func (s FieldSet) Has(f Field) bool { return s[f] }

// SensorReading is the decoded, coerced representation of one device
// payload. Missing numeric fields are 0, missing booleans false; the
// timestamp is filled with arrival time when the payload carries none.
type SensorReading struct {
	HeartRate      float64   `json:"heartRate"`
	SpO2           float64   `json:"spo2"`
	Temperature    float64   `json:"temperature"`
	FingerDetected bool      `json:"fingerDetected"`
	SleepHours     float64   `json:"sleepHours"`
	Sleeping       bool      `json:"sleeping"`
	ActivityKmh    float64   `json:"activityKmh"`
	Steps          float64   `json:"steps"`
	Timestamp      time.Time `json:"timestamp"`
	IdleSeconds    float64   `json:"idleSeconds"`
}
