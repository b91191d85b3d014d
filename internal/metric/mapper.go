// Package metric converts validated sensor readings into backend
// metric records.
package metric

import (
	"log/slog"
	"time"

	"github.com/claude/vitalsync/internal/models"
)

// fieldMapping binds one reading field to its backend metric type and
// acceptance predicate. Emission order follows this table, not the
// source payload.
type fieldMapping struct {
	field models.Field
	typ   models.MetricType
	value func(models.SensorReading) float64
	valid func(float64) bool
}

// Mapper predicates are narrower than the validator's plausibility
// bounds: the validator asks "is the payload sane", these ask "will the
// backend chart it".
var fieldMappings = []fieldMapping{
	{
		field: models.FieldHeartRate,
		typ:   models.MetricHeartRate,
		value: func(r models.SensorReading) float64 { return r.HeartRate },
		valid: func(v float64) bool { return v >= 30 && v <= 220 },
	},
	{
		field: models.FieldSleepHours,
		typ:   models.MetricSleep,
		value: func(r models.SensorReading) float64 { return r.SleepHours },
		valid: func(v float64) bool { return v >= 0 && v <= 24 },
	},
	{
		field: models.FieldSpO2,
		typ:   models.MetricSpO2,
		value: func(r models.SensorReading) float64 { return r.SpO2 },
		valid: func(v float64) bool { return v >= 70 && v <= 100 },
	},
	{
		field: models.FieldSteps,
		typ:   models.MetricSteps,
		value: func(r models.SensorReading) float64 { return r.Steps },
		valid: func(v float64) bool { return v >= 0 },
	},
	{
		field: models.FieldTemperature,
		typ:   models.MetricSkinTemperature,
		value: func(r models.SensorReading) float64 { return r.Temperature },
		valid: func(v float64) bool { return v >= 20 && v <= 45 },
	},
}

// Mapper maps readings from one sensor model into backend metrics.
type Mapper struct {
	sensorModel string
	log         *slog.Logger
}

// NewMapper creates a Mapper for the given sensor model identifier.
func NewMapper(sensorModel string, log *slog.Logger) *Mapper {
	return &Mapper{sensorModel: sensorModel, log: log}
}

// Map emits zero to five metrics for a reading. Fields absent from the
// source payload are omitted silently; present fields failing their
// predicate are omitted with a warning; neither blocks sibling fields.
// Map never returns an error.
func (m *Mapper) Map(r models.SensorReading, present models.FieldSet) []models.Metric {
	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	var out []models.Metric
	for _, fm := range fieldMappings {
		if !present.Has(fm.field) {
			continue
		}
		v := fm.value(r)
		if !fm.valid(v) {
			m.log.Warn("metric omitted: value outside acceptance range",
				"field", string(fm.field),
				"metric_type", string(fm.typ),
				"value", v,
			)
			continue
		}
		unit, _ := models.UnitFor(fm.typ)
		out = append(out, models.Metric{
			Type:        fm.typ,
			Value:       v,
			Unit:        unit,
			SensorModel: m.sensorModel,
			RecordedAt:  models.RecordedAt{Time: ts},
		})
	}
	return out
}
