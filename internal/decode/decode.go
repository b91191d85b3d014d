// Package decode turns raw device payloads into structured sensor
// readings. Two encodings are accepted: a JSON object, or the legacy
// comma-separated format older firmware emits. Decoding is total —
// malformed input yields a failure Result, never a panic.
package decode

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/claude/vitalsync/internal/models"
)

// Format tags which payload encoding a reading was decoded from.
type Format string

const (
	FormatJSON      Format = "json"
	FormatLegacyCSV Format = "legacy-csv"
)

// legacyFieldCount is the minimum token count for a legacy CSV payload.
const legacyFieldCount = 10

// legacyFields is the fixed positional order of the legacy CSV format.
var legacyFields = [legacyFieldCount]models.Field{
	models.FieldHeartRate,
	models.FieldSpO2,
	models.FieldTemperature,
	models.FieldFingerDetected,
	models.FieldSleepHours,
	models.FieldSleeping,
	models.FieldActivityKmh,
	models.FieldSteps,
	models.FieldTimestamp,
	models.FieldIdleSeconds,
}

// Result is the outcome of decoding one payload.
type Result struct {
	OK      bool
	Reading models.SensorReading
	Present models.FieldSet
	Format  Format
	Elapsed time.Duration
	Err     error

	// Candidate is the raw JSON object prior to coercion, kept so the
	// validator can catch type errors the coercion papers over. Nil for
	// legacy CSV payloads.
	Candidate map[string]any
}

// Decode parses a raw payload string. JSON is attempted first; on parse
// failure the legacy CSV path takes over.
func Decode(raw string) Result {
	start := time.Now()

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fail(start, fmt.Errorf("empty payload"))
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(trimmed), &obj); err == nil {
		// "null" unmarshals into a nil map; that is not a reading.
		if obj == nil {
			return fail(start, fmt.Errorf("payload is JSON null, not an object"))
		}
		res := fromObject(obj, time.Now())
		res.Elapsed = time.Since(start)
		return res
	}

	res, err := fromLegacyCSV(trimmed, time.Now())
	if err != nil {
		return fail(start, err)
	}
	res.Elapsed = time.Since(start)
	return res
}

// DecodeObject decodes an already-structured payload (e.g. a parsed
// JSON body handed over by the transport layer).
func DecodeObject(obj map[string]any) Result {
	start := time.Now()
	if obj == nil {
		return fail(start, fmt.Errorf("nil payload object"))
	}
	res := fromObject(obj, time.Now())
	res.Elapsed = time.Since(start)
	return res
}

func fail(start time.Time, err error) Result {
	return Result{OK: false, Err: err, Elapsed: time.Since(start)}
}

func fromObject(obj map[string]any, now time.Time) Result {
	present := models.FieldSet{}
	for _, f := range legacyFields {
		if _, ok := obj[string(f)]; ok {
			present[f] = true
		}
	}

	r := models.SensorReading{
		HeartRate:      num(obj, models.FieldHeartRate),
		SpO2:           num(obj, models.FieldSpO2),
		Temperature:    num(obj, models.FieldTemperature),
		FingerDetected: boolean(obj, models.FieldFingerDetected),
		SleepHours:     num(obj, models.FieldSleepHours),
		Sleeping:       boolean(obj, models.FieldSleeping),
		ActivityKmh:    num(obj, models.FieldActivityKmh),
		Steps:          num(obj, models.FieldSteps),
		IdleSeconds:    num(obj, models.FieldIdleSeconds),
	}
	r.Timestamp = timestamp(obj[string(models.FieldTimestamp)], now)

	return Result{
		OK:        true,
		Reading:   r,
		Present:   present,
		Format:    FormatJSON,
		Candidate: obj,
	}
}

func fromLegacyCSV(raw string, now time.Time) (Result, error) {
	tokens := strings.Split(raw, ",")
	if len(tokens) < legacyFieldCount {
		return Result{}, fmt.Errorf("legacy payload has %d fields, need at least %d", len(tokens), legacyFieldCount)
	}

	values := make([]float64, legacyFieldCount)
	for i := range legacyFieldCount {
		v, err := strconv.ParseFloat(strings.TrimSpace(tokens[i]), 64)
		if err != nil {
			return Result{}, fmt.Errorf("legacy field %s: invalid numeric token %q", legacyFields[i], strings.TrimSpace(tokens[i]))
		}
		values[i] = v
	}

	present := models.FieldSet{}
	for _, f := range legacyFields {
		present[f] = true
	}

	r := models.SensorReading{
		HeartRate:      values[0],
		SpO2:           values[1],
		Temperature:    values[2],
		FingerDetected: values[3] > 0,
		SleepHours:     values[4],
		Sleeping:       values[5] > 0,
		ActivityKmh:    values[6],
		Steps:          values[7],
		IdleSeconds:    values[9],
	}
	if ms := int64(values[8]); ms > 0 {
		r.Timestamp = time.UnixMilli(ms)
	} else {
		r.Timestamp = now
	}

	return Result{
		OK:      true,
		Reading: r,
		Present: present,
		Format:  FormatLegacyCSV,
	}, nil
}

// num coerces an object value to float64 the way the devices expect:
// numbers pass through, numeric strings parse, everything else is 0.
func num(obj map[string]any, f models.Field) float64 {
	v, ok := obj[string(f)]
	if !ok || v == nil {
		return 0
	}
	switch t := v.(type) {
	case float64:
		return t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return parsed
	case bool:
		if t {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// boolean coerces an object value to bool: false for absent, null,
// false, 0 and empty string, true otherwise.
func boolean(obj map[string]any, f models.Field) bool {
	v, ok := obj[string(f)]
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}

// timestamp accepts epoch milliseconds or an RFC 3339 string, falling
// back to arrival time when absent or zero.
func timestamp(v any, now time.Time) time.Time {
	switch t := v.(type) {
	case float64:
		if ms := int64(t); ms > 0 {
			return time.UnixMilli(ms)
		}
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return now
}
