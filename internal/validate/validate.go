// Package validate checks decoded sensor readings against device
// plausibility bounds. Hard errors discard the reading before mapping;
// warnings are logged and let the reading through.
package validate

import (
	"fmt"

	"github.com/claude/vitalsync/internal/decode"
	"github.com/claude/vitalsync/internal/models"
)

// boolFields must carry a boolean type in JSON payloads. The coercion
// in decode would happily turn a string into true, so the type check
// runs against the raw candidate object.
var boolFields = []models.Field{
	models.FieldFingerDetected,
	models.FieldSleeping,
}

// Result partitions a reading's fields into accepted, suspicious and
// rejected. Valid is false iff Errors is non-empty.
type Result struct {
	Valid    bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Check validates a decoded payload: required-field presence first,
// then type checks against the raw candidate, then range rules.
// It never panics and never blocks on warnings.
//
// Device payloads are sparse by design — a reading carrying only steps
// is legal — so the required set is supplied by the caller. Contexts
// that demand a full vitals reading pass the fields they insist on.
func Check(d decode.Result, required ...models.Field) Result {
	var res Result

	for _, f := range required {
		if !d.Present.Has(f) {
			res.Errors = append(res.Errors, fmt.Sprintf("missing required field: %s", f))
		}
	}

	// Candidate is only available on the JSON path; legacy CSV encodes
	// booleans as 0/1 by construction.
	if d.Candidate != nil {
		for _, f := range boolFields {
			v, ok := d.Candidate[string(f)]
			if !ok {
				continue
			}
			if _, isBool := v.(bool); !isBool {
				res.Errors = append(res.Errors, fmt.Sprintf("field %s must be a boolean", f))
			}
		}
	}

	r := d.Reading
	if d.Present.Has(models.FieldHeartRate) {
		if r.HeartRate < 0 || r.HeartRate > 220 {
			res.Errors = append(res.Errors, fmt.Sprintf("heartRate out of range: %g (expected 0-220)", r.HeartRate))
		}
	}
	if d.Present.Has(models.FieldSpO2) {
		if r.SpO2 < 0 || r.SpO2 > 100 {
			res.Errors = append(res.Errors, fmt.Sprintf("spo2 out of range: %g (expected 0-100)", r.SpO2))
		}
	}
	if d.Present.Has(models.FieldSleepHours) && r.SleepHours > 24 {
		res.Errors = append(res.Errors, fmt.Sprintf("sleepHours out of range: %g (expected <=24)", r.SleepHours))
	}
	if d.Present.Has(models.FieldTemperature) {
		if r.Temperature < 30 || r.Temperature > 45 {
			res.Warnings = append(res.Warnings, fmt.Sprintf("temperature suspicious: %g (plausible range 30-45)", r.Temperature))
		}
	}
	if d.Present.Has(models.FieldActivityKmh) && r.ActivityKmh > 50 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("activityKmh suspicious: %g (plausible max 50)", r.ActivityKmh))
	}

	res.Valid = len(res.Errors) == 0
	return res
}
