// Package chart downsamples time series into a bounded number of plot
// points. All functions are pure: no hidden state, inputs are never
// mutated.
package chart

import (
	"fmt"
	"time"

	"github.com/claude/vitalsync/internal/models"
)

// Method selects how a bucket's y-values are reduced.
type Method string

const (
	MethodAverage Method = "average"
	MethodSum     Method = "sum"
	MethodMax     Method = "max"
	MethodMin     Method = "min"
	MethodLatest  Method = "latest"
)

// Interval selects the calendar granularity of aggregation buckets.
type Interval string

const (
	IntervalHour  Interval = "hour"
	IntervalDay   Interval = "day"
	IntervalWeek  Interval = "week"
	IntervalMonth Interval = "month"
)

// Options configures Aggregate.
type Options struct {
	Method    Method
	Interval  Interval
	MaxPoints int
}

// Aggregate groups points into local-calendar buckets and reduces each
// bucket with the chosen method. When MaxPoints is set and the input
// already fits, the input is returned unchanged.
func Aggregate(points []models.ChartDataPoint, opts Options) []models.ChartDataPoint {
	if len(points) == 0 {
		return nil
	}
	if opts.MaxPoints > 0 && len(points) <= opts.MaxPoints {
		return points
	}

	type bucket struct {
		key    string
		first  models.ChartDataPoint
		values []float64
	}

	var order []string
	byKey := make(map[string]*bucket)

	for _, p := range points {
		key := bucketKey(p.Timestamp, opts.Interval)
		b, ok := byKey[key]
		if !ok {
			b = &bucket{key: key, first: p}
			byKey[key] = b
			order = append(order, key)
		}
		b.values = append(b.values, p.Y)
	}

	out := make([]models.ChartDataPoint, 0, len(order))
	for _, key := range order {
		b := byKey[key]
		out = append(out, models.ChartDataPoint{
			X:         b.key,
			Y:         reduce(b.values, opts.Method),
			Timestamp: b.first.Timestamp,
			Label:     bucketLabel(b.first.Timestamp, opts.Interval),
		})
	}
	return out
}

// Sample keeps every len/n-th point, always preserving the first and
// last. Use it over Aggregate when fidelity to the raw shape matters
// more than calendar alignment.
func Sample(points []models.ChartDataPoint, n int) []models.ChartDataPoint {
	if n <= 0 || len(points) <= n {
		return points
	}
	if n == 1 {
		return points[:1]
	}

	stride := float64(len(points)-1) / float64(n-1)
	out := make([]models.ChartDataPoint, 0, n)
	for i := range n - 1 {
		out = append(out, points[int(float64(i)*stride)])
	}
	out = append(out, points[len(points)-1])
	return out
}

// Optimal returns the aggregation parameters for a requested display
// period: daily views get hourly buckets, weekly and monthly views get
// daily buckets. Unrecognized periods default to hourly averages.
func Optimal(period string) Options {
	switch period {
	case "daily":
		return Options{Method: MethodAverage, Interval: IntervalHour, MaxPoints: 24}
	case "weekly":
		return Options{Method: MethodAverage, Interval: IntervalDay, MaxPoints: 7}
	case "monthly":
		return Options{Method: MethodAverage, Interval: IntervalDay, MaxPoints: 30}
	default:
		return Options{Method: MethodAverage, Interval: IntervalHour}
	}
}

func reduce(values []float64, m Method) float64 {
	if len(values) == 0 {
		return 0
	}
	switch m {
	case MethodSum:
		var sum float64
		for _, v := range values {
			sum += v
		}
		return sum
	case MethodMax:
		max := values[0]
		for _, v := range values[1:] {
			if v > max {
				max = v
			}
		}
		return max
	case MethodMin:
		min := values[0]
		for _, v := range values[1:] {
			if v < min {
				min = v
			}
		}
		return min
	case MethodLatest:
		return values[len(values)-1]
	default: // average
		var sum float64
		for _, v := range values {
			sum += v
		}
		return sum / float64(len(values))
	}
}

// bucketKey derives the calendar bucket identity of a timestamp using
// local calendar semantics. Weeks are Sunday-aligned.
func bucketKey(t time.Time, iv Interval) string {
	switch iv {
	case IntervalHour:
		return t.Format("2006-01-02 15")
	case IntervalWeek:
		return weekStart(t).Format("2006-01-02")
	case IntervalMonth:
		return t.Format("2006-01")
	default: // day
		return t.Format("2006-01-02")
	}
}

func bucketLabel(t time.Time, iv Interval) string {
	switch iv {
	case IntervalHour:
		return t.Format("15:00")
	case IntervalWeek:
		return fmt.Sprintf("Week of %s", weekStart(t).Format("01/02"))
	case IntervalMonth:
		return t.Format("Jan 2006")
	default: // day
		return t.Format("01/02")
	}
}

// weekStart returns midnight of the Sunday starting t's week.
func weekStart(t time.Time) time.Time {
	d := t.AddDate(0, 0, -int(t.Weekday()))
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}
