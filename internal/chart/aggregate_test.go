package chart

import (
	"testing"
	"time"

	"github.com/claude/vitalsync/internal/models"
)

func pt(t time.Time, y float64) models.ChartDataPoint {
	return models.ChartDataPoint{X: t, Y: y, Timestamp: t}
}

func TestAggregatePassthroughUnderLimit(t *testing.T) {
	base := time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)
	points := []models.ChartDataPoint{pt(base, 1), pt(base.Add(time.Minute), 2)}

	got := Aggregate(points, Options{Method: MethodAverage, Interval: IntervalHour, MaxPoints: 10})
	if len(got) != 2 {
		t.Fatalf("got %d points, want passthrough of 2", len(got))
	}
	if got[0].Y != 1 || got[1].Y != 2 {
		t.Errorf("passthrough altered values: %+v", got)
	}
}

func TestAggregateEmpty(t *testing.T) {
	if got := Aggregate(nil, Options{Method: MethodAverage, Interval: IntervalHour}); got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

func TestAggregateHourlyBuckets(t *testing.T) {
	base := time.Date(2023, 10, 1, 9, 0, 0, 0, time.UTC)
	points := []models.ChartDataPoint{
		pt(base.Add(5*time.Minute), 60),
		pt(base.Add(30*time.Minute), 80),
		pt(base.Add(70*time.Minute), 100), // next hour
	}

	got := Aggregate(points, Options{Method: MethodAverage, Interval: IntervalHour})
	if len(got) != 2 {
		t.Fatalf("got %d buckets, want 2", len(got))
	}
	if got[0].Y != 70 {
		t.Errorf("bucket 0 average = %g, want 70", got[0].Y)
	}
	if got[1].Y != 100 {
		t.Errorf("bucket 1 average = %g, want 100", got[1].Y)
	}
	if got[0].Label != "09:00" || got[1].Label != "10:00" {
		t.Errorf("labels = %q, %q", got[0].Label, got[1].Label)
	}
	// Bucket timestamp is the first point seen in the bucket.
	if !got[0].Timestamp.Equal(base.Add(5 * time.Minute)) {
		t.Errorf("bucket 0 timestamp = %v", got[0].Timestamp)
	}
}

func TestAggregateMethods(t *testing.T) {
	base := time.Date(2023, 10, 1, 9, 0, 0, 0, time.UTC)
	points := []models.ChartDataPoint{
		pt(base, 10),
		pt(base.Add(time.Minute), 30),
		pt(base.Add(2*time.Minute), 20),
	}

	tests := []struct {
		method Method
		want   float64
	}{
		{MethodAverage, 20},
		{MethodSum, 60},
		{MethodMax, 30},
		{MethodMin, 10},
		{MethodLatest, 20},
	}
	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			got := Aggregate(points, Options{Method: tt.method, Interval: IntervalHour})
			if len(got) != 1 {
				t.Fatalf("got %d buckets, want 1", len(got))
			}
			if got[0].Y != tt.want {
				t.Errorf("%s = %g, want %g", tt.method, got[0].Y, tt.want)
			}
		})
	}
}

func TestAggregateBucketOrder(t *testing.T) {
	// Out-of-order input: buckets follow first appearance, not clock order.
	d1 := time.Date(2023, 10, 2, 12, 0, 0, 0, time.UTC)
	d2 := time.Date(2023, 10, 1, 12, 0, 0, 0, time.UTC)
	points := []models.ChartDataPoint{pt(d1, 1), pt(d2, 2), pt(d1.Add(time.Hour), 3)}

	got := Aggregate(points, Options{Method: MethodSum, Interval: IntervalDay})
	if len(got) != 2 {
		t.Fatalf("got %d buckets, want 2", len(got))
	}
	if got[0].Y != 4 || got[1].Y != 2 {
		t.Errorf("bucket sums = %g, %g, want 4, 2", got[0].Y, got[1].Y)
	}
}

func TestAggregateWeekBuckets(t *testing.T) {
	// 2023-10-04 is a Wednesday; its week starts Sunday 2023-10-01.
	wed := time.Date(2023, 10, 4, 10, 0, 0, 0, time.UTC)
	nextMon := time.Date(2023, 10, 9, 10, 0, 0, 0, time.UTC)
	points := []models.ChartDataPoint{pt(wed, 1), pt(nextMon, 2)}

	got := Aggregate(points, Options{Method: MethodSum, Interval: IntervalWeek})
	if len(got) != 2 {
		t.Fatalf("got %d buckets, want 2", len(got))
	}
	if got[0].Label != "Week of 10/01" {
		t.Errorf("label = %q, want %q", got[0].Label, "Week of 10/01")
	}
	if got[1].Label != "Week of 10/08" {
		t.Errorf("label = %q, want %q", got[1].Label, "Week of 10/08")
	}
}

func TestAggregateMonthBuckets(t *testing.T) {
	oct := time.Date(2023, 10, 15, 0, 0, 0, 0, time.UTC)
	nov := time.Date(2023, 11, 2, 0, 0, 0, 0, time.UTC)
	points := []models.ChartDataPoint{pt(oct, 5), pt(nov, 7)}

	got := Aggregate(points, Options{Method: MethodLatest, Interval: IntervalMonth})
	if len(got) != 2 {
		t.Fatalf("got %d buckets, want 2", len(got))
	}
	if got[0].Label != "Oct 2023" || got[1].Label != "Nov 2023" {
		t.Errorf("labels = %q, %q", got[0].Label, got[1].Label)
	}
}

func TestSample(t *testing.T) {
	base := time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.ChartDataPoint, 10)
	for i := range points {
		points[i] = pt(base.Add(time.Duration(i)*time.Minute), float64(i))
	}

	got := Sample(points, 4)
	if len(got) != 4 {
		t.Fatalf("got %d points, want 4", len(got))
	}
	if got[0].Y != 0 {
		t.Errorf("first point = %g, want 0", got[0].Y)
	}
	if got[len(got)-1].Y != 9 {
		t.Errorf("last point = %g, want 9", got[len(got)-1].Y)
	}

	// Already small enough: unchanged.
	if got := Sample(points, 20); len(got) != 10 {
		t.Errorf("got %d points, want all 10", len(got))
	}
	if got := Sample(points, 1); len(got) != 1 || got[0].Y != 0 {
		t.Errorf("n=1 sample = %+v", got)
	}
}

func TestOptimal(t *testing.T) {
	tests := []struct {
		period       string
		wantInterval Interval
		wantMax      int
	}{
		{"daily", IntervalHour, 24},
		{"weekly", IntervalDay, 7},
		{"monthly", IntervalDay, 30},
		{"unknown", IntervalHour, 0},
	}
	for _, tt := range tests {
		got := Optimal(tt.period)
		if got.Interval != tt.wantInterval || got.MaxPoints != tt.wantMax {
			t.Errorf("Optimal(%q) = %+v", tt.period, got)
		}
		if got.Method != MethodAverage {
			t.Errorf("Optimal(%q) method = %q", tt.period, got.Method)
		}
	}
}
