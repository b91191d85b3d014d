// Package pipeline wires the ingestion stages together: decode,
// validate, map, then route to the backend and the charting buffer.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/claude/vitalsync/internal/buffer"
	"github.com/claude/vitalsync/internal/cache"
	"github.com/claude/vitalsync/internal/decode"
	"github.com/claude/vitalsync/internal/metric"
	"github.com/claude/vitalsync/internal/models"
	"github.com/claude/vitalsync/internal/obs"
	"github.com/claude/vitalsync/internal/transmit"
	"github.com/claude/vitalsync/internal/validate"
)

// Sender routes a metric batch. Satisfied by *transmit.Router.
type Sender interface {
	Send(ctx context.Context, metrics []models.Metric) (transmit.Result, error)
}

// Outcome reports what happened to one payload, stage by stage.
type Outcome struct {
	Accepted bool          `json:"accepted"`
	Stage    string        `json:"stage,omitempty"`
	Error    string        `json:"error,omitempty"`
	Format   decode.Format `json:"format,omitempty"`

	Errors   []string `json:"validation_errors,omitempty"`
	Warnings []string `json:"validation_warnings,omitempty"`

	MetricsMapped int              `json:"metrics_mapped"`
	Routing       *transmit.Result `json:"routing,omitempty"`
	RoutingError  string           `json:"routing_error,omitempty"`
}

// Pipeline processes raw payloads end to end. It is safe for use from
// multiple goroutines; the buffer and queue serialize internally.
type Pipeline struct {
	mapper *metric.Mapper
	router Sender
	series *buffer.TimeSeries
	latest *cache.LatestCache // optional, may be nil
	log    *slog.Logger
}

// New creates a Pipeline. latest may be nil to run without the Redis
// snapshot cache.
func New(mapper *metric.Mapper, router Sender, series *buffer.TimeSeries, latest *cache.LatestCache, log *slog.Logger) *Pipeline {
	return &Pipeline{mapper: mapper, router: router, series: series, latest: latest, log: log}
}

// Process runs one raw payload through the pipeline. Decode and
// validation failures drop the reading (logged, counted, invisible to
// the device). Routing failures are reported in the outcome but the
// batch is already queued by the router's fallback, so Process itself
// never returns an error.
func (p *Pipeline) Process(ctx context.Context, raw string) Outcome {
	start := time.Now()
	defer func() { obs.ProcessDuration.Observe(time.Since(start).Seconds()) }()

	dec := decode.Decode(raw)
	if !dec.OK {
		obs.DecodeFailures.Inc()
		p.log.Warn("payload discarded: decode failed", "error", dec.Err)
		return Outcome{Stage: "decode", Error: dec.Err.Error()}
	}
	obs.PayloadsDecoded.WithLabelValues(string(dec.Format)).Inc()

	val := validate.Check(dec)
	for _, w := range val.Warnings {
		obs.ValidationWarnings.Inc()
		p.log.Warn("reading warning", "detail", w)
	}
	if !val.Valid {
		obs.ValidationFailures.Inc()
		p.log.Warn("reading discarded: validation failed", "errors", val.Errors)
		return Outcome{Stage: "validate", Format: dec.Format, Errors: val.Errors, Warnings: val.Warnings}
	}

	p.series.Append(models.PointFromReading(dec.Reading))
	obs.BufferSize.Set(float64(p.series.Len()))

	if p.latest != nil {
		if err := p.latest.SetLatest(ctx, dec.Reading); err != nil {
			p.log.Warn("latest cache update failed", "error", err)
		}
	}

	metrics := p.mapper.Map(dec.Reading, dec.Present)
	for _, m := range metrics {
		obs.MetricsMapped.WithLabelValues(string(m.Type)).Inc()
	}

	out := Outcome{
		Accepted:      true,
		Format:        dec.Format,
		Warnings:      val.Warnings,
		MetricsMapped: len(metrics),
	}

	// Zero mapped metrics short-circuits before the router so the
	// network layer is never invoked for an empty batch.
	if len(metrics) == 0 {
		out.Routing = &transmit.Result{Status: transmit.StatusNoValidMetrics}
		obs.BatchesRouted.WithLabelValues(string(transmit.StatusNoValidMetrics)).Inc()
		return out
	}

	res, err := p.router.Send(ctx, metrics)
	out.Routing = &res
	if err != nil {
		out.RoutingError = err.Error()
	}
	if res.Status != "" {
		obs.BatchesRouted.WithLabelValues(string(res.Status)).Inc()
	}
	return out
}
