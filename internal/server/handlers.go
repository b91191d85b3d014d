package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/claude/vitalsync/internal/chart"
	"github.com/claude/vitalsync/internal/models"
	"github.com/claude/vitalsync/internal/obs"
)

// maxPayloadBytes bounds an ingest request body. Device payloads are a
// few hundred bytes; anything larger is not a sensor reading.
const maxPayloadBytes = 64 << 10

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reading body: " + err.Error()})
		return
	}

	out := s.pipe.Process(r.Context(), string(body))
	switch out.Stage {
	case "decode":
		writeJSON(w, http.StatusBadRequest, out)
	case "validate":
		writeJSON(w, http.StatusUnprocessableEntity, out)
	default:
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) handleTimeSeries(w http.ResponseWriter, r *http.Request) {
	var points []models.HistoricalPoint
	if sinceStr := r.URL.Query().Get("since"); sinceStr != "" {
		since, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid since: " + err.Error()})
			return
		}
		points = s.series.Since(since)
	} else {
		points = s.series.Snapshot()
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(points), "points": points})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	metricName := q.Get("metric")
	if metricName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "metric parameter required"})
		return
	}

	snapshot := s.series.Snapshot()
	raw := make([]models.ChartDataPoint, 0, len(snapshot))
	for i, p := range snapshot {
		v, ok := p.MetricValue(metricName)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown metric: " + metricName})
			return
		}
		raw = append(raw, models.ChartDataPoint{X: i, Y: v, Timestamp: p.Timestamp})
	}

	opts := chart.Optimal(q.Get("period"))
	if m := q.Get("method"); m != "" {
		opts.Method = chart.Method(m)
	}

	points := chart.Aggregate(raw, opts)
	writeJSON(w, http.StatusOK, map[string]any{"count": len(points), "points": points})
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	if s.latest != nil {
		reading, ok, err := s.latest.Latest(r.Context())
		if err != nil {
			s.log.Warn("latest cache read failed, falling back to buffer", "error", err)
		} else if ok {
			writeJSON(w, http.StatusOK, models.PointFromReading(reading))
			return
		}
	}

	point, ok := s.series.Latest()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no readings yet"})
		return
	}
	writeJSON(w, http.StatusOK, point)
}

func (s *Server) handleQueueStatus(w http.ResponseWriter, r *http.Request) {
	st := s.syncer.Status()
	obs.QueueDepth.Set(float64(st.Pending))
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
