// Package mcp exposes the gateway's vitals data to AI clients over the
// Model Context Protocol.
package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/vitalsync/internal/models"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("VitalSync", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("VitalSync wearable gateway. Query live vitals, chart aggregations, and the offline sync queue of the connected health sensor."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetVitals, Handler: h.getVitals},
		server.ServerTool{Tool: toolGetChartData, Handler: h.getChartData},
		server.ServerTool{Tool: toolGetQueueStatus, Handler: h.getQueueStatus},
		server.ServerTool{Tool: toolGetLatestReading, Handler: h.getLatestReading},
	)

	s.AddResources(
		server.ServerResource{Resource: resLatestSnapshot, Handler: h.latestSnapshot},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resLatestSnapshot = mcp.NewResource(
	"vitalsync://latest_snapshot",
	"Latest Reading",
	mcp.WithResourceDescription("The most recent decoded sensor reading held by the gateway"),
	mcp.WithMIMEType("application/json"),
)

// --- Tool definitions ---

var toolGetVitals = mcp.NewTool("get_vitals",
	mcp.WithDescription("Retrieve the in-memory vitals time series (up to the last 24 hours)."),
	mcp.WithString("since", mcp.Description("Lower bound (ISO 8601). Defaults to the whole retained window.")),
)

var toolGetChartData = mcp.NewTool("get_chart_data",
	mcp.WithDescription("Aggregate the vitals time series into chart points for a display period."),
	mcp.WithString("metric", mcp.Required(), mcp.Description("Metric name (heartRate, spo2, temperature, steps, activityKmh, sleepHours, idleSeconds)")),
	mcp.WithString("period", mcp.Description("Display period. Defaults to daily."), mcp.Enum("daily", "weekly", "monthly")),
	mcp.WithString("method", mcp.Description("Reduction method. Defaults to average."), mcp.Enum("average", "sum", "max", "min", "latest")),
)

var toolGetQueueStatus = mcp.NewTool("get_queue_status",
	mcp.WithDescription("Report the offline metric queue: pending count and last sync outcome."),
)

var toolGetLatestReading = mcp.NewTool("get_latest_reading",
	mcp.WithDescription("Return the most recent sensor reading."),
)

// --- Tool handlers ---

func (h *handlers) getVitals(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var since time.Time
	if s := req.GetString("since", ""); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return mcp.NewToolResultError("invalid since: " + err.Error()), nil
		}
		since = parsed
	}

	points := h.ds.TimeSeries(since)
	return jsonResult(map[string]any{"count": len(points), "points": points})
}

func (h *handlers) getChartData(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metricName, err := req.RequireString("metric")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	points, err := h.ds.ChartData(metricName, req.GetString("period", "daily"), req.GetString("method", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"count": len(points), "points": points})
}

func (h *handlers) getQueueStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.ds.QueueStatus())
}

func (h *handlers) getLatestReading(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	point, ok := h.ds.LatestReading()
	if !ok {
		return mcp.NewToolResultError("no readings yet"), nil
	}
	return jsonResult(point)
}

// --- Resource handlers ---

func (h *handlers) latestSnapshot(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	point, ok := h.ds.LatestReading()
	if !ok {
		point = models.HistoricalPoint{}
	}
	data, err := json.Marshal(point)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      resLatestSnapshot.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
