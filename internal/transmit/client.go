package transmit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/claude/vitalsync/internal/models"
)

// batchPath is the backend's batch-create endpoint.
const batchPath = "/api/v1/metrics/batch"

// backendError is the error body the metrics backend returns on
// rejection: either a flat message or per-metric validation details.
type backendError struct {
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
	Details json.RawMessage `json:"details,omitempty"`
}

func (e backendError) detail() string {
	switch {
	case e.Error != "":
		return e.Error
	case e.Message != "":
		return e.Message
	case len(e.Details) > 0:
		return string(e.Details)
	default:
		return "no detail"
	}
}

// Client talks to the metrics backend over HTTP.
type Client struct {
	http *resty.Client
	log  *slog.Logger
}

// Compile-time check: Client satisfies Backend.
var _ Backend = (*Client)(nil)

// NewClient creates a backend client. Retries are left to the router's
// offline-queue path; the client itself makes exactly one attempt so a
// rejection is visible immediately.
func NewClient(baseURL, apiKey string, timeout time.Duration, log *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		c.SetHeader("X-API-Key", apiKey)
	}
	return &Client{http: c, log: log}
}

// SubmitBatch POSTs a batch and returns the backend's per-batch result.
// Transport failures come back as *TransportError, HTTP rejections as
// *RejectedError.
func (c *Client) SubmitBatch(ctx context.Context, metrics []models.Metric) (*models.BatchResult, error) {
	var result models.BatchResult
	var berr backendError

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(models.MetricBatch{Metrics: metrics}).
		SetResult(&result).
		SetError(&berr).
		Post(batchPath)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.IsError() {
		return nil, &RejectedError{StatusCode: resp.StatusCode(), Detail: berr.detail()}
	}

	c.log.Debug("batch accepted",
		"processed", result.TotalProcessed,
		"successful", result.Successful,
		"failed", result.Failed,
	)
	return &result, nil
}
