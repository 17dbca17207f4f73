// Package backend is the HTTP client for the dataset scoring service.
// It converts transport and server failures into the shared error taxonomy at
// the call site; there is no retry logic, failures surface immediately.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cast"

	"github.com/datacensus/datacensus/internal/quality"
)

// DefaultTimeout bounds every remote call; the backend computes some criteria
// over the full record set and can be slow.
const DefaultTimeout = 30 * time.Second

// Config holds client construction parameters.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  *slog.Logger
}

// Client talks to the scoring backend.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *slog.Logger
}

// NewClient creates a scoring backend client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// initializeRequest is the body for initialize and load_data.
type initializeRequest struct {
	DatasetID string `json:"dataset_id"`
}

// errorBody is the backend's error envelope.
type errorBody struct {
	Detail string `json:"detail"`
}

// criterionResponse is the per-criterion score envelope. Score is decoded
// loosely because the backend is not consistent about numeric types.
type criterionResponse struct {
	Score   any             `json:"score"`
	Details quality.Details `json:"details"`
}

// Initialize asks the backend to fetch and stage the dataset. Returns the
// descriptive metadata on success.
func (c *Client) Initialize(ctx context.Context, datasetID string) (quality.DatasetInfo, error) {
	var info quality.DatasetInfo

	resp, err := c.postJSON(ctx, "/initialize", initializeRequest{DatasetID: datasetID})
	if err != nil {
		return info, &quality.InitializationError{Detail: connectMessage(err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return info, &quality.InitializationError{Detail: detailMessage(resp, "Error al inicializar el dataset")}
	}

	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return info, &quality.InitializationError{Detail: fmt.Sprintf("respuesta inválida del servidor: %v", err)}
	}

	c.logger.Debug("dataset initialized",
		"dataset_id", info.ID,
		"records", info.RecordsCount,
		"limit_reached", info.LimitReached)
	return info, nil
}

// LoadData asks the backend to materialize records for subsequent scoring
// calls. Must only be called after a successful Initialize.
func (c *Client) LoadData(ctx context.Context, datasetID string) error {
	resp, err := c.postJSON(ctx, "/load_data", initializeRequest{DatasetID: datasetID})
	if err != nil {
		return &quality.LoadError{Detail: connectMessage(err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &quality.LoadError{Detail: detailMessage(resp, "Error al cargar registros")}
	}
	return nil
}

// FetchCriterion retrieves one criterion's score. A missing score field
// defaults to 0, matching the backend contract.
func (c *Client) FetchCriterion(ctx context.Context, criterion quality.Criterion, datasetID string) (float64, quality.Details, error) {
	u := fmt.Sprintf("%s/%s?dataset_id=%s", c.baseURL, criterion, url.QueryEscape(datasetID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, &quality.MetricFetchError{Criterion: criterion, Err: err}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, nil, &quality.MetricFetchError{Criterion: criterion, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, nil, &quality.MetricFetchError{
			Criterion: criterion,
			Err:       fmt.Errorf("%s", resp.Status),
		}
	}

	var body criterionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, nil, &quality.MetricFetchError{Criterion: criterion, Err: err}
	}

	score := cast.ToFloat64(body.Score)
	c.logger.Debug("criterion fetched", "criterion", criterion, "score", score)
	return score, body.Details, nil
}

// Health probes the backend root endpoint. Any 2xx means available.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return &quality.ConnectivityError{Endpoint: c.baseURL, Err: err}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &quality.ConnectivityError{Endpoint: c.baseURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &quality.ConnectivityError{
			Endpoint: c.baseURL,
			Err:      fmt.Errorf("%s", resp.Status),
		}
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.httpc.Do(req)
}

// detailMessage extracts the server-provided detail from an error response,
// falling back to a generic message plus the HTTP status.
func detailMessage(resp *http.Response, fallback string) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Detail != "" {
		return body.Detail
	}
	return fmt.Sprintf("%s (%s)", fallback, resp.Status)
}

func connectMessage(err error) string {
	return fmt.Sprintf("Error al conectar con el servidor: %v", err)
}
