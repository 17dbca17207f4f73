// Package agent is the client for the external webhook-based AI agents.
// Both the dataset search agent and the narrative (calification) agent share
// the same contract: POST {userMessage} and read the first element's output
// from an array response.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// DefaultTimeout bounds each webhook call; agent responses routinely take
// several seconds.
const DefaultTimeout = 60 * time.Second

// Config holds client construction parameters.
type Config struct {
	WebhookURL string
	Timeout    time.Duration
	Logger     *slog.Logger
}

// Client sends free-text messages to one webhook agent.
type Client struct {
	url    string
	httpc  *http.Client
	logger *slog.Logger
}

// NewClient creates a webhook agent client.
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
		url:    cfg.WebhookURL,
		httpc:  &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type askRequest struct {
	UserMessage string `json:"userMessage"`
}

type askResponse struct {
	Output string `json:"output"`
}

// Ask forwards a message to the agent and returns its textual response.
func (c *Client) Ask(ctx context.Context, userMessage string) (string, error) {
	payload, err := json.Marshal(askRequest{UserMessage: userMessage})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("error al conectar con el agente: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("error al conectar con el agente: %s", resp.Status)
	}

	var body []askResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("respuesta inválida del agente: %w", err)
	}
	if len(body) == 0 || body[0].Output == "" {
		return "", fmt.Errorf("respuesta vacía del agente")
	}

	c.logger.Debug("agent responded", "chars", len(body[0].Output))
	return body[0].Output, nil
}
