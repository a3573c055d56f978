package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ClientConfig configures the HTTP client for a remote decision
// engine.
type ClientConfig struct {
	// BaseURL is the engine endpoint root, for example
	// "http://localhost:9100".
	BaseURL string `yaml:"base_url"`

	// APIKey is sent as a bearer token when non-empty.
	APIKey string `yaml:"api_key"`

	// Timeout bounds each analyze call. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout"`

	// MaxIdleConns and MaxIdleConnsPerHost tune the connection pool.
	MaxIdleConns        int `yaml:"max_idle_conns"`
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`
}

// Client calls a remote decision engine over HTTP. It implements the
// Engine interface.
type Client struct {
	config ClientConfig
	client *http.Client
	logger *slog.Logger
}

// analyzeRequest is the wire payload sent to the engine. Only the text
// crosses this boundary; everything that comes back is scrubbed before
// persistence.
type analyzeRequest struct {
	Text string `json:"text"`
}

// NewClient creates a Client for the given engine endpoint.
func NewClient(config ClientConfig, logger *slog.Logger) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("engine base_url is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxIdleConns <= 0 {
		config.MaxIdleConns = 100
	}
	if config.MaxIdleConnsPerHost <= 0 {
		config.MaxIdleConnsPerHost = 10
	}
	if logger == nil {
		logger = slog.Default()
	}

	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		logger: logger.With("component", "engine_client"),
	}, nil
}

// Name identifies the client by its endpoint.
func (c *Client) Name() string {
	return "http:" + c.config.BaseURL
}

// Process sends the text to the remote engine and decodes its verdict.
// A non-2xx status or a malformed body yields an EngineError; the
// caller decides whether that fails the request or degrades it.
func (c *Client) Process(ctx context.Context, text string) (*Verdict, error) {
	body, err := json.Marshal(analyzeRequest{Text: text})
	if err != nil {
		return nil, NewEngineError(c.Name(), fmt.Errorf("encode request: %w", err))
	}

	url := c.config.BaseURL + "/analyze"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, NewEngineError(c.Name(), err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, NewEngineError(c.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a bounded slice of the body for the error message.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, NewEngineError(c.Name(),
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(snippet)))
	}

	var verdict Verdict
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return nil, NewEngineError(c.Name(), fmt.Errorf("decode verdict: %w", err))
	}

	return &verdict, nil
}
