package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// TRANSPORT
// The Client holds no credentials. Each call carries the token of the bot it
// acts for, so one Client can serve any number of bots.
// ══════════════════════════════════════════════════════════════════════════════

// Caller executes one API method call. Implemented by Client and by the
// resilience wrapper.
type Caller interface {
	// Call performs the named method for the bot identified by token and
	// decodes the result into dest. A nil dest discards the result.
	Call(ctx context.Context, token, method string, payload *Payload, dest any) error
}

// ClientConfig holds the transport settings.
type ClientConfig struct {
	// BaseURL is the API server root, without a trailing slash.
	// Point it at a local Bot API server to use one.
	BaseURL string

	// HTTPClient performs the requests. Leave nil to use a dedicated client
	// with Timeout as its overall deadline.
	HTTPClient *http.Client

	// Timeout bounds a single HTTP exchange when HTTPClient is nil. Long
	// polling passes its own per-call deadline through ctx instead.
	Timeout time.Duration

	// Logger receives transport-level records. Defaults to slog.Default().
	Logger *slog.Logger

	// Debug enables per-call logging of method names and outcomes.
	Debug bool
}

// DefaultClientConfig returns the production transport settings.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL: "https://api.telegram.org",
		Timeout: 30 * time.Second,
	}
}

// Client is the HTTP transport for the Bot API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
	debug   bool
}

// NewClient creates a transport from cfg. Zero-valued fields fall back to
// DefaultClientConfig values.
func NewClient(cfg ClientConfig) *Client {
	def := DefaultClientConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    cfg.HTTPClient,
		logger:  cfg.Logger,
		debug:   cfg.Debug,
	}
}

// Call performs one API method call and decodes the result envelope.
func (c *Client) Call(ctx context.Context, token, method string, payload *Payload, dest any) error {
	body, contentType, err := payload.Encode()
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", method, err)
	}
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if c.debug {
			c.logger.Debug("api call failed", "method", method, "error", err)
		}
		return fmt.Errorf("%s: %w", method, &NetworkError{Err: err})
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: %w", method, &NetworkError{Err: err})
	}

	if err := decodeEnvelope(raw, dest); err != nil {
		if c.debug {
			c.logger.Debug("api call rejected",
				"method", method,
				"status", resp.StatusCode,
				"error", err,
			)
		}
		return fmt.Errorf("%s: %w", method, err)
	}

	if c.debug {
		c.logger.Debug("api call",
			"method", method,
			"status", resp.StatusCode,
			"duration", time.Since(start),
		)
	}
	return nil
}
