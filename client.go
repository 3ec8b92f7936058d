package fastrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fastrouter-ai/fastrouter-go/internal/httpclient"
)

// Version is the SDK version reported in the User-Agent header.
const Version = "0.1.0"

const (
	completionsPath = "/api/v1/chat/completions"
	healthPath      = "/health"

	// Error bodies on the streaming path are bounded; a real error payload
	// is a short JSON object.
	maxErrorBodyBytes = 4096
)

// Client is the FastRouter API client. Configuration is immutable after
// construction; concurrent calls share no mutable state.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger

	// Chat namespaces the chat completion operations, mirroring the
	// upstream SDK surface (client.Chat.Completions.Create).
	Chat *ChatService
}

// New creates a FastRouter client. The API key falls back to the
// FASTROUTER_API_KEY environment variable when Config.APIKey is empty;
// construction fails with an authentication error when neither is present.
func New(cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.APIKey == "" {
		cfg.APIKey = apiKeyFromEnv()
	}
	if cfg.APIKey == "" {
		return nil, NewAuthenticationError("no API key provided and " + EnvAPIKey + " is not set")
	}

	hc := cfg.HTTPClient
	if hc == nil {
		tc := httpclient.DefaultConfig()
		tc.ResponseHeaderTimeout = cfg.Timeout
		hc = httpclient.New(tc)
	}

	c := &Client{
		config:     cfg,
		httpClient: hc,
		logger:     cfg.Logger,
	}
	c.Chat = &ChatService{Completions: &CompletionsService{client: c}}
	return c, nil
}

// Health checks the status of the FastRouter API.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	body, err := c.do(ctx, http.MethodGet, healthPath, nil)
	if err != nil {
		return nil, err
	}
	return parseHealthResponse(body), nil
}

// do executes a non-streaming request with retries and returns the response
// body. Retries apply to network errors, 429, and 5xx; everything else maps
// straight through the error taxonomy.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	maxAttempts := c.config.MaxRetries + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, NewAPIError("request cancelled: "+ctx.Err().Error(), ctx.Err())
			case <-time.After(c.backoffDelay(attempt)):
			}
		}

		status, body, err := c.roundTrip(ctx, method, path, payload)
		if err != nil {
			lastErr = err
			continue
		}
		if status >= 200 && status < 300 {
			return body, nil
		}

		apiErr := ParseAPIError(status, body)
		if !retryableStatus(status) {
			return nil, apiErr
		}
		lastErr = apiErr
	}
	return nil, lastErr
}

// doStream executes a streaming request and returns the raw response body
// with no bytes consumed. Streaming requests are never retried.
func (c *Client) doStream(ctx context.Context, method, path string, payload any) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, method, path, payload, true)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewAPIError("request failed: "+err.Error(), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		if readErr != nil {
			body = nil
		}
		_ = resp.Body.Close()
		return nil, ParseAPIError(resp.StatusCode, body)
	}
	return resp.Body, nil
}

// roundTrip executes a single non-streaming HTTP request.
func (c *Client) roundTrip(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	req, err := c.newRequest(ctx, method, path, payload, false)
	if err != nil {
		return 0, nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, NewAPIError("request failed: "+err.Error(), err)
	}

	reader, err := httpclient.DecompressBody(resp.Body, resp.Header.Get("Content-Encoding"))
	if err != nil {
		_ = resp.Body.Close()
		return 0, nil, NewAPIError("failed to decompress response: "+err.Error(), err)
	}
	defer func() {
		_ = reader.Close()
	}()

	body, err := io.ReadAll(reader)
	if err != nil {
		return 0, nil, NewAPIError("failed to read response: "+err.Error(), err)
	}
	return resp.StatusCode, body, nil
}

// newRequest builds an HTTP request with authentication and tracing headers.
func (c *Client) newRequest(ctx context.Context, method, path string, payload any, stream bool) (*http.Request, error) {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, NewValidationError("failed to encode request body: " + err.Error())
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, bodyReader)
	if err != nil {
		return nil, NewValidationError("failed to build request: " + err.Error())
	}

	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("User-Agent", "fastrouter-go/"+Version)
	req.Header.Set("X-Request-Id", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	} else {
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Accept-Encoding", "gzip, br")
	}

	c.logger.Debug("dispatching request",
		"method", method,
		"path", path,
		"stream", stream,
		"request_id", requestID,
	)
	return req, nil
}

// backoffDelay computes the exponential backoff with jitter for a retry
// attempt (1-based).
func (c *Client) backoffDelay(attempt int) time.Duration {
	d := float64(c.config.InitialBackoff) * math.Pow(2, float64(attempt-1))
	if max := float64(c.config.MaxBackoff); d > max {
		d = max
	}
	// 50-100% of the computed delay
	return time.Duration(d/2 + rand.Float64()*d/2)
}

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
