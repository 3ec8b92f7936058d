package fastrouter

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultBaseURL is the production FastRouter API endpoint.
	DefaultBaseURL = "https://api.fastrouter.ai"

	// DefaultTimeout bounds the wait for initial response headers. Streaming
	// responses may outlive it once headers have arrived.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the number of retries for retryable failures
	// (429, 5xx, network errors) on non-streaming requests.
	DefaultMaxRetries = 2

	// EnvAPIKey is the environment variable consulted when Config.APIKey is
	// empty.
	EnvAPIKey = "FASTROUTER_API_KEY"
)

// Config holds client configuration. It is read once at construction and
// treated as immutable for the lifetime of the client.
type Config struct {
	// APIKey authenticates every request. When empty, the FASTROUTER_API_KEY
	// environment variable (or a .env file in the working directory) is
	// consulted; construction fails if neither is set.
	APIKey string

	// BaseURL overrides the API endpoint. Trailing slashes are stripped.
	BaseURL string

	// Timeout bounds the wait for initial response headers. Zero means
	// DefaultTimeout.
	Timeout time.Duration

	// MaxRetries is the retry budget for non-streaming requests. Zero means
	// DefaultMaxRetries; a negative value disables retries. Streaming
	// requests never retry, as partial data may already have been sent.
	MaxRetries int

	// InitialBackoff is the delay before the first retry; it doubles per
	// attempt up to MaxBackoff, with jitter. Zero means 500ms.
	InitialBackoff time.Duration

	// MaxBackoff caps the retry delay. Zero means 8s.
	MaxBackoff time.Duration

	// Logger receives SDK diagnostics (request dispatch at Debug, skipped
	// stream lines at Warn). Nil means slog.Default().
	Logger *slog.Logger

	// HTTPClient overrides the transport. Nil means a pooled client with
	// ResponseHeaderTimeout wired to Timeout and no overall deadline.
	HTTPClient *http.Client
}

// withDefaults fills zero-valued fields.
func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.InitialBackoff == 0 {
		c.InitialBackoff = 500 * time.Millisecond
	}
	if c.MaxBackoff == 0 {
		c.MaxBackoff = 8 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// apiKeyFromEnv resolves the API key from the environment, with an optional
// .env file in the working directory as a fallback source.
func apiKeyFromEnv() string {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // .env file is optional
	v.AutomaticEnv()
	return v.GetString(EnvAPIKey)
}
