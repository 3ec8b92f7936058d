// Package httpclient provides a centralized HTTP client factory for the SDK
// with unified transport configuration and response decompression.
package httpclient

import (
	"compress/flate"
	"compress/gzip"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
)

// Config holds transport options for SDK HTTP clients.
type Config struct {
	// MaxIdleConns controls the maximum number of idle (keep-alive) connections across all hosts
	MaxIdleConns int

	// MaxIdleConnsPerHost controls the maximum idle (keep-alive) connections to keep per-host
	MaxIdleConnsPerHost int

	// IdleConnTimeout is the maximum amount of time an idle (keep-alive) connection will remain idle before closing itself
	IdleConnTimeout time.Duration

	// DialTimeout is the maximum amount of time a dial will wait for a connect to complete
	DialTimeout time.Duration

	// KeepAlive specifies the interval between keep-alive probes for an active network connection
	KeepAlive time.Duration

	// TLSHandshakeTimeout specifies the maximum amount of time to wait for a TLS handshake
	TLSHandshakeTimeout time.Duration

	// ResponseHeaderTimeout bounds the wait for a server's response headers.
	// There is deliberately no overall request timeout: a streaming response
	// can legitimately outlive any fixed duration, so lifecycle control past
	// the headers relies on context cancellation.
	ResponseHeaderTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults for API clients.
func DefaultConfig() Config {
	return Config{
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
		IdleConnTimeout:       90 * time.Second,
		DialTimeout:           30 * time.Second,
		KeepAlive:             30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
	}
}

// New creates an HTTP client with the provided configuration.
func New(cfg Config) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.DialTimeout,
			KeepAlive: cfg.KeepAlive,
		}).DialContext,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
		ForceAttemptHTTP2:     true,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{Transport: transport}
}

// DecompressBody wraps body in a decompressing reader according to the
// Content-Encoding header value. Supports gzip, deflate, and brotli (br);
// unknown or empty encodings pass through untouched. Closing the returned
// reader closes the original body.
func DecompressBody(body io.ReadCloser, encoding string) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "gzip":
		zr, err := gzip.NewReader(body)
		if err != nil {
			return nil, err
		}
		return &decompressedBody{reader: zr, underlying: body}, nil
	case "deflate":
		return &decompressedBody{reader: flate.NewReader(body), underlying: body}, nil
	case "br":
		return &decompressedBody{reader: brotli.NewReader(body), underlying: body}, nil
	default:
		return body, nil
	}
}

// decompressedBody reads from a decompressing reader while closing the
// original response body.
type decompressedBody struct {
	reader     io.Reader
	underlying io.ReadCloser
}

func (d *decompressedBody) Read(p []byte) (int, error) {
	return d.reader.Read(p)
}

func (d *decompressedBody) Close() error {
	if c, ok := d.reader.(io.Closer); ok {
		_ = c.Close()
	}
	return d.underlying.Close()
}
