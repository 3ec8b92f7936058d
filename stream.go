package fastrouter

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// maxConsecutiveDecodeFailures is the number of malformed stream lines in a
// row the decoder tolerates before failing the stream. Upstream providers
// are known to emit the occasional partial line, so a single bad payload is
// skipped rather than aborting the whole stream.
const maxConsecutiveDecodeFailures = 3

// doneSentinel is the literal data payload that terminates an SSE stream.
const doneSentinel = "[DONE]"

// sse line format: "data: {json}" with an optional space after the colon.
const dataPrefix = "data:"

// ChatCompletionStream is a lazy, forward-only sequence of chunks backed by
// an open SSE response body. It is single-pass and not restartable; the
// stream owns the body and releases it exactly once on every exit path
// (clean termination, decode failure, read error, or caller Close).
//
// A stream is not safe for concurrent use; each call owns its own stream
// and no state is shared between calls.
type ChatCompletionStream struct {
	body     io.ReadCloser
	scanner  *bufio.Scanner
	logger   *slog.Logger
	failures int
	closed   bool
	done     bool
}

func newChatCompletionStream(body io.ReadCloser, logger *slog.Logger) *ChatCompletionStream {
	scanner := bufio.NewScanner(body)
	// SSE data lines can exceed the default 64 KiB scanner limit for large
	// deltas; allow up to 1 MiB per line.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &ChatCompletionStream{
		body:    body,
		scanner: scanner,
		logger:  logger,
	}
}

// Recv blocks until the next chunk arrives on the wire and returns it.
// Chunks are delivered in arrival order. It returns io.EOF on clean
// termination ([DONE] sentinel or end of stream) and a stream decode error
// once maxConsecutiveDecodeFailures malformed lines arrive in a row. After
// any terminal return the underlying transport has been released and all
// further calls return io.EOF.
func (s *ChatCompletionStream) Recv() (*ChatCompletionChunk, error) {
	if s.done || s.closed {
		return nil, io.EOF
	}

	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())

		// Blank lines separate events; lines starting with ":" are
		// comments/keep-alives. Both are protocol noise, not errors.
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))

		if payload == doneSentinel {
			s.finish()
			return nil, io.EOF
		}

		var chunk ChatCompletionChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			s.failures++
			s.logger.Warn("skipping malformed stream line",
				"error", err,
				"consecutive_failures", s.failures,
				"data", truncate(payload, 200),
			)
			if s.failures >= maxConsecutiveDecodeFailures {
				s.finish()
				return nil, NewStreamDecodeError(
					fmt.Sprintf("%d consecutive malformed stream lines", s.failures), err)
			}
			continue
		}
		s.failures = 0
		return &chunk, nil
	}

	if err := s.scanner.Err(); err != nil {
		s.finish()
		return nil, NewAPIError("stream read failed: "+err.Error(), err)
	}

	// Stream ended without a [DONE] sentinel; treat as clean termination.
	s.finish()
	return nil, io.EOF
}

// finish marks the stream exhausted and releases the transport.
func (s *ChatCompletionStream) finish() {
	s.done = true
	_ = s.Close()
}

// Close releases the underlying transport. It is safe to call multiple
// times and must be called when abandoning iteration early.
func (s *ChatCompletionStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}

// truncate limits a string to maxLen bytes for log output.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
