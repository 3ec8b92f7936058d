package fastrouter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// ChatService namespaces the chat API.
type ChatService struct {
	Completions *CompletionsService
}

// CompletionsService exposes the chat completions endpoint.
type CompletionsService struct {
	client *Client
}

// Create performs a one-shot chat completion. The request is validated
// locally before any network I/O; a request with Stream set is rejected,
// use CreateStream instead.
func (s *CompletionsService) Create(ctx context.Context, req *CompletionRequest) (*ChatCompletion, error) {
	if req == nil {
		return nil, NewValidationError("request must not be nil")
	}
	if req.Stream {
		return nil, NewValidationError("streaming requests must use CreateStream")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, err := s.client.do(ctx, http.MethodPost, completionsPath, req)
	if err != nil {
		return nil, err
	}

	var completion ChatCompletion
	if err := json.Unmarshal(body, &completion); err != nil {
		var e *Error
		if errors.As(err, &e) {
			return nil, e
		}
		return nil, NewMalformedResponseError("completion body is not valid JSON", err)
	}
	return &completion, nil
}

// CreateStream performs a streaming chat completion. It returns as soon as
// response headers arrive; no body bytes are consumed until the first Recv.
// The caller must drain the stream or call Close to release the transport.
func (s *CompletionsService) CreateStream(ctx context.Context, req *CompletionRequest) (*ChatCompletionStream, error) {
	if req == nil {
		return nil, NewValidationError("request must not be nil")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, err := s.client.doStream(ctx, http.MethodPost, completionsPath, req.WithStreaming())
	if err != nil {
		return nil, err
	}
	return newChatCompletionStream(body, s.client.logger), nil
}
