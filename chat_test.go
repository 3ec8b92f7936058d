package fastrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCompletion(t *testing.T) {
	var captured map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))

		_, _ = w.Write([]byte(completionFixture))
	}))

	completion, err := client.Chat.Completions.Create(context.Background(), &CompletionRequest{
		Model: "openai/gpt-4.1",
		Messages: []Message{
			{Role: RoleSystem, Content: "Be brief."},
			{Role: RoleUser, Content: "Hello"},
		},
		MaxTokens:   Int(128),
		Temperature: Float64(0.2),
	})
	require.NoError(t, err)

	assert.Equal(t, "chatcmpl-123", completion.ID)
	assert.Equal(t, "Hello there", completion.Choices[0].Message.Content)
	require.NotNil(t, completion.Usage)
	assert.Equal(t, 30, completion.Usage.TotalTokens)

	// The wire request carries exactly what was set. In particular the
	// stream flag is absent on the synchronous path, not serialized false.
	assert.Equal(t, "openai/gpt-4.1", captured["model"])
	assert.Equal(t, float64(128), captured["max_tokens"])
	assert.NotContains(t, captured, "stream")
	assert.NotContains(t, captured, "top_p")
}

func TestCreateRejectsStreamFlag(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))

	req := validRequest()
	req.Stream = true

	_, err := client.Chat.Completions.Create(context.Background(), req)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "CreateStream")
	assert.Equal(t, int32(0), calls.Load())
}

func TestCreateValidationFailsBeforeNetwork(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))

	req := validRequest()
	req.Model = ""

	_, err := client.Chat.Completions.Create(context.Background(), req)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Equal(t, int32(0), calls.Load())

	_, err = client.Chat.Completions.Create(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Equal(t, int32(0), calls.Load())
}

func TestCreateMalformedResponseBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not JSON", `{truncated`},
		{"missing required fields", `{"object":"chat.completion"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))

			_, err := client.Chat.Completions.Create(context.Background(), validRequest())
			require.Error(t, err)
			assert.True(t, IsMalformedResponseError(err), "got %v", err)
		})
	}
}

func TestCreateProviderRoutingPassThrough(t *testing.T) {
	var captured map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))
		_, _ = w.Write([]byte(completionFixture))
	}))

	req := validRequest()
	req.Provider = &ProviderOptions{Only: []string{"azure", "openai"}}
	req.ExtraFields = map[string]any{"seed": 42}

	_, err := client.Chat.Completions.Create(context.Background(), req)
	require.NoError(t, err)

	provider, ok := captured["provider"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"azure", "openai"}, provider["only"])
	assert.Equal(t, float64(42), captured["seed"])
}

func TestCreateStream(t *testing.T) {
	words := []string{"Hello", " world", "!"}
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))

		var captured map[string]any
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))
		assert.Equal(t, true, captured["stream"])

		w.Header().Set("Content-Type", "text/event-stream")
		for _, word := range words {
			fmt.Fprintf(w, "data: {\"id\":\"chatcmpl-9\",\"object\":\"chat.completion.chunk\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", word)
		}
		fmt.Fprint(w, `data: {"id":"chatcmpl-9","object":"chat.completion.chunk","choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`+"\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))

	stream, err := client.Chat.Completions.CreateStream(context.Background(), validRequest())
	require.NoError(t, err)
	defer func() {
		require.NoError(t, stream.Close())
	}()

	var sb strings.Builder
	var finish string
	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		sb.WriteString(chunk.Content())
		if len(chunk.Choices) > 0 && chunk.Choices[0].FinishReason != nil {
			finish = *chunk.Choices[0].FinishReason
		}
	}

	assert.Equal(t, "Hello world!", sb.String())
	assert.Equal(t, "stop", finish)
}

func TestCreateStreamDoesNotMutateRequest(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))

	req := validRequest()
	stream, err := client.Chat.Completions.CreateStream(context.Background(), req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stream.Close() })

	assert.False(t, req.Stream)
}

func TestCreateStreamUpstreamError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid key"}}`))
	}))

	_, err := client.Chat.Completions.CreateStream(context.Background(), validRequest())
	require.Error(t, err)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, ErrorTypeAuthentication, e.Type)
	assert.Equal(t, http.StatusUnauthorized, e.StatusCode)
	assert.Equal(t, "invalid key", e.Message)
}

func TestCreateStreamNeverRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	client, err := New(Config{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		MaxRetries: 3,
		Logger:     discardLogger(),
	})
	require.NoError(t, err)

	_, err = client.Chat.Completions.CreateStream(context.Background(), validRequest())
	require.Error(t, err)
	assert.True(t, IsAPIError(err))
	assert.Equal(t, int32(1), calls.Load())
}
