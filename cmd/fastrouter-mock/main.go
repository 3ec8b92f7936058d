// Command fastrouter-mock is a local stand-in for the FastRouter API, useful
// for demos and manual SDK testing. It serves the chat completions endpoint
// (both modes) and the health endpoint with canned responses.
//
// Usage:
//
//	fastrouter-mock -addr :8084 -delay 50ms
//	FASTROUTER_API_KEY=anything fastrouter-chat -base-url http://localhost:8084 "hi"
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/lmittmann/tint"

	fastrouter "github.com/fastrouter-ai/fastrouter-go"
)

const cannedReply = "This is a canned reply from the fastrouter-mock backend. " +
	"Point the SDK at this server to exercise both completion modes without credentials."

func main() {
	addr := flag.String("addr", ":8084", "listen address")
	delay := flag.Duration("delay", 30*time.Millisecond, "delay between streamed chunks")
	flag.Parse()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	e.POST("/api/v1/chat/completions", func(c echo.Context) error {
		var req fastrouter.CompletionRequest
		if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errorBody("request body is not valid JSON"))
		}
		if req.Model == "" || len(req.Messages) == 0 {
			return c.JSON(http.StatusBadRequest, errorBody("model and messages are required"))
		}

		logger.Info("completion request",
			"model", req.Model,
			"messages", len(req.Messages),
			"stream", req.Stream,
		)

		if req.Stream {
			return streamCompletion(c, req.Model, *delay)
		}
		return c.JSON(http.StatusOK, completion(req.Model))
	})

	logger.Info("fastrouter-mock listening", "addr", *addr)
	if err := e.Start(*addr); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func errorBody(message string) map[string]any {
	return map[string]any{"error": map[string]any{"message": message}}
}

func completion(model string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-" + uuid.NewString(),
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   model,
		"choices": []map[string]any{{
			"index": 0,
			"message": map[string]any{
				"role":    "assistant",
				"content": cannedReply,
			},
			"finish_reason": "stop",
		}},
		"usage": map[string]any{
			"prompt_tokens":     8,
			"completion_tokens": 24,
			"total_tokens":      32,
			"cost":              0.0001,
			"provider":          "mock",
		},
	}
}

func streamCompletion(c echo.Context, model string, delay time.Duration) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.WriteHeader(http.StatusOK)

	id := "chatcmpl-" + uuid.NewString()
	words := strings.Fields(cannedReply)
	for i, word := range words {
		if i < len(words)-1 {
			word += " "
		}
		writeChunk(res, chunk(id, model, word, nil))
		time.Sleep(delay)
	}
	reason := "stop"
	writeChunk(res, chunk(id, model, "", &reason))
	fmt.Fprint(res, "data: [DONE]\n\n")
	res.Flush()
	return nil
}

func chunk(id, model, content string, finishReason *string) map[string]any {
	delta := map[string]any{}
	if content != "" {
		delta["content"] = content
	}
	return map[string]any{
		"id":      id,
		"object":  "chat.completion.chunk",
		"created": time.Now().Unix(),
		"model":   model,
		"choices": []map[string]any{{
			"index":         0,
			"delta":         delta,
			"finish_reason": finishReason,
		}},
	}
}

func writeChunk(res *echo.Response, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(res, "data: %s\n\n", data)
	res.Flush()
}
