// Command fastrouter-chat is a minimal example client. It sends a prompt to
// the FastRouter API and prints either the full completion or the streamed
// deltas as they arrive.
//
// Usage:
//
//	FASTROUTER_API_KEY=fr-... fastrouter-chat -model openai/gpt-4.1 "Why is the sky blue?"
//	FASTROUTER_API_KEY=fr-... fastrouter-chat -stream "Tell me a story"
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"

	fastrouter "github.com/fastrouter-ai/fastrouter-go"
)

func main() {
	model := flag.String("model", "openai/gpt-4.1", "model identifier")
	baseURL := flag.String("base-url", "", "override the API base URL (e.g. a local fastrouter-mock)")
	stream := flag.Bool("stream", false, "stream the response")
	maxTokens := flag.Int("max-tokens", 0, "cap the completion length (0 = backend default)")
	flag.Parse()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	prompt := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if prompt == "" {
		fmt.Fprintln(os.Stderr, "usage: fastrouter-chat [flags] <prompt>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	client, err := fastrouter.New(fastrouter.Config{BaseURL: *baseURL})
	if err != nil {
		logger.Error("client construction failed", "error", err)
		os.Exit(1)
	}

	req := &fastrouter.CompletionRequest{
		Model: *model,
		Messages: []fastrouter.Message{
			{Role: fastrouter.RoleUser, Content: prompt},
		},
	}
	if *maxTokens > 0 {
		req.MaxTokens = fastrouter.Int(*maxTokens)
	}

	ctx := context.Background()
	if *stream {
		if err := runStreaming(ctx, client, req); err != nil {
			logger.Error("streaming completion failed", "error", err)
			os.Exit(1)
		}
		return
	}

	resp, err := client.Chat.Completions.Create(ctx, req)
	if err != nil {
		logger.Error("completion failed", "error", err)
		os.Exit(1)
	}
	if len(resp.Choices) == 0 {
		logger.Error("completion returned no choices", "id", resp.ID)
		os.Exit(1)
	}
	fmt.Println(resp.Choices[0].Message.Content)
	if resp.Usage != nil {
		logger.Info("usage",
			"prompt_tokens", resp.Usage.PromptTokens,
			"completion_tokens", resp.Usage.CompletionTokens,
			"total_tokens", resp.Usage.TotalTokens,
		)
	}
}

func runStreaming(ctx context.Context, client *fastrouter.Client, req *fastrouter.CompletionRequest) error {
	stream, err := client.Chat.Completions.CreateStream(ctx, req)
	if err != nil {
		return err
	}
	defer stream.Close()

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Print(chunk.Content())
	}
}
