// Package fastrouter is the Go client SDK for the FastRouter chat-completion
// API. It exposes an OpenAI-compatible surface:
//
//	client, err := fastrouter.New(fastrouter.Config{APIKey: "fr-..."})
//	if err != nil {
//		log.Fatal(err)
//	}
//	resp, err := client.Chat.Completions.Create(ctx, &fastrouter.CompletionRequest{
//		Model: "openai/gpt-4.1",
//		Messages: []fastrouter.Message{
//			{Role: fastrouter.RoleUser, Content: "Hello"},
//		},
//	})
//
// Streaming completions are consumed through a forward-only stream:
//
//	stream, err := client.Chat.Completions.CreateStream(ctx, req)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer stream.Close()
//	for {
//		chunk, err := stream.Recv()
//		if errors.Is(err, io.EOF) {
//			break
//		}
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Print(chunk.Content())
//	}
//
// All errors raised by the SDK are *fastrouter.Error values carrying an
// ErrorType discriminator, so callers can handle them as a family via
// errors.As or target a specific kind with the Is* predicates.
package fastrouter
