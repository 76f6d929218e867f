// Package openai provides the fallback language model, used when the local
// Ollama instance is down or keeps failing.
package openai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type Generator struct {
	client *openai.Client
	model  string
}

// NewGenerator builds a chat-completion generator. A custom baseURL points
// the client at any OpenAI-compatible server.
func NewGenerator(apiKey, baseURL, model string) *Generator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &Generator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (g *Generator) Name() string {
	return "openai/" + g.model
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat completion: empty choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
