// Package narrator generates commentary for tournament rankings through an
// OpenAI-compatible chat-completion API (Groq by default).
package narrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const defaultBaseURL = "https://api.groq.com/openai/v1"

const systemPrompt = `You are an over-the-top Brazilian football radio commentator.

Below is the current ranking of the 'Cartola de Investimentos' trading contest.
Your mission:
1. Identify the leader and the last place.
2. Make a short (3 lines max), funny comment.
3. Use football slang ("relegation zone", "golaço", "offside").
4. Do NOT repeat the list, only comment on it.`

// Client produces ranking commentary. It implements bot.Narrator.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
}

// Config holds narrator configuration.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
}

// New creates a narrator client. The base URL defaults to Groq's
// OpenAI-compatible endpoint.
func New(cfg Config) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	} else {
		clientCfg.BaseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "llama-3.3-70b-versatile"
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.8
	}
	return &Client{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		temperature: temperature,
	}
}

// Narrate returns commentary for the rendered ranking text. The caller treats
// any error as "no commentary"; the ranking reply stands on its own.
func (c *Client) Narrate(ctx context.Context, ranking string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "CURRENT RANKING:\n" + ranking},
		},
	})
	if err != nil {
		return "", fmt.Errorf("narrator completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from narrator model")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
