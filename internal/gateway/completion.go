package gateway

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
)

// Complete sends a single-turn chat completion and returns the assistant
// text. Used by the answer surface to stuff retrieved chunks into a prompt.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int64, temperature float64) (string, error) {
	if c.inferenceModel == "" {
		return "", fmt.Errorf("inference model is not configured")
	}

	resp, err := c.inference.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model:       shared.ChatModel(c.inferenceModel),
		MaxTokens:   openai.Int(maxTokens),
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
