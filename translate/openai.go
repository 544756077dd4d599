package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// openAIBackend speaks the OpenAI chat completion API. With a custom base
// URL it also covers Groq, Ollama, and any other compatible service.
type openAIBackend struct {
	client *openai.Client
	model  string
	name   string
}

func newOpenAIBackend(prov Provider) *openAIBackend {
	cfg := openai.DefaultConfig(prov.APIKey)
	if prov.BaseURL != "" {
		cfg.BaseURL = prov.BaseURL
	}
	name := prov.Name
	if name == "" {
		name = prov.ID
	}
	return &openAIBackend{
		client: openai.NewClientWithConfig(cfg),
		model:  prov.Model,
		name:   name,
	}
}

func (b *openAIBackend) Name() string { return b.name }

func (b *openAIBackend) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", Retryable(fmt.Errorf("%s returned no choices", b.name))
	}
	return resp.Choices[0].Message.Content, nil
}

// classifyOpenAIError maps API errors onto the client's retry taxonomy:
// 429 becomes RateLimitError, 5xx and transport failures are retryable,
// other 4xx are permanent.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return &RateLimitError{Body: apiErr.Message}
		case apiErr.HTTPStatusCode >= 500:
			return Retryable(err)
		}
		return err
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		switch {
		case reqErr.HTTPStatusCode == http.StatusTooManyRequests:
			return &RateLimitError{}
		case reqErr.HTTPStatusCode >= 500:
			return Retryable(err)
		}
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return Retryable(err)
}
