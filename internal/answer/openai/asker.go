// Package openai answers prompts with an OpenAI-compatible chat completion API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"ragdemo/internal/answer"
)

// Config configures the chat completion asker.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// Asker implements answer.Asker on top of go-openai.
type Asker struct {
	client *openai.Client
	model  string
}

// NewAsker creates a chat completion asker. The API key is read from the
// environment variable named by cfg.APIKeyEnv.
func NewAsker(cfg Config) (*Asker, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	clientCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &Asker{client: openai.NewClientWithConfig(clientCfg), model: cfg.Model}, nil
}

// Ask sends the prompt as a single user message.
func (a *Asker) Ask(ctx context.Context, prompt, userID string) answer.Result {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		User: userID,
	})
	if err != nil {
		return toResult(err)
	}
	if len(resp.Choices) == 0 {
		return answer.TransportFailure(errors.New("no choices returned"))
	}
	return answer.SuccessResult(strings.TrimSpace(resp.Choices[0].Message.Content))
}

func toResult(err error) answer.Result {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return answer.HTTPFailure(apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return answer.HTTPFailure(reqErr.HTTPStatusCode, string(reqErr.Body))
	}
	return answer.TransportFailure(err)
}
