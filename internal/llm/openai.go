package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pavelanni/practice/internal/llm/prompts"
	"github.com/pavelanni/practice/internal/model"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAITransport talks to an OpenAI-compatible chat completion API directly.
type OpenAITransport struct {
	baseURL string
	apiKey  string
	model   string
	api     *openai.Client
}

// NewOpenAITransport creates a transport. When apiKey is empty the token of
// each request is used as the key.
func NewOpenAITransport(baseURL, apiKey, modelName string) *OpenAITransport {
	t := &OpenAITransport{baseURL: baseURL, apiKey: apiKey, model: modelName}
	if apiKey != "" {
		t.api = t.newClient(apiKey)
	}
	return t
}

func (t *OpenAITransport) newClient(key string) *openai.Client {
	config := openai.DefaultConfig(key)
	if t.baseURL != "" {
		config.BaseURL = t.baseURL
	}
	config.HTTPClient = instrumentedClient()
	return openai.NewClientWithConfig(config)
}

// Send implements Transport. The reply is the message content encoded as a
// JSON string, the same shape the proxy returns.
func (t *OpenAITransport) Send(ctx context.Context, req prompts.Request) ([]byte, error) {
	api := t.api
	if api == nil {
		if req.Token == "" {
			return nil, errors.New("openai backend: no api key and no request token")
		}
		api = t.newClient(req.Token)
	}

	modelName := req.Model
	if t.model != "" {
		modelName = t.model
	}

	resp, err := api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    modelName,
		Messages: req.Messages,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, networkError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &model.ParseError{Reason: "reply has no choices"}
	}

	data, err := json.Marshal(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("encode reply: %w", err)
	}
	return data, nil
}

func networkError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &model.NetworkError{Status: apiErr.HTTPStatusCode, Wrapped: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &model.NetworkError{Status: reqErr.HTTPStatusCode, Wrapped: err}
	}
	return &model.NetworkError{Wrapped: err}
}
