package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pavelanni/practice/internal/llm/prompts"
	"github.com/pavelanni/practice/internal/model"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when no model is configured for the gemini backend.
const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiTransport sends requests to the Gemini API.
type GeminiTransport struct {
	APIKey string
	Model  string
}

// NewGeminiTransport creates a transport. When apiKey is empty the token of
// each request is used as the key.
func NewGeminiTransport(apiKey, modelName string) *GeminiTransport {
	modelName = strings.TrimSpace(modelName)
	if modelName == "" || strings.HasPrefix(modelName, "gpt-") {
		modelName = DefaultGeminiModel
	}
	return &GeminiTransport{APIKey: strings.TrimSpace(apiKey), Model: modelName}
}

// Send implements Transport.
func (t *GeminiTransport) Send(ctx context.Context, req prompts.Request) ([]byte, error) {
	key := t.APIKey
	if key == "" {
		key = req.Token
	}
	if key == "" {
		return nil, errors.New("gemini backend: no api key and no request token")
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(key))
	if err != nil {
		return nil, &model.NetworkError{Wrapped: err}
	}
	defer cl.Close()

	m := cl.GenerativeModel(t.Model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(req.Temperature),
		MaxOutputTokens:  ptrInt32(int32(req.MaxTokens)),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(req.System())},
	}

	resp, err := m.GenerateContent(ctx, genai.Text(req.User()))
	if err != nil {
		var gErr *googleapi.Error
		if errors.As(err, &gErr) {
			return nil, &model.NetworkError{Status: gErr.Code, Wrapped: err}
		}
		return nil, &model.NetworkError{Wrapped: err}
	}

	txt := firstText(resp)
	if txt == "" {
		return nil, &model.ParseError{Reason: "empty gemini reply"}
	}
	data, err := json.Marshal(txt)
	if err != nil {
		return nil, fmt.Errorf("encode reply: %w", err)
	}
	return data, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
func ptrInt32(v int32) *int32       { return &v }
