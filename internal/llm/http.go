package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pavelanni/practice/internal/llm/prompts"
	"github.com/pavelanni/practice/internal/model"
)

// maxReplyBytes bounds how much of a reply body is read.
const maxReplyBytes = 4 << 20

// HTTPTransport posts the request as JSON to a generation proxy that answers
// with the generated content.
type HTTPTransport struct {
	url    string
	client *http.Client
}

// NewHTTPTransport creates a transport for the proxy at url.
func NewHTTPTransport(url string) *HTTPTransport {
	return &HTTPTransport{url: url, client: instrumentedClient()}
}

// Send implements Transport.
func (t *HTTPTransport) Send(ctx context.Context, req prompts.Request) ([]byte, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode generation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create generation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, &model.NetworkError{Wrapped: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, &model.NetworkError{Wrapped: fmt.Errorf("read reply: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &model.NetworkError{Status: resp.StatusCode, Wrapped: errors.New(snippet(data))}
	}
	return data, nil
}

func snippet(data []byte) string {
	s := strings.TrimSpace(string(data))
	if r := []rune(s); len(r) > 200 {
		s = string(r[:200]) + "..."
	}
	return s
}
