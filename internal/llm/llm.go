package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pavelanni/practice/internal/llm/prompts"
	"github.com/pavelanni/practice/internal/model"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

// Backend names accepted by NewTransport.
const (
	BackendProxy  = "proxy"
	BackendOpenAI = "openai"
	BackendGemini = "gemini"
)

// Transport sends a generation request and returns the raw reply body.
// Transport failures are returned as *model.NetworkError.
type Transport interface {
	Send(ctx context.Context, req prompts.Request) ([]byte, error)
}

// Client sends generation requests and recovers tasks from the replies.
type Client struct {
	transport Transport
}

// New creates a new generation client.
func New(t Transport) *Client {
	return &Client{transport: t}
}

// Generate sends req and returns the recovered, validated task. It does not
// retry; every failure is returned to the caller.
func (c *Client) Generate(ctx context.Context, req prompts.Request) (*model.Task, error) {
	raw, err := c.transport.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	slog.Debug("generation reply", "type", req.Type, "raw", string(raw))

	task, obj, err := recoverTask(raw)
	if err != nil {
		return nil, err
	}
	if req.Type != "" && task.Type != req.Type {
		slog.Warn("generated task has a different type", "want", req.Type, "got", task.Type)
	}
	if err := model.ValidateJSON(task.Type, obj); err != nil {
		return nil, err
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// NewTransport returns the transport for backend. url is the proxy endpoint
// or the OpenAI-compatible base URL; key and modelName override the request
// token and model when set.
func NewTransport(backend, url, key, modelName string) (Transport, error) {
	switch backend {
	case BackendProxy, "":
		if url == "" {
			return nil, errors.New("proxy backend needs an endpoint url")
		}
		return NewHTTPTransport(url), nil
	case BackendOpenAI:
		return NewOpenAITransport(url, key, modelName), nil
	case BackendGemini:
		return NewGeminiTransport(key, modelName), nil
	}
	return nil, fmt.Errorf("unknown backend %q", backend)
}

func instrumentedClient() *http.Client {
	return &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanOptions(trace.WithSpanKind(trace.SpanKindClient)),
		),
	}
}
