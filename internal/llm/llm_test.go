package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pavelanni/practice/internal/llm/prompts"
	"github.com/pavelanni/practice/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mcqTask = `{"id":"mcq-presen-1","type":"mcq","prompt":"Choose","items":[` +
	`{"q":"He ___ to work.","choices":["go","goes","going"],"answer":["1"]}]}`

func quoted(t *testing.T, s string) []byte {
	t.Helper()
	data, err := json.Marshal(s)
	require.NoError(t, err)
	return data
}

func TestRecover(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"json string", quoted(t, mcqTask)},
		{"object", []byte(mcqTask)},
		{"object with whitespace", []byte("\n  " + mcqTask + "\n")},
		{"string with leading prose", quoted(t, "Here is your task:\n"+mcqTask)},
		{"string with prose around", quoted(t, "Sure! "+mcqTask+" Good luck.")},
		{"raw text with prose", []byte("Result: " + mcqTask)},
		{"fenced", quoted(t, "```json\n"+mcqTask+"\n```")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := Recover(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, model.TypeMCQ, task.Type)
			assert.Equal(t, "mcq-presen-1", task.ID)
			require.Len(t, task.Items, 1)
			assert.Equal(t, model.Answers{"1"}, task.Items[0].Answer)
		})
	}
}

func TestRecoverParseError(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"empty", []byte("  ")},
		{"garbage", []byte("this is not json at all")},
		{"garbage string", quoted(t, "no object here")},
		{"unbalanced", quoted(t, "start { broken")},
		{"invalid span", quoted(t, "x {not: json} y")},
		{"array", []byte(`[1,2,3]`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Recover(tt.raw)
			var pe *model.ParseError
			require.ErrorAs(t, err, &pe)
			assert.True(t, IsTransient(err))
		})
	}
}

func TestRecoverSchemaMismatch(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantType string
	}{
		{"no type", `{"items":[]}`, ""},
		{"null type", `{"type":null}`, ""},
		{"unknown type", `{"type":"crossword"}`, "crossword"},
		{"numeric type", `{"type":3}`, "3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Recover([]byte(tt.raw))
			var se *model.SchemaMismatchError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.wantType, se.Type)
		})
	}
}

func TestRecoverNormalizesType(t *testing.T) {
	task, obj, err := recoverTask([]byte(`{"type":" MCQ ","items":[{"q":"a ___","choices":["x","y","z"],"answer":"0"}]}`))
	require.NoError(t, err)
	assert.Equal(t, model.TypeMCQ, task.Type)
	assert.NoError(t, model.ValidateJSON(task.Type, obj))
}

type stubTransport struct {
	reply []byte
	err   error
	got   prompts.Request
}

func (s *stubTransport) Send(_ context.Context, req prompts.Request) ([]byte, error) {
	s.got = req
	return s.reply, s.err
}

func TestClientGenerate(t *testing.T) {
	req, err := prompts.New(prompts.Config{Token: "tok"}).Build("Present Simple", "mcq", prompts.Options{})
	require.NoError(t, err)

	t.Run("valid task", func(t *testing.T) {
		st := &stubTransport{reply: quoted(t, mcqTask)}
		task, err := New(st).Generate(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, model.TypeMCQ, task.Type)
		assert.Equal(t, "tok", st.got.Token)
	})

	t.Run("transport failure", func(t *testing.T) {
		st := &stubTransport{err: &model.NetworkError{Wrapped: errors.New("connection refused")}}
		_, err := New(st).Generate(context.Background(), req)
		var ne *model.NetworkError
		require.ErrorAs(t, err, &ne)
		assert.True(t, IsTransient(err))
	})

	t.Run("schema violation", func(t *testing.T) {
		bad := `{"type":"mcq","items":[{"q":"He ___.","choices":["a","b"],"answer":["0"]}]}`
		_, err := New(&stubTransport{reply: []byte(bad)}).Generate(context.Background(), req)
		var ve *model.ValidationError
		require.ErrorAs(t, err, &ve)
	})

	t.Run("invariant violation", func(t *testing.T) {
		bad := `{"type":"order","items":[{"tokens":["she","reads"],"answer":"she often reads"}]}`
		_, err := New(&stubTransport{reply: []byte(bad)}).Generate(context.Background(), req)
		var ve *model.ValidationError
		require.ErrorAs(t, err, &ve)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := New(&stubTransport{reply: quoted(t, "sorry, I cannot")}).Generate(context.Background(), req)
		var pe *model.ParseError
		require.ErrorAs(t, err, &pe)
	})
}

func TestHTTPTransport(t *testing.T) {
	req, err := prompts.New(prompts.Config{Token: "tok"}).Build("Present Simple", "mcq", prompts.Options{})
	require.NoError(t, err)

	t.Run("posts the request", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			var wire map[string]any
			require.NoError(t, json.Unmarshal(body, &wire))
			assert.Equal(t, "tok", wire["token"])
			assert.Equal(t, "gpt-4o-mini", wire["model"])
			assert.EqualValues(t, 4000, wire["max_tokens"])

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(mcqTask)
		}))
		defer srv.Close()

		task, err := New(NewHTTPTransport(srv.URL)).Generate(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "mcq-presen-1", task.ID)
	})

	t.Run("error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream down", http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := NewHTTPTransport(srv.URL).Send(context.Background(), req)
		var ne *model.NetworkError
		require.ErrorAs(t, err, &ne)
		assert.Equal(t, http.StatusBadGateway, ne.Status)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewHTTPTransport(url).Send(context.Background(), req)
		var ne *model.NetworkError
		require.ErrorAs(t, err, &ne)
		assert.Zero(t, ne.Status)
	})
}

func TestOpenAITransport(t *testing.T) {
	req, err := prompts.New(prompts.Config{Token: "tok"}).Build("Present Simple", "mcq", prompts.Options{})
	require.NoError(t, err)

	t.Run("chat completion", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "gpt-4o-mini", body["model"])

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":     "chatcmpl-1",
				"object": "chat.completion",
				"model":  "gpt-4o-mini",
				"choices": []map[string]any{{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": mcqTask},
					"finish_reason": "stop",
				}},
			})
		}))
		defer srv.Close()

		task, err := New(NewOpenAITransport(srv.URL+"/v1", "", "")).Generate(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, model.TypeMCQ, task.Type)
	})

	t.Run("api error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
		}))
		defer srv.Close()

		_, err := NewOpenAITransport(srv.URL+"/v1", "key", "").Send(context.Background(), req)
		var ne *model.NetworkError
		require.ErrorAs(t, err, &ne)
		assert.Equal(t, http.StatusUnauthorized, ne.Status)
	})

	t.Run("no key", func(t *testing.T) {
		noToken := req
		noToken.Token = ""
		_, err := NewOpenAITransport("", "", "").Send(context.Background(), noToken)
		require.Error(t, err)
	})
}

func TestGeminiTransportNoKey(t *testing.T) {
	tr := NewGeminiTransport("", "gpt-4o-mini")
	assert.Equal(t, DefaultGeminiModel, tr.Model)

	_, err := tr.Send(context.Background(), prompts.Request{})
	require.Error(t, err)
}

func TestNewTransport(t *testing.T) {
	tests := []struct {
		backend string
		url     string
		want    any
		wantErr bool
	}{
		{BackendProxy, "http://localhost/openai", &HTTPTransport{}, false},
		{"", "http://localhost/openai", &HTTPTransport{}, false},
		{BackendProxy, "", nil, true},
		{BackendOpenAI, "", &OpenAITransport{}, false},
		{BackendGemini, "", &GeminiTransport{}, false},
		{"carrier-pigeon", "", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			tr, err := NewTransport(tt.backend, tt.url, "", "")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, tr)
		})
	}
}
