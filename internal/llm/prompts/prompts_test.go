package prompts

import (
	"encoding/json"
	"testing"

	"github.com/pavelanni/practice/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemCount(t *testing.T) {
	tests := []struct {
		name  string
		typ   model.Type
		items int
		want  int
	}{
		{"match clamps to minimum", model.TypeMatch, 3, 6},
		{"match clamps to maximum", model.TypeMatch, 20, 12},
		{"match in range", model.TypeMatch, 9, 9},
		{"match default", model.TypeMatch, 0, 8},
		{"short halves", model.TypeShort, 10, 5},
		{"short clamps to minimum", model.TypeShort, 2, 3},
		{"short clamps to maximum", model.TypeShort, 30, 6},
		{"short default", model.TypeShort, 0, 3},
		{"mcq default", model.TypeMCQ, 0, 10},
		{"order explicit", model.TypeOrder, 4, 4},
		{"writing default", model.TypeWriting, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ItemCount(tt.typ, tt.items))
		})
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{"Present Simple", "presen"},
		{"  to be  ", "to-be"},
		{"A/An", "a-an"},
		{"Теперішній час", DefaultSeed},
		{"", DefaultSeed},
		{"---", DefaultSeed},
	}
	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.topic))
		})
	}
}

func TestBuild(t *testing.T) {
	b := New(Config{Token: "tok-1"})

	t.Run("request parameters", func(t *testing.T) {
		req, err := b.Build("Past Simple", "gap", Options{})
		require.NoError(t, err)
		assert.Equal(t, "tok-1", req.Token)
		assert.Equal(t, DefaultModel, req.Model)
		assert.InDelta(t, 0.3, req.Temperature, 1e-6)
		assert.Equal(t, 4000, req.MaxTokens)
		assert.Equal(t, model.TypeGap, req.Type)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)
	})

	t.Run("system prompt describes the type", func(t *testing.T) {
		req, err := b.Build("Past Simple", "order", Options{Items: 4})
		require.NoError(t, err)
		sys := req.System()
		assert.Contains(t, sys, `"type": "order"`)
		assert.Contains(t, sys, `"id": "order-past-s-1"`)
		assert.Contains(t, sys, "Рівно 4 пунктів")
		assert.Contains(t, sys, "українська")
		assert.Contains(t, req.User(), "Past Simple")
	})

	t.Run("unknown type falls back to mcq", func(t *testing.T) {
		req, err := b.Build("Past Simple", "crossword", Options{})
		require.NoError(t, err)
		assert.Equal(t, model.TypeMCQ, req.Type)
		assert.Contains(t, req.System(), `"type": "mcq"`)
		assert.Contains(t, req.User(), "Кількість пунктів: 10")
	})

	t.Run("match pair count is clamped", func(t *testing.T) {
		req, err := b.Build("Irregular verbs", "match", Options{Items: 3})
		require.NoError(t, err)
		assert.Contains(t, req.System(), "Рівно 6 пар")
		assert.Contains(t, req.User(), "кількістю пунктів: 6")
	})

	t.Run("short item count", func(t *testing.T) {
		req, err := b.Build("Daily routine", "short", Options{Items: 10})
		require.NoError(t, err)
		assert.Contains(t, req.System(), "Рівно 5 пунктів")
	})

	t.Run("example differs from the topic", func(t *testing.T) {
		req, err := b.Build("Present Simple", "mcq", Options{SeedID: "ps"})
		require.NoError(t, err)
		assert.Contains(t, req.System(), "mcq-pastsi-1")
		assert.NotContains(t, req.System(), "mcq-presen-1")

		req, err = b.Build("Past Simple", "mcq", Options{})
		require.NoError(t, err)
		assert.Contains(t, req.System(), "mcq-presen-1")
	})

	t.Run("explicit seed and language", func(t *testing.T) {
		req, err := b.Build("Present Simple", "error", Options{SeedID: "ps", Language: "en"})
		require.NoError(t, err)
		assert.Contains(t, req.System(), `"id": "error-ps-1"`)
		assert.Contains(t, req.System(), "англійська")
	})

	t.Run("is deterministic", func(t *testing.T) {
		a, err := b.Build("Articles", "transform", Options{})
		require.NoError(t, err)
		c, err := b.Build("Articles", "transform", Options{})
		require.NoError(t, err)
		assert.Equal(t, a, c)
	})
}

func TestBuildWithoutToken(t *testing.T) {
	req, err := New(Config{}).Build("Articles", "mcq", Options{})
	require.NoError(t, err)
	assert.Empty(t, req.Token)
	assert.Equal(t, DefaultModel, req.Model)
}

func TestRequestWireShape(t *testing.T) {
	req, err := New(Config{Token: "abc"}).Build("Articles", "mcq", Options{})
	require.NoError(t, err)

	data, err := json.Marshal(req)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, "abc", wire["token"])
	assert.Equal(t, "gpt-4o-mini", wire["model"])
	assert.InDelta(t, 0.3, wire["temperature"], 1e-6)
	assert.EqualValues(t, 4000, wire["max_tokens"])
	assert.NotContains(t, wire, "Type")

	msgs, ok := wire["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	first := msgs[0].(map[string]any)
	assert.Equal(t, "system", first["role"])
	assert.NotEmpty(t, first["content"])
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "українська", LanguageName("uk"))
	assert.Equal(t, "українська", LanguageName("UK"))
	assert.Equal(t, "pl", LanguageName("pl"))
}
