package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswersUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Answers
	}{
		{"array of strings", `["1", "2"]`, Answers{"1", "2"}},
		{"array of numbers", `[0, 2]`, Answers{"0", "2"}},
		{"single string", `"she often reads books"`, Answers{"she often reads books"}},
		{"single number", `1`, Answers{"1"}},
		{"null", `null`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Answers
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}

	var bad Answers
	assert.Error(t, json.Unmarshal([]byte(`{"a": 1}`), &bad))
}

func TestParseType(t *testing.T) {
	typ, ok := ParseType("  MCQ ")
	assert.True(t, ok)
	assert.Equal(t, TypeMCQ, typ)

	_, ok = ParseType("essay")
	assert.False(t, ok)
}

func TestParseTaskSet(t *testing.T) {
	data := []byte(`{
		"title": "Present Simple",
		"tasks": [
			{"id": "mcq-ps-1", "type": "mcq", "items": [{"q": "He ___ tea.", "choices": ["drink", "drinks", "drank"], "answer": "1"}]},
			{"id": "x", "type": "crossword"}
		]
	}`)
	set, err := ParseTaskSet(data)
	require.NoError(t, err)
	assert.Equal(t, DefaultLevel, set.DisplayLevel())
	require.Len(t, set.Tasks, 2)
	assert.Equal(t, Answers{"1"}, set.Tasks[0].Items[0].Answer)
	assert.Equal(t, Type("crossword"), set.Tasks[1].Type)

	for _, doc := range []string{`{"tasks": [`, `null`, ` null `} {
		_, err = ParseTaskSet([]byte(doc))
		var verr *ValidationError
		assert.True(t, errors.As(err, &verr), "doc %q: %v", doc, err)
	}
}

func TestDisplayPrompt(t *testing.T) {
	task := Task{Type: TypeOrder}
	assert.Equal(t, "Put the words in order", task.DisplayPrompt())
	task.Prompt = "Впорядкуй"
	assert.Equal(t, "Впорядкуй", task.DisplayPrompt())
}

func TestIgnoresTrailingPeriod(t *testing.T) {
	assert.True(t, (&Task{Prompt: "Перетвори на заперечення (Present Simple, без крапки)"}).IgnoresTrailingPeriod())
	assert.False(t, (&Task{Prompt: "Fill the gaps"}).IgnoresTrailingPeriod())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		wantErr bool
	}{
		{"mcq ok", Task{Type: TypeMCQ, Items: []Item{{Q: "q", Choices: []string{"a", "b", "c"}, Answer: Answers{"2"}}}}, false},
		{"mcq two choices", Task{Type: TypeMCQ, Items: []Item{{Q: "q", Choices: []string{"a", "b"}, Answer: Answers{"0"}}}}, true},
		{"mcq index out of range", Task{Type: TypeMCQ, Items: []Item{{Q: "q", Choices: []string{"a", "b", "c"}, Answer: Answers{"3"}}}}, true},
		{"gap ok", Task{Type: TypeGap, Items: []Item{{Q: "They ___ on Sundays.", Answer: Answers{"work"}}}}, false},
		{"gap two markers", Task{Type: TypeGap, Items: []Item{{Q: "___ and ___", Answer: Answers{"x"}}}}, true},
		{"gap no answer", Task{Type: TypeGap, Items: []Item{{Q: "They ___."}}}, true},
		{"transform ok", Task{Type: TypeTransform, Items: []Item{{Q: "She likes coffee.", Answer: Answers{"she doesn't like coffee"}}}}, false},
		{"order ok", Task{Type: TypeOrder, Items: []Item{{Tokens: []string{"she", "often", "reads", "books"}, Answer: Answers{"she often reads books"}}}}, false},
		{"order mismatch", Task{Type: TypeOrder, Items: []Item{{Tokens: []string{"she", "reads"}, Answer: Answers{"she often reads"}}}}, true},
		{"short without keywords", Task{Type: TypeShort, Items: []Item{{Q: "Describe your day."}}}, false},
		{"match ok", Task{Type: TypeMatch, Pairs: []Pair{{Left: "go", Right: "goes"}}}, false},
		{"match empty", Task{Type: TypeMatch}, true},
		{"writing ok", Task{Type: TypeWriting, Description: "Write about your routine.", Checklist: []string{"a", "b", "c", "d"}}, false},
		{"writing short checklist", Task{Type: TypeWriting, Description: "d", Checklist: []string{"a", "b", "c"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.wantErr {
				var verr *ValidationError
				assert.True(t, errors.As(err, &verr), "want ValidationError, got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	err := (&Task{Type: "crossword"}).Validate()
	var smerr *SchemaMismatchError
	assert.True(t, errors.As(err, &smerr))
}

func TestValidateJSON(t *testing.T) {
	ok := []byte(`{"type": "match", "pairs": [{"left": "go", "right": "goes"}]}`)
	assert.NoError(t, ValidateJSON(TypeMatch, ok))

	bad := []byte(`{"type": "mcq", "items": [{"q": "x", "choices": ["a", "b"], "answer": ["0"]}]}`)
	err := ValidateJSON(TypeMCQ, bad)
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))

	for _, typ := range Types {
		raw, err := SchemaJSON(typ)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"const": "`+string(typ)+`"`)
	}
}

func TestCheckTaskSet(t *testing.T) {
	doc := []byte(`{"level": "A2", "tasks": [
		{"type": "mcq", "items": [{"q": "He ___.", "choices": ["go", "goes", "went"], "answer": "1"}]},
		{"type": "crossword"},
		{"type": "mcq", "items": [{"q": "He ___.", "choices": ["go", "goes"], "answer": "1"}]},
		{"type": "order", "items": [{"tokens": ["she", "reads"], "answer": "she often reads"}]}
	]}`)

	problems, err := CheckTaskSet(doc)
	require.NoError(t, err)
	require.Len(t, problems, 3)

	var smerr *SchemaMismatchError
	assert.ErrorAs(t, problems[0], &smerr)
	var verr *ValidationError
	assert.ErrorAs(t, problems[1], &verr)
	assert.ErrorAs(t, problems[2], &verr)

	_, err = CheckTaskSet([]byte(`{"tasks": [`))
	assert.ErrorAs(t, err, &verr)
}
