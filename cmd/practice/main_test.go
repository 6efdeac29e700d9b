package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/practice/internal/model"
	"github.com/pavelanni/practice/internal/store"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := rootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(new(bytes.Buffer))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestConfigSetGet(t *testing.T) {
	db := filepath.Join(t.TempDir(), "practice.db")

	_, err := run(t, "config", "set", "gptToken", "tok-1", "--db", db)
	require.NoError(t, err)

	out, err := run(t, "config", "get", "gptToken", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "tok-1\n", out)

	_, err = run(t, "config", "set", "gptToken", "--db", db)
	require.NoError(t, err)
	out, err = run(t, "config", "get", "gptToken", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "\n", out)

	_, err = run(t, "config", "get", "password", "--db", db)
	assert.ErrorContains(t, err, "unknown setting")
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	broken := filepath.Join(dir, "broken.json")

	require.NoError(t, os.WriteFile(good, []byte(`{"tasks": [
		{"type": "mcq", "items": [{"q": "He ___ to work.", "choices": ["go", "goes", "going"], "answer": "1"}]}
	]}`), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte(`{"tasks": [
		{"type": "mcq", "items": [{"q": "He ___ to work.", "choices": ["go", "goes"], "answer": "1"}]},
		{"type": "quiz"}
	]}`), 0o644))
	require.NoError(t, os.WriteFile(broken, []byte(`{"tasks": [`), 0o644))

	out, err := run(t, "validate", good)
	require.NoError(t, err)
	assert.Equal(t, good+": ok\n", out)

	out, err = run(t, "validate", good, bad, broken)
	assert.ErrorContains(t, err, "2 of 3 files")
	assert.Contains(t, out, bad+": task 0:")
	assert.Contains(t, out, bad+": task 1:")
	assert.Contains(t, out, broken+": invalid task: malformed task set")
	assert.False(t, strings.Contains(out, good+": task"))
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "practice.db")
	s, err := store.New(db)
	require.NoError(t, err)
	task := model.Task{ID: "mcq-sports-1", Type: model.TypeMCQ, Items: []model.Item{
		{Q: "They ___ football.", Choices: []string{"play", "plays", "playing"}, Answer: model.Answers{"0"}},
	}}
	_, err = s.InsertGeneratedTask("Sports", task)
	require.NoError(t, err)
	_, err = s.InsertGeneratedTask("Sports", task)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	out, err := run(t, "export", "--topics", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "Sports\n", out)

	outFile := filepath.Join(dir, "sports.json")
	_, err = run(t, "export", "--topic", "Sports", "--level", "A2", "-o", outFile, "--db", db)
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	set, err := model.ParseTaskSet(data)
	require.NoError(t, err)
	assert.Equal(t, "A2", set.Level)
	require.Len(t, set.Tasks, 2)
	assert.Equal(t, "mcq-sports-1-2", set.Tasks[1].ID)

	problems, err := model.CheckTaskSet(data)
	require.NoError(t, err)
	assert.Empty(t, problems)
}

func TestGenerateNeedsToken(t *testing.T) {
	db := filepath.Join(t.TempDir(), "practice.db")
	_, err := run(t, "generate", "--topic", "Sports", "--llm-url", "http://127.0.0.1:1", "--db", db)
	assert.ErrorContains(t, err, "no generation token")
}
