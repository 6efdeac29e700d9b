package store

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/pavelanni/practice/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mcqTask(id string) model.Task {
	return model.Task{
		ID:   id,
		Type: model.TypeMCQ,
		Items: []model.Item{
			{Q: "He ___ to work.", Choices: []string{"go", "goes", "going"}, Answer: model.Answers{"1"}},
		},
	}
}

func TestSettings(t *testing.T) {
	s := newTestStore(t)

	// Missing key reads as empty.
	v, err := s.Setting(KeyGPTToken)
	if err != nil {
		t.Fatalf("Setting: %v", err)
	}
	if v != "" {
		t.Fatalf("expected empty token, got %q", v)
	}

	st, err := s.Settings()
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if st.GenTopic != DefaultTopic {
		t.Errorf("GenTopic = %q, want %q", st.GenTopic, DefaultTopic)
	}

	if err := s.SetSetting(KeyGPTToken, "tok-1"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := s.SetSetting(KeyGPTToken, "tok-2"); err != nil {
		t.Fatalf("SetSetting upsert: %v", err)
	}
	if err := s.SetSetting(KeyGenTopic, "Articles"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}

	st, err = s.Settings()
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if st.GPTToken != "tok-2" {
		t.Errorf("GPTToken = %q, want %q", st.GPTToken, "tok-2")
	}
	if st.GenTopic != "Articles" {
		t.Errorf("GenTopic = %q, want %q", st.GenTopic, "Articles")
	}

	if err := s.DeleteSetting(KeyGPTToken); err != nil {
		t.Fatalf("DeleteSetting: %v", err)
	}
	if v, _ := s.Setting(KeyGPTToken); v != "" {
		t.Errorf("token after delete = %q", v)
	}
	if err := s.DeleteSetting("missing"); err != nil {
		t.Errorf("DeleteSetting missing key: %v", err)
	}
}

func TestGeneratedTasks(t *testing.T) {
	s := newTestStore(t)

	n, err := s.GeneratedTaskCount()
	if err != nil {
		t.Fatalf("GeneratedTaskCount: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 tasks, got %d", n)
	}

	if _, err := s.InsertGeneratedTask("Present Simple", mcqTask("mcq-presen-1")); err != nil {
		t.Fatalf("InsertGeneratedTask: %v", err)
	}
	if _, err := s.InsertGeneratedTask("Present Simple", mcqTask("mcq-presen-1")); err != nil {
		t.Fatalf("InsertGeneratedTask: %v", err)
	}
	match := model.Task{ID: "match-articl-1", Type: model.TypeMatch, Pairs: []model.Pair{{Left: "a", Right: "apple"}}}
	if _, err := s.InsertGeneratedTask("Articles", match); err != nil {
		t.Fatalf("InsertGeneratedTask: %v", err)
	}

	all, err := s.ListGeneratedTasks("", "")
	if err != nil {
		t.Fatalf("ListGeneratedTasks: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(all))
	}
	if all[0].Task.Items[0].Answer[0] != "1" {
		t.Errorf("answer did not round-trip: %v", all[0].Task.Items[0].Answer)
	}
	if all[0].CreatedAt.IsZero() {
		t.Error("CreatedAt is zero")
	}

	ps, err := s.ListGeneratedTasks("Present Simple", "")
	if err != nil {
		t.Fatalf("ListGeneratedTasks by topic: %v", err)
	}
	if len(ps) != 2 {
		t.Errorf("expected 2 Present Simple tasks, got %d", len(ps))
	}

	matches, err := s.ListGeneratedTasks("", model.TypeMatch)
	if err != nil {
		t.Fatalf("ListGeneratedTasks by type: %v", err)
	}
	if len(matches) != 1 || matches[0].Type != model.TypeMatch {
		t.Errorf("expected one match task, got %+v", matches)
	}

	topics, err := s.ListTopics()
	if err != nil {
		t.Fatalf("ListTopics: %v", err)
	}
	if len(topics) != 2 || topics[0] != "Articles" || topics[1] != "Present Simple" {
		t.Errorf("topics = %v", topics)
	}
}

func TestExportTaskSet(t *testing.T) {
	s := newTestStore(t)
	for range 2 {
		if _, err := s.InsertGeneratedTask("Present Simple", mcqTask("mcq-presen-1")); err != nil {
			t.Fatalf("InsertGeneratedTask: %v", err)
		}
	}

	set, err := s.ExportTaskSet("Present Simple", "A2")
	if err != nil {
		t.Fatalf("ExportTaskSet: %v", err)
	}
	if set.Level != "A2" || set.Title != "Present Simple" {
		t.Errorf("header = %q/%q", set.Level, set.Title)
	}
	if len(set.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(set.Tasks))
	}
	if set.Tasks[0].ID != "mcq-presen-1" || set.Tasks[1].ID != "mcq-presen-1-2" {
		t.Errorf("ids = %q, %q", set.Tasks[0].ID, set.Tasks[1].ID)
	}
}

func TestPracticePath(t *testing.T) {
	tests := []struct {
		page string
		want string
	}{
		{"/lessons/lesson3.html", "/lessons/practice/lesson3.json"},
		{"/lessons/lesson3.HTM", "/lessons/practice/lesson3.json"},
		{"/lessons/", "/lessons/practice/index.json"},
		{"/lessons/intro", "/lessons/practice/index.json"},
		{"/", "/practice/index.json"},
		{"lesson1.html", "practice/lesson1.json"},
		{"", "practice/index.json"},
	}
	for _, tt := range tests {
		t.Run(tt.page, func(t *testing.T) {
			if got := PracticePath(tt.page); got != tt.want {
				t.Errorf("PracticePath(%q) = %q, want %q", tt.page, got, tt.want)
			}
		})
	}
}

func TestLoaderLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"lessons/practice/lesson1.json": {Data: []byte(`{"level": "A1", "title": "Lesson 1", "tasks": [
			{"type": "mcq", "items": [{"q": "He ___.", "choices": ["go", "goes", "went"], "answer": "1"}]},
			{"type": "crossword"},
			{"type": "order", "items": [{"tokens": ["she", "reads"], "answer": "she often reads"}]}
		]}`)},
		"lessons/practice/broken.json": {Data: []byte(`{"tasks": [`)},
		"lessons/practice/empty.json":  {Data: []byte(`null`)},
	}
	l := NewLoader(fsys)

	set, err := l.Load("/lessons/lesson1.html")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if set.Level != "A1" || set.Title != "Lesson 1" {
		t.Errorf("header = %q/%q", set.Level, set.Title)
	}
	// Unknown types and invariant failures are kept for the renderer.
	if len(set.Tasks) != 3 {
		t.Errorf("expected 3 tasks, got %d", len(set.Tasks))
	}

	for _, page := range []string{"/lessons/missing.html", "/lessons/broken.html", "/lessons/empty.html", "/../etc/passwd.html"} {
		_, err := l.Load(page)
		var verr *model.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("Load(%q) error = %v, want ValidationError", page, err)
		}
	}
}
