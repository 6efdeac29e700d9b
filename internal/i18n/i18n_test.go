package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init(DefaultLang); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return WithLocalizer(context.Background(), NewLocalizer(lang))
}

func TestTranslateUkrainian(t *testing.T) {
	ctx := initLang(t, "uk")

	if got := T(ctx, "Check"); got != "Перевірити" {
		t.Errorf("T(Check) = %q, want 'Перевірити'", got)
	}
	if got := T(ctx, "ChooseOption"); got != "— обери —" {
		t.Errorf("T(ChooseOption) = %q, want '— обери —'", got)
	}
}

func TestTranslateEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	if got := T(ctx, "Check"); got != "Check" {
		t.Errorf("T(Check) = %q, want 'Check'", got)
	}
	if got := T(ctx, "Reset"); got != "Reset" {
		t.Errorf("T(Reset) = %q, want 'Reset'", got)
	}
}

func TestUnknownLanguageFallsBack(t *testing.T) {
	ctx := initLang(t, "de")

	if got := T(ctx, "Reset"); got != "Скинути" {
		t.Errorf("T(Reset) = %q, want 'Скинути'", got)
	}
}

func TestContextWithoutLocalizer(t *testing.T) {
	initLang(t, "uk")

	if got := T(context.Background(), "NoPractice"); got != "Практика поки відсутня." {
		t.Errorf("T(NoPractice) = %q", got)
	}
}

func TestPluralTranslation(t *testing.T) {
	ctx := initLang(t, "uk")

	tests := []struct {
		n    int
		want string
	}{
		{1, "1 завдання"},
		{3, "3 завдання"},
		{5, "5 завдань"},
		{11, "11 завдань"},
		{21, "21 завдання"},
	}
	for _, tt := range tests {
		if got := Tp(ctx, "TasksCount", tt.n); got != tt.want {
			t.Errorf("Tp(TasksCount, %d) = %q, want %q", tt.n, got, tt.want)
		}
	}

	en := WithLocalizer(context.Background(), NewLocalizer("en"))
	if got := Tp(en, "TasksCount", 5); got != "5 tasks" {
		t.Errorf("Tp(TasksCount, 5) = %q, want '5 tasks'", got)
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initLang(t, "uk")

	got := Td(ctx, "Score", map[string]any{"Correct": 7, "Total": 10})
	if got != "Результат: 7/10" {
		t.Errorf("Td(Score) = %q, want 'Результат: 7/10'", got)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "uk")

	if got := T(ctx, "NonExistentKey"); got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}

func TestLanguages(t *testing.T) {
	initLang(t, "uk")

	langs := Languages()
	if len(langs) != 2 {
		t.Fatalf("Languages() = %v, want en and uk", langs)
	}
}

func TestMiddleware(t *testing.T) {
	initLang(t, "uk")

	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = T(r.Context(), "Check")
	})

	Middleware("en")(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if got != "Check" {
		t.Errorf("en: got %q", got)
	}

	// Query parameters do not switch the language.
	rec := httptest.NewRecorder()
	Middleware("uk")(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?lang=en", nil))
	if got != "Перевірити" {
		t.Errorf("uk with ?lang=en: got %q", got)
	}
	if cookies := rec.Result().Cookies(); len(cookies) != 0 {
		t.Errorf("unexpected cookies %v", cookies)
	}
}
