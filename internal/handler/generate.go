package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/pavelanni/practice/internal/handler/views"
	"github.com/pavelanni/practice/internal/i18n"
	"github.com/pavelanni/practice/internal/llm/prompts"
	"github.com/pavelanni/practice/internal/model"
	"github.com/pavelanni/practice/internal/store"
)

// handleGenerate asks the generation backend for one task and appends it to
// the page. Only one generation per page runs at a time; a second request
// while one is outstanding is answered with the busy status.
func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	lp, ok := h.livePage(w, r)
	if !ok {
		return
	}

	form := views.GenerateForm{
		Topic: strings.TrimSpace(r.FormValue("topic")),
		Type:  model.Type(r.FormValue("type")),
	}
	if n, err := strconv.Atoi(r.FormValue("items")); err == nil && n > 0 {
		form.Items = n
	}
	if !form.Type.Valid() {
		form.Type = model.TypeMCQ
	}

	switch {
	case form.Topic == "":
		form.Status, form.StatusKind = i18n.T(r.Context(), "TopicRequired"), views.StatusError
	case h.llm == nil:
		form.Status, form.StatusKind = i18n.T(r.Context(), "GenerationFailed"), views.StatusError
	case !lp.gen.TryAcquire(1):
		form.Status, form.StatusKind = i18n.T(r.Context(), "GenerationBusy"), views.StatusBusy
	default:
		defer lp.gen.Release(1)
		form.Status, form.StatusKind = h.generate(r.Context(), lp, form)
	}

	h.respondPage(w, r, lp, form)
}

// generate runs one generation for lp and returns the panel status.
func (h *Handler) generate(ctx context.Context, lp *livePage, form views.GenerateForm) (string, string) {
	token, err := h.store.Setting(store.KeyGPTToken)
	if err != nil {
		slog.Error("failed to read token", "error", err)
		return i18n.T(ctx, "GenerationFailed"), views.StatusError
	}
	if token == "" && !h.config.ServerKey {
		slog.Warn("generation requested without a token", "page", lp.id)
		return i18n.T(ctx, "TokenMissing"), views.StatusError
	}
	if err := h.store.SetSetting(store.KeyGenTopic, form.Topic); err != nil {
		slog.Warn("failed to remember topic", "error", err)
	}

	req, err := prompts.New(prompts.Config{Token: token, Model: h.config.Model}).
		Build(form.Topic, string(form.Type), prompts.Options{Language: h.config.Language, Items: form.Items})
	if err != nil {
		slog.Error("failed to build generation request", "error", err)
		return i18n.T(ctx, "GenerationFailed"), views.StatusError
	}

	task, err := h.llm.Generate(ctx, req)
	if err != nil {
		slog.Warn("generation failed", "page", lp.id, "topic", form.Topic, "type", form.Type, "error", err)
		return generationStatus(ctx, err)
	}

	if _, err := h.store.InsertGeneratedTask(form.Topic, *task); err != nil {
		slog.Warn("failed to record generated task", "error", err)
	}

	lp.mu.Lock()
	idx := lp.page.Append(*task)
	lp.mu.Unlock()

	slog.Info("generated task", "page", lp.id, "topic", form.Topic, "type", task.Type, "index", idx)
	return i18n.T(ctx, "Added"), views.StatusOK
}

// generationStatus maps a generation error to the message shown in the panel.
func generationStatus(ctx context.Context, err error) (string, string) {
	var (
		perr *model.ParseError
		serr *model.SchemaMismatchError
		verr *model.ValidationError
	)
	switch {
	case errors.As(err, &perr), errors.As(err, &serr), errors.As(err, &verr):
		return i18n.T(ctx, "BadReply"), views.StatusError
	default:
		return i18n.T(ctx, "GenerationFailed"), views.StatusError
	}
}

// respondPage answers a page-level action with the practice body for htmx
// and the full page otherwise.
func (h *Handler) respondPage(w http.ResponseWriter, r *http.Request, lp *livePage, form views.GenerateForm) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	d := h.pageData(lp, form)
	if isHTMX(r) {
		renderHTML(w, r, views.PracticeBody(d))
		return
	}
	renderHTML(w, r, views.PracticePage(d))
}
