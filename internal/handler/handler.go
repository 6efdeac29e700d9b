package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/practice/internal/handler/views"
	"github.com/pavelanni/practice/internal/i18n"
	"github.com/pavelanni/practice/internal/llm"
	"github.com/pavelanni/practice/internal/model"
	"github.com/pavelanni/practice/internal/render"
	"github.com/pavelanni/practice/internal/store"
)

// maxUpload bounds an uploaded or pasted task set.
const maxUpload = 10 << 20

// Config holds the handler settings that come from the command line.
type Config struct {
	BasePath string
	MaxPages int
	// Language is the language of generated instructions and hints.
	Language string
	// Model overrides the model identifier sent with generation requests.
	Model string
	// ServerKey is set when the backend carries its own credential, so
	// generation does not need a stored gptToken.
	ServerKey bool
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store  *store.Store
	loader *store.Loader
	llm    *llm.Client
	config Config
	pages  *registry
}

// New creates a new Handler. c may be nil, in which case generation is
// reported as unavailable.
func New(s *store.Store, l *store.Loader, c *llm.Client, cfg Config) *Handler {
	cfg.BasePath = strings.TrimRight(cfg.BasePath, "/")
	return &Handler{store: s, loader: l, llm: c, config: cfg, pages: newRegistry(cfg.MaxPages)}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Post("/settings", h.handleSaveSettings)
	r.Get("/open", h.handleOpen)
	r.Get("/p/*", h.handleOpen)
	r.Post("/pages", h.handleCreatePage)

	r.Route("/page/{pageID}", func(r chi.Router) {
		r.Get("/", h.handlePage)
		r.Post("/generate", h.handleGenerate)
		r.Post("/task/{taskIdx}/check", h.handleCheck)
		r.Post("/task/{taskIdx}/reviewed", h.handleReviewed)
		r.Post("/task/{taskIdx}/item/{itemIdx}/pick/{chip}", h.handlePick)
		r.Post("/task/{taskIdx}/item/{itemIdx}/reset", h.handleReset)
		r.Post("/task/{taskIdx}/item/{itemIdx}/hint", h.handleHint)
	})
}

func (h *Handler) path(p string) string { return h.config.BasePath + p }

func isHTMX(r *http.Request) bool { return r.Header.Get("HX-Request") == "true" }

func renderHTML(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	st, err := h.store.Settings()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	status := ""
	if r.URL.Query().Get("saved") == "1" {
		status = i18n.T(r.Context(), "Saved")
	}
	renderHTML(w, r, views.IndexPage(views.IndexData{
		BasePath: h.config.BasePath,
		TokenSet: st.GPTToken != "",
		Status:   status,
	}))
}

func (h *Handler) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.FormValue("token"))
	var err error
	if token == "" {
		err = h.store.DeleteSetting(store.KeyGPTToken)
	} else {
		err = h.store.SetSetting(store.KeyGPTToken, token)
	}
	if err != nil {
		slog.Error("failed to save token", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	slog.Info("generation token updated", "set", token != "")
	http.Redirect(w, r, h.path("/?saved=1"), http.StatusSeeOther)
}

// handleOpen loads the task set of a lesson page and registers a live page
// for it. A missing or malformed task set still opens a page: it shows the
// no-practice message and can receive generated tasks.
func (h *Handler) handleOpen(w http.ResponseWriter, r *http.Request) {
	pagePath := r.URL.Query().Get("path")
	if pagePath == "" {
		pagePath = "/" + chi.URLParam(r, "*")
	}

	set, err := h.loader.Load(pagePath)
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		slog.Info("no practice for page", "page", pagePath, "reason", err)
		set = nil
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	lp := h.pages.add(render.NewPage(set, nil), pagePath, set == nil)
	slog.Info("opened page", "page", lp.id, "source", pagePath, "tasks", len(lp.page.Views()))
	http.Redirect(w, r, h.path("/page/"+lp.id+"/"), http.StatusSeeOther)
}

// handleCreatePage registers a page for an inline task set, pasted into the
// taskset field or uploaded as the file field.
func (h *Handler) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)

	var data []byte
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUpload); err != nil {
			http.Error(w, "file too large", http.StatusBadRequest)
			return
		}
		if file, _, err := r.FormFile("file"); err == nil {
			defer file.Close()
			if data, err = io.ReadAll(file); err != nil {
				http.Error(w, "failed to read file", http.StatusBadRequest)
				return
			}
		}
	}
	if len(data) == 0 {
		data = []byte(r.FormValue("taskset"))
	}

	set, err := model.ParseTaskSet(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	for i := range set.Tasks {
		if err := set.Tasks[i].Validate(); err != nil {
			slog.Warn("inline task breaks its invariants", "index", i, "error", err)
		}
	}

	lp := h.pages.add(render.NewPage(set, nil), "inline", false)
	slog.Info("opened inline page", "page", lp.id, "tasks", len(set.Tasks))
	http.Redirect(w, r, h.path("/page/"+lp.id+"/"), http.StatusSeeOther)
}

func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	lp, ok := h.livePage(w, r)
	if !ok {
		return
	}
	gen, err := h.generateForm()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	lp.mu.Lock()
	defer lp.mu.Unlock()
	renderHTML(w, r, views.PracticePage(h.pageData(lp, gen)))
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	h.taskAction(w, r, func(v render.View) error {
		if err := applyForm(v, r.PostForm); err != nil {
			return err
		}
		if c, ok := v.(render.Checker); ok {
			c.Check()
		}
		return nil
	})
}

func (h *Handler) handleReviewed(w http.ResponseWriter, r *http.Request) {
	h.taskAction(w, r, func(v render.View) error {
		wv, ok := v.(*render.WritingView)
		if !ok {
			return errWrongType
		}
		if err := applyForm(wv, r.PostForm); err != nil {
			return err
		}
		wv.MarkReviewed()
		return nil
	})
}

func (h *Handler) handlePick(w http.ResponseWriter, r *http.Request) {
	h.itemAction(w, r, func(v render.View, item int) error {
		ov, ok := v.(*render.OrderView)
		if !ok {
			return errWrongType
		}
		chip, err := strconv.Atoi(chi.URLParam(r, "chip"))
		if err != nil {
			return render.ErrOutOfRange
		}
		return ov.Pick(item, chip)
	})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.itemAction(w, r, func(v render.View, item int) error {
		ov, ok := v.(*render.OrderView)
		if !ok {
			return errWrongType
		}
		return ov.Reset(item)
	})
}

func (h *Handler) handleHint(w http.ResponseWriter, r *http.Request) {
	h.itemAction(w, r, func(v render.View, item int) error {
		tv, ok := v.(*render.TextView)
		if !ok {
			return errWrongType
		}
		// Keep what was typed so far.
		if err := applyForm(tv, r.PostForm); err != nil {
			return err
		}
		return tv.ToggleHint(item)
	})
}

var errWrongType = errors.New("action does not apply to this task type")

// taskAction runs fn on the addressed task under the page lock and answers
// with the task fragment for htmx or a redirect back to the task otherwise.
func (h *Handler) taskAction(w http.ResponseWriter, r *http.Request, fn func(render.View) error) {
	lp, ok := h.livePage(w, r)
	if !ok {
		return
	}
	idx, err := strconv.Atoi(chi.URLParam(r, "taskIdx"))
	if err != nil {
		http.Error(w, "invalid task index", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	lp.mu.Lock()
	defer lp.mu.Unlock()

	v, err := lp.page.View(idx)
	if err != nil {
		http.Error(w, "task not found", http.StatusNotFound)
		return
	}
	if err := fn(v); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, render.ErrChipUsed) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}

	if !isHTMX(r) {
		http.Redirect(w, r, h.path("/page/"+lp.id+"/#task-"+strconv.Itoa(idx)), http.StatusSeeOther)
		return
	}
	renderHTML(w, r, views.TaskBlock(h.pageData(lp, views.GenerateForm{}), idx, v))
}

func (h *Handler) itemAction(w http.ResponseWriter, r *http.Request, fn func(render.View, int) error) {
	item, err := strconv.Atoi(chi.URLParam(r, "itemIdx"))
	if err != nil {
		http.Error(w, "invalid item index", http.StatusBadRequest)
		return
	}
	h.taskAction(w, r, func(v render.View) error { return fn(v, item) })
}

func (h *Handler) livePage(w http.ResponseWriter, r *http.Request) (*livePage, bool) {
	lp, ok := h.pages.get(chi.URLParam(r, "pageID"))
	if !ok {
		http.Error(w, i18n.T(r.Context(), "PageNotFound"), http.StatusNotFound)
		return nil, false
	}
	return lp, true
}

func (h *Handler) pageData(lp *livePage, gen views.GenerateForm) views.PageData {
	return views.PageData{
		BasePath: h.config.BasePath,
		ID:       lp.id,
		Page:     lp.page,
		Missing:  lp.missing,
		Gen:      gen,
	}
}

// generateForm prefills the generate panel from the stored settings.
func (h *Handler) generateForm() (views.GenerateForm, error) {
	st, err := h.store.Settings()
	if err != nil {
		return views.GenerateForm{}, err
	}
	return views.GenerateForm{Topic: st.GenTopic, Type: model.TypeMCQ}, nil
}
