package handler

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/pavelanni/practice/internal/render"
)

// DefaultMaxPages bounds the number of live pages kept in memory.
const DefaultMaxPages = 256

// livePage is one rendered page and its interaction state. mu guards page;
// gen admits a single outstanding generation.
type livePage struct {
	id      string
	source  string
	missing bool

	mu   sync.Mutex
	page *render.Page
	gen  *semaphore.Weighted
}

// registry holds live pages by id, evicting the oldest beyond max.
type registry struct {
	mu    sync.Mutex
	max   int
	pages map[string]*livePage
	order []string
}

func newRegistry(max int) *registry {
	if max <= 0 {
		max = DefaultMaxPages
	}
	return &registry{max: max, pages: make(map[string]*livePage)}
}

func (r *registry) add(page *render.Page, source string, missing bool) *livePage {
	lp := &livePage{
		id:      uuid.NewString(),
		source:  source,
		missing: missing,
		page:    page,
		gen:     semaphore.NewWeighted(1),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages[lp.id] = lp
	r.order = append(r.order, lp.id)
	for len(r.order) > r.max {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.pages, oldest)
		slog.Debug("evicted page", "page", oldest)
	}
	return lp
}

func (r *registry) get(id string) (*livePage, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lp, ok := r.pages[id]
	return lp, ok
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pages)
}
