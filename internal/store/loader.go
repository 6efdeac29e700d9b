package store

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/pavelanni/practice/internal/model"
)

// Loader reads static task sets from a practice tree.
type Loader struct {
	fsys fs.FS
}

// NewLoader creates a loader rooted at fsys.
func NewLoader(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

// Load returns the task set of the lesson page at pagePath. An absent or
// malformed file is a *model.ValidationError. Tasks that break the
// invariants of their type are logged and kept; the renderer shows them as
// they are and unknown types as placeholders.
func (l *Loader) Load(pagePath string) (*model.TaskSet, error) {
	name := path.Clean(strings.TrimPrefix(PracticePath(pagePath), "/"))
	if !fs.ValidPath(name) {
		return nil, &model.ValidationError{Reason: fmt.Sprintf("invalid page path %q", pagePath)}
	}

	data, err := fs.ReadFile(l.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &model.ValidationError{Reason: "no task set at " + name, Wrapped: err}
	}
	if err != nil {
		return nil, fmt.Errorf("read task set %s: %w", name, err)
	}

	set, err := model.ParseTaskSet(data)
	if err != nil {
		return nil, err
	}
	for i := range set.Tasks {
		if err := set.Tasks[i].Validate(); err != nil {
			slog.Warn("task breaks its invariants", "file", name, "index", i, "error", err)
		}
	}
	slog.Debug("loaded task set", "file", name, "tasks", len(set.Tasks))
	return set, nil
}
