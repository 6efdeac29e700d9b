// Package views renders the practice pages. The markup lives in the .templ
// files next to this one; the *_templ.go files are generated from them.
package views

//go:generate templ generate

import (
	"context"
	"strconv"

	"github.com/pavelanni/practice/internal/i18n"
	"github.com/pavelanni/practice/internal/model"
	"github.com/pavelanni/practice/internal/render"
)

// Status kinds of the generate panel.
const (
	StatusOK    = "ok"
	StatusError = "error"
	StatusBusy  = "busy"
)

// IndexData is what the start page shows.
type IndexData struct {
	BasePath string
	TokenSet bool
	Status   string
}

// GenerateForm is the state of the generate panel.
type GenerateForm struct {
	Topic      string
	Type       model.Type
	Items      int
	Status     string
	StatusKind string
}

// PageData is everything a practice page renders.
type PageData struct {
	BasePath string
	ID       string
	Page     *render.Page
	// Missing is set when no task set could be loaded for the lesson.
	Missing bool
	Gen     GenerateForm
}

func (d PageData) url() string { return d.BasePath + "/page/" + d.ID }

func (d PageData) taskURL(i int) string { return d.url() + "/task/" + itoa(i) }

func (d PageData) itemURL(i, j int) string { return d.taskURL(i) + "/item/" + itoa(j) }

// sampleTaskSet prefills the inline task-set field.
const sampleTaskSet = `{"level": "B1", "tasks": []}`

func itoa(i int) string { return strconv.Itoa(i) }

func pageTitle(ctx context.Context, title string) string {
	if title == "" {
		return i18n.T(ctx, "AppTitle")
	}
	return title
}

func levelLine(ctx context.Context, p *render.Page) string {
	line := i18n.T(ctx, "Level") + ": " + p.Level
	if p.Title != "" {
		line += " · " + p.Title
	}
	return line + " · " + i18n.Tp(ctx, "TasksCount", len(p.Views()))
}

func tokenPlaceholder(set bool) string {
	if set {
		return "••••••••"
	}
	return ""
}

func itemsValue(n int) string {
	if n <= 0 {
		return ""
	}
	return itoa(n)
}

func taskID(i int) string { return "task-" + itoa(i) }

// taskTarget is the htmx swap target of task i.
func taskTarget(i int) string { return "#" + taskID(i) }

func itemName(j int) string { return "item-" + itoa(j) }

func rowName(j int) string { return "row-" + itoa(j) }

func itemClass(res *render.Result, j int) string {
	return "item status-" + res.Item(j).Status.String()
}

func choiceType(multi bool) string {
	if multi {
		return "checkbox"
	}
	return "radio"
}

// taskAction is where the task form posts. Writing tasks are self-reviewed
// instead of checked.
func taskAction(d PageData, i int, v render.View) string {
	if _, ok := v.(*render.WritingView); ok {
		return d.taskURL(i) + "/reviewed"
	}
	return d.taskURL(i) + "/check"
}

func pickURL(d PageData, i, j, chip int) string {
	return d.itemURL(i, j) + "/pick/" + itoa(chip)
}

func scoreLine(ctx context.Context, res *render.Result) string {
	return i18n.Td(ctx, "Score", map[string]any{"Correct": res.Correct, "Total": res.Total})
}

func keywordLine(ctx context.Context, res *render.Result, j int) string {
	r := res.Item(j)
	return i18n.Td(ctx, "KeywordScore", map[string]any{"Matched": r.Matched, "Total": r.Total})
}
