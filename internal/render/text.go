package render

import (
	"strings"

	"github.com/pavelanni/practice/internal/matcher"
	"github.com/pavelanni/practice/internal/model"
)

// Mode says how a free-text item is laid out.
type Mode int

const (
	// ModeFull shows the whole question above the input field.
	ModeFull Mode = iota
	// ModeInline puts the input field in place of the gap marker.
	ModeInline
)

// TextItem is one free-text question of a gap, transform or error task.
// Before and After are set in ModeInline only.
type TextItem struct {
	model.Item
	Mode        Mode
	Before      string
	After       string
	Input       string
	HintVisible bool
}

// TextView serves gap, transform and error tasks.
type TextView struct {
	checked
	task         *model.Task
	items        []*TextItem
	ignorePeriod bool
}

func newTextView(task *model.Task) *TextView {
	v := &TextView{task: task, ignorePeriod: task.IgnoresTrailingPeriod()}
	for _, it := range task.Items {
		ti := &TextItem{Item: it, Mode: ModeFull}
		if task.Type == model.TypeGap {
			if before, after, ok := strings.Cut(it.Q, model.GapMarker); ok {
				ti.Mode = ModeInline
				ti.Before = before
				ti.After = after
			}
		}
		v.items = append(v.items, ti)
	}
	return v
}

func (v *TextView) Task() *model.Task { return v.task }
func (v *TextView) isView()           {}

// Items returns the questions in task order.
func (v *TextView) Items() []*TextItem { return v.items }

// SetInput stores the text typed for item i.
func (v *TextView) SetInput(i int, text string) error {
	if i < 0 || i >= len(v.items) {
		return ErrOutOfRange
	}
	v.items[i].Input = text
	return nil
}

// ToggleHint shows or hides the hint of item i. It does not count as an answer.
func (v *TextView) ToggleHint(i int) error {
	if i < 0 || i >= len(v.items) {
		return ErrOutOfRange
	}
	v.items[i].HintVisible = !v.items[i].HintVisible
	return nil
}

// Check accepts an item when its normalized input equals any accepted answer.
func (v *TextView) Check() Result {
	res := Result{Total: len(v.items)}
	for _, it := range v.items {
		var ok bool
		if v.ignorePeriod {
			ok = matcher.IsAcceptedIgnoringPeriod(it.Input, it.Answer)
		} else {
			ok = matcher.IsAccepted(it.Input, it.Answer)
		}
		if ok {
			res.Correct++
		}
		res.Items = append(res.Items, ItemResult{Status: passFail(ok)})
	}
	return v.store(res)
}
