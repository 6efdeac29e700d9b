package render

import (
	"strconv"
	"strings"

	"github.com/pavelanni/practice/internal/matcher"
	"github.com/pavelanni/practice/internal/model"
)

// MCQItem is one multiple-choice question. Multi is set when the item
// accepts more than one answer, which turns the options into checkboxes.
type MCQItem struct {
	model.Item
	Multi    bool
	selected []bool
}

// IsSelected reports whether choice c is currently selected.
func (it *MCQItem) IsSelected(c int) bool {
	return c >= 0 && c < len(it.selected) && it.selected[c]
}

// Selected returns the selected choice indices in ascending order.
func (it *MCQItem) Selected() []int {
	var out []int
	for i, s := range it.selected {
		if s {
			out = append(out, i)
		}
	}
	return out
}

// MCQView is the view of an mcq task.
type MCQView struct {
	checked
	task  *model.Task
	items []*MCQItem
}

func newMCQView(task *model.Task) *MCQView {
	v := &MCQView{task: task}
	for _, it := range task.Items {
		v.items = append(v.items, &MCQItem{
			Item:     it,
			Multi:    len(it.Answer) > 1,
			selected: make([]bool, len(it.Choices)),
		})
	}
	return v
}

func (v *MCQView) Task() *model.Task { return v.task }
func (v *MCQView) isView()           {}

// Items returns the questions in task order.
func (v *MCQView) Items() []*MCQItem { return v.items }

// Select picks choice c of item i. Single-choice items replace the previous
// selection; multi-select items toggle c.
func (v *MCQView) Select(i, c int) error {
	it, err := v.item(i)
	if err != nil {
		return err
	}
	if c < 0 || c >= len(it.selected) {
		return ErrOutOfRange
	}
	if it.Multi {
		it.selected[c] = !it.selected[c]
		return nil
	}
	clear(it.selected)
	it.selected[c] = true
	return nil
}

// SetSelection replaces the selection of item i with choices. Every index is
// kept, even on single-choice items, so extra picks are graded as wrong.
func (v *MCQView) SetSelection(i int, choices []int) error {
	it, err := v.item(i)
	if err != nil {
		return err
	}
	for _, c := range choices {
		if c < 0 || c >= len(it.selected) {
			return ErrOutOfRange
		}
	}
	clear(it.selected)
	for _, c := range choices {
		it.selected[c] = true
	}
	return nil
}

// Check compares each item's selected indices to its accepted set.
func (v *MCQView) Check() Result {
	res := Result{Total: len(v.items)}
	for _, it := range v.items {
		var picked []string
		for _, c := range it.Selected() {
			picked = append(picked, strconv.Itoa(c))
		}
		expected := make([]string, len(it.Answer))
		for j, a := range it.Answer {
			expected[j] = strings.TrimSpace(a)
		}
		ok := matcher.SetEquals(picked, expected)
		if ok {
			res.Correct++
		}
		res.Items = append(res.Items, ItemResult{Status: passFail(ok)})
	}
	return v.store(res)
}

func (v *MCQView) item(i int) (*MCQItem, error) {
	if i < 0 || i >= len(v.items) {
		return nil, ErrOutOfRange
	}
	return v.items[i], nil
}
