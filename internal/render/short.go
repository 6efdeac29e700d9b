package render

import (
	"github.com/pavelanni/practice/internal/matcher"
	"github.com/pavelanni/practice/internal/model"
)

// ShortItem is one short free-text answer.
type ShortItem struct {
	model.Item
	Input string
}

// ShortView is the view of a short-answer task. Grading is partial credit:
// the engine reports matched/total keyword counts and leaves the pass
// policy to callers. Statuses are bands: pass when every keyword matched,
// partial when some did, fail when none did.
type ShortView struct {
	checked
	task  *model.Task
	items []*ShortItem
}

func newShortView(task *model.Task) *ShortView {
	v := &ShortView{task: task}
	for _, it := range task.Items {
		v.items = append(v.items, &ShortItem{Item: it})
	}
	return v
}

func (v *ShortView) Task() *model.Task { return v.task }
func (v *ShortView) isView()           {}

// Items returns the questions in task order.
func (v *ShortView) Items() []*ShortItem { return v.items }

// SetInput stores the text typed for item i.
func (v *ShortView) SetInput(i int, text string) error {
	if i < 0 || i >= len(v.items) {
		return ErrOutOfRange
	}
	v.items[i].Input = text
	return nil
}

// Check scores each item by keyword matches and sums them across items.
func (v *ShortView) Check() Result {
	var res Result
	for _, it := range v.items {
		matched, total := matcher.KeywordScore(it.Input, it.Keywords)
		res.Correct += matched
		res.Total += total
		res.Items = append(res.Items, ItemResult{Status: band(matched, total), Matched: matched, Total: total})
	}
	return v.store(res)
}

func band(matched, total int) Status {
	switch {
	case matched == total:
		return StatusPass
	case matched > 0:
		return StatusPartial
	default:
		return StatusFail
	}
}
