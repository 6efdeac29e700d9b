package render

import "github.com/pavelanni/practice/internal/model"

// Criterion is one self-review checklist entry.
type Criterion struct {
	Text string
	Done bool
}

// WritingView is the view of a writing task. It has no automatic check;
// the learner ticks criteria and marks the block as reviewed.
type WritingView struct {
	task      *model.Task
	checklist []*Criterion
	text      string
	reviewed  bool
}

func newWritingView(task *model.Task) *WritingView {
	v := &WritingView{task: task}
	for _, c := range task.Checklist {
		v.checklist = append(v.checklist, &Criterion{Text: c})
	}
	return v
}

func (v *WritingView) Task() *model.Task { return v.task }
func (v *WritingView) isView()           {}

// Checklist returns the criteria in task order.
func (v *WritingView) Checklist() []*Criterion { return v.checklist }

// Toggle flips criterion i.
func (v *WritingView) Toggle(i int) error {
	if i < 0 || i >= len(v.checklist) {
		return ErrOutOfRange
	}
	v.checklist[i].Done = !v.checklist[i].Done
	return nil
}

// SetDone sets criterion i explicitly.
func (v *WritingView) SetDone(i int, done bool) error {
	if i < 0 || i >= len(v.checklist) {
		return ErrOutOfRange
	}
	v.checklist[i].Done = done
	return nil
}

// SetText keeps the learner's draft so it survives a round trip.
func (v *WritingView) SetText(s string) { v.text = s }

// Text returns the draft.
func (v *WritingView) Text() string { return v.text }

// MarkReviewed records that the learner reviewed the block.
func (v *WritingView) MarkReviewed() { v.reviewed = true }

// Reviewed reports whether MarkReviewed was called.
func (v *WritingView) Reviewed() bool { return v.reviewed }
