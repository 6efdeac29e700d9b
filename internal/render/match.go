package render

import (
	"math/rand/v2"
	"slices"

	"github.com/pavelanni/practice/internal/model"
)

// MatchRow is one left value and the right value chosen for it.
type MatchRow struct {
	Left     string
	Right    string
	Selected string
}

// MatchView is the view of a match task. Every row picks from the same
// shuffled pool of right values.
type MatchView struct {
	checked
	task    *model.Task
	options []string
	rows    []*MatchRow
}

func newMatchView(task *model.Task, rng *rand.Rand) *MatchView {
	rights := make([]string, len(task.Pairs))
	v := &MatchView{task: task}
	for i, p := range task.Pairs {
		rights[i] = p.Right
		v.rows = append(v.rows, &MatchRow{Left: p.Left, Right: p.Right})
	}
	v.options = Shuffle(rng, rights)
	return v
}

func (v *MatchView) Task() *model.Task { return v.task }
func (v *MatchView) isView()           {}

// Options returns the shared, shuffled pool of right values.
func (v *MatchView) Options() []string { return v.options }

// Rows returns the rows in pair order.
func (v *MatchView) Rows() []*MatchRow { return v.rows }

// Select sets the value chosen for row i. An empty value clears it.
func (v *MatchView) Select(i int, value string) error {
	if i < 0 || i >= len(v.rows) {
		return ErrOutOfRange
	}
	if value != "" && !slices.Contains(v.options, value) {
		return ErrUnknownOption
	}
	v.rows[i].Selected = value
	return nil
}

// Check passes a row when its chosen value equals the pair's right value.
func (v *MatchView) Check() Result {
	res := Result{Total: len(v.rows)}
	for _, r := range v.rows {
		ok := r.Selected == r.Right
		if ok {
			res.Correct++
		}
		res.Items = append(res.Items, ItemResult{Status: passFail(ok)})
	}
	return v.store(res)
}
