package render

import (
	"math/rand/v2"

	"github.com/pavelanni/practice/internal/model"
)

// Page is the rendered form of a task set plus any tasks appended later.
type Page struct {
	Level string
	Title string
	views []View
	rng   *rand.Rand
}

// NewPage builds a view for every task in set. A nil set gives an empty page.
func NewPage(set *model.TaskSet, rng *rand.Rand) *Page {
	p := &Page{Level: model.DefaultLevel, rng: rng}
	if set == nil {
		return p
	}
	p.Level = set.DisplayLevel()
	p.Title = set.Title
	for i := range set.Tasks {
		p.Append(set.Tasks[i])
	}
	return p
}

// Append adds a view for task and returns its index. The page keeps its
// own copy of the task.
func (p *Page) Append(task model.Task) int {
	t := task
	p.views = append(p.views, New(&t, p.rng))
	return len(p.views) - 1
}

// Views returns the views in page order.
func (p *Page) Views() []View { return p.views }

// View returns view i.
func (p *Page) View(i int) (View, error) {
	if i < 0 || i >= len(p.views) {
		return nil, ErrOutOfRange
	}
	return p.views[i], nil
}
