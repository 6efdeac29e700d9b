package render

import (
	"math/rand/v2"
	"strings"

	"github.com/pavelanni/practice/internal/matcher"
	"github.com/pavelanni/practice/internal/model"
)

// Chip is one pickable word. Used chips stay visible but inactive.
type Chip struct {
	Word string
	Used bool
}

// OrderItem is one sentence to rebuild from shuffled chips.
type OrderItem struct {
	model.Item
	Chips  []Chip
	target []int
	answer string
}

// Target returns the words placed so far, in click order.
func (it *OrderItem) Target() []string {
	out := make([]string, len(it.target))
	for i, c := range it.target {
		out[i] = it.Chips[c].Word
	}
	return out
}

// Built is the sentence currently assembled in the target area.
func (it *OrderItem) Built() string {
	return strings.Join(it.Target(), " ")
}

// OrderView is the view of an order task.
type OrderView struct {
	checked
	task  *model.Task
	items []*OrderItem
}

func newOrderView(task *model.Task, rng *rand.Rand) *OrderView {
	v := &OrderView{task: task}
	for _, it := range task.Items {
		oi := &OrderItem{Item: it, answer: matcher.Normalize(it.Answer.Joined())}
		for _, w := range Shuffle(rng, it.Tokens) {
			oi.Chips = append(oi.Chips, Chip{Word: w})
		}
		v.items = append(v.items, oi)
	}
	return v
}

func (v *OrderView) Task() *model.Task { return v.task }
func (v *OrderView) isView()           {}

// Items returns the sentences in task order.
func (v *OrderView) Items() []*OrderItem { return v.items }

// Pick moves chip c of item i to the end of the target area. A chip can be
// picked once until the item is reset.
func (v *OrderView) Pick(i, c int) error {
	it, err := v.item(i)
	if err != nil {
		return err
	}
	if c < 0 || c >= len(it.Chips) {
		return ErrOutOfRange
	}
	if it.Chips[c].Used {
		return ErrChipUsed
	}
	it.Chips[c].Used = true
	it.target = append(it.target, c)
	return nil
}

// Reset empties the target area of item i and re-enables all its chips.
func (v *OrderView) Reset(i int) error {
	it, err := v.item(i)
	if err != nil {
		return err
	}
	it.target = nil
	for c := range it.Chips {
		it.Chips[c].Used = false
	}
	if v.last != nil && i < len(v.last.Items) {
		v.last.Items[i] = ItemResult{}
	}
	return nil
}

// Check passes an item when the assembled sentence equals its answer after normalization.
func (v *OrderView) Check() Result {
	res := Result{Total: len(v.items)}
	for _, it := range v.items {
		ok := matcher.Normalize(it.Built()) == it.answer
		if ok {
			res.Correct++
		}
		res.Items = append(res.Items, ItemResult{Status: passFail(ok)})
	}
	return v.store(res)
}

func (v *OrderView) item(i int) (*OrderItem, error) {
	if i < 0 || i >= len(v.items) {
		return nil, ErrOutOfRange
	}
	return v.items[i], nil
}
