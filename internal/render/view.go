// Package render builds the interactive view model of a task and grades
// the input collected in it. Nothing here knows about HTML; the HTTP
// handler maps these views onto markup.
package render

import (
	"errors"
	"math/rand/v2"

	"github.com/pavelanni/practice/internal/model"
)

var (
	// ErrOutOfRange is returned when an item, choice, chip or row index does not exist.
	ErrOutOfRange = errors.New("index out of range")
	// ErrChipUsed is returned when an order chip is picked a second time.
	ErrChipUsed = errors.New("chip already placed")
	// ErrUnknownOption is returned when a match row is set to a value outside the shared pool.
	ErrUnknownOption = errors.New("value is not one of the options")
)

// View is the closed set of per-variant view models. The concrete types are
// *MCQView, *TextView, *MatchView, *OrderView, *ShortView, *WritingView
// and *UnknownView.
type View interface {
	Task() *model.Task
	isView()
}

// Checker is implemented by every view that supports the check action.
// Check re-evaluates the current input state each time it is called and
// replaces the previous result.
type Checker interface {
	View
	Check() Result
	Last() *Result
}

// New builds the view for task. Unknown types produce an *UnknownView.
func New(task *model.Task, rng *rand.Rand) View {
	switch task.Type {
	case model.TypeMCQ:
		return newMCQView(task)
	case model.TypeGap, model.TypeTransform, model.TypeError:
		return newTextView(task)
	case model.TypeMatch:
		return newMatchView(task, rng)
	case model.TypeOrder:
		return newOrderView(task, rng)
	case model.TypeShort:
		return newShortView(task)
	case model.TypeWriting:
		return newWritingView(task)
	default:
		return &UnknownView{task: task}
	}
}

// Status is the per-item outcome of a check.
type Status int

const (
	StatusUnchecked Status = iota
	StatusPass
	StatusPartial
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusPartial:
		return "partial"
	case StatusFail:
		return "fail"
	}
	return "unchecked"
}

// ItemResult is the outcome for one item, pair or row.
// Matched and Total are only meaningful for short answers.
type ItemResult struct {
	Status  Status
	Matched int
	Total   int
}

// Result is the outcome of one check. For short answers Correct and Total
// are the summed keyword counts, otherwise they count passing items.
type Result struct {
	Items   []ItemResult
	Correct int
	Total   int
}

// Item returns the result of item i, or an unchecked result.
func (r *Result) Item(i int) ItemResult {
	if r == nil || i < 0 || i >= len(r.Items) {
		return ItemResult{}
	}
	return r.Items[i]
}

type checked struct {
	last *Result
}

func (c *checked) Last() *Result { return c.last }

func (c *checked) store(r Result) Result {
	c.last = &r
	return r
}

func passFail(ok bool) Status {
	if ok {
		return StatusPass
	}
	return StatusFail
}

// UnknownView is the inert placeholder for an unrecognized task type.
type UnknownView struct {
	task *model.Task
}

func (v *UnknownView) Task() *model.Task { return v.task }
func (v *UnknownView) isView()           {}

// TypeName is the unrecognized type as it appeared in the task.
func (v *UnknownView) TypeName() string { return string(v.task.Type) }
