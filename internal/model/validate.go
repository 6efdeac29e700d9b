package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// MCQChoices is the exact number of choices an mcq item carries.
const MCQChoices = 3

// Checklist bounds for writing tasks.
const (
	MinChecklist = 4
	MaxChecklist = 6
)

// Validate checks the structural invariants of the task's type.
// Unknown types are reported as SchemaMismatchError.
func (t *Task) Validate() error {
	if !t.Type.Valid() {
		return &SchemaMismatchError{Type: string(t.Type)}
	}

	var errs []error
	switch t.Type {
	case TypeMatch:
		if len(t.Pairs) == 0 {
			errs = append(errs, errors.New("match task has no pairs"))
		}
		for i, p := range t.Pairs {
			if strings.TrimSpace(p.Left) == "" || strings.TrimSpace(p.Right) == "" {
				errs = append(errs, fmt.Errorf("pair %d: left and right are required", i))
			}
		}
	case TypeWriting:
		if strings.TrimSpace(t.Description) == "" {
			errs = append(errs, errors.New("writing task has no description"))
		}
		if n := len(t.Checklist); n < MinChecklist || n > MaxChecklist {
			errs = append(errs, fmt.Errorf("writing checklist has %d entries, want %d-%d", n, MinChecklist, MaxChecklist))
		}
	default:
		if len(t.Items) == 0 {
			errs = append(errs, fmt.Errorf("%s task has no items", t.Type))
		}
		for i, it := range t.Items {
			if err := validateItem(t.Type, it); err != nil {
				errs = append(errs, fmt.Errorf("item %d: %w", i, err))
			}
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Reason: fmt.Sprintf("%s task %q", t.Type, t.ID), Wrapped: errors.Join(errs...)}
	}
	return nil
}

func validateItem(typ Type, it Item) error {
	if strings.TrimSpace(it.Q) == "" && typ != TypeOrder {
		return errors.New("question text is empty")
	}
	switch typ {
	case TypeMCQ:
		if len(it.Choices) != MCQChoices {
			return fmt.Errorf("has %d choices, want %d", len(it.Choices), MCQChoices)
		}
		if len(it.Answer) == 0 {
			return errors.New("no correct choice")
		}
		for _, a := range it.Answer {
			idx, err := strconv.Atoi(strings.TrimSpace(a))
			if err != nil || idx < 0 || idx >= MCQChoices {
				return fmt.Errorf("answer %q is not a choice index", a)
			}
		}
	case TypeGap:
		if strings.Count(it.Q, GapMarker) != 1 {
			return fmt.Errorf("question must contain exactly one %q", GapMarker)
		}
		if len(it.Answer) == 0 {
			return errors.New("no accepted answer")
		}
	case TypeTransform, TypeError:
		if len(it.Answer) == 0 {
			return errors.New("no accepted answer")
		}
	case TypeOrder:
		if len(it.Tokens) == 0 {
			return errors.New("no tokens")
		}
		if !sameWords(strings.Fields(strings.Join(it.Tokens, " ")), strings.Fields(it.Answer.Joined())) {
			return fmt.Errorf("tokens %v do not reassemble to %q", it.Tokens, it.Answer.Joined())
		}
	case TypeShort:
		// keywords are advisory and may be empty
	}
	return nil
}

// sameWords reports whether a and b hold the same words, ignoring order and case.
func sameWords(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := make([]string, len(a))
	y := make([]string, len(b))
	for i := range a {
		x[i] = strings.ToLower(strings.TrimSpace(a[i]))
		y[i] = strings.ToLower(strings.TrimSpace(b[i]))
	}
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}

// CheckTaskSet decodes a task-set document and reports every task that
// breaks its JSON schema or the invariants of its type. The error is set
// only when the document itself is malformed.
func CheckTaskSet(data []byte) ([]error, error) {
	set, err := ParseTaskSet(data)
	if err != nil {
		return nil, err
	}
	var raw struct {
		Tasks []json.RawMessage `json:"tasks"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ValidationError{Reason: "malformed task set", Wrapped: err}
	}

	var problems []error
	for i := range set.Tasks {
		t := &set.Tasks[i]
		if !t.Type.Valid() {
			problems = append(problems, fmt.Errorf("task %d: %w", i, &SchemaMismatchError{Type: string(t.Type)}))
			continue
		}
		if err := ValidateJSON(t.Type, raw.Tasks[i]); err != nil {
			problems = append(problems, fmt.Errorf("task %d: %w", i, err))
			continue
		}
		if err := t.Validate(); err != nil {
			problems = append(problems, fmt.Errorf("task %d: %w", i, err))
		}
	}
	return problems, nil
}
