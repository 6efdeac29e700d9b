package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Type is one of the eight exercise variants.
type Type string

const (
	TypeMCQ       Type = "mcq"
	TypeGap       Type = "gap"
	TypeTransform Type = "transform"
	TypeMatch     Type = "match"
	TypeError     Type = "error"
	TypeOrder     Type = "order"
	TypeShort     Type = "short"
	TypeWriting   Type = "writing"
)

// Types lists every known variant in a stable order.
var Types = []Type{TypeMCQ, TypeGap, TypeTransform, TypeMatch, TypeError, TypeOrder, TypeShort, TypeWriting}

// GapMarker marks the blank inside a gap question.
const GapMarker = "___"

// DefaultLevel is shown when a task set does not declare its level.
const DefaultLevel = "B1"

// ParseType normalizes s and reports whether it names a known variant.
func ParseType(s string) (Type, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

// Valid reports whether t is one of the known variants.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Task is one exercise block.
type Task struct {
	ID          string   `json:"id,omitempty"`
	Type        Type     `json:"type"`
	Title       string   `json:"title,omitempty"`
	Prompt      string   `json:"prompt,omitempty"`
	Items       []Item   `json:"items,omitempty"`
	Pairs       []Pair   `json:"pairs,omitempty"`
	Description string   `json:"description,omitempty"`
	Checklist   []string `json:"checklist,omitempty"`
}

// Item is one question inside a task. Which fields are set depends on the task type.
type Item struct {
	Q           string   `json:"q"`
	Choices     []string `json:"choices,omitempty"`
	Answer      Answers  `json:"answer,omitempty"`
	Hint        string   `json:"hint,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
	Tokens      []string `json:"tokens,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

// Pair is one left/right association of a match task.
type Pair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// TaskSet is the document stored next to a lesson page.
type TaskSet struct {
	Level string `json:"level,omitempty"`
	Title string `json:"title,omitempty"`
	Tasks []Task `json:"tasks"`
}

// DisplayLevel returns the declared level or DefaultLevel.
func (s *TaskSet) DisplayLevel() string {
	if s.Level == "" {
		return DefaultLevel
	}
	return s.Level
}

// Answers is a set of accepted answers. On the wire it may be a single
// string or number, or an array of strings and numbers.
type Answers []string

// UnmarshalJSON accepts "x", 1, ["x", "y"] and [0, 2].
func (a *Answers) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = nil
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		out := make(Answers, 0, len(raw))
		for _, r := range raw {
			s, err := scalarString(r)
			if err != nil {
				return err
			}
			out = append(out, s)
		}
		*a = out
		return nil
	}
	s, err := scalarString(data)
	if err != nil {
		return err
	}
	*a = Answers{s}
	return nil
}

// Joined returns the answers joined by single spaces.
// Order items store their answer this way when given as an array.
func (a Answers) Joined() string {
	return strings.Join(a, " ")
}

func scalarString(data []byte) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		return n.String(), nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		return strconv.FormatBool(b), nil
	}
	return "", fmt.Errorf("answer must be a string, number or array, got %s", string(data))
}

// DefaultPrompt returns the instruction shown when a task has no prompt.
func DefaultPrompt(t Type) string {
	switch t {
	case TypeMCQ:
		return "Choose the correct option"
	case TypeGap:
		return "Fill the gaps"
	case TypeTransform:
		return "Transform the sentence"
	case TypeMatch:
		return "Match pairs"
	case TypeError:
		return "Find and correct the error"
	case TypeOrder:
		return "Put the words in order"
	case TypeShort:
		return "Short answer"
	case TypeWriting:
		return "Writing/Speaking prompt"
	}
	return ""
}

// DisplayPrompt returns the task prompt, falling back to DefaultPrompt.
func (t *Task) DisplayPrompt() string {
	if strings.TrimSpace(t.Prompt) != "" {
		return t.Prompt
	}
	return DefaultPrompt(t.Type)
}

var noPeriodMarkers = []string{"без крапки", "without a period", "without period", "no period", "no full stop"}

// IgnoresTrailingPeriod reports whether the task instruction declares the
// final period insignificant.
func (t *Task) IgnoresTrailingPeriod() bool {
	p := strings.ToLower(t.Prompt)
	for _, m := range noPeriodMarkers {
		if strings.Contains(p, m) {
			return true
		}
	}
	return false
}

// ParseTaskSet decodes a task-set document. A document that is just null
// carries no practice and is rejected like a malformed one.
func ParseTaskSet(data []byte) (*TaskSet, error) {
	var set *TaskSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, &ValidationError{Reason: "malformed task set", Wrapped: err}
	}
	if set == nil {
		return nil, &ValidationError{Reason: "empty task set"}
	}
	return set, nil
}
