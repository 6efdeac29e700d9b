package llm

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/pavelanni/practice/internal/model"
)

// Recover turns a generation reply into a Task. The reply may be a JSON
// string holding the task, the task object itself, or raw text. When the
// text does not parse, the span from the first '{' to the last '}' is tried.
func Recover(raw []byte) (*model.Task, error) {
	task, _, err := recoverTask(raw)
	return task, err
}

func recoverTask(raw []byte) (*model.Task, []byte, error) {
	obj, err := recoverObject(raw)
	if err != nil {
		return nil, nil, err
	}

	var head struct {
		Type json.RawMessage `json:"type"`
	}
	if err := json.Unmarshal(obj, &head); err != nil {
		return nil, nil, &model.ParseError{Reason: "reply is not an object", Raw: string(raw), Wrapped: err}
	}
	if len(head.Type) == 0 || string(head.Type) == "null" {
		return nil, nil, &model.SchemaMismatchError{}
	}
	var name string
	if err := json.Unmarshal(head.Type, &name); err != nil {
		return nil, nil, &model.SchemaMismatchError{Type: string(head.Type)}
	}
	t, ok := model.ParseType(name)
	if !ok {
		return nil, nil, &model.SchemaMismatchError{Type: name}
	}

	if name != string(t) {
		if obj, err = retype(obj, t); err != nil {
			return nil, nil, &model.ParseError{Reason: "reply is not an object", Raw: string(raw), Wrapped: err}
		}
	}

	var task model.Task
	if err := json.Unmarshal(obj, &task); err != nil {
		return nil, nil, &model.ParseError{Reason: "reply does not decode as a task", Raw: string(raw), Wrapped: err}
	}
	task.Type = t
	return &task, obj, nil
}

// recoverObject returns the bytes of the JSON object carried by raw.
func recoverObject(raw []byte) ([]byte, error) {
	body := bytes.TrimSpace(raw)
	if len(body) == 0 {
		return nil, &model.ParseError{Reason: "empty reply"}
	}

	text := body
	if body[0] == '"' {
		var s string
		if err := json.Unmarshal(body, &s); err == nil {
			text = bytes.TrimSpace([]byte(s))
		}
	}

	if isObject(text) {
		return text, nil
	}

	start := bytes.IndexByte(text, '{')
	end := bytes.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return nil, &model.ParseError{Reason: "no JSON object in reply", Raw: string(raw)}
	}
	candidate := text[start : end+1]
	var shape map[string]json.RawMessage
	if err := json.Unmarshal(candidate, &shape); err != nil {
		return nil, &model.ParseError{Reason: "recovered span is not valid JSON", Raw: string(raw), Wrapped: err}
	}
	return candidate, nil
}

// retype rewrites the type field of obj to its canonical spelling.
func retype(obj []byte, t model.Type) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(obj, &fields); err != nil {
		return nil, err
	}
	v, err := json.Marshal(string(t))
	if err != nil {
		return nil, err
	}
	fields["type"] = v
	return json.Marshal(fields)
}

func isObject(text []byte) bool {
	if len(text) == 0 || text[0] != '{' {
		return false
	}
	var shape map[string]json.RawMessage
	return json.Unmarshal(text, &shape) == nil
}

// IsTransient reports whether err is a generation failure that should be
// shown as a status message rather than treated as a server fault.
func IsTransient(err error) bool {
	var (
		pe *model.ParseError
		ne *model.NetworkError
		se *model.SchemaMismatchError
		ve *model.ValidationError
	)
	return errors.As(err, &pe) || errors.As(err, &ne) || errors.As(err, &se) || errors.As(err, &ve)
}
