package model

import "fmt"

// ParseError is returned when a generation reply cannot be turned into
// structured data, even after recovery.
type ParseError struct {
	Reason  string
	Raw     string
	Wrapped error
}

func (e *ParseError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("parse reply: %s: %v", e.Reason, e.Wrapped)
	}
	return fmt.Sprintf("parse reply: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Wrapped }

// SchemaMismatchError is returned when a recovered object has no
// recognizable exercise type.
type SchemaMismatchError struct {
	Type string
}

func (e *SchemaMismatchError) Error() string {
	if e.Type == "" {
		return "schema mismatch: reply has no type"
	}
	return fmt.Sprintf("schema mismatch: unknown type %q", e.Type)
}

// NetworkError wraps a transport failure talking to the generation service.
type NetworkError struct {
	Status  int
	Wrapped error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("generation service returned status %d", e.Status)
	}
	return fmt.Sprintf("generation service unreachable: %v", e.Wrapped)
}

func (e *NetworkError) Unwrap() error { return e.Wrapped }

// ValidationError is returned for task sets that are absent or malformed,
// and for tasks that break the structural invariants of their type.
type ValidationError struct {
	Reason  string
	Wrapped error
}

func (e *ValidationError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("invalid task: %s: %v", e.Reason, e.Wrapped)
	}
	return fmt.Sprintf("invalid task: %s", e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }
