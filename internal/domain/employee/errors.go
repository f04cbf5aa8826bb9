package employee

import (
	"errors"
	"strings"
)

var ErrNotFound = errors.New("employee not found")

type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every rule failure of one payload, each scoped to
// a field path such as "relationships[2].residenceLocation".
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Field+": "+issue.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the first message per field path.
func (e *ValidationError) Fields() map[string]string {
	out := make(map[string]string, len(e.Issues))
	for _, issue := range e.Issues {
		if _, ok := out[issue.Field]; !ok {
			out[issue.Field] = issue.Message
		}
	}
	return out
}

// PersistenceError wraps a storage failure. Its message never includes the
// storage detail; callers log Unwrap() instead.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return "employee " + e.Op + " failed"
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
