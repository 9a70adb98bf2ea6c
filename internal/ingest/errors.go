package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrTypeCoercion      = errors.New("type coercion failed")
	ErrMissingName       = errors.New("record has no company name")
	ErrIngestBusy        = errors.New("another ingestion is in progress")
)

// DecodeError reports a file whose content does not parse as its format.
type DecodeError struct {
	Format Format
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", strings.TrimPrefix(string(e.Format), "."), e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// CoercionError reports a numeric field that could not become a non-negative integer.
type CoercionError struct {
	Line  int
	Field string
	Value string
	Err   error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("line %d: field %s: cannot use %q as a non-negative integer: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *CoercionError) Unwrap() error { return ErrTypeCoercion }

// RowError attributes a failure to one source row.
type RowError struct {
	Line int
	Name string
	Err  error
}

func (e RowError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d (%s): %v", e.Line, e.Name, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

func (e RowError) MarshalJSON() ([]byte, error) {
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return json.Marshal(struct {
		Line  int    `json:"line"`
		Name  string `json:"name,omitempty"`
		Error string `json:"error"`
	}{e.Line, e.Name, msg})
}
