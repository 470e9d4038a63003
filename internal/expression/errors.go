package expression

import (
	"fmt"
	"strings"
)

// MissingParameterError is returned when a request lacks a required field.
// Message is the user-facing explanation.
type MissingParameterError struct {
	Field   string
	Message string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing parameter %s", e.Field)
}

// SchemaError is returned when a dataset lacks columns required by the query kind.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("dataset missing required columns: %s", strings.Join(e.Missing, ", "))
}

// UnknownColumnError is returned when requested value columns are absent from the dataset.
type UnknownColumnError struct {
	Columns []string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown columns: %s", strings.Join(e.Columns, ", "))
}

// NoMatchError is returned when none of the requested identifiers resolved.
type NoMatchError struct {
	IDs []string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no identifiers matched (%d requested)", len(e.IDs))
}

// NotFoundError is returned when a single gene lookup matches no rows.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("gene %s not found", e.ID)
}
