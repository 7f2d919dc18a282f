package services

import (
	"errors"
	"fmt"
)

const (
	OutcomeCompleted       = "completed"
	OutcomeInputError      = "input_error"
	OutcomeResolutionError = "resolution_error"
	OutcomeConflict        = "conflict"
	OutcomeInternalError   = "internal_error"
)

// ImportRunResult is the final tally of one import run.
//
// A run that failed before row processing has Outcome other than
// OutcomeCompleted and zero counters; a completed run may still carry
// skipped and errored rows.
type ImportRunResult struct {
	Imported     int     `json:"imported"`
	Skipped      int     `json:"skipped"`
	Errored      int     `json:"errored"`
	Total        int     `json:"total"`
	Organization *string `json:"organization"`
	Outcome      string  `json:"outcome"`
}

func (r *ImportRunResult) Completed() bool {
	return r != nil && r.Outcome == OutcomeCompleted
}

type ImportErrorKind string

const (
	ImportErrorInput      ImportErrorKind = "input"
	ImportErrorResolution ImportErrorKind = "resolution"
	ImportErrorConflict   ImportErrorKind = "conflict"
	ImportErrorInternal   ImportErrorKind = "internal"
)

// ImportError aborts a run before any row is processed.
type ImportError struct {
	Kind    ImportErrorKind
	Message string
	Err     error
}

func (e *ImportError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *ImportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Outcome maps the error kind to the ImportRunResult outcome.
func (e *ImportError) Outcome() string {
	switch e.Kind {
	case ImportErrorInput:
		return OutcomeInputError
	case ImportErrorResolution:
		return OutcomeResolutionError
	case ImportErrorConflict:
		return OutcomeConflict
	default:
		return OutcomeInternalError
	}
}

func newImportError(kind ImportErrorKind, message string, err error) *ImportError {
	return &ImportError{Kind: kind, Message: message, Err: err}
}

// IsImportErrorKind reports whether err is an *ImportError of the given kind.
func IsImportErrorKind(err error, kind ImportErrorKind) bool {
	var importErr *ImportError
	return errors.As(err, &importErr) && importErr.Kind == kind
}
