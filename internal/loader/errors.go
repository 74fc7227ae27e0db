package loader

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is matching against the typed errors below.
var (
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrInvalidSchema     = errors.New("invalid schema")
)

// SourceUnavailableError indicates the CSV could not be fetched, read or parsed.
type SourceUnavailableError struct {
	Source string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("source unavailable at %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("source unavailable: %v", e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

func (e *SourceUnavailableError) Is(target error) bool { return target == ErrSourceUnavailable }

// InvalidSchemaError indicates the table parsed but is empty or lacks a usable
// outcome column.
type InvalidSchemaError struct {
	Source string
	Reason string
}

func (e *InvalidSchemaError) Error() string {
	return fmt.Sprintf("invalid dataset structure in %s: %s", e.Source, e.Reason)
}

func (e *InvalidSchemaError) Is(target error) bool { return target == ErrInvalidSchema }
