package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrDatasetExists is returned when the data file exists and appending is disabled
	ErrDatasetExists = errors.New("data file exists and append is disabled")
	// ErrMalformedDataset is returned when the data file cannot be used
	ErrMalformedDataset = errors.New("data file is invalid")
	// ErrBatchRejected is returned when the operator rejects a batch too many times
	ErrBatchRejected = errors.New("batch rejected")
)

// ConfigError represents fatal misconfiguration
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error [%s]: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// TransportError represents a failed call to the chat platform
type TransportError struct {
	Op  string // "conversations.list", "conversations.history"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error [%s]: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IntegrityError represents a data file that cannot be safely used
type IntegrityError struct {
	Path string
	Err  error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("data integrity error %s: %v", e.Path, e.Err)
}

func (e *IntegrityError) Unwrap() error {
	return e.Err
}

// ValidationError represents an invalid operator supplied value
type ValidationError struct {
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value %q: %s", e.Value, e.Reason)
}

// StorageError represents errors accessing dataset files
type StorageError struct {
	Path string
	Op   string // "mkdir", "write", "rename", "backup"
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
