package internal

import (
	"errors"
	"strings"
	"testing"
)

func TestStorageError(t *testing.T) {
	originalErr := errors.New("permission denied")
	err := &StorageError{
		Path: "/test/path",
		Op:   "rename",
		Err:  originalErr,
	}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "storage error") {
		t.Errorf("StorageError.Error() should contain 'storage error', got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "/test/path") {
		t.Errorf("StorageError.Error() should contain path, got: %q", errorMsg)
	}
	if !errors.Is(err, originalErr) {
		t.Error("StorageError.Unwrap() should return original error")
	}
}

func TestIntegrityError(t *testing.T) {
	err := &IntegrityError{Path: "data.json", Err: ErrDatasetExists}

	if !strings.Contains(err.Error(), "data.json") {
		t.Errorf("IntegrityError.Error() should contain path, got: %q", err.Error())
	}
	if !errors.Is(err, ErrDatasetExists) {
		t.Error("IntegrityError should unwrap to ErrDatasetExists")
	}

	var target *IntegrityError
	wrapped := errors.Join(errors.New("load failed"), err)
	if !errors.As(wrapped, &target) {
		t.Error("errors.As should find IntegrityError in a joined error")
	}
}

func TestConfigError(t *testing.T) {
	cause := errors.New("no token was provided")
	err := &ConfigError{Field: "slack.token", Err: cause}

	if got := err.Error(); got != "config error [slack.token]: no token was provided" {
		t.Errorf("ConfigError.Error() = %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("ConfigError.Unwrap() should return original error")
	}
}

func TestTransportError(t *testing.T) {
	cause := errors.New("ratelimited")
	err := &TransportError{Op: "conversations.history", Err: cause}

	if !strings.Contains(err.Error(), "conversations.history") {
		t.Errorf("TransportError.Error() should contain op, got: %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("TransportError.Unwrap() should return original error")
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Value: "ignore", Reason: "label is reserved"}
	want := `invalid value "ignore": label is reserved`
	if err.Error() != want {
		t.Errorf("ValidationError.Error() = %q, want %q", err.Error(), want)
	}
}

func TestExportError(t *testing.T) {
	originalErr := errors.New("disk full")
	err := &ExportError{Format: "yaml", Path: "out.yaml", Err: originalErr}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "yaml") || !strings.Contains(errorMsg, "out.yaml") {
		t.Errorf("ExportError.Error() should contain format and path, got: %q", errorMsg)
	}
	if !errors.Is(err, originalErr) {
		t.Error("ExportError.Unwrap() should return original error")
	}
}
