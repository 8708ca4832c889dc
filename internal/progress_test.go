package internal

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestShowProgress(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		message string
		fn      func() error
		wantErr bool
	}{
		{
			name:    "successful function",
			message: "Training",
			fn: func() error {
				return nil
			},
			wantErr: false,
		},
		{
			name:    "function with error",
			message: "Training error",
			fn: func() error {
				return errors.New("test error")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ShowProgress(ctx, tt.message, tt.fn)
			if (err != nil) != tt.wantErr {
				t.Errorf("ShowProgress() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestShowProgressSimpleJoinsSpinner(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var buf bytes.Buffer
	err := showProgressSimple(context.Background(), &buf, "Working", func() error {
		time.Sleep(150 * time.Millisecond)
		return nil
	})
	if err != nil {
		t.Fatalf("showProgressSimple() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Working") {
		t.Errorf("output should contain message, got %q", buf.String())
	}
}

func TestShowProgressSimpleCancelled(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	var buf bytes.Buffer
	err := showProgressSimple(ctx, &buf, "Cancelled", func() error {
		cancel()
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("showProgressSimple() error = %v, want context.Canceled", err)
	}
}

func TestRule(t *testing.T) {
	plain := Rule("")
	if !strings.Contains(plain, strings.Repeat("-", 85)) {
		t.Errorf("Rule(\"\") should be 85 dashes, got %q", plain)
	}

	titled := Rule("Summary")
	if !strings.Contains(titled, "Summary") {
		t.Errorf("Rule(\"Summary\") should contain the title, got %q", titled)
	}

	long := Rule(strings.Repeat("x", 200))
	if !strings.Contains(long, "--"+strings.Repeat("x", 200)+"--") {
		t.Error("Rule() should keep at least two dashes on each side of a long title")
	}
}

func TestPrintHelpers(t *testing.T) {
	// Output goes to the process streams; only check they do not panic
	PrintSuccess("ok")
	PrintError("bad")
	PrintInfo("info")
	PrintWarning("careful")
}
