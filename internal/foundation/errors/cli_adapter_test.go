package errors

import (
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

type customError struct{ msg string }

func (e *customError) Error() string { return e.msg }

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation error", err: ValidationError("document id cannot include slash").Build(), expected: 2},
		{name: "reference error", err: ReferenceError("missing pagination target").Build(), expected: 3},
		{name: "config error", err: ConfigError("bad config").Build(), expected: 7},
		{name: "build error", err: BuildError("metadata failed").Build(), expected: 11},
		{
			name:     "wrapped classified error",
			err:      fmt.Errorf("load version: %w", ReferenceError("dangling").Build()),
			expected: 3,
		},
		{name: "unclassified error", err: &customError{msg: "unknown error"}, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, slog.Default())
	verbose := NewCLIErrorAdapter(true, slog.Default())

	internal := InternalError("index corrupted").Build()
	if got := quiet.FormatError(internal); !strings.Contains(got, "use -v") {
		t.Errorf("expected internal error to be hidden, got %q", got)
	}
	if got := verbose.FormatError(internal); !strings.Contains(got, "index corrupted") {
		t.Errorf("expected verbose output to include message, got %q", got)
	}

	ref := ReferenceError("pagination_next points to missing-id").Build()
	if got := quiet.FormatError(ref); !strings.Contains(got, "missing-id") {
		t.Errorf("expected reference error message, got %q", got)
	}
	if got := quiet.FormatError(nil); got != "" {
		t.Errorf("expected empty string for nil, got %q", got)
	}
}

func TestCLIErrorAdapter_FormatErrorLocation(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	err := ReferenceError("sidebar references unknown doc").
		WithContext(KeyVersion, "1.0").
		WithContext(KeySidebarFile, "sidebars.yaml").
		WithContext(KeyDocID, "ghost").
		Build()
	got := adapter.FormatError(fmt.Errorf("load: %w", err))
	want := `at version "1.0", sidebar file "sidebars.yaml", doc "ghost"`
	if !strings.Contains(got, want) {
		t.Errorf("FormatError() = %q, want it to contain %q", got, want)
	}

	if loc := Location(&customError{msg: "plain"}); loc != "" {
		t.Errorf("Location() = %q for unclassified error, want empty", loc)
	}
	if loc := Location(ConfigError("bad").Build()); loc != "" {
		t.Errorf("Location() = %q without context, want empty", loc)
	}
}
