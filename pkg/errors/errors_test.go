package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeParse, "malformed descriptor: %s", "pom.xml")

	if err.Code != ErrCodeParse {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodeParse)
	}
	if err.Message != "malformed descriptor: pom.xml" {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("Cause = %v, want nil", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("disk on fire")
	err := Wrap(ErrCodeRepoUnreadable, cause, "cannot read %s", "/repo")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error does not match its cause via errors.Is")
	}
	want := "REPO_UNREADABLE: cannot read /repo: disk on fire"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeDescriptorNotFound, "no descriptor")

	if !Is(err, ErrCodeDescriptorNotFound) {
		t.Error("Is(err, DESCRIPTOR_NOT_FOUND) = false, want true")
	}
	if Is(err, ErrCodeParse) {
		t.Error("Is(err, PARSE_ERROR) = true, want false")
	}
	if Is(stderrors.New("plain"), ErrCodeParse) {
		t.Error("Is(plain error, code) = true, want false")
	}

	// Codes survive further wrapping with %w.
	wrapped := fmt.Errorf("context: %w", err)
	if !Is(wrapped, ErrCodeDescriptorNotFound) {
		t.Error("code lost through fmt.Errorf wrapping")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeInvalidConfig, "bad")); got != ErrCodeInvalidConfig {
		t.Errorf("GetCode = %q, want %q", got, ErrCodeInvalidConfig)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidInput, "roots required")
	if got := UserMessage(err); got != "roots required" {
		t.Errorf("UserMessage = %q, want message without code prefix", got)
	}
	if got := UserMessage(stderrors.New("plain")); got != "plain" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestValidateCoordinatePart(t *testing.T) {
	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"simple", "commons-lang", true},
		{"dotted group", "org.apache.commons", true},
		{"blank", "  ", false},
		{"traversal", "..", false},
		{"embedded traversal", "a..b", false},
		{"slash", "a/b", false},
		{"backslash", `a\b`, false},
		{"control char", "a\x01b", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinatePart("groupId", tt.value)
			if (err == nil) != tt.valid {
				t.Errorf("ValidateCoordinatePart(%q) error = %v, valid = %v", tt.value, err, tt.valid)
			}
			if err != nil && !Is(err, ErrCodeInvalidCoordinate) {
				t.Errorf("error code = %v, want INVALID_COORDINATE", GetCode(err))
			}
		})
	}
}

func TestValidateRepoRoot(t *testing.T) {
	if err := ValidateRepoRoot("/home/u/.m2/repository"); err != nil {
		t.Errorf("valid root rejected: %v", err)
	}
	if err := ValidateRepoRoot(""); !Is(err, ErrCodeInvalidPath) {
		t.Errorf("empty root error = %v, want INVALID_PATH", err)
	}
	if err := ValidateRepoRoot("bad\x00root"); !Is(err, ErrCodeInvalidPath) {
		t.Errorf("null byte root error = %v, want INVALID_PATH", err)
	}
}
