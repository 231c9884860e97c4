package errors

import (
	"strings"
	"unicode"
)

// ValidateCoordinatePart validates a single Maven coordinate component
// (groupId, artifactId or version) for safety and correctness.
// It rejects values that could be used for path traversal when mapped
// onto the local repository layout.
//
// The validation rules are intentionally conservative:
//   - No empty or blank values
//   - No control characters
//   - No path traversal sequences (.., //, backslash)
//   - Maximum length of 256 characters
func ValidateCoordinatePart(kind, value string) error {
	if strings.TrimSpace(value) == "" {
		return New(ErrCodeInvalidCoordinate, "%s cannot be blank", kind)
	}

	if len(value) > 256 {
		return New(ErrCodeInvalidCoordinate, "%s too long (max 256 characters)", kind)
	}

	for _, r := range value {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidCoordinate, "%s contains control characters", kind)
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
		"/",    // Coordinate parts never contain separators
	}
	for _, pattern := range dangerousPatterns {
		if strings.Contains(value, pattern) {
			return New(ErrCodeInvalidCoordinate, "%s contains invalid characters: %q", kind, pattern)
		}
	}

	return nil
}

// ValidateRepoRoot validates a local repository root path.
// The path must be non-empty and free of null bytes; existence is
// checked by the caller, which owns the decision of how to fail.
func ValidateRepoRoot(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "repository root cannot be empty")
	}
	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidPath, "repository root contains null byte")
	}
	if len(path) > 500 {
		return New(ErrCodeInvalidPath, "repository root too long (max 500 characters)")
	}
	return nil
}
