package errors

import (
	"strings"
	"unicode"
)

// ValidatePath validates a graph file path given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateMemberID validates a composite member id read from a document.
// Member ids are opaque but must be non-empty printable strings.
func ValidateMemberID(id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeInconsistentSnapshot, "member id cannot be empty")
	}
	if len(id) > 256 {
		return New(ErrCodeInconsistentSnapshot, "member id too long (max 256 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInconsistentSnapshot, "member id contains invalid control characters")
		}
	}
	return nil
}

// ValidateAttributeName validates an attribute name read from a document.
func ValidateAttributeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidFormat, "attribute name cannot be empty")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidFormat, "attribute name %q contains invalid control characters", name)
		}
	}
	return nil
}
