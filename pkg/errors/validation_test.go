package errors

import (
	"strings"
	"testing"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "graph.json", false},
		{"valid nested", "out/graphs/graph.json", false},
		{"valid absolute", "/tmp/graph.json", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 5000), true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateMemberID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"uuid", "5f0c7d8e-3b8a-4c4e-9a53-2f1f0f9d8e11", false},
		{"free text", "copy.Identifier<Vertex #0>Type<Unknown>", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", strings.Repeat("m", 300), true},
		{"control char", "a\x02b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMemberID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMemberID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateAttributeName(t *testing.T) {
	if err := ValidateAttributeName("Identifier"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateAttributeName(""); !Is(err, ErrCodeInvalidFormat) {
		t.Errorf("empty name: got %v, want INVALID_FORMAT", err)
	}
	if err := ValidateAttributeName("x\ty"); err == nil {
		t.Error("control character should be rejected")
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidSelection,
		ErrCodeInvalidFormat,
		ErrCodeInvalidPath,
		ErrCodeInvalidConfig,
		ErrCodeNotFound,
		ErrCodeFileNotFound,
		ErrCodeInconsistentSnapshot,
		ErrCodeInterrupted,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
