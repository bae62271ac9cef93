package errors

import (
	"testing"
)

func TestValidateFileName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "treemap", false},
		{"valid with space", "animated treemap", false},
		{"valid with dash", "year-12", false},
		{"valid with dot", "run.v2", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"slash", "out/treemap", true},
		{"backslash", "out\\treemap", true},
		{"dot", ".", true},
		{"dot dot", "..", true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFileName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFileName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidateFileName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestValidateFolderName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"default", "individuals", false},
		{"custom", "frames_2024", false},
		{"hidden", ".frames", true},
		{"parent", "..", true},
		{"nested", "a/b", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFolderName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFolderName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
