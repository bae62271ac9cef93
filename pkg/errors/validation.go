package errors

import (
	"strings"
	"unicode"
)

// ValidateFileName validates an output file name (without extension).
// It must be a simple basename: output directories are given separately and
// joined by the pipeline.
//
// Validation rules:
//   - No empty names
//   - No control characters or null bytes
//   - No path separators
//   - No "." or ".." names
//   - Maximum length of 200 characters
func ValidateFileName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "file name cannot be empty")
	}

	if len(name) > 200 {
		return New(ErrCodeInvalidPath, "file name too long (max 200 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "file name contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidPath, "file name cannot contain path separators: %q", name)
	}

	if name == "." || name == ".." {
		return New(ErrCodeInvalidPath, "file name cannot be %q", name)
	}

	return nil
}

// ValidateFolderName validates the name of the per-frame folder created
// inside the output directory during animation. The folder is removed
// recursively afterwards, so anything that could escape the output directory
// is rejected.
func ValidateFolderName(name string) error {
	if err := ValidateFileName(name); err != nil {
		return New(ErrCodeInvalidPath, "invalid frames folder: %s", UserMessage(err))
	}
	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidPath, "frames folder cannot be a hidden directory: %q", name)
	}
	return nil
}
