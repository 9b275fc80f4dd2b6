package errors

import (
	"strings"
	"unicode"
)

// ValidateOutputPath validates a path supplied for an output artifact.
// It rejects paths that could not name a regular file on any platform.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - Must not end in a path separator (must name a file, not a directory)
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, "\\") {
		return New(ErrCodeInvalidPath, "output path must name a file, not a directory")
	}

	return nil
}

// ValidateEncodingName validates a user-supplied text encoding name.
// Supported encodings are UTF-8 (with or without BOM), GBK, and the
// "universal" pseudo-encoding that emits both.
func ValidateEncodingName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidEncoding, "encoding cannot be empty")
	}

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "utf-8", "utf8", "utf-8-sig", "gbk", "universal", "auto":
		return nil
	}
	return New(ErrCodeInvalidEncoding, "unsupported encoding: %q (expected utf-8, utf-8-sig, gbk, universal, or auto)", name)
}

// ValidateColumnName validates a table column header for use in templates.
func ValidateColumnName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "column name cannot be empty")
	}

	for _, r := range name {
		if unicode.IsControl(r) && r != '\t' {
			return New(ErrCodeInvalidInput, "column name contains control characters: %q", name)
		}
	}

	return nil
}
