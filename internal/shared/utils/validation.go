package utils

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Query limits
const (
	MaxPathLength = 4096
	MaxTermLength = 1024
	MaxFindDepth  = 64
)

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if value == "" && !required {
		return nil
	}

	if !utf8.ValidString(value) {
		return fmt.Errorf("%s must be valid UTF-8", fieldName)
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	// Null bytes would truncate paths at the syscall boundary
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidatePath checks a path query parameter. Absoluteness is not checked
// here; the navigator reports relative paths as access denied.
func ValidatePath(path string, required bool) error {
	return ValidateString(path, "path", 1, MaxPathLength, required)
}

// ValidateTerm checks a search term.
func ValidateTerm(term string) error {
	return ValidateString(term, "text", 0, MaxTermLength, false)
}

// ParseDepth parses the find depth; empty means unlimited (0).
func ParseDepth(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	depth, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("depth must be an integer")
	}
	if depth < 0 || depth > MaxFindDepth {
		return 0, fmt.Errorf("depth must be between 0 and %d", MaxFindDepth)
	}
	return depth, nil
}
