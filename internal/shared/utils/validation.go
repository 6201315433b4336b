// Package utils holds input validation shared by the API surfaces.
package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid input")

// Size limits
const (
	MaxIDLength   = 128
	MaxTextLength = 256 * 1024 // runes of one tab's text
)

// SafeIDPattern allows alphanumeric, hyphens, underscores
var SafeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalid, fieldName)
	}

	if value == "" && !required {
		return nil // Optional field, empty is OK
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%w: %s must be at least %d characters", ErrInvalid, fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%w: %s must not exceed %d characters", ErrInvalid, fieldName, maxLen)
	}

	// Check for null bytes
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%w: %s contains invalid characters", ErrInvalid, fieldName)
	}

	return nil
}

// ValidateID validates a node or tab ID
func ValidateID(id, fieldName string) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, true); err != nil {
		return err
	}

	if !SafeIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %s contains invalid characters (only alphanumeric, hyphens, and underscores allowed)", ErrInvalid, fieldName)
	}

	return nil
}

// ValidateText validates a tab's text. Empty text is valid.
func ValidateText(text string) error {
	if !utf8.ValidString(text) {
		return fmt.Errorf("%w: text is not valid UTF-8", ErrInvalid)
	}
	return ValidateString(text, "text", 0, MaxTextLength, false)
}
