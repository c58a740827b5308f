// Package validation checks the values the progress API accepts.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Languages the coach teaches.
var Languages = []string{"french", "spanish"}

// MaxWordLength is the longest vocabulary key stored, in characters.
const MaxWordLength = 255

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidateLanguage checks that language is one the coach teaches
func ValidateLanguage(language string) error {
	if language == "" {
		return ValidationError{Field: "language", Message: "language is required"}
	}
	for _, l := range Languages {
		if language == l {
			return nil
		}
	}
	return ValidationError{Field: "language", Message: fmt.Sprintf("unsupported language %q", language)}
}

// ValidateWord checks a vocabulary key
func ValidateWord(word string) error {
	if strings.TrimSpace(word) == "" {
		return ValidationError{Field: "word", Message: "word is required"}
	}
	if utf8.RuneCountInString(word) > MaxWordLength {
		return ValidationError{Field: "word", Message: fmt.Sprintf("word must be at most %d characters", MaxWordLength)}
	}
	return nil
}

// ValidateLessonID checks a lesson identifier
func ValidateLessonID(id int64) error {
	if id <= 0 {
		return ValidationError{Field: "lesson_id", Message: "lesson_id must be a positive integer"}
	}
	return nil
}
