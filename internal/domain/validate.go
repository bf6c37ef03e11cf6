package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// ValidationError is a business-rule violation surfaced to the event
// originator before any mutation. The model is untouched when one is
// returned.
type ValidationError struct {
	// Code identifies the rule that was violated.
	Code ValidationErrorCode

	// Field names the offending field.
	Field string

	// Message is a human-readable description.
	Message string
}

// ValidationErrorCode categorizes validation failures.
type ValidationErrorCode string

const (
	// ErrCodeEmptyName indicates a required name was empty after trimming.
	ErrCodeEmptyName ValidationErrorCode = "EMPTY_NAME"

	// ErrCodeTempoOutOfRange indicates a tempo target outside [1, 300].
	ErrCodeTempoOutOfRange ValidationErrorCode = "TEMPO_OUT_OF_RANGE"

	// ErrCodeBadDate indicates a calendar date not in yyyy-MM-dd form.
	ErrCodeBadDate ValidationErrorCode = "BAD_DATE"
)

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NormalizeName NFC-normalizes and trims a user-supplied name.
// Normalizing before the emptiness check keeps visually identical input
// from validating differently across platforms.
func NormalizeName(name string) string {
	return strings.TrimSpace(norm.NFC.String(name))
}

// ValidateGoal checks the goal invariants: non-empty name, tempo target
// in range when present, parsable calendar dates when present.
func ValidateGoal(g Goal) error {
	if NormalizeName(g.Name) == "" {
		return &ValidationError{Code: ErrCodeEmptyName, Field: "name", Message: "goal name must not be empty"}
	}
	if g.TempoTarget != nil && (*g.TempoTarget < TempoTargetMin || *g.TempoTarget > TempoTargetMax) {
		return &ValidationError{
			Code:    ErrCodeTempoOutOfRange,
			Field:   "tempoTarget",
			Message: fmt.Sprintf("tempo target %d outside [%d, %d]", *g.TempoTarget, TempoTargetMin, TempoTargetMax),
		}
	}
	if err := validateDate("startDate", g.StartDate); err != nil {
		return err
	}
	if err := validateDate("targetDate", g.TargetDate); err != nil {
		return err
	}
	return nil
}

// ValidateStudy checks the study invariants: non-empty name.
func ValidateStudy(s Study) error {
	if NormalizeName(s.Name) == "" {
		return &ValidationError{Code: ErrCodeEmptyName, Field: "name", Message: "study name must not be empty"}
	}
	return nil
}

// ValidateSession checks the session invariants: non-empty intention.
func ValidateSession(s Session) error {
	if NormalizeName(s.Intention) == "" {
		return &ValidationError{Code: ErrCodeEmptyName, Field: "intention", Message: "session intention must not be empty"}
	}
	return nil
}

func validateDate(field string, v *string) error {
	if v == nil {
		return nil
	}
	if _, err := time.Parse("2006-01-02", *v); err != nil {
		return &ValidationError{
			Code:    ErrCodeBadDate,
			Field:   field,
			Message: fmt.Sprintf("date %q is not yyyy-MM-dd", *v),
		}
	}
	return nil
}
