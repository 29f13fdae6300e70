package response

import (
	"errors"
	"fmt"
)

// ErrNoResponsesSubmitted is returned for an empty batch.
var ErrNoResponsesSubmitted = errors.New("no responses submitted")

// ErrEditorNotFound is returned when the submitting editor does not resolve
// to an active account.
var ErrEditorNotFound = errors.New("editor not found")

// ValidationError is implemented by every user-input validation failure.
// Each carries the offending question code so the caller can point at the
// form field.
type ValidationError interface {
	error
	QuestionCode() string
}

// IsValidationError reports whether err is a user-correctable input failure,
// as opposed to a configuration or lookup error.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// RequiredFieldMissingError flags an empty answer to a required question.
type RequiredFieldMissingError struct {
	Code string
}

func (e *RequiredFieldMissingError) Error() string {
	return fmt.Sprintf("question %s: a value is required", e.Code)
}

func (e *RequiredFieldMissingError) QuestionCode() string { return e.Code }

// InvalidTypeError flags a value that does not parse as the question's type.
type InvalidTypeError struct {
	Code     string
	Expected string
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("question %s: expected a %s value", e.Code, e.Expected)
}

func (e *InvalidTypeError) QuestionCode() string { return e.Code }

// BelowMinimumError flags a numeric value under the rule minimum.
type BelowMinimumError struct {
	Code string
	Min  float64
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("question %s: value below minimum %g", e.Code, e.Min)
}

func (e *BelowMinimumError) QuestionCode() string { return e.Code }

// AboveMaximumError flags a numeric value over the rule maximum.
type AboveMaximumError struct {
	Code string
	Max  float64
}

func (e *AboveMaximumError) Error() string {
	return fmt.Sprintf("question %s: value above maximum %g", e.Code, e.Max)
}

func (e *AboveMaximumError) QuestionCode() string { return e.Code }

// PatternMismatchError flags a value that does not fully match the rule regex.
type PatternMismatchError struct {
	Code    string
	Pattern string
}

func (e *PatternMismatchError) Error() string {
	return fmt.Sprintf("question %s: value does not match required pattern", e.Code)
}

func (e *PatternMismatchError) QuestionCode() string { return e.Code }

// LengthOutOfBoundsError flags a value outside the rule length bounds.
type LengthOutOfBoundsError struct {
	Code  string
	Bound int
}

func (e *LengthOutOfBoundsError) Error() string {
	return fmt.Sprintf("question %s: value length violates bound %d", e.Code, e.Bound)
}

func (e *LengthOutOfBoundsError) QuestionCode() string { return e.Code }
