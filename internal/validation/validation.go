package validation

import (
	"strings"
	"unicode/utf8"

	"dscommerce-be/internal/apperror"
)

// Rule is one entry of a payload rule table.
type Rule[T any] struct {
	Field   string
	Message string
	Valid   func(T) bool
}

// Validator collects violations in the order they are checked.
type Validator struct {
	violations []apperror.Violation
}

func New() *Validator {
	return &Validator{}
}

// Check records a violation when ok is false.
func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.violations = append(v.violations, apperror.Violation{Field: field, Message: message})
	}
}

func (v *Validator) Valid() bool {
	return len(v.violations) == 0
}

func (v *Validator) Violations() []apperror.Violation {
	return v.violations
}

// Err returns a *apperror.ValidationError, or nil when nothing failed.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}
	return &apperror.ValidationError{Violations: v.violations}
}

// Apply runs every rule against payload.
func Apply[T any](v *Validator, payload T, rules []Rule[T]) {
	for _, r := range rules {
		v.Check(r.Valid(payload), r.Field, r.Message)
	}
}

func NotBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}

// LengthBetween counts runes, not bytes.
func LengthBetween(s string, min, max int) bool {
	n := utf8.RuneCountInString(s)
	return n >= min && n <= max
}

func MinLength(s string, min int) bool {
	return utf8.RuneCountInString(s) >= min
}

// ApplyAt runs rules against an element of a collection, reporting fields
// as prefix.field (for example items[0].quantity).
func ApplyAt[T any](v *Validator, prefix string, payload T, rules []Rule[T]) {
	for _, r := range rules {
		v.Check(r.Valid(payload), prefix+"."+r.Field, r.Message)
	}
}
