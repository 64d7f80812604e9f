package common

import (
	"fmt"
	"regexp"
)

// EmailRX is a lenient shape check, enough to catch obvious typos before the
// credential comparison runs.
var EmailRX = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type ValidationError struct {
	Errors map[string]string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation errors: %+v", e.Errors)
}

// Validator accumulates field errors; the first message recorded for a field
// wins.
type Validator struct {
	Errors map[string]string
}

func NewValidator() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

func (v *Validator) AddError(field, message string) {
	if _, ok := v.Errors[field]; !ok {
		v.Errors[field] = message
	}
}

func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.AddError(field, message)
	}
}

func (v *Validator) CheckMatches(s string, rx *regexp.Regexp, field, message string) {
	v.Check(rx.MatchString(s), field, message)
}

func (v *Validator) ValidationError() error {
	return ValidationError{Errors: v.Errors}
}
