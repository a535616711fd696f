// Package validate accumulates field-level validation errors so that a
// configuration can report all of its problems in one go.
package validate

import (
	"fmt"
	"net/url"
	"strings"
)

// Error is a single validation failure on a named field.
type Error struct {
	Field   string      // dotted path of the field, e.g. dataSources[0].sourceName
	Value   interface{} // the offending value
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ValidationError bundles all errors collected by a Validator.
type ValidationError struct {
	errors []Error
}

// Errors returns the individual validation errors.
func (e ValidationError) Errors() []Error {
	return e.errors
}

func (e ValidationError) Error() string {
	msgs := make([]string, len(e.errors))
	for i, err := range e.errors {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validator collects validation errors.
type Validator struct {
	errors []Error
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{errors: make([]Error, 0)}
}

// AddError records a failure on `field`.
func (v *Validator) AddError(field, message string, value interface{}) {
	v.errors = append(v.errors, Error{
		Field:   field,
		Value:   value,
		Message: message,
	})
}

// IsValid returns true if no error has been recorded.
func (v *Validator) IsValid() bool {
	return len(v.errors) == 0
}

// Err returns nil when valid, otherwise a ValidationError holding a copy
// of the recorded errors.
func (v *Validator) Err() error {
	if len(v.errors) == 0 {
		return nil
	}
	copied := make([]Error, len(v.errors))
	copy(copied, v.errors)
	return ValidationError{errors: copied}
}

// NotEmpty checks that `value` contains something other than whitespace.
func (v *Validator) NotEmpty(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "must not be empty", value)
	}
}

// URL checks that `value` is an absolute URL with a host and one of the
// `schemes`. An empty `schemes` accepts any scheme.
func (v *Validator) URL(field, value string, schemes []string) {
	if value == "" {
		v.AddError(field, "URL must not be empty", value)
		return
	}

	u, err := url.Parse(value)
	if err != nil {
		v.AddError(field, fmt.Sprintf("malformed URL: %s", err), value)
		return
	}

	if !u.IsAbs() {
		v.AddError(field, "URL must be absolute", value)
		return
	}

	if u.Host == "" {
		v.AddError(field, "URL must have a host", value)
		return
	}

	if len(schemes) == 0 {
		return
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return
		}
	}
	v.AddError(field, fmt.Sprintf("unsupported URL scheme %q (allowed: %s)", u.Scheme, strings.Join(schemes, ", ")), value)
}

// OneOf checks that `value` is one of `allowed`.
func (v *Validator) OneOf(field, value string, allowed []string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.AddError(field, fmt.Sprintf("%q is not one of [%s]", value, strings.Join(allowed, ", ")), value)
}
