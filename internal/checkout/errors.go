package checkout

import (
	"errors"
	"fmt"
)

// ErrInFlight is returned when an action is submitted while the same screen
// is still waiting on a previous one.
var ErrInFlight = errors.New("request already in progress")

// FormErrorKind separates configuration problems from missing form input.
type FormErrorKind string

const (
	MissingConfiguration FormErrorKind = "missing_configuration"
	MissingRequiredField FormErrorKind = "missing_required_field"
)

// FormError is a local validation failure detected before any API call.
type FormError struct {
	Kind    FormErrorKind
	Field   string
	Message string
}

func (e *FormError) Error() string {
	return e.Message
}

func missingConfig(field, msg string) *FormError {
	return &FormError{Kind: MissingConfiguration, Field: field, Message: msg}
}

func missingField(field, msg string) *FormError {
	return &FormError{Kind: MissingRequiredField, Field: field, Message: msg}
}

// ActionError is a failed API call translated for display.
type ActionError struct {
	Action  Action
	Message string
	Err     error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Action, e.Message)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// UserMessage returns the text to display for err.
func UserMessage(err error) string {
	var formErr *FormError
	if errors.As(err, &formErr) {
		return formErr.Message
	}
	var actionErr *ActionError
	if errors.As(err, &actionErr) {
		return actionErr.Message
	}
	return err.Error()
}
