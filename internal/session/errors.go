package session

import (
	"errors"
	"strings"
)

const (
	// ValidationMessage is shown when industry or country is missing.
	ValidationMessage = "Por favor, proporciona tanto una industria como un país."
	// UnknownErrorMessage is used when a failure carries no message of its own.
	UnknownErrorMessage = "Ocurrió un error desconocido."
)

var (
	ErrBusy                = errors.New("a generation is already in progress")
	ErrIndexOutOfRange     = errors.New("opportunity index out of range")
	ErrUnknownField        = errors.New("unknown tracking field")
	ErrResponseBeforeEmail = errors.New("response cannot be recorded before the email is sent")
)

// ValidationError reports which inputs were empty after trimming.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return ValidationMessage + " (" + strings.Join(e.Fields, ", ") + ")"
}

// UserMessage returns the localized message without field details.
func (e *ValidationError) UserMessage() string { return ValidationMessage }

type userMessager interface {
	UserMessage() string
}

// failureMessage picks the text shown to the user for err.
func failureMessage(err error) string {
	var um userMessager
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return UnknownErrorMessage
}
