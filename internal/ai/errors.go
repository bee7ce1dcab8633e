package ai

import (
	"errors"
	"fmt"
)

// GenerationMessage is what the user sees for any generation failure.
const GenerationMessage = "No se pudieron obtener y analizar las oportunidades de negocio de la IA."

var (
	ErrEmptyResult     = errors.New("model returned an empty or non-array result")
	ErrUnparsable      = errors.New("model output is not valid JSON")
	ErrMalformedRecord = errors.New("model returned a malformed record")
)

// GenerationFailure is the single terminal error of a generation attempt.
// Message is safe to show to users; Err keeps the cause for logs and errors.Is.
type GenerationFailure struct {
	Message string
	Err     error
}

func newFailure(err error) *GenerationFailure {
	return &GenerationFailure{Message: GenerationMessage, Err: err}
}

func (e *GenerationFailure) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *GenerationFailure) Unwrap() error { return e.Err }

// UserMessage returns the text meant for the end user.
func (e *GenerationFailure) UserMessage() string { return e.Message }
