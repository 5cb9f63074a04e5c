package booking

import "fmt"

// InputError marks a webhook delivery that cannot be attributed to a
// customer. It is the only error class surfaced to the webhook caller.
type InputError struct {
	Code    string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewInputError(msg string) error {
	return &InputError{
		Code:    "inputError",
		Message: msg,
	}
}
