package models

import "fmt"

// ValidationError reports a missing or malformed input field.
// Field uses the wire name so clients can show the message next to the input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
