package utils

import "fmt"

// APIError is an error with the HTTP status it should be reported with.
// Fields optionally carries per-field validation messages.
type APIError struct {
	Code    int               `json:"-"`
	Message string            `json:"error"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Code: %d, Message: %s", e.Code, e.Message)
}

func New(code int, message string) error {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// Invalid builds a 400 carrying field errors.
func Invalid(message string, fields map[string]string) error {
	return &APIError{
		Code:    400,
		Message: message,
		Fields:  fields,
	}
}
