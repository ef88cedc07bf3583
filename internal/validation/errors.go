package validation

import "strings"

// FieldError describes why a single field was rejected.
type FieldError struct {
	Field   string
	Message string
}

// Errors collects field errors in the order they were found.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return strings.Join(parts, "; ")
}

// Fields groups messages by field name for API responses.
func (e Errors) Fields() map[string][]string {
	grouped := make(map[string][]string, len(e))
	for _, fe := range e {
		grouped[fe.Field] = append(grouped[fe.Field], fe.Message)
	}
	return grouped
}

// Has reports whether field has at least one error.
func (e Errors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}

func (e Errors) add(field, message string) Errors {
	return append(e, FieldError{Field: field, Message: message})
}

type fieldMessage string

func (m fieldMessage) Error() string {
	return string(m)
}
