package domain

import "fmt"

// ValidationError reports a missing or invalid input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string { return e.Message }

// Invalid builds a ValidationError for field.
func Invalid(field, format string, args ...any) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError indicates the addressed entity does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e NotFoundError) Error() string { return e.Entity + " not found" }

// AuthenticationError indicates bad credentials or an unusable token.
type AuthenticationError struct {
	Reason string
}

func (e AuthenticationError) Error() string {
	if e.Reason == "" {
		return "authentication required"
	}
	return e.Reason
}

// AuthorizationError indicates the caller lacks the required role.
type AuthorizationError struct {
	Role string
}

func (e AuthorizationError) Error() string {
	if e.Role == RoleAdmin {
		return "Admin access required"
	}
	return fmt.Sprintf("role %s required", e.Role)
}
