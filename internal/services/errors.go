package services

// ValidationError is the InvalidInput class: missing or malformed fields,
// keyed by field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

func missingField(field string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: "Missing field: " + field}}
}

type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

// UnauthorizedError means bad credentials. A missing or expired session is
// handled by the auth middleware instead.
type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

type RateLimitError struct{ Message string }

func (e *RateLimitError) Error() string { return e.Message }
