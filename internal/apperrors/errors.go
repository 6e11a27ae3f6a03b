// Package apperrors defines the errors the API reports to clients.
//
// Services return *APIError for failures a client can act on; anything else
// is reported as an internal error without details.
package apperrors

import (
	"errors"
	"net/http"
)

// Kind classifies an APIError.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindConflict
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// APIError is an error with a client-facing message.
type APIError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error kind to a response status code.
// Conflicts answer 400; the web client treats every 400 as a form error.
func (e *APIError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// As returns the APIError in err's chain, if any.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsKind reports whether err carries an APIError of kind k.
func IsKind(err error, k Kind) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Kind == k
}

func NewErrValidation(message string) *APIError {
	return &APIError{Kind: KindValidation, Message: message}
}

func NewErrEmailIsTaken() *APIError {
	return &APIError{Kind: KindConflict, Message: "User with this email already exists"}
}

// NewErrInvalidCredentials is returned for both unknown email and wrong
// password so callers cannot probe which accounts exist.
func NewErrInvalidCredentials(cause error) *APIError {
	return &APIError{Kind: KindUnauthorized, Message: "Invalid email or password", Err: cause}
}

func NewErrMissingAuthorizationToken() *APIError {
	return &APIError{Kind: KindUnauthorized, Message: "No token provided"}
}

func NewErrInvalidAuthorizationToken(cause error) *APIError {
	return &APIError{Kind: KindUnauthorized, Message: "Invalid or expired token", Err: cause}
}

func NewErrRefreshTokenRequired() *APIError {
	return &APIError{Kind: KindValidation, Message: "Refresh token is required"}
}

func NewErrInvalidRefreshToken(cause error) *APIError {
	return &APIError{Kind: KindUnauthorized, Message: "Invalid or expired refresh token", Err: cause}
}

func NewErrTaskNotFound() *APIError {
	return &APIError{Kind: KindNotFound, Message: "Task not found"}
}

func NewErrRouteNotFound() *APIError {
	return &APIError{Kind: KindNotFound, Message: "Route not found"}
}

func NewErrInternalServerError(cause error) *APIError {
	return &APIError{Kind: KindInternal, Message: "Internal server error", Err: cause}
}
