package shared

import "errors"

var (
	// ErrValidation indicates a missing or malformed input field.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidReference indicates a referenced entity that does not exist.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrNotFound indicates the target of a get/update/delete does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a duplicate record, e.g. a second invoice for the same sales order.
	ErrConflict = errors.New("conflict")
	// ErrInvalidState indicates an operation attempted against a document in the wrong status.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized indicates a missing or invalid bearer token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates the authenticated user lacks the required role.
	ErrForbidden = errors.New("forbidden")
)
