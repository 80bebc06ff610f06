package leave

import (
	"errors"
	"fmt"
)

// ValidationError carries a human-readable message for a request the
// caller can fix. Surfaced before any mutation, never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// AuthorizationError denotes a caller acting outside its role or
// reporting relationship.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

func NewAuthorizationError(format string, args ...any) *AuthorizationError {
	return &AuthorizationError{Message: fmt.Sprintf(format, args...)}
}

var (
	ErrRequestNotFound = errors.New("leave request not found")
	ErrDayNotFound     = errors.New("leave day not found")
	ErrBalanceNotFound = errors.New("leave balance not found")
	ErrRuleNotFound    = errors.New("no leave rule matches the requested day count")

	// ErrAlreadyFinalized: acting on a request whose days are all approved.
	ErrAlreadyFinalized = errors.New("leave request already fully approved")
	// ErrDayAlreadyProcessed: transitioning a day out of a terminal state.
	ErrDayAlreadyProcessed = errors.New("leave day already processed")

	ErrSelfApproval  = &AuthorizationError{Message: "cannot act on your own leave request"}
	ErrNotAuthorized = &AuthorizationError{Message: "not authorized to act on this leave request"}
	ErrNotOwner      = &AuthorizationError{Message: "leave request does not belong to you"}
)
