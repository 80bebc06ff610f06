package response

import (
	"errors"
	"net/http"

	"github.com/worknest/intranet-backend-go/internal/domain/auth"
	"github.com/worknest/intranet-backend-go/internal/domain/leave"
	"github.com/worknest/intranet-backend-go/internal/domain/user"
	"github.com/worknest/intranet-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Field-level DTO validation
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationFailed(w, validationErrs.ToMap())
		return
	}

	// Business-rule rejections carry a single message
	var businessErr *leave.ValidationError
	if errors.As(err, &businessErr) {
		BadRequest(w, businessErr.Message, nil)
		return
	}

	var authzErr *leave.AuthorizationError
	if errors.As(err, &authzErr) {
		Forbidden(w, authzErr.Message)
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrAccountInactive):
		Forbidden(w, "Account is inactive")
	case errors.Is(err, auth.ErrUnknownAccount):
		Forbidden(w, "No account exists for this email")

	// User domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUserInactive):
		Forbidden(w, "User account is inactive")

	// Leave domain errors
	case errors.Is(err, leave.ErrRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrDayNotFound):
		NotFound(w, "Leave day not found")
	case errors.Is(err, leave.ErrBalanceNotFound):
		NotFound(w, "Leave balance not found")
	case errors.Is(err, leave.ErrAlreadyFinalized):
		Conflict(w, "Leave request already fully approved")
	case errors.Is(err, leave.ErrDayAlreadyProcessed):
		Conflict(w, "Leave day already processed")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
