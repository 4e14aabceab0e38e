package status

import "github.com/thenoetrevino/plank/internal/apperr"

// Status-related errors
var (
	// Validation errors
	ErrEmptyName       = apperr.New(apperr.KindBadRequest, "status name cannot be empty")
	ErrNameTooLong     = apperr.New(apperr.KindBadRequest, "status name cannot exceed 50 characters")
	ErrInvalidStatusID = apperr.New(apperr.KindBadRequest, "invalid status ID")
	ErrSelfTransition  = apperr.New(apperr.KindBadRequest, "a transition rule cannot target its own source status")

	// Business logic errors
	ErrDuplicateName   = apperr.New(apperr.KindBadRequest, "a status with that name already exists")
	ErrStatusNotFound  = apperr.New(apperr.KindNotFound, "status not found")
	ErrStatusInUse     = apperr.New(apperr.KindBadRequest, "status is referenced by epics, work items, or board columns and cannot be deleted")
	ErrNoDefaultStatus = apperr.New(apperr.KindBadRequest, "no status is flagged as default for new items")
)
