package project

import "github.com/thenoetrevino/plank/internal/apperr"

// Project-related errors
var (
	// Validation errors
	ErrInvalidProjectID = apperr.New(apperr.KindBadRequest, "invalid project ID")
	ErrEmptyName        = apperr.New(apperr.KindBadRequest, "project name cannot be empty")
	ErrInvalidKey       = apperr.New(apperr.KindBadRequest, "project key must be 2-10 characters, letters and digits, starting with a letter")

	// Business logic errors
	ErrDuplicateKey       = apperr.New(apperr.KindBadRequest, "a project with that key already exists")
	ErrProjectNotFound    = apperr.New(apperr.KindNotFound, "project not found")
	ErrNotProjectOwner    = apperr.New(apperr.KindForbidden, "only the project owner may perform this action")
	ErrProjectHasChildren = apperr.New(apperr.KindBadRequest, "project still contains epics or work items and cannot be deleted")
)
