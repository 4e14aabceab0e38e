package board

import "github.com/thenoetrevino/plank/internal/apperr"

// Board-related errors
var (
	// Validation errors
	ErrInvalidBoardID   = apperr.New(apperr.KindBadRequest, "invalid board ID")
	ErrInvalidProjectID = apperr.New(apperr.KindBadRequest, "invalid project ID")
	ErrInvalidColumnID  = apperr.New(apperr.KindBadRequest, "invalid column ID")
	ErrInvalidWIPLimit  = apperr.New(apperr.KindBadRequest, "WIP limit must be a positive number")
	ErrEmptyName        = apperr.New(apperr.KindBadRequest, "board name cannot be empty")

	// Business logic errors
	ErrBoardNotFound     = apperr.New(apperr.KindNotFound, "board not found")
	ErrBoardExists       = apperr.New(apperr.KindBadRequest, "project already has a board")
	ErrProjectNotFound   = apperr.New(apperr.KindNotFound, "project not found")
	ErrColumnNotFound    = apperr.New(apperr.KindNotFound, "board column not found")
	ErrColumnStale       = apperr.New(apperr.KindConflict, "board column was modified by someone else; reload and retry")
	ErrColumnSetMismatch = apperr.New(apperr.KindBadRequest, "reorder must list every column of the board exactly once")
	ErrNoColumnForStatus = apperr.New(apperr.KindBadRequest, "the board has no column for the target status")
)
