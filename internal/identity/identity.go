// Package identity defines the narrow interfaces to the out-of-scope
// authentication and user-management collaborators. The core only needs
// to resolve the acting user and confirm assignees exist.
package identity

import (
	"context"

	"github.com/thenoetrevino/plank/internal/apperr"
)

// ErrUnauthorized is returned when no valid actor claim is present.
var ErrUnauthorized = apperr.New(apperr.KindUnauthorized, "no authenticated user")

// Resolver resolves the acting user for a request.
type Resolver interface {
	CurrentUserID(ctx context.Context) (int, error)
}

// Directory answers existence and display-name lookups for users.
type Directory interface {
	UserExists(ctx context.Context, userID int) (bool, error)
	DisplayName(ctx context.Context, userID int) (string, error)
}
