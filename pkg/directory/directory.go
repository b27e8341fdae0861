package directory

import "context"

// User is a directory record of one addressable person.
type User struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Directory resolves roles and user IDs to user records. Implementations are
// read-only and assumed consistent at call time; callers handle per-entry
// errors by skipping, never by aborting sibling lookups.
type Directory interface {
	// UsersByRole returns the members of a role. Unknown roles yield an
	// empty slice, not an error.
	UsersByRole(ctx context.Context, role string) ([]User, error)

	// UserByID returns the user with the given ID, or nil when no record
	// exists.
	UserByID(ctx context.Context, id int64) (*User, error)

	// Roles lists all role names known to the directory.
	Roles(ctx context.Context) ([]string, error)

	// EntityTypes lists the entity type names registered with the content
	// system, optionally restricted to publicly visible types.
	EntityTypes(ctx context.Context, publicOnly bool) ([]string, error)
}
