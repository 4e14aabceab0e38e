package identity

import "context"

// User is one entry in the static directory.
type User struct {
	ID          int    `yaml:"id"`
	DisplayName string `yaml:"display_name"`
}

// StaticDirectory is a Directory backed by a fixed user list, seeded
// from configuration. It stands in for the external user service.
type StaticDirectory struct {
	users map[int]User
}

// NewStaticDirectory builds a directory from the given users.
func NewStaticDirectory(users []User) *StaticDirectory {
	m := make(map[int]User, len(users))
	for _, u := range users {
		m[u.ID] = u
	}
	return &StaticDirectory{users: m}
}

// UserExists reports whether the user id is known.
func (d *StaticDirectory) UserExists(_ context.Context, userID int) (bool, error) {
	_, ok := d.users[userID]
	return ok, nil
}

// DisplayName returns the user's display name, or empty for unknown ids.
func (d *StaticDirectory) DisplayName(_ context.Context, userID int) (string, error) {
	return d.users[userID].DisplayName, nil
}
