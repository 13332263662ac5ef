package models

import "time"

// Role constants for user authorization.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var ValidRoles = []string{RoleAdmin, RoleUser}

func RoleValid(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User is a credential-store record. Users are provisioned out-of-band
// (cmd/createuser), never through the public API.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // bcrypt hash
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}
