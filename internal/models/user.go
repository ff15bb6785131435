package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles. Role is stored on the user row and embedded into access
// tokens; authorization decisions always use the stored value.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type SocialLinks struct {
	Website   string
	Facebook  string
	Instagram string
	LinkedIn  string
	X         string
	YouTube   string
}

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Username       string
	Email          string
	Role           string
	FirstName      string
	LastName       string
	SocialLinks    SocialLinks
	HashedPassword string
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
