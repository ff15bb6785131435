package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is the durable record of a long-lived credential.
// A refresh token is honored only while a row with the exact token string
// exists: deleting the row (logout) revokes the credential even though its
// signature and embedded expiry remain valid.
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenPair is issued on register and login. The refresh endpoint issues
// a new access token only; the refresh token is never rotated on use.
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
