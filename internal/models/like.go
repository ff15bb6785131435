package models

import (
	"time"

	"github.com/google/uuid"
)

type Like struct {
	ID        uuid.UUID
	BlogID    uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
}
