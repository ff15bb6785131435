package models

import (
	"time"

	"github.com/google/uuid"
)

// Blog statuses. Draft blogs are visible to their author and admins only;
// everyone else gets "not found" so drafts existence is not leaked.
const (
	BlogStatusDraft     = "draft"
	BlogStatusPublished = "published"
)

type Blog struct {
	ID            uuid.UUID
	AuthorID      uuid.UUID
	Slug          string
	Title         string
	Content       string
	BannerURL     string
	Status        string
	ViewsCount    int64
	LikesCount    int64
	CommentsCount int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// VisibleTo reports whether the viewer may learn the blog exists.
func (b Blog) VisibleTo(viewer User) bool {
	return b.Status == BlogStatusPublished || viewer.IsAdmin() || b.AuthorID == viewer.ID
}
