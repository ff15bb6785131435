package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/nkiryanov/blogapi/internal/models"
)

// Storage bundles all repositories over a single connection or transaction
type Storage interface {
	User() UserRepo
	RefreshToken() RefreshTokenRepo
	Blog() BlogRepo
	Comment() CommentRepo
	Like() LikeRepo

	// InTx runs fn with a Storage bound to one transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(s Storage) error) error
}

type CreateUserParams struct {
	Username       string
	Email          string
	Role           string
	FirstName      string
	LastName       string
	SocialLinks    models.SocialLinks
	HashedPassword string
}

// UpdateUserParams carries optional changes: nil means "leave unchanged"
type UpdateUserParams struct {
	Username       *string
	Email          *string
	FirstName      *string
	LastName       *string
	SocialLinks    *models.SocialLinks
	HashedPassword *string
}

// User repository interface
type UserRepo interface {
	// Create user
	// Has to return apperrors.ErrUserAlreadyExists on duplicate username or email
	Create(ctx context.Context, params CreateUserParams) (models.User, error)

	// Get user by id, email or username
	// Has to return apperrors.ErrUserNotFound if no such user
	GetByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)

	// Update user fields
	// Has to return apperrors.ErrUserAlreadyExists if username or email is taken
	Update(ctx context.Context, userID uuid.UUID, params UpdateUserParams) (models.User, error)

	// Delete user. Deleting an absent user returns apperrors.ErrUserNotFound
	Delete(ctx context.Context, userID uuid.UUID) error

	// List users ordered by creation time, newest first. Returns total count
	List(ctx context.Context, limit int, offset int) ([]models.User, int64, error)
}

// RefreshToken repository interface.
// Store membership is authoritative: a token that verifies
// cryptographically but has no row here must be rejected.
type RefreshTokenRepo interface {
	// Save the token record issued at login
	Save(ctx context.Context, token models.RefreshToken) error

	// Get the record by exact token string
	// Has to return apperrors.ErrRefreshTokenNotFound if no row exists
	Get(ctx context.Context, tokenString string) (models.RefreshToken, error)

	// Delete the record. Deleting an absent token is NOT an error:
	// logout must succeed even when the session is already gone
	Delete(ctx context.Context, tokenString string) error

	// DeleteForUser removes all records of the user, returns removed count
	DeleteForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// ListBlogsParams filters the blog listing. AuthorID narrows to one
// author; PublishedOnly hides drafts (set for non-admin viewers)
type ListBlogsParams struct {
	AuthorID      *uuid.UUID
	PublishedOnly bool
	Limit         int
	Offset        int
}

// UpdateBlogParams carries optional changes: nil means "leave unchanged"
type UpdateBlogParams struct {
	Title     *string
	Content   *string
	BannerURL *string
	Status    *string
}

// Blog repository interface
type BlogRepo interface {
	Create(ctx context.Context, blog models.Blog) (models.Blog, error)

	// Get blog by id or slug
	// Has to return apperrors.ErrBlogNotFound if no such blog
	GetByID(ctx context.Context, blogID uuid.UUID) (models.Blog, error)
	GetBySlug(ctx context.Context, slug string) (models.Blog, error)

	// List blogs ordered by creation time, newest first. Returns total count
	List(ctx context.Context, params ListBlogsParams) ([]models.Blog, int64, error)

	Update(ctx context.Context, blogID uuid.UUID, params UpdateBlogParams) (models.Blog, error)
	Delete(ctx context.Context, blogID uuid.UUID) error

	// DeleteByAuthor removes all blogs of the author, returns removed count
	DeleteByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error)

	// IncrementViews bumps views_count by one and returns the new value
	IncrementViews(ctx context.Context, blogID uuid.UUID) (int64, error)

	// AddCommentsCount / AddLikesCount adjust the denormalized counters
	AddCommentsCount(ctx context.Context, blogID uuid.UUID, delta int64) (int64, error)
	AddLikesCount(ctx context.Context, blogID uuid.UUID, delta int64) (int64, error)
}

// Comment repository interface
type CommentRepo interface {
	Create(ctx context.Context, comment models.Comment) (models.Comment, error)

	// Has to return apperrors.ErrCommentNotFound if no such comment
	GetByID(ctx context.Context, commentID uuid.UUID) (models.Comment, error)

	// ListByBlog returns comments ordered by creation time, newest first
	ListByBlog(ctx context.Context, blogID uuid.UUID) ([]models.Comment, error)

	Delete(ctx context.Context, commentID uuid.UUID) error
}

// Like repository interface
type LikeRepo interface {
	// Has to return apperrors.ErrLikeAlreadyExists on duplicate (blog, user)
	Create(ctx context.Context, like models.Like) (models.Like, error)

	// Has to return apperrors.ErrLikeNotFound if no such like
	Get(ctx context.Context, blogID uuid.UUID, userID uuid.UUID) (models.Like, error)

	// Delete like. Has to return apperrors.ErrLikeNotFound if absent
	Delete(ctx context.Context, blogID uuid.UUID, userID uuid.UUID) error
}
