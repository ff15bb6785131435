package comment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/models"
	"github.com/nkiryanov/blogapi/internal/repository"
	"github.com/nkiryanov/blogapi/internal/service/blog"
)

type CommentService struct {
	storage repository.Storage

	// Comment bodies are user generated HTML, strip anything unsafe
	sanitizer *bluemonday.Policy
}

func NewService(storage repository.Storage) *CommentService {
	return &CommentService{
		storage:   storage,
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// Create adds a comment to a blog the viewer can see and bumps the
// blog's comment counter in the same transaction.
func (s *CommentService) Create(ctx context.Context, viewer models.User, blogID uuid.UUID, content string) (models.Comment, error) {
	if _, err := blog.GetVisible(ctx, s.storage, viewer, blogID); err != nil {
		return models.Comment{}, err
	}

	var created models.Comment
	err := s.storage.InTx(ctx, func(tx repository.Storage) error {
		var err error
		created, err = tx.Comment().Create(ctx, models.Comment{
			ID:      uuid.New(),
			BlogID:  blogID,
			UserID:  viewer.ID,
			Content: s.sanitizer.Sanitize(content),
		})
		if err != nil {
			return err
		}

		_, err = tx.Blog().AddCommentsCount(ctx, blogID, 1)
		return err
	})
	if err != nil {
		return models.Comment{}, fmt.Errorf("can't create comment. Err: %w", err)
	}

	return created, nil
}

func (s *CommentService) ListByBlog(ctx context.Context, viewer models.User, blogID uuid.UUID) ([]models.Comment, error) {
	if _, err := blog.GetVisible(ctx, s.storage, viewer, blogID); err != nil {
		return nil, err
	}

	return s.storage.Comment().ListByBlog(ctx, blogID)
}

// Delete removes the comment and decrements the blog counter.
// Allowed for the comment author and admins only.
func (s *CommentService) Delete(ctx context.Context, viewer models.User, commentID uuid.UUID) error {
	comment, err := s.storage.Comment().GetByID(ctx, commentID)
	if err != nil {
		return err
	}

	if comment.UserID != viewer.ID && !viewer.IsAdmin() {
		return fmt.Errorf("viewer is not the comment author: %w", apperrors.ErrForbidden)
	}

	err = s.storage.InTx(ctx, func(tx repository.Storage) error {
		if err := tx.Comment().Delete(ctx, commentID); err != nil {
			return err
		}

		_, err := tx.Blog().AddCommentsCount(ctx, comment.BlogID, -1)
		return err
	})
	if err != nil {
		return fmt.Errorf("can't delete comment. Err: %w", err)
	}

	return nil
}
