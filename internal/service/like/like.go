package like

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/models"
	"github.com/nkiryanov/blogapi/internal/repository"
	"github.com/nkiryanov/blogapi/internal/service/blog"
)

type LikeService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *LikeService {
	return &LikeService{storage: storage}
}

// Like marks the blog liked by the user and bumps the counter.
// Liking twice returns ErrLikeAlreadyExists.
func (s *LikeService) Like(ctx context.Context, viewer models.User, blogID uuid.UUID) (models.Like, error) {
	if _, err := blog.GetVisible(ctx, s.storage, viewer, blogID); err != nil {
		return models.Like{}, err
	}

	var created models.Like
	err := s.storage.InTx(ctx, func(tx repository.Storage) error {
		var err error
		created, err = tx.Like().Create(ctx, models.Like{
			ID:     uuid.New(),
			BlogID: blogID,
			UserID: viewer.ID,
		})
		if err != nil {
			return err
		}

		_, err = tx.Blog().AddLikesCount(ctx, blogID, 1)
		return err
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrLikeAlreadyExists) {
			return models.Like{}, fmt.Errorf("can't like twice: %w", apperrors.ErrLikeAlreadyExists)
		}
		return models.Like{}, fmt.Errorf("can't like blog. Err: %w", err)
	}

	return created, nil
}

// Unlike removes the like and decrements the counter.
// Unliking a blog that wasn't liked returns ErrLikeNotFound.
func (s *LikeService) Unlike(ctx context.Context, viewer models.User, blogID uuid.UUID) error {
	err := s.storage.InTx(ctx, func(tx repository.Storage) error {
		if err := tx.Like().Delete(ctx, blogID, viewer.ID); err != nil {
			return err
		}

		_, err := tx.Blog().AddLikesCount(ctx, blogID, -1)
		return err
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrLikeNotFound) {
			return fmt.Errorf("nothing to unlike: %w", apperrors.ErrLikeNotFound)
		}
		return fmt.Errorf("can't unlike blog. Err: %w", err)
	}

	return nil
}

// Liked reports whether the user has liked the blog
func (s *LikeService) Liked(ctx context.Context, viewer models.User, blogID uuid.UUID) (bool, error) {
	_, err := s.storage.Like().Get(ctx, blogID, viewer.ID)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, apperrors.ErrLikeNotFound):
		return false, nil
	default:
		return false, err
	}
}
