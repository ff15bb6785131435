package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/models"
)

type likeRepo struct {
	s *Storage
}

func (r *likeRepo) Create(_ context.Context, like models.Like) (models.Like, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := likeKey{blogID: like.BlogID, userID: like.UserID}
	if _, ok := r.s.likes[key]; ok {
		return models.Like{}, fmt.Errorf("repo error: %w", apperrors.ErrLikeAlreadyExists)
	}

	like.CreatedAt = time.Now()
	r.s.likes[key] = like
	return like, nil
}

func (r *likeRepo) Get(_ context.Context, blogID uuid.UUID, userID uuid.UUID) (models.Like, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	like, ok := r.s.likes[likeKey{blogID: blogID, userID: userID}]
	if !ok {
		return models.Like{}, fmt.Errorf("repo error: %w", apperrors.ErrLikeNotFound)
	}
	return like, nil
}

func (r *likeRepo) Delete(_ context.Context, blogID uuid.UUID, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := likeKey{blogID: blogID, userID: userID}
	if _, ok := r.s.likes[key]; !ok {
		return fmt.Errorf("repo error: %w", apperrors.ErrLikeNotFound)
	}
	delete(r.s.likes, key)
	return nil
}
