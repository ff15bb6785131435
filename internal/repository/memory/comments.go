package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/models"
)

type commentRepo struct {
	s *Storage
}

func (r *commentRepo) Create(_ context.Context, comment models.Comment) (models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	comment.CreatedAt = time.Now()
	r.s.comments[comment.ID] = comment
	return comment, nil
}

func (r *commentRepo) GetByID(_ context.Context, commentID uuid.UUID) (models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	comment, ok := r.s.comments[commentID]
	if !ok {
		return models.Comment{}, fmt.Errorf("repo error: %w", apperrors.ErrCommentNotFound)
	}
	return comment, nil
}

func (r *commentRepo) ListByBlog(_ context.Context, blogID uuid.UUID) ([]models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	comments := make([]models.Comment, 0)
	for _, c := range r.s.comments {
		if c.BlogID == blogID {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].CreatedAt.After(comments[j].CreatedAt) })
	return comments, nil
}

func (r *commentRepo) Delete(_ context.Context, commentID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.comments[commentID]; !ok {
		return fmt.Errorf("repo error: %w", apperrors.ErrCommentNotFound)
	}
	delete(r.s.comments, commentID)
	return nil
}
