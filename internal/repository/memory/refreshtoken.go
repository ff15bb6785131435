package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/models"
)

type refreshTokenRepo struct {
	s *Storage
}

func (r *refreshTokenRepo) Save(_ context.Context, token models.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.refreshTokens[token.Token] = token
	return nil
}

func (r *refreshTokenRepo) Get(_ context.Context, tokenString string) (models.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	token, ok := r.s.refreshTokens[tokenString]
	if !ok {
		return models.RefreshToken{}, fmt.Errorf("repo error: %w", apperrors.ErrRefreshTokenNotFound)
	}
	return token, nil
}

func (r *refreshTokenRepo) Delete(_ context.Context, tokenString string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.refreshTokens, tokenString)
	return nil
}

func (r *refreshTokenRepo) DeleteForUser(_ context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var removed int64
	for key, token := range r.s.refreshTokens {
		if token.UserID == userID {
			delete(r.s.refreshTokens, key)
			removed++
		}
	}
	return removed, nil
}
