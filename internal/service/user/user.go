package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nkiryanov/blogapi/internal/models"
	"github.com/nkiryanov/blogapi/internal/repository"
	"github.com/nkiryanov/blogapi/internal/service/auth"
)

type UserService struct {
	hasher  auth.PasswordHasher
	storage repository.Storage
}

func NewService(hasher auth.PasswordHasher, storage repository.Storage) *UserService {
	if hasher == nil {
		hasher = auth.DefaultHasher
	}

	return &UserService{
		hasher:  hasher,
		storage: storage,
	}
}

func (s *UserService) GetByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	return s.storage.User().GetByID(ctx, userID)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (models.User, error) {
	return s.storage.User().GetByUsername(ctx, username)
}

type UpdateParams struct {
	Username    *string
	Email       *string
	FirstName   *string
	LastName    *string
	SocialLinks *models.SocialLinks

	// Plain text password, hashed here before it reaches the repo
	Password *string
}

func (s *UserService) Update(ctx context.Context, userID uuid.UUID, params UpdateParams) (models.User, error) {
	var hashedPassword *string
	if params.Password != nil {
		hash, err := s.hasher.Hash(*params.Password)
		if err != nil {
			return models.User{}, fmt.Errorf("can't use this as password, Err: %w", err)
		}
		hashedPassword = &hash
	}

	return s.storage.User().Update(ctx, userID, repository.UpdateUserParams{
		Username:       params.Username,
		Email:          params.Email,
		FirstName:      params.FirstName,
		LastName:       params.LastName,
		SocialLinks:    params.SocialLinks,
		HashedPassword: hashedPassword,
	})
}

// Delete removes the user account with their blogs and sessions.
// Comments and likes under the removed blogs go via foreign key cascades.
func (s *UserService) Delete(ctx context.Context, userID uuid.UUID) error {
	return s.storage.InTx(ctx, func(st repository.Storage) error {
		if _, err := st.Blog().DeleteByAuthor(ctx, userID); err != nil {
			return err
		}
		if _, err := st.RefreshToken().DeleteForUser(ctx, userID); err != nil {
			return err
		}
		return st.User().Delete(ctx, userID)
	})
}

// List returns users newest first with the total count. Admin only,
// enforced at the routing layer.
func (s *UserService) List(ctx context.Context, limit int, offset int) ([]models.User, int64, error) {
	return s.storage.User().List(ctx, limit, offset)
}
