package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/models"
	"github.com/nkiryanov/blogapi/internal/repository"
)

type userRepo struct {
	s *Storage
}

func (r *userRepo) Create(_ context.Context, params repository.CreateUserParams) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Username == params.Username || u.Email == params.Email {
			return models.User{}, fmt.Errorf("repo error: %w", apperrors.ErrUserAlreadyExists)
		}
	}

	now := time.Now()
	user := models.User{
		ID:             uuid.New(),
		CreatedAt:      now,
		UpdatedAt:      now,
		Username:       params.Username,
		Email:          params.Email,
		Role:           params.Role,
		FirstName:      params.FirstName,
		LastName:       params.LastName,
		SocialLinks:    params.SocialLinks,
		HashedPassword: params.HashedPassword,
	}
	r.s.users[user.ID] = user
	return user, nil
}

func (r *userRepo) GetByID(_ context.Context, userID uuid.UUID) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[userID]
	if !ok {
		return models.User{}, fmt.Errorf("repo error: %w", apperrors.ErrUserNotFound)
	}
	return user, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *userRepo) GetByUsername(_ context.Context, username string) (models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r *userRepo) Update(_ context.Context, userID uuid.UUID, params repository.UpdateUserParams) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[userID]
	if !ok {
		return models.User{}, fmt.Errorf("repo error: %w", apperrors.ErrUserNotFound)
	}

	for id, u := range r.s.users {
		if id == userID {
			continue
		}
		if params.Username != nil && u.Username == *params.Username {
			return models.User{}, fmt.Errorf("repo error: %w", apperrors.ErrUserAlreadyExists)
		}
		if params.Email != nil && u.Email == *params.Email {
			return models.User{}, fmt.Errorf("repo error: %w", apperrors.ErrUserAlreadyExists)
		}
	}

	if params.Username != nil {
		user.Username = *params.Username
	}
	if params.Email != nil {
		user.Email = *params.Email
	}
	if params.FirstName != nil {
		user.FirstName = *params.FirstName
	}
	if params.LastName != nil {
		user.LastName = *params.LastName
	}
	if params.SocialLinks != nil {
		user.SocialLinks = *params.SocialLinks
	}
	if params.HashedPassword != nil {
		user.HashedPassword = *params.HashedPassword
	}
	user.UpdatedAt = time.Now()

	r.s.users[userID] = user
	return user, nil
}

func (r *userRepo) Delete(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[userID]; !ok {
		return fmt.Errorf("repo error: %w", apperrors.ErrUserNotFound)
	}
	delete(r.s.users, userID)
	return nil
}

func (r *userRepo) List(_ context.Context, limit int, offset int) ([]models.User, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	users := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })

	total := int64(len(users))
	return paginate(users, limit, offset), total, nil
}

func (r *userRepo) find(match func(models.User) bool) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if match(u) {
			return u, nil
		}
	}
	return models.User{}, fmt.Errorf("repo error: %w", apperrors.ErrUserNotFound)
}

func paginate[T any](items []T, limit int, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
