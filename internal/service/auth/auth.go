package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/models"
	"github.com/nkiryanov/blogapi/internal/repository"
	"github.com/nkiryanov/blogapi/internal/service/auth/tokenmanager"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

type Config struct {
	// Token signing config, passed through to the token manager
	Token tokenmanager.Config

	// Hasher to use during registration or login
	// Defaults to BcryptHasher
	Hasher PasswordHasher

	// Emails that register straight into the admin role
	AdminEmails []string
}

type AuthService struct {
	tokens  *tokenmanager.TokenManager
	hasher  PasswordHasher
	storage repository.Storage

	adminEmails map[string]struct{}
}

func NewService(cfg Config, storage repository.Storage) (*AuthService, error) {
	if storage == nil {
		return nil, errors.New("storage must not be nil")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = BcryptHasher{}
	}

	tokens, err := tokenmanager.New(cfg.Token, storage.RefreshToken())
	if err != nil {
		return nil, err
	}

	adminEmails := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, email := range cfg.AdminEmails {
		adminEmails[strings.ToLower(email)] = struct{}{}
	}

	return &AuthService{
		tokens:      tokens,
		hasher:      hasher,
		storage:     storage,
		adminEmails: adminEmails,
	}, nil
}

type RegisterParams struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

func (s *AuthService) Register(ctx context.Context, params RegisterParams) (models.User, models.TokenPair, error) {
	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return models.User{}, models.TokenPair{}, fmt.Errorf("can't use this as password, error=%w", err)
	}

	role := models.RoleUser
	if _, ok := s.adminEmails[strings.ToLower(params.Email)]; ok {
		role = models.RoleAdmin
	}

	user, err := s.storage.User().Create(ctx, repository.CreateUserParams{
		Username:       params.Username,
		Email:          params.Email,
		Role:           role,
		FirstName:      params.FirstName,
		LastName:       params.LastName,
		HashedPassword: hash,
	})
	if err != nil {
		return models.User{}, models.TokenPair{}, err
	}

	pair, err := s.tokens.IssuePair(ctx, user)
	if err != nil {
		return models.User{}, models.TokenPair{}, fmt.Errorf("token could not be generated, sorry. %w", err)
	}

	return user, pair, nil
}

// Login checks the credentials and starts a session.
// Unknown email and wrong password both come back as ErrUserNotFound,
// so a caller can't probe which accounts exist.
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.User, models.TokenPair, error) {
	user, err := s.storage.User().GetByEmail(ctx, email)
	if err != nil {
		return models.User{}, models.TokenPair{}, fmt.Errorf("login failed: %w", apperrors.ErrUserNotFound)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.User{}, models.TokenPair{}, fmt.Errorf("login failed: %w", apperrors.ErrUserNotFound)
	}

	pair, err := s.tokens.IssuePair(ctx, user)
	if err != nil {
		return models.User{}, models.TokenPair{}, fmt.Errorf("token could not be generated, sorry. %w", err)
	}

	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a new access token.
// The refresh token itself is left untouched: no rotation, the same
// session record serves every refresh until logout or expiry.
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.IssuedToken, error) {
	token, err := s.tokens.ParseRefresh(ctx, refresh)
	if err != nil {
		return models.IssuedToken{}, err
	}

	user, err := s.storage.User().GetByID(ctx, token.UserID)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("refresh failed: %w", apperrors.ErrTokenInvalid)
	}

	return s.tokens.IssueAccess(user)
}

// Logout revokes the refresh token record. A token that is already
// gone is not an error: logout must always succeed.
func (s *AuthService) Logout(ctx context.Context, refresh string) error {
	return s.tokens.RevokeRefresh(ctx, refresh)
}

// Authenticate resolves the access token to its user.
// Access tokens are not persisted, so a token issued before logout
// keeps working until it expires.
func (s *AuthService) Authenticate(ctx context.Context, access string) (models.User, error) {
	userID, _, err := s.tokens.ParseAccess(access)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.storage.User().GetByID(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("token user is gone: %w", apperrors.ErrTokenInvalid)
	}

	return user, nil
}
